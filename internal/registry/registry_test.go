// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := Default()
	if reg.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", reg.Len())
	}

	want := []string{
		"raipur", "bilaspur", "durg", "rajnandgaon", "korba",
		"raigarh", "janjgir-champa", "mahasamund", "bastar", "jashpur",
	}
	if diff := cmp.Diff(want, reg.Codes()); diff != "" {
		t.Errorf("Codes() mismatch (-want +got):\n%s", diff)
	}

	for _, d := range reg.All() {
		if d.EnglishName() == "" || d.Name[LangHindi] == "" {
			t.Errorf("district %s missing a display name: %v", d.Code, d.Name)
		}
		if d.Coordinates.Lat < 17.5 || d.Coordinates.Lat > 24 || d.Coordinates.Lng < 80 || d.Coordinates.Lng > 84.5 {
			t.Errorf("district %s coordinates outside the state: %+v", d.Code, d.Coordinates)
		}
	}
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()

	reg := Default()
	d, ok := reg.Get("bastar")
	if !ok {
		t.Fatal("Get(bastar) not found")
	}
	if d.EnglishName() != "Bastar" || d.Coordinates.Lat != 19.0688 {
		t.Errorf("Get(bastar) = %+v", d)
	}
	if _, ok := reg.Get("kanker"); ok {
		t.Error("Get(kanker) found an untracked district")
	}
}

func TestRegistryIsImmutable(t *testing.T) {
	t.Parallel()

	reg := Default()
	d, _ := reg.Get("raipur")
	d.Name[LangEnglish] = "Changed"

	all := reg.All()
	all[0].Name[LangEnglish] = "Changed again"

	again, _ := reg.Get("raipur")
	if again.EnglishName() != "Raipur" {
		t.Errorf("registry mutated through a returned copy: %q", again.EnglishName())
	}
}

func TestNewIgnoresDuplicateCodes(t *testing.T) {
	t.Parallel()

	reg := New([]District{
		{Code: "a", Name: map[string]string{LangEnglish: "First"}},
		{Code: "a", Name: map[string]string{LangEnglish: "Second"}},
	})
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	d, _ := reg.Get("a")
	if d.EnglishName() != "First" {
		t.Errorf("Get(a) = %q, want First", d.EnglishName())
	}
}
