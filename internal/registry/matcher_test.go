// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package registry

import "testing"

func TestExactMatcher(t *testing.T) {
	t.Parallel()

	m := NewExactMatcher(Default())
	tests := []struct {
		name     string
		wantCode string
		wantOK   bool
	}{
		{"Raipur", "raipur", true},
		{"RAIPUR", "raipur", true},
		{"  durg ", "durg", true},
		{"janjgir-champa", "janjgir-champa", true},
		{"Janjgir Champa", "", false},
		{"Kanker", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		d, ok := m.Match(tt.name)
		if ok != tt.wantOK || d.Code != tt.wantCode {
			t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.name, d.Code, ok, tt.wantCode, tt.wantOK)
		}
	}
}

func TestAliasMatcher(t *testing.T) {
	t.Parallel()

	reg := Default()
	m := NewAliasMatcher(reg, map[string]string{
		"Raj Nandgaon": "rajnandgaon",
		"Jagdalpur":    "bastar",
		"Nowhere":      "not-a-district",
	})

	if d, ok := m.Match("RAJ-NANDGAON"); !ok || d.Code != "rajnandgaon" {
		t.Errorf("Match(RAJ-NANDGAON) = (%q, %v)", d.Code, ok)
	}
	if d, ok := m.Match("jagdalpur"); !ok || d.Code != "bastar" {
		t.Errorf("Match(jagdalpur) = (%q, %v)", d.Code, ok)
	}
	if _, ok := m.Match("Nowhere"); ok {
		t.Error("alias to an unknown code should be dropped")
	}
}

func TestFuzzyMatcher(t *testing.T) {
	t.Parallel()

	m := NewFuzzyMatcher(Default())
	tests := []struct {
		name     string
		wantCode string
		wantOK   bool
	}{
		{"Mahasamnd", "mahasamund", true},
		{"Janjgir Chmpa", "janjgir-champa", true},
		{"KORBA", "korba", true},
		{"Rai", "", false},    // too short
		{"Raip", "", false},   // covers too little of Raipur
		{"Kanker", "", false}, // no subsequence match
		{"Dantewada", "", false},
	}
	for _, tt := range tests {
		d, ok := m.Match(tt.name)
		if ok != tt.wantOK || d.Code != tt.wantCode {
			t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.name, d.Code, ok, tt.wantCode, tt.wantOK)
		}
	}
}

func TestDefaultMatcherChain(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(Default())
	tests := map[string]string{
		"Bilaspur":         "bilaspur",
		"JANJGIR - CHAMPA": "janjgir-champa",
		"Jagdalpur":        "bastar",
		"Mahasamnd":        "mahasamund",
	}
	for in, want := range tests {
		d, ok := m.Match(in)
		if !ok || d.Code != want {
			t.Errorf("Match(%q) = (%q, %v), want %q", in, d.Code, ok, want)
		}
	}
	if d, ok := m.Match("Sukma"); ok {
		t.Errorf("Match(Sukma) = %q, want no match", d.Code)
	}
}
