// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/mgnrega-dashboard/internal/models"
)

// recordingBackend is an in-memory Backend that remembers TTLs and can be
// told to fail.
type recordingBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (b *recordingBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return nil, false, errors.New("connection refused")
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *recordingBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSet {
		return errors.New("connection refused")
	}
	b.data[key] = value
	b.ttls[key] = ttl
	return nil
}

func (b *recordingBackend) Ping(context.Context) error { return nil }
func (b *recordingBackend) Close() error               { return nil }
func (b *recordingBackend) Name() string               { return "recording" }

func TestLayerRoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	want := []models.DistrictRecord{{
		DistrictCode: "raipur",
		DistrictName: "Raipur",
		State:        models.StateName,
		Month:        "Feb",
		Year:         2023,
		RecordDate:   &date,
		Data:         models.Statistics{HouseholdsEmployed: 1200, Expenditure: 12.5},
		RawData:      map[string]any{"district_name": "RAIPUR", "total_exp": 1250.0},
		LastUpdated:  time.Date(2024, time.March, 2, 2, 0, 0, 0, time.UTC),
	}}

	layer := NewLayer(newRecordingBackend(), time.Hour)
	ctx := context.Background()
	layer.Set(ctx, HistoryKey("raipur", "12m"), want, 0)

	var got []models.DistrictRecord
	if !layer.Get(ctx, HistoryKey("raipur", "12m"), &got) {
		t.Fatal("Get missed after Set")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLayerTTL(t *testing.T) {
	t.Parallel()

	backend := newRecordingBackend()
	layer := NewLayer(backend, 24*time.Hour)
	ctx := context.Background()

	layer.Set(ctx, "a", 1, 0)
	layer.Set(ctx, "b", 2, -time.Second)
	layer.Set(ctx, "c", 3, time.Hour)

	want := map[string]time.Duration{"a": 24 * time.Hour, "b": 24 * time.Hour, "c": time.Hour}
	if diff := cmp.Diff(want, backend.ttls); diff != "" {
		t.Errorf("ttls mismatch (-want +got):\n%s", diff)
	}

	if got := NewLayer(backend, 0).defaultTTL; got != DefaultTTL {
		t.Errorf("zero default TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestLayerDegradesOnBackendFailure(t *testing.T) {
	t.Parallel()

	backend := newRecordingBackend()
	layer := NewLayer(backend, time.Hour)
	ctx := context.Background()
	layer.Set(ctx, "k", "v", 0)

	backend.failGet = true
	var s string
	if layer.Get(ctx, "k", &s) {
		t.Error("Get reported a hit while the backend was failing")
	}

	backend.failSet = true
	layer.Set(ctx, "other", "v", 0) // must not panic or surface
	if _, ok := backend.data["other"]; ok {
		t.Error("failed Set stored a value")
	}
}

func TestLayerUndecodableEntryIsMiss(t *testing.T) {
	t.Parallel()

	backend := newRecordingBackend()
	backend.data["k"] = []byte("{not json")
	layer := NewLayer(backend, time.Hour)

	var v map[string]any
	if layer.Get(context.Background(), "k", &v) {
		t.Error("Get reported a hit for corrupt data")
	}
}

func TestLayerUnencodableValueSkipped(t *testing.T) {
	t.Parallel()

	backend := newRecordingBackend()
	layer := NewLayer(backend, time.Hour)
	layer.Set(context.Background(), "k", make(chan int), 0)
	if len(backend.data) != 0 {
		t.Error("unencodable value reached the backend")
	}
}

func TestDisabledLayer(t *testing.T) {
	t.Parallel()

	layer := NewLayer(nil, time.Hour)
	ctx := context.Background()
	layer.Set(ctx, "k", 1, 0)

	var v int
	if layer.Get(ctx, "k", &v) {
		t.Error("disabled layer reported a hit")
	}
	if layer.Enabled() {
		t.Error("Enabled() = true for nil backend")
	}
	if layer.Name() != "none" {
		t.Errorf("Name() = %q, want none", layer.Name())
	}
	if err := layer.Ping(ctx); !errors.Is(err, ErrDisabled) {
		t.Errorf("Ping() = %v, want ErrDisabled", err)
	}
	if err := layer.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{CurrentKey("raipur"), "district:raipur:current"},
		{HistoryKey("durg", "12m"), "district:durg:history:12m"},
		{HistoryKey("durg", "2020-2021"), "district:durg:history:2020-2021"},
		{YearsKey("korba"), "district:korba:years"},
		{CompareAllKey, "districts:compare:all"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}
