// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/datagov"
)

func TestOpenCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		enabled bool
	}{
		{"none", config.CacheConfig{Backend: CacheNone}, "none", false},
		{"empty", config.CacheConfig{}, "none", false},
		{"memory", config.CacheConfig{Backend: CacheMemory, MemorySize: 16}, "memory", true},
		{"redis", config.CacheConfig{Backend: CacheRedis, RedisURL: "redis://" + mr.Addr(), RedisMaxIdle: 1, RedisMaxActive: 2}, "redis", true},
		{"unknown falls back", config.CacheConfig{Backend: "memcached"}, "none", false},
		{"invalid redis url falls back", config.CacheConfig{Backend: CacheRedis, RedisURL: "http://localhost"}, "none", false},
		{"unreachable redis stays attached", config.CacheConfig{Backend: CacheRedis, RedisURL: "redis://127.0.0.1:1", RedisDialTimeout: 100 * time.Millisecond}, "redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			layer := OpenCache(context.Background(), &tt.cfg)
			t.Cleanup(func() { _ = layer.Close() })

			if got := layer.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
			if got := layer.Enabled(); got != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestOpenCacheBadger(t *testing.T) {
	t.Parallel()

	layer := OpenCache(context.Background(), &config.CacheConfig{Backend: CacheBadger, BadgerPath: filepath.Join(t.TempDir(), "cache")})
	t.Cleanup(func() { _ = layer.Close() })

	if layer.Name() != "badger" {
		t.Fatalf("Name() = %q, want badger", layer.Name())
	}
	if err := layer.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestOpenStoreDuckDB(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Store:    config.StoreConfig{Backend: StoreDuckDB},
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1},
	}
	st, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	n, err := st.Count(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Count() = %d, %v; want 0, nil", n, err)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "postgres"}})
	if err == nil {
		t.Fatal("OpenStore() succeeded for unknown backend")
	}
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	cfg := config.DataGovConfig{BaseURL: "https://example.test", APIKey: "k", ResourceID: "r"}

	if _, ok := NewSource(&cfg).(*datagov.Client); !ok {
		t.Error("breaker disabled: want *datagov.Client")
	}

	cfg.CircuitBreaker = true
	src := NewSource(&cfg)
	if _, ok := src.(*datagov.CircuitBreakerClient); !ok {
		t.Error("breaker enabled: want *datagov.CircuitBreakerClient")
	}
	if !src.Configured() {
		t.Error("Configured() = false with credentials set")
	}
}
