// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package bootstrap builds the backends selected by configuration. Both
// binaries (cmd/server and cmd/sync) open their store, cache and data
// source through it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/cache"
	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/database"
	"github.com/tomtom215/mgnrega-dashboard/internal/datagov"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/mongostore"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
	"github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

const cachePingTimeout = 3 * time.Second

// Store backends.
const (
	StoreDuckDB = "duckdb"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheBadger = "badger"
	CacheNone   = "none"
)

// OpenStore opens the record store named by cfg.Store.Backend. Failure is
// fatal to the caller: nothing works without a store.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case StoreDuckDB, "":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open duckdb store: %w", err)
		}
		return db, nil
	case StoreMongo:
		ms, err := mongostore.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// OpenCache builds the cache layer named by cfg.Backend. A backend that
// cannot be built is logged and replaced by a disabled layer, so queries go
// straight to the store. A Redis server that is down at startup only earns
// a warning: the pool redials on later requests and the layer treats
// errors as misses meanwhile.
func OpenCache(ctx context.Context, cfg *config.CacheConfig) *cache.Layer {
	backend, err := openBackend(cfg)
	if err != nil {
		logging.Warn().Err(err).Str("backend", cfg.Backend).Msg("Cache unavailable, continuing without cache")
		return cache.NewLayer(nil, cfg.DefaultTTL)
	}
	if backend == nil {
		logging.Info().Msg("Cache disabled")
		return cache.NewLayer(nil, cfg.DefaultTTL)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Str("backend", backend.Name()).Msg("Cache not reachable yet")
	} else {
		logging.Info().Str("backend", backend.Name()).Msg("Cache ready")
	}
	return cache.NewLayer(backend, cfg.DefaultTTL)
}

func openBackend(cfg *config.CacheConfig) (cache.Backend, error) {
	switch cfg.Backend {
	case CacheNone, "":
		return nil, nil
	case CacheMemory:
		return cache.NewMemory(cfg.MemorySize)
	case CacheRedis:
		return cache.NewRedis(cfg)
	case CacheBadger:
		return cache.NewBadger(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewSource builds the data.gov.in client, wrapped in a circuit breaker
// when cfg.CircuitBreaker is set.
func NewSource(cfg *config.DataGovConfig) sync.Source {
	client := datagov.NewClient(cfg)
	if cfg.CircuitBreaker {
		return datagov.NewCircuitBreakerClient(client)
	}
	return client
}
