// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package cache is the best-effort read-through cache in front of the record
store.

A Layer serializes values as JSON and hands the bytes to a Backend:

  - RedisBackend: GET / SETEX over a redigo connection pool
  - MemoryBackend: bounded in-process LRU with per-entry expiry
  - BadgerBackend: embedded Badger database with native key TTLs

A Layer never returns backend errors. A failed Get is reported as a miss
and a failed Set is dropped; both are logged at warn level and counted in
mgnrega_cache_errors_total. A Layer built with a nil Backend is disabled:
every Get misses and every Set is a no-op.

# Keys

	district:{code}:current           latest record       (TTLs.Current)
	district:{code}:history:{window}  history window      (TTLs.History)
	district:{code}:years             financial years     (TTLs.Default)
	districts:compare:all             comparison snapshot (TTLs.Compare)

# Usage

	backend, err := cache.NewRedis(&cfg.Cache)
	if err != nil {
	    return err
	}
	layer := cache.NewLayer(backend, cfg.Cache.DefaultTTL)

	var recs []models.DistrictRecord
	if !layer.Get(ctx, cache.HistoryKey("raipur", "12m"), &recs) {
	    recs = loadFromStore()
	    layer.Set(ctx, cache.HistoryKey("raipur", "12m"), recs, ttls.History)
	}
*/
package cache
