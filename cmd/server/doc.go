// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package main is the dashboard API server.

It serves MGNREGA employment statistics for the districts of Chhattisgarh
from a local store that a background sync keeps current from the
data.gov.in open-data API.

# Supervisor Tree

	RootSupervisor ("mgnrega")
	├── DataSupervisor ("data-layer")
	│   └── Record date backfill (store.backfill_on_start)
	├── SyncSupervisor ("sync-layer")
	│   └── Sync manager (sync.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Startup order:

 1. Configuration (koanf: defaults, config.yaml, .env, environment)
 2. Logging (zerolog)
 3. Record store (DuckDB or MongoDB)
 4. Cache (Redis, in-memory LRU, Badger or none)
 5. Query service, location detector and sync manager
 6. Chi router and HTTP server
 7. Supervisor tree

# Configuration

The most common variables:

	DATA_GOV_API_KEY      data.gov.in API key (sync is disabled without it)
	DATA_GOV_RESOURCE_ID  resource holding the district-wise dataset
	STORE_BACKEND         duckdb (default) or mongo
	MONGODB_URI           when STORE_BACKEND=mongo
	CACHE_BACKEND         memory (default), redis, badger or none
	REDIS_URL             when CACHE_BACKEND=redis
	PORT                  listen port (default 5000)
	CORS_ORIGIN           comma-separated allowed origins
	SYNC_SCHEDULE         cron expression (default "0 2 * * *")
	SYNC_TOKEN            bearer token required by POST /api/v1/sync

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to 10s and the sync manager waits for an in-flight pass before the stores
are closed.
*/
package main
