// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package api is the HTTP surface of the dashboard.

Routes (all JSON, wrapped in APIResponse):

	GET  /                                       service name and version
	GET  /api/v1/districts                       district registry
	GET  /api/v1/districts/compare/all           latest statistics per district
	GET  /api/v1/districts/{code}/current        latest record
	GET  /api/v1/districts/{code}/history        ?window=12m|all|YYYY-YYYY
	GET  /api/v1/districts/{code}/financial-years
	POST /api/v1/location/detect                 {"lat": .., "lng": ..}
	GET  /api/v1/health                          store, cache and sync status
	GET  /api/v1/stats                           record counts per district
	POST /api/v1/sync                            start a background sync (202/409)
	GET  /api/v1/sync/status
	GET  /metrics                                Prometheus exposition

Reads are served by the query service, which owns caching; handlers only
translate between HTTP and service calls and map errors to status codes.

Middleware order: request ID with logging context, real IP, panic
recovery, CORS (global so preflights work), then per-group rate limiting,
security headers and request metrics.
*/
package api
