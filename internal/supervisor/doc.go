// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package supervisor runs the dashboard's long-lived components under a suture
supervision tree.

The tree has three layers under one root:

	mgnrega
	├── data-layer  store maintenance (record date backfill)
	├── sync-layer  scheduled ingestion from data.gov.in
	└── api-layer   HTTP server

A failing service is restarted by its layer with suture's backoff, so a
crash in ingestion never takes the HTTP server down with it. Supervisor
events are logged through sutureslog into the zerolog-backed slog handler.
*/
package supervisor
