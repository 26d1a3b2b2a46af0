// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package services adapts dashboard components to suture.Service.

Each wrapper translates a component's own lifecycle into Serve(ctx):

	HTTPServerService  ListenAndServe / Shutdown
	SyncService        Start / Stop of the sync manager
	BackfillService    one record-date backfill pass, then idle

All wrappers return ctx.Err() on a clean shutdown and a wrapped error when
the component fails, which tells the parent supervisor to restart them.
*/
package services
