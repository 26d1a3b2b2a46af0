// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package sync ingests district statistics from the open-data API into the
record store.

A full sync walks every financial year from sync.start_year through the
current one, in order. For each year it fetches all pages from the source,
matches every record's district name against the registry, derives the
record's month, financial year and record date from the record's own
fields, and upserts it by (district code, month, year).

Failures are contained where they happen:

  - a year whose fetch fails or returns nothing is skipped
  - an unmatched district name is counted and skipped
  - a record with a missing or unparseable month or financial year is
    logged and skipped
  - a failed upsert is logged and the next record proceeds

Only a missing source configuration fails the whole run
(ErrSourceNotConfigured).

# Scheduling

Manager.Start runs an initial pass when sync.run_on_start is set and then
follows the sync.schedule cron expression in sync.timezone. At most one
pass runs at a time: a trigger that arrives while a pass is in flight gets
ErrSyncInProgress and is counted as skipped.

# Usage

	mgr, err := sync.NewManager(source, store, registry.Default(), &cfg.Sync)
	if err != nil {
	    return err
	}

	// one-shot, blocking
	result, err := mgr.RunFullSync(ctx)

	// from an HTTP handler
	runID, err := mgr.StartSync(ctx)
*/
package sync
