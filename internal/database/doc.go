// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package database is the embedded DuckDB implementation of store.Store.

It keeps every district record in a single table, district_records, keyed
by (district_code, month, year). Upserts use INSERT ... ON CONFLICT DO
UPDATE so a re-run sync replaces rows in place.

# Schema

The base table is created with CREATE TABLE IF NOT EXISTS. Later columns
are added through versioned migrations tracked in schema_migrations:

	v1  record_date  TIMESTAMP, first day of the covered month (UTC)

Rows written before v1 have a NULL record_date until BackfillRecordDates
derives it from month and year.

The table carries no secondary index. DuckDB rejects ON CONFLICT DO UPDATE
on columns covered by an ART index, and record_date is updated by every
upsert. With ten districts and a few hundred rows each a scan is cheap.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	rec, err := db.Latest(ctx, "raipur")
*/
package database
