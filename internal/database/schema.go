// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context for schema operations with a 60s timeout.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// districtRecordsTable is the base table. record_date arrives via migration
// v1 so that databases created before it can be upgraded in place.
const districtRecordsTable = `
CREATE TABLE IF NOT EXISTS district_records (
	district_code TEXT NOT NULL,
	month TEXT NOT NULL,
	year INTEGER NOT NULL,
	district_name TEXT NOT NULL,
	state TEXT NOT NULL,
	households_employed BIGINT NOT NULL DEFAULT 0,
	person_days_generated BIGINT NOT NULL DEFAULT 0,
	works_completed BIGINT NOT NULL DEFAULT 0,
	expenditure DOUBLE NOT NULL DEFAULT 0,
	active_workers BIGINT NOT NULL DEFAULT 0,
	women_employment BIGINT NOT NULL DEFAULT 0,
	raw_data TEXT,
	last_updated TIMESTAMP NOT NULL,
	PRIMARY KEY (district_code, month, year)
);
`

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, districtRecordsTable); err != nil {
		return fmt.Errorf("failed to create district_records table: %w", err)
	}
	return nil
}
