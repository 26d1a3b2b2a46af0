// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package store defines the record store contract shared by the DuckDB and
// MongoDB backends.
//
// A store holds one DistrictRecord per (district code, month, year). Upserts
// are individually atomic; nothing spans records. Records without a
// RecordDate are rows from before the field existed: they are left out of
// every date-ordered query except History with IncludeUndated, until
// BackfillRecordDates fills them in.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/models"
)

// ErrNotFound is returned by Latest when a district has no dated record.
var ErrNotFound = errors.New("record not found")

// HistoryQuery filters History.
type HistoryQuery struct {
	// Limit caps the number of records; 0 means no limit.
	Limit int

	// From and To bound RecordDate inclusively when set.
	From *time.Time
	To   *time.Time

	// IncludeUndated appends records without a RecordDate after the dated
	// ones. Ignored when From or To is set.
	IncludeUndated bool
}

// Store is the persistent record collection.
type Store interface {
	// UpsertRecord inserts rec or replaces the record with the same natural
	// key. DistrictName, Data, RawData, RecordDate and LastUpdated are
	// replaced on conflict.
	UpsertRecord(ctx context.Context, rec *models.DistrictRecord) error

	// Latest returns the district's record with the greatest RecordDate.
	Latest(ctx context.Context, districtCode string) (*models.DistrictRecord, error)

	// History returns records ordered by RecordDate descending.
	History(ctx context.Context, districtCode string, q HistoryQuery) ([]models.DistrictRecord, error)

	// DistinctYears returns stored financial-year start years, descending.
	DistinctYears(ctx context.Context, districtCode string) ([]int, error)

	// LatestPerDistrict returns the newest dated record of every district
	// that has one, keyed by district code.
	LatestPerDistrict(ctx context.Context) (map[string]models.DistrictRecord, error)

	// Stats returns record counts per district, largest first.
	Stats(ctx context.Context) ([]models.DistrictStats, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// BackfillRecordDates derives RecordDate from Month and Year for every
	// record lacking it and returns how many were updated.
	BackfillRecordDates(ctx context.Context) (int64, error)

	// DeleteAll removes every record and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
