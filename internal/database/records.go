// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
)

// recordColumns is the SELECT list understood by scanRecord.
const recordColumns = `district_code, district_name, state, month, year, record_date,
	households_employed, person_days_generated, works_completed, expenditure,
	active_workers, women_employment, raw_data, last_updated`

const upsertRecordSQL = `
INSERT INTO district_records (
	district_code, month, year, district_name, state, record_date,
	households_employed, person_days_generated, works_completed, expenditure,
	active_workers, women_employment, raw_data, last_updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (district_code, month, year) DO UPDATE SET
	district_name = EXCLUDED.district_name,
	state = EXCLUDED.state,
	record_date = EXCLUDED.record_date,
	households_employed = EXCLUDED.households_employed,
	person_days_generated = EXCLUDED.person_days_generated,
	works_completed = EXCLUDED.works_completed,
	expenditure = EXCLUDED.expenditure,
	active_workers = EXCLUDED.active_workers,
	women_employment = EXCLUDED.women_employment,
	raw_data = EXCLUDED.raw_data,
	last_updated = EXCLUDED.last_updated`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.DistrictRecord, error) {
	var (
		rec        models.DistrictRecord
		recordDate sql.NullTime
		rawData    sql.NullString
	)
	err := row.Scan(
		&rec.DistrictCode, &rec.DistrictName, &rec.State, &rec.Month, &rec.Year, &recordDate,
		&rec.Data.HouseholdsEmployed, &rec.Data.PersonDaysGenerated, &rec.Data.WorksCompleted,
		&rec.Data.Expenditure, &rec.Data.ActiveWorkers, &rec.Data.WomenEmployment,
		&rawData, &rec.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	if recordDate.Valid {
		t := recordDate.Time.UTC()
		rec.RecordDate = &t
	}
	rec.LastUpdated = rec.LastUpdated.UTC()
	if rawData.Valid && rawData.String != "" {
		if err := json.Unmarshal([]byte(rawData.String), &rec.RawData); err != nil {
			return nil, fmt.Errorf("failed to decode raw_data for %s %s %d: %w",
				rec.DistrictCode, rec.Month, rec.Year, err)
		}
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]models.DistrictRecord, error) {
	defer closeQuietly(rows)

	out := make([]models.DistrictRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan district record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// nullableTime converts an optional time into a bind parameter.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// UpsertRecord inserts rec or replaces the row with the same natural key.
func (db *DB) UpsertRecord(ctx context.Context, rec *models.DistrictRecord) (err error) {
	defer observe("upsert", time.Now(), &err)

	var raw any
	if rec.RawData != nil {
		b, mErr := json.Marshal(rec.RawData)
		if mErr != nil {
			return fmt.Errorf("failed to encode raw_data: %w", mErr)
		}
		raw = string(b)
	}

	_, err = db.conn.ExecContext(ctx, upsertRecordSQL,
		rec.DistrictCode, rec.Month, rec.Year, rec.DistrictName, rec.State, nullableTime(rec.RecordDate),
		rec.Data.HouseholdsEmployed, rec.Data.PersonDaysGenerated, rec.Data.WorksCompleted,
		rec.Data.Expenditure, rec.Data.ActiveWorkers, rec.Data.WomenEmployment,
		raw, rec.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s %s %d: %w", rec.DistrictCode, rec.Month, rec.Year, err)
	}
	return nil
}

// Latest returns the district's record with the greatest record_date.
func (db *DB) Latest(ctx context.Context, districtCode string) (rec *models.DistrictRecord, err error) {
	defer observe("latest", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx, `SELECT `+recordColumns+`
		FROM district_records
		WHERE district_code = ? AND record_date IS NOT NULL
		ORDER BY record_date DESC
		LIMIT 1`, districtCode)

	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest record: %w", err)
	}
	return rec, nil
}

// History returns records ordered by record_date descending, undated last.
func (db *DB) History(ctx context.Context, districtCode string, q store.HistoryQuery) (recs []models.DistrictRecord, err error) {
	defer observe("history", time.Now(), &err)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM district_records WHERE district_code = ?`)
	args := []any{districtCode}

	switch {
	case q.From != nil || q.To != nil:
		if q.From != nil {
			sb.WriteString(` AND record_date >= ?`)
			args = append(args, q.From.UTC())
		}
		if q.To != nil {
			sb.WriteString(` AND record_date <= ?`)
			args = append(args, q.To.UTC())
		}
	case !q.IncludeUndated:
		sb.WriteString(` AND record_date IS NOT NULL`)
	}

	sb.WriteString(` ORDER BY record_date DESC NULLS LAST, year DESC, month`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanRecords(rows)
}

// DistinctYears returns the district's stored financial-year start years,
// newest first.
func (db *DB) DistinctYears(ctx context.Context, districtCode string) (years []int, err error) {
	defer observe("distinct_years", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT year FROM district_records WHERE district_code = ? ORDER BY year DESC`,
		districtCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer closeQuietly(rows)

	years = make([]int, 0)
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// LatestPerDistrict returns the newest dated record of every district.
func (db *DB) LatestPerDistrict(ctx context.Context) (out map[string]models.DistrictRecord, err error) {
	defer observe("latest_per_district", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+recordColumns+`
		FROM district_records
		WHERE record_date IS NOT NULL
		QUALIFY row_number() OVER (PARTITION BY district_code ORDER BY record_date DESC) = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest records: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	out = make(map[string]models.DistrictRecord, len(recs))
	for _, r := range recs {
		out[r.DistrictCode] = r
	}
	return out, nil
}

// Stats returns per-district record counts, largest first.
func (db *DB) Stats(ctx context.Context) (stats []models.DistrictStats, err error) {
	defer observe("stats", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT district_code, COUNT(*) AS record_count, MAX(last_updated) AS latest_update
		FROM district_records
		GROUP BY district_code
		ORDER BY record_count DESC, district_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer closeQuietly(rows)

	stats = make([]models.DistrictStats, 0)
	for rows.Next() {
		var s models.DistrictStats
		if err := rows.Scan(&s.DistrictCode, &s.RecordCount, &s.LatestUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		s.LatestUpdate = s.LatestUpdate.UTC()
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Count returns the total number of stored records.
func (db *DB) Count(ctx context.Context) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM district_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

type recordKey struct {
	code  string
	month string
	year  int
}

// BackfillRecordDates fills record_date for rows that lack it. Rows whose
// month cannot be parsed are logged and left alone.
func (db *DB) BackfillRecordDates(ctx context.Context) (updated int64, err error) {
	defer observe("backfill", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT district_code, month, year FROM district_records WHERE record_date IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("failed to query undated records: %w", err)
	}
	var pending []recordKey
	for rows.Next() {
		var k recordKey
		if err := rows.Scan(&k.code, &k.month, &k.year); err != nil {
			closeQuietly(rows)
			return 0, fmt.Errorf("failed to scan undated record: %w", err)
		}
		pending = append(pending, k)
	}
	closeWithLog(rows, "rows")
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate undated records: %w", err)
	}

	for _, k := range pending {
		date, dErr := fiscal.RecordDateForStartYear(k.month, k.year)
		if dErr != nil {
			logging.Warn().
				Str("district_code", k.code).
				Str("month", k.month).
				Int("year", k.year).
				Err(dErr).
				Msg("Cannot derive record date, leaving record undated")
			continue
		}
		res, err := db.conn.ExecContext(ctx,
			`UPDATE district_records SET record_date = ? WHERE district_code = ? AND month = ? AND year = ? AND record_date IS NULL`,
			date, k.code, k.month, k.year)
		if err != nil {
			return updated, fmt.Errorf("failed to backfill %s %s %d: %w", k.code, k.month, k.year, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += n
		}
	}

	if updated > 0 {
		logging.Info().Int64("updated", updated).Msg("Backfilled record dates")
	}
	return updated, nil
}

// DeleteAll removes every record.
func (db *DB) DeleteAll(ctx context.Context) (n int64, err error) {
	defer observe("delete_all", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx, `DELETE FROM district_records`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return n, nil
}
