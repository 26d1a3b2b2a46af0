// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package sync

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/datagov"
	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
)

// maxUnmatchedNames caps Result.UnmatchedNames.
const maxUnmatchedNames = 50

// Result summarizes one pass.
type Result struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	DurationMs int64     `json:"durationMs"`

	YearsAttempted []string `json:"yearsAttempted"`
	YearsFailed    []string `json:"yearsFailed"`
	YearsEmpty     []string `json:"yearsEmpty"`

	RecordsFetched   int `json:"recordsFetched"`
	RecordsUpserted  int `json:"recordsUpserted"`
	RecordsUnmatched int `json:"recordsUnmatched"`
	RecordsMalformed int `json:"recordsMalformed"`
	RecordsFailed    int `json:"recordsFailed"`

	// UnmatchedNames lists distinct source district names that matched no
	// registry entry, sorted.
	UnmatchedNames []string `json:"unmatchedNames,omitempty"`

	unmatched map[string]struct{}
}

func (r *Result) addUnmatched(name string) {
	r.RecordsUnmatched++
	if r.unmatched == nil {
		r.unmatched = make(map[string]struct{})
	}
	if len(r.unmatched) < maxUnmatchedNames {
		r.unmatched[name] = struct{}{}
	}
}

func (r *Result) finish(at time.Time) {
	r.FinishedAt = at
	r.DurationMs = at.Sub(r.StartedAt).Milliseconds()
	r.UnmatchedNames = make([]string, 0, len(r.unmatched))
	for n := range r.unmatched {
		r.UnmatchedNames = append(r.UnmatchedNames, n)
	}
	sort.Strings(r.UnmatchedNames)
}

// run executes one pass. The caller holds the overlap guard.
func (m *Manager) run(ctx context.Context, runID string) (*Result, error) {
	ctx = logging.ContextWithCorrelationID(ctx, runID)
	log := logging.Ctx(ctx)
	started := m.now()

	if !m.source.Configured() {
		log.Error().Msg("Sync aborted: data.gov.in API key, base URL or resource ID not configured")
		m.recordFailure(ErrSourceNotConfigured)
		metrics.RecordSyncRun(time.Since(started), ErrSourceNotConfigured)
		return nil, ErrSourceNotConfigured
	}

	metrics.SyncInProgress.Set(1)
	defer metrics.SyncInProgress.Set(0)

	years := m.years
	if len(years) == 0 {
		current := fiscal.CurrentFinancialYearStart(started.In(m.loc))
		years = fiscal.FinancialYearRange(m.cfg.StartYear, current)
	}

	res := &Result{
		RunID:          runID,
		StartedAt:      started.UTC(),
		YearsAttempted: years,
		YearsFailed:    []string{},
		YearsEmpty:     []string{},
	}

	log.Info().Strs("years", years).Msg("Starting full sync")

	for _, finYear := range years {
		if err := ctx.Err(); err != nil {
			res.finish(m.now().UTC())
			log.Warn().Err(err).Str("fin_year", finYear).Msg("Sync cancelled")
			m.recordFailure(err)
			metrics.RecordSyncRun(time.Since(started), err)
			return res, err
		}
		m.syncYear(ctx, finYear, res)
	}

	res.finish(m.now().UTC())

	m.mu.Lock()
	m.lastSync = started
	m.lastResult = res
	m.lastError = ""
	m.mu.Unlock()
	metrics.RecordSyncRun(time.Since(started), nil)

	log.Info().
		Int("fetched", res.RecordsFetched).
		Int("upserted", res.RecordsUpserted).
		Int("unmatched", res.RecordsUnmatched).
		Int("malformed", res.RecordsMalformed).
		Int("failed", res.RecordsFailed).
		Strs("years_failed", res.YearsFailed).
		Strs("years_empty", res.YearsEmpty).
		Int64("duration_ms", res.DurationMs).
		Msg("Sync completed")

	return res, nil
}

func (m *Manager) recordFailure(err error) {
	m.mu.Lock()
	m.lastError = err.Error()
	m.mu.Unlock()
}

// syncYear fetches and ingests one financial year. Errors stop at the year.
func (m *Manager) syncYear(ctx context.Context, finYear string, res *Result) {
	log := logging.Ctx(ctx).With().Str("fin_year", finYear).Logger()

	records, err := m.source.FetchAllRecordsForFinancialYear(ctx, finYear)
	if err != nil {
		res.YearsFailed = append(res.YearsFailed, finYear)
		metrics.SyncYearFailures.WithLabelValues("fetch_error").Inc()
		log.Warn().Err(err).Msg("Fetch failed, skipping financial year")
		return
	}
	if len(records) == 0 {
		res.YearsEmpty = append(res.YearsEmpty, finYear)
		metrics.SyncYearFailures.WithLabelValues("empty").Inc()
		log.Info().Msg("No records for financial year")
		return
	}

	res.RecordsFetched += len(records)
	upsertedBefore := res.RecordsUpserted
	for i := range records {
		m.ingest(ctx, &records[i], res)
	}
	log.Info().
		Int("records", len(records)).
		Int("upserted", res.RecordsUpserted-upsertedBefore).
		Msg("Financial year synced")
}

// ingest matches, normalizes and upserts one source record.
func (m *Manager) ingest(ctx context.Context, rec *datagov.Record, res *Result) {
	log := logging.Ctx(ctx)

	district, ok := m.matcher.Match(rec.DistrictName)
	if !ok {
		res.addUnmatched(strings.TrimSpace(rec.DistrictName))
		metrics.SyncRecords.WithLabelValues(metrics.OutcomeUnmatched).Inc()
		log.Debug().Str("district_name", rec.DistrictName).Msg("No registry district for source name")
		return
	}

	malformed := func(reason string, err error) {
		res.RecordsMalformed++
		metrics.SyncRecords.WithLabelValues(metrics.OutcomeMalformed).Inc()
		log.Warn().
			Err(err).
			Str("district", district.Code).
			Str("month", rec.Month).
			Str("fin_year", rec.FinYear).
			Msg("Skipping malformed record: " + reason)
	}

	if strings.TrimSpace(rec.Month) == "" || strings.TrimSpace(rec.FinYear) == "" {
		malformed("missing month or financial year", nil)
		return
	}
	month, err := fiscal.NormalizeMonth(rec.Month)
	if err != nil {
		malformed("unknown month", err)
		return
	}
	startYear, err := fiscal.ParseFinancialYearStart(rec.FinYear)
	if err != nil {
		malformed("unparseable financial year", err)
		return
	}
	recordDate, err := fiscal.RecordDateForStartYear(month, startYear)
	if err != nil {
		malformed("cannot derive record date", err)
		return
	}

	doc := &models.DistrictRecord{
		DistrictCode: district.Code,
		DistrictName: district.EnglishName(),
		State:        models.StateName,
		Month:        month,
		Year:         startYear,
		RecordDate:   &recordDate,
		Data:         rec.Stats,
		RawData:      rec.Raw,
		LastUpdated:  m.now().UTC(),
	}
	if err := m.store.UpsertRecord(ctx, doc); err != nil {
		res.RecordsFailed++
		metrics.SyncRecords.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error().
			Err(err).
			Str("district", district.Code).
			Str("month", month).
			Int("year", startYear).
			Msg("Failed to upsert record")
		return
	}

	res.RecordsUpserted++
	metrics.SyncRecords.WithLabelValues(metrics.OutcomeUpserted).Inc()
}
