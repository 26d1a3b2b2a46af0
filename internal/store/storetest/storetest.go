// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package storetest is a conformance suite run by every store.Store
// implementation's tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Record builds a dated record for code in month of the financial year
// starting in startYear.
func Record(t *testing.T, code, month string, startYear int) models.DistrictRecord {
	t.Helper()
	date, err := fiscal.RecordDateForStartYear(month, startYear)
	if err != nil {
		t.Fatalf("RecordDateForStartYear(%q, %d): %v", month, startYear, err)
	}
	return models.DistrictRecord{
		DistrictCode: code,
		DistrictName: code,
		State:        models.StateName,
		Month:        month,
		Year:         startYear,
		RecordDate:   &date,
		Data: models.Statistics{
			HouseholdsEmployed: int64(startYear),
			Expenditure:        1.5,
		},
		RawData:     map[string]any{"district_name": code, "month": month},
		LastUpdated: time.Date(2025, time.May, 1, 2, 0, 0, 0, time.UTC),
	}
}

func upsert(t *testing.T, s store.Store, recs ...models.DistrictRecord) {
	t.Helper()
	for i := range recs {
		if err := s.UpsertRecord(context.Background(), &recs[i]); err != nil {
			t.Fatalf("UpsertRecord(%s %s %d): %v", recs[i].DistrictCode, recs[i].Month, recs[i].Year, err)
		}
	}
}

type recordKey struct {
	Code  string
	Month string
	Year  int
}

func keys(recs []models.DistrictRecord) []recordKey {
	out := make([]recordKey, len(recs))
	for i, r := range recs {
		out[i] = recordKey{r.DistrictCode, r.Month, r.Year}
	}
	return out
}

// Run executes the suite. Subtests get their own store.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"UpsertReplacesOnNaturalKey", testUpsertReplaces},
		{"UpsertKeepsDistinctKeys", testDistinctKeys},
		{"LatestOrdersByRecordDate", testLatest},
		{"LatestNotFound", testLatestNotFound},
		{"HistoryLimit", testHistoryLimit},
		{"HistoryFinancialYearWindow", testHistoryWindow},
		{"HistoryUndated", testHistoryUndated},
		{"DistinctYears", testDistinctYears},
		{"LatestPerDistrict", testLatestPerDistrict},
		{"Stats", testStats},
		{"BackfillRecordDates", testBackfill},
		{"DeleteAll", testDeleteAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func testUpsertReplaces(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := Record(t, "raipur", "Apr", 2023)
	upsert(t, s, rec)

	rec.DistrictName = "Raipur"
	rec.Data.WorksCompleted = 99
	rec.LastUpdated = rec.LastUpdated.Add(24 * time.Hour)
	upsert(t, s, rec, rec)

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1 after repeated upserts", n)
	}

	got, err := s.Latest(ctx, "raipur")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.DistrictName != "Raipur" || got.Data.WorksCompleted != 99 {
		t.Errorf("record not replaced: %+v", got)
	}
	if !got.LastUpdated.Equal(rec.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, rec.LastUpdated)
	}
	if got.RawData["month"] != "Apr" {
		t.Errorf("RawData = %v", got.RawData)
	}
	if diff := cmp.Diff(rec.Data, got.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func testDistinctKeys(t *testing.T, s store.Store) {
	upsert(t, s,
		Record(t, "raipur", "Apr", 2023),
		Record(t, "raipur", "May", 2023),
		Record(t, "raipur", "Apr", 2022),
		Record(t, "durg", "Apr", 2023),
	)
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

func testLatest(t *testing.T, s store.Store) {
	upsert(t, s,
		Record(t, "korba", "Dec", 2023),
		Record(t, "korba", "Jan", 2023), // 2024-01-01, newest
		Record(t, "korba", "Apr", 2023),
	)
	got, err := s.Latest(context.Background(), "korba")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got.Month != "Jan" || got.RecordDate == nil || !got.RecordDate.Equal(want) {
		t.Errorf("Latest = %s %v, want Jan %v", got.Month, got.RecordDate, want)
	}
}

func testLatestNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Latest(ctx, "bastar"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Latest on empty store error = %v, want ErrNotFound", err)
	}

	undated := Record(t, "bastar", "Apr", 2019)
	undated.RecordDate = nil
	upsert(t, s, undated)
	if _, err := s.Latest(ctx, "bastar"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Latest with only undated records error = %v, want ErrNotFound", err)
	}
}

func testHistoryLimit(t *testing.T, s store.Store) {
	var recs []models.DistrictRecord
	for _, y := range []int{2021, 2022} {
		for _, m := range fiscal.Months {
			recs = append(recs, Record(t, "durg", m, y))
		}
	}
	upsert(t, s, recs...)

	got, err := s.History(context.Background(), "durg", store.HistoryQuery{Limit: 12})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("History returned %d records, want 12", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].RecordDate.After(*got[i].RecordDate) {
			t.Fatalf("History not strictly descending at %d: %v then %v", i, got[i-1].RecordDate, got[i].RecordDate)
		}
	}
	if got[0].Month != "Mar" || got[0].Year != 2022 {
		t.Errorf("newest = %s %d, want Mar 2022 (2023-03-01)", got[0].Month, got[0].Year)
	}
	if got[11].Month != "Apr" || got[11].Year != 2022 {
		t.Errorf("oldest of 12 = %s %d, want Apr 2022", got[11].Month, got[11].Year)
	}
}

func testHistoryWindow(t *testing.T, s store.Store) {
	upsert(t, s,
		Record(t, "jashpur", "Mar", 2019), // 2020-03-01, before
		Record(t, "jashpur", "Apr", 2020), // 2020-04-01, first day
		Record(t, "jashpur", "Oct", 2020),
		Record(t, "jashpur", "Mar", 2020), // 2021-03-01, last month
		Record(t, "jashpur", "Apr", 2021), // 2021-04-01, after
		Record(t, "raigarh", "Oct", 2020), // other district
	)

	from, to := fiscal.Bounds(2020)
	got, err := s.History(context.Background(), "jashpur", store.HistoryQuery{From: &from, To: &to})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []recordKey{
		{"jashpur", "Mar", 2020},
		{"jashpur", "Oct", 2020},
		{"jashpur", "Apr", 2020},
	}
	if diff := cmp.Diff(want, keys(got)); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}

	from, to = fiscal.Bounds(2015)
	got, err = s.History(context.Background(), "jashpur", store.HistoryQuery{From: &from, To: &to})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty window returned %d records", len(got))
	}
}

func testHistoryUndated(t *testing.T, s store.Store) {
	undated := Record(t, "mahasamund", "Jun", 2018)
	undated.RecordDate = nil
	upsert(t, s, undated, Record(t, "mahasamund", "Apr", 2022), Record(t, "mahasamund", "Apr", 2021))

	ctx := context.Background()
	dated, err := s.History(ctx, "mahasamund", store.HistoryQuery{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(dated) != 2 {
		t.Errorf("History without undated = %d records, want 2", len(dated))
	}

	all, err := s.History(ctx, "mahasamund", store.HistoryQuery{IncludeUndated: true})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []recordKey{
		{"mahasamund", "Apr", 2022},
		{"mahasamund", "Apr", 2021},
		{"mahasamund", "Jun", 2018},
	}
	if diff := cmp.Diff(want, keys(all)); diff != "" {
		t.Errorf("History with undated mismatch (-want +got):\n%s", diff)
	}
	if all[2].RecordDate != nil {
		t.Errorf("undated record came back with RecordDate %v", all[2].RecordDate)
	}
}

func testDistinctYears(t *testing.T, s store.Store) {
	ctx := context.Background()
	upsert(t, s,
		Record(t, "bilaspur", "Apr", 2019),
		Record(t, "bilaspur", "May", 2019),
		Record(t, "bilaspur", "Jan", 2022),
		Record(t, "bilaspur", "Apr", 2020),
		Record(t, "korba", "Apr", 2024),
	)
	got, err := s.DistinctYears(ctx, "bilaspur")
	if err != nil {
		t.Fatalf("DistinctYears: %v", err)
	}
	if diff := cmp.Diff([]int{2022, 2020, 2019}, got); diff != "" {
		t.Errorf("DistinctYears mismatch (-want +got):\n%s", diff)
	}

	none, err := s.DistinctYears(ctx, "bastar")
	if err != nil {
		t.Fatalf("DistinctYears: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("DistinctYears for empty district = %v", none)
	}
}

func testLatestPerDistrict(t *testing.T, s store.Store) {
	undated := Record(t, "bastar", "Apr", 2024)
	undated.RecordDate = nil
	upsert(t, s,
		Record(t, "raipur", "Apr", 2023),
		Record(t, "raipur", "Feb", 2023),
		Record(t, "durg", "Sep", 2022),
		undated,
	)

	got, err := s.LatestPerDistrict(context.Background())
	if err != nil {
		t.Fatalf("LatestPerDistrict: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LatestPerDistrict returned %d districts, want 2: %v", len(got), got)
	}
	if r := got["raipur"]; r.Month != "Feb" || r.Year != 2023 {
		t.Errorf("raipur latest = %s %d, want Feb 2023", r.Month, r.Year)
	}
	if r := got["durg"]; r.Month != "Sep" {
		t.Errorf("durg latest = %s, want Sep", r.Month)
	}
	if _, ok := got["bastar"]; ok {
		t.Error("undated-only district should be absent")
	}
}

func testStats(t *testing.T, s store.Store) {
	a := Record(t, "raipur", "Apr", 2023)
	b := Record(t, "raipur", "May", 2023)
	b.LastUpdated = b.LastUpdated.Add(time.Hour)
	upsert(t, s, a, b, Record(t, "durg", "Apr", 2023))

	got, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Stats returned %d rows, want 2", len(got))
	}
	if got[0].DistrictCode != "raipur" || got[0].RecordCount != 2 {
		t.Errorf("first row = %+v, want raipur with 2", got[0])
	}
	if !got[0].LatestUpdate.Equal(b.LastUpdated) {
		t.Errorf("LatestUpdate = %v, want %v", got[0].LatestUpdate, b.LastUpdated)
	}
	if got[1].DistrictCode != "durg" || got[1].RecordCount != 1 {
		t.Errorf("second row = %+v, want durg with 1", got[1])
	}
}

func testBackfill(t *testing.T, s store.Store) {
	ctx := context.Background()
	feb := Record(t, "raigarh", "Feb", 2023)
	feb.RecordDate = nil
	oct := Record(t, "raigarh", "Oct", 2023)
	oct.RecordDate = nil
	bad := Record(t, "raigarh", "Apr", 2023)
	bad.Month = "Xyz"
	bad.RecordDate = nil
	upsert(t, s, feb, oct, bad, Record(t, "raigarh", "Nov", 2023))

	n, err := s.BackfillRecordDates(ctx)
	if err != nil {
		t.Fatalf("BackfillRecordDates: %v", err)
	}
	if n != 2 {
		t.Errorf("BackfillRecordDates updated %d, want 2", n)
	}

	latest, err := s.Latest(ctx, "raigarh")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	if latest.Month != "Feb" || !latest.RecordDate.Equal(want) {
		t.Errorf("Latest after backfill = %s %v, want Feb %v", latest.Month, latest.RecordDate, want)
	}

	again, err := s.BackfillRecordDates(ctx)
	if err != nil {
		t.Fatalf("second BackfillRecordDates: %v", err)
	}
	if again != 0 {
		t.Errorf("second BackfillRecordDates updated %d, want 0", again)
	}
}

func testDeleteAll(t *testing.T, s store.Store) {
	ctx := context.Background()
	upsert(t, s, Record(t, "raipur", "Apr", 2023), Record(t, "durg", "Apr", 2023))

	n, err := s.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteAll removed %d, want 2", n)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("Count after DeleteAll = %d", c)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
