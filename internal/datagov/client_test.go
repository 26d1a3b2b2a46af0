// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package datagov

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
)

func testConfig(baseURL string) *config.DataGovConfig {
	return &config.DataGovConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		ResourceID:    "ee03643a",
		State:         "CHHATTISGARH",
		StateField:    "state_name",
		FinYearField:  "fin_year",
		PageSize:      2,
		MaxPages:      50,
		Timeout:       5 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 5 * time.Millisecond,
	}
}

func makeRecords(n int, finYear string) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"district_name":   "Raipur",
			"month":           "Apr",
			"fin_year":        finYear,
			"works_completed": i,
		}
	}
	return out
}

// pagedServer serves records by offset/limit and reports total as given.
func pagedServer(t *testing.T, records []map[string]any, total any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		var page []map[string]any
		if offset < len(records) {
			page = records[offset:end]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total": total, "count": len(page), "records": page})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFetchAllRecordsPagesUntilTotal(t *testing.T) {
	t.Parallel()

	srv, calls := pagedServer(t, makeRecords(5, "2023-2024"), 5)
	c := NewClient(testConfig(srv.URL))

	got, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2023-2024")
	if err != nil {
		t.Fatalf("FetchAllRecordsForFinancialYear: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d records, want 5", len(got))
	}
	if calls.Load() != 3 {
		t.Errorf("made %d requests, want 3 pages of 2", calls.Load())
	}
	if got[4].Stats.WorksCompleted != 4 || got[0].FinYear != "2023-2024" {
		t.Errorf("unexpected record content: %+v", got[4])
	}
}

func TestFetchAllRecordsStopsOnEmptyPageWithoutTotal(t *testing.T) {
	t.Parallel()

	srv, calls := pagedServer(t, makeRecords(3, "2020-2021"), "")
	c := NewClient(testConfig(srv.URL))

	got, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2020-2021")
	if err != nil {
		t.Fatalf("FetchAllRecordsForFinancialYear: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d records, want 3", len(got))
	}
	if calls.Load() != 3 {
		t.Errorf("made %d requests, want 2 data pages and 1 empty page", calls.Load())
	}
}

func TestFetchAllRecordsWrongTotalStillReadsAll(t *testing.T) {
	t.Parallel()

	// A total larger than the data must not loop forever.
	srv, _ := pagedServer(t, makeRecords(3, "2020-2021"), 1000)
	c := NewClient(testConfig(srv.URL))

	got, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2020-2021")
	if err != nil {
		t.Fatalf("FetchAllRecordsForFinancialYear: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d records, want 3", len(got))
	}
}

func TestFetchSendsFilters(t *testing.T) {
	t.Parallel()

	var query atomic.Value
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		path.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"total":0,"records":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testConfig(srv.URL + "/resource/"))
	if _, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2024-2025"); err != nil {
		t.Fatalf("FetchAllRecordsForFinancialYear: %v", err)
	}

	q := query.Load().(url.Values)
	checks := map[string]string{
		"api-key":             "test-key",
		"format":              "json",
		"offset":              "0",
		"limit":               "2",
		"filters[state_name]": "CHHATTISGARH",
		"filters[fin_year]":   "2024-2025",
	}
	for k, want := range checks {
		if got := q[k]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %q", k, got, want)
		}
	}
	if _, ok := q["filters[month]"]; ok {
		t.Error("month must not be filtered server-side")
	}
	if got := path.Load().(string); got != "/resource/ee03643a" {
		t.Errorf("path = %q, want /resource/ee03643a", got)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			http.Error(w, "upstream busy", http.StatusBadGateway)
		case 2:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`{"total":"1","records":[{"district_name":"Korba","month":"May","fin_year":"2022-2023"}]}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testConfig(srv.URL))
	got, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2022-2023")
	if err != nil {
		t.Fatalf("FetchAllRecordsForFinancialYear: %v", err)
	}
	if len(got) != 1 || got[0].DistrictName != "Korba" {
		t.Errorf("got %+v", got)
	}
	if calls.Load() != 3 {
		t.Errorf("made %d requests, want 3", calls.Load())
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testConfig(srv.URL))
	_, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2022-2023")

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("error = %v, want StatusError 503", err)
	}
	if calls.Load() != 3 {
		t.Errorf("made %d requests, want 1 + 2 retries", calls.Load())
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid api key", http.StatusForbidden)
		}},
		{"error payload", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"error","message":"Invalid resource"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			t.Cleanup(srv.Close)

			c := NewClient(testConfig(srv.URL))
			_, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2022-2023")
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want StatusError", err)
			}
			if calls.Load() != 1 {
				t.Errorf("made %d requests, want no retries", calls.Load())
			}
		})
	}
}

func TestFetchNotConfigured(t *testing.T) {
	t.Parallel()

	for _, mutate := range []func(*config.DataGovConfig){
		func(c *config.DataGovConfig) { c.APIKey = "" },
		func(c *config.DataGovConfig) { c.BaseURL = "" },
		func(c *config.DataGovConfig) { c.ResourceID = "" },
	} {
		cfg := testConfig("http://127.0.0.1:1")
		mutate(cfg)
		c := NewClient(cfg)
		if c.Configured() {
			t.Error("Configured() = true with missing settings")
		}
		if _, err := c.FetchAllRecordsForFinancialYear(context.Background(), "2022-2023"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	}
}

func TestFetchHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.RetryDelay = time.Hour
	cfg.MaxRetryDelay = time.Hour
	c := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.FetchAllRecordsForFinancialYear(ctx, "2022-2023")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry wait ignored context cancellation")
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	tests := map[string]time.Duration{
		"3":                             3 * time.Second,
		" 10 ":                          10 * time.Second,
		"":                              0,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFlexIntDecoding(t *testing.T) {
	t.Parallel()

	for body, want := range map[string]int{`{"total":12}`: 12, `{"total":"34"}`: 34, `{"total":""}`: 0, `{"total":null}`: 0} {
		var p pageResponse
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Errorf("Unmarshal(%s): %v", body, err)
			continue
		}
		if int(p.Total) != want {
			t.Errorf("total from %s = %d, want %d", body, p.Total, want)
		}
	}
}
