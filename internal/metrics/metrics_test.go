// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSyncRun(t *testing.T) {
	success := testutil.ToFloat64(SyncRuns.WithLabelValues("success"))
	failure := testutil.ToFloat64(SyncRuns.WithLabelValues("error"))

	RecordSyncRun(3*time.Second, nil)
	RecordSyncRun(time.Second, errors.New("source not configured"))

	if got := testutil.ToFloat64(SyncRuns.WithLabelValues("success")) - success; got != 1 {
		t.Errorf("success runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SyncRuns.WithLabelValues("error")) - failure; got != 1 {
		t.Errorf("error runs delta = %v, want 1", got)
	}
	if testutil.ToFloat64(SyncLastSuccess) == 0 {
		t.Error("SyncLastSuccess not set after a successful run")
	}
}

func TestRecordSourceRequestLabels(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		label string
	}{
		{"ok", 200, "200"},
		{"throttled", 429, "429"},
		{"transport failure", 0, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SourceRequests.WithLabelValues(tt.label))
			RecordSourceRequest(tt.code, 20*time.Millisecond)
			if got := testutil.ToFloat64(SourceRequests.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("delta for %s = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestRecordStoreOperationCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("duckdb", "upsert"))
	RecordStoreOperation("duckdb", "upsert", time.Millisecond, nil)
	RecordStoreOperation("duckdb", "upsert", time.Millisecond, errors.New("constraint"))
	if got := testutil.ToFloat64(StoreErrors.WithLabelValues("duckdb", "upsert")) - before; got != 1 {
		t.Errorf("store errors delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/districts", "200"))
	RecordAPIRequest("GET", "/api/v1/districts", 200, 5*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/districts", "200")) - before; got != 1 {
		t.Errorf("api requests delta = %v, want 1", got)
	}
}
