// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/geo"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/query"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
	syncpkg "github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

type fakeQueries struct {
	mu         sync.Mutex
	lastWindow string
	current    *models.DistrictRecord
	currentErr error
	historyErr error
	compareErr error
}

func (f *fakeQueries) ListDistricts() []registry.District {
	return registry.Default().All()
}

func (f *fakeQueries) GetCurrent(_ context.Context, code string) (*models.DistrictRecord, error) {
	if _, ok := registry.Default().Get(code); !ok {
		return nil, query.ErrUnknownDistrict
	}
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	if f.current == nil {
		return nil, query.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeQueries) GetHistory(_ context.Context, code, window string) ([]models.DistrictRecord, error) {
	f.mu.Lock()
	f.lastWindow = window
	f.mu.Unlock()
	if _, ok := registry.Default().Get(code); !ok {
		return nil, query.ErrUnknownDistrict
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []models.DistrictRecord{{DistrictCode: code, Month: "Apr", Year: 2024}}, nil
}

func (f *fakeQueries) GetFinancialYears(_ context.Context, code string) ([]string, error) {
	if _, ok := registry.Default().Get(code); !ok {
		return nil, query.ErrUnknownDistrict
	}
	return []string{"2024-2025", "2023-2024"}, nil
}

func (f *fakeQueries) CompareAll(context.Context) ([]models.CompareEntry, error) {
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	return []models.CompareEntry{{DistrictCode: "raipur", DistrictName: map[string]string{"en": "Raipur"}}}, nil
}

func (f *fakeQueries) Stats(context.Context) (*query.StatsReport, error) {
	return &query.StatsReport{
		Districts: []models.DistrictStats{{DistrictCode: "raipur", RecordCount: 12}},
		Summary:   query.StatsSummary{TotalRecords: 12, DistinctDistricts: 1, AverageRecordsPerDistrict: 12},
	}, nil
}

type fakeStore struct {
	pingErr error
	count   int64
}

func (f *fakeStore) Ping(context.Context) error           { return f.pingErr }
func (f *fakeStore) Count(context.Context) (int64, error) { return f.count, nil }

type fakeCache struct {
	enabled bool
	pingErr error
}

func (f *fakeCache) Enabled() bool              { return f.enabled }
func (f *fakeCache) Name() string               { return "memory" }
func (f *fakeCache) Ping(context.Context) error { return f.pingErr }

type fakeSync struct {
	mu       sync.Mutex
	calls    int
	startErr error
	lastSync *time.Time
}

func (f *fakeSync) StartSync(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return fmt.Sprintf("run-%d", f.calls), nil
}

func (f *fakeSync) Status() syncpkg.Status {
	return syncpkg.Status{Schedule: "0 2 * * *", LastSync: f.lastSync}
}

type fakeSource bool

func (f fakeSource) Configured() bool { return bool(f) }

type testEnv struct {
	queries *fakeQueries
	store   *fakeStore
	cache   *fakeCache
	sync    *fakeSync
	cfg     *config.Config
	handler http.Handler
}

func newTestEnv(t *testing.T, mutate func(*testEnv)) *testEnv {
	t.Helper()
	env := &testEnv{
		queries: &fakeQueries{},
		store:   &fakeStore{count: 120},
		cache:   &fakeCache{enabled: true},
		sync:    &fakeSync{},
		cfg:     &config.Config{},
	}
	if mutate != nil {
		mutate(env)
	}
	h := NewHandler(Dependencies{
		Queries:  env.queries,
		Store:    env.store,
		Cache:    env.cache,
		Sync:     env.sync,
		Source:   fakeSource(true),
		Detector: geo.NewDetector(registry.Default(), nil),
		Config:   env.cfg,
		Version:  "1.2.3",
	})
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	env.handler = NewRouter(h, mw).SetupChi()
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	var resp APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, resp
}

func dataMap(t *testing.T, resp APIResponse) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v, want object", resp.Data)
	}
	return m
}

func TestRoutes_Status(t *testing.T) {
	t.Parallel()

	current := &models.DistrictRecord{DistrictCode: "raipur", Month: "Mar", Year: 2024}
	env := newTestEnv(t, func(e *testEnv) { e.queries.current = current })

	tests := []struct {
		method string
		path   string
		body   string
		want   int
		code   string
	}{
		{http.MethodGet, "/", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/compare/all", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/raipur/current", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/RAIPUR/current", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/gotham/current", "", http.StatusNotFound, ErrCodeNotFound},
		{http.MethodGet, "/api/v1/districts/raipur/history", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/raipur/history?window=2023-2024", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/districts/raipur/history?window=forever", "", http.StatusBadRequest, ErrCodeValidationFailed},
		{http.MethodGet, "/api/v1/districts/raipur/financial-years", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/stats", "", http.StatusOK, ""},
		{http.MethodGet, "/api/v1/sync/status", "", http.StatusOK, ""},
		{http.MethodPost, "/api/v1/location/detect", `{"lat": 21.25, "lng": 81.63}`, http.StatusOK, ""},
		{http.MethodPost, "/api/v1/location/detect", `{"lat": 21.25}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{http.MethodPost, "/api/v1/location/detect", `{"lat": 120, "lng": 81}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{http.MethodPost, "/api/v1/location/detect", `not json`, http.StatusBadRequest, ErrCodeBadRequest},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			w, resp := env.do(t, tt.method, tt.path, tt.body, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.code == "" {
				if !resp.Success {
					t.Errorf("Success = false: %+v", resp.Error)
				}
				return
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	w, _ := env.do(t, http.MethodDelete, "/api/v1/districts", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestDistrictCurrentNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	w, resp := env.do(t, http.MethodGet, "/api/v1/districts/durg/current", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp.Error.Message != "No data available for this district yet" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestDistrictHistoryDefaultWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	_, resp := env.do(t, http.MethodGet, "/api/v1/districts/korba/history", "", nil)

	data := dataMap(t, resp)
	if data["window"] != "12m" || data["districtCode"] != "korba" {
		t.Errorf("data = %v", data)
	}
	if env.queries.lastWindow != "12m" {
		t.Errorf("service window = %q, want 12m", env.queries.lastWindow)
	}
}

func TestStoreFailureIsDatabaseError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) { e.queries.compareErr = errors.New("connection reset") })
	w, resp := env.do(t, http.MethodGet, "/api/v1/districts/compare/all", "", nil)
	if w.Code != http.StatusInternalServerError || resp.Error.Code != ErrCodeDatabaseError {
		t.Fatalf("status %d error %+v", w.Code, resp.Error)
	}
	if strings.Contains(resp.Error.Message, "connection reset") {
		t.Error("internal error leaked to client")
	}
}

func TestDetectLocationResponse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	_, resp := env.do(t, http.MethodPost, "/api/v1/location/detect", `{"lat": 22.36, "lng": 82.75}`, nil)

	data := dataMap(t, resp)
	district, ok := data["detectedDistrict"].(map[string]any)
	if !ok || district["code"] != "korba" {
		t.Errorf("detectedDistrict = %v", data["detectedDistrict"])
	}
	if data["confidence"] != "high" || data["inState"] != true {
		t.Errorf("data = %v", data)
	}
}

func TestTriggerSync(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		w, resp := env.do(t, http.MethodPost, "/api/v1/sync", "", nil)
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", w.Code)
		}
		if dataMap(t, resp)["runId"] != "run-1" {
			t.Errorf("data = %v", resp.Data)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, func(e *testEnv) { e.sync.startErr = syncpkg.ErrSyncInProgress })
		w, resp := env.do(t, http.MethodPost, "/api/v1/sync", "", nil)
		if w.Code != http.StatusConflict || resp.Error.Code != ErrCodeConflict {
			t.Errorf("status %d error %+v", w.Code, resp.Error)
		}
	})

	t.Run("token required", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, func(e *testEnv) { e.cfg.Security.SyncToken = "s3cret" })

		tests := []struct {
			auth string
			want int
		}{
			{"", http.StatusUnauthorized},
			{"Bearer wrong", http.StatusUnauthorized},
			{"Basic s3cret", http.StatusUnauthorized},
			{"Bearer s3cret", http.StatusAccepted},
		}
		for _, tt := range tests {
			w, _ := env.do(t, http.MethodPost, "/api/v1/sync", "", map[string]string{"Authorization": tt.auth})
			if w.Code != tt.want {
				t.Errorf("Authorization %q: status = %d, want %d", tt.auth, w.Code, tt.want)
			}
		}
		if env.sync.calls != 1 {
			t.Errorf("StartSync calls = %d, want 1", env.sync.calls)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*testEnv)
		wantCode   int
		wantStatus string
		wantCache  string
	}{
		{"ok", nil, http.StatusOK, HealthOK, componentConnected},
		{"empty store", func(e *testEnv) { e.store.count = 0 }, http.StatusServiceUnavailable, HealthDegraded, componentConnected},
		{"cache down", func(e *testEnv) { e.cache.pingErr = errors.New("refused") }, http.StatusServiceUnavailable, HealthDegraded, componentDisconnected},
		{"cache disabled", func(e *testEnv) { e.cache.enabled = false }, http.StatusOK, HealthOK, componentDisabled},
		{"store down", func(e *testEnv) { e.store.pingErr = errors.New("refused") }, http.StatusServiceUnavailable, HealthError, componentConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, tt.mutate)
			w, resp := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			data := dataMap(t, resp)
			if data["status"] != tt.wantStatus {
				t.Errorf("health status = %v, want %s", data["status"], tt.wantStatus)
			}
			if tt.wantStatus != HealthError && data["cache"] != tt.wantCache {
				t.Errorf("cache = %v, want %s", data["cache"], tt.wantCache)
			}
			if data["version"] != "1.2.3" {
				t.Errorf("version = %v", data["version"])
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/v1/districts", "", nil)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mgnrega_api_requests_total") {
		t.Error("API request counter missing from /metrics")
	}
}

func TestResponsesAreGzipped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/districts", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()

	var resp APIResponse
	if err := json.NewDecoder(zr).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false")
	}
}

func TestMissingDependencies(t *testing.T) {
	t.Parallel()

	h := NewRouter(NewHandler(Dependencies{Config: &config.Config{}}), nil).SetupChi()
	for _, path := range []string{"/api/v1/districts", "/api/v1/sync/status"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, w.Code)
		}
	}
}
