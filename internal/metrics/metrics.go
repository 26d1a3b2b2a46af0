// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package metrics holds the Prometheus collectors exposed on /metrics.
//
// Collectors are package-level and registered with the default registry at
// init through promauto. Record* helpers keep label values consistent across
// call sites.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcome labels for SyncRecords.
const (
	OutcomeUpserted  = "upserted"
	OutcomeUnmatched = "unmatched"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

var (
	// Sync metrics

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mgnrega_sync_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_sync_runs_total",
			Help: "Sync runs by result (success, error, skipped)",
		},
		[]string{"result"},
	)

	SyncRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_sync_records_total",
			Help: "Source records handled by sync, by outcome",
		},
		[]string{"outcome"},
	)

	SyncYearFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_sync_year_failures_total",
			Help: "Financial years skipped during a sync run, by reason",
		},
		[]string{"reason"}, // "fetch_error", "empty"
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mgnrega_sync_last_success_timestamp",
			Help: "Unix timestamp of the last completed sync run",
		},
	)

	SyncInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mgnrega_sync_in_progress",
			Help: "1 while a sync run is executing",
		},
	)

	// Source API metrics

	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_source_requests_total",
			Help: "Page requests to the open-data API, by status code",
		},
		[]string{"status_code"},
	)

	SourceRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mgnrega_source_request_duration_seconds",
			Help:    "Latency of open-data API page requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SourceRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mgnrega_source_retries_total",
			Help: "Page fetch retries after a transient failure",
		},
	)

	// Cache metrics

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_cache_hits_total",
			Help: "Cache hits by backend",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_cache_misses_total",
			Help: "Cache misses by backend",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_cache_errors_total",
			Help: "Swallowed cache backend errors by backend and operation",
		},
		[]string{"backend", "operation"},
	)

	// Store metrics

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mgnrega_store_operation_duration_seconds",
			Help:    "Duration of record store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_store_errors_total",
			Help: "Record store operation errors",
		},
		[]string{"backend", "operation"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mgnrega_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_api_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mgnrega_api_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mgnrega_api_active_requests",
			Help: "In-flight HTTP requests",
		},
	)

	// Geolocation metrics

	LocationDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mgnrega_location_detections_total",
			Help: "Nearest-district detections by confidence band",
		},
		[]string{"confidence"},
	)
)

// RecordSyncRun records a finished sync run.
func RecordSyncRun(duration time.Duration, err error) {
	SyncDuration.Observe(duration.Seconds())
	if err != nil {
		SyncRuns.WithLabelValues("error").Inc()
		return
	}
	SyncRuns.WithLabelValues("success").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSyncSkipped counts a trigger dropped by the overlap guard.
func RecordSyncSkipped() {
	SyncRuns.WithLabelValues("skipped").Inc()
}

// RecordSourceRequest records one page request. statusCode is 0 for
// transport failures.
func RecordSourceRequest(statusCode int, duration time.Duration) {
	label := "error"
	if statusCode > 0 {
		label = strconv.Itoa(statusCode)
	}
	SourceRequests.WithLabelValues(label).Inc()
	SourceRequestDuration.Observe(duration.Seconds())
}

// RecordStoreOperation records one store call.
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
