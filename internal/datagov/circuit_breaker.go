// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package datagov

import (
	"context"
	"errors"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
)

// breakerName labels circuit breaker metrics. Each financial year gets its
// own breaker, named breakerName/finYear.
const breakerName = "datagov-api"

// consecutiveFailuresToTrip is the number of failed fetches of the same
// financial year in a row that opens that year's circuit.
const consecutiveFailuresToTrip = 3

// CircuitBreakerClient guards Client with one circuit breaker per financial
// year. A year whose fetches keep failing across passes fails fast with
// gobreaker.ErrOpenState; other years are never affected by it.
type CircuitBreakerClient struct {
	client *Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]Record]
}

// NewCircuitBreakerClient wraps client.
func NewCircuitBreakerClient(client *Client) *CircuitBreakerClient {
	return &CircuitBreakerClient{
		client:   client,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]Record]),
	}
}

func (cbc *CircuitBreakerClient) breaker(finYear string) *gobreaker.CircuitBreaker[[]Record] {
	cbc.mu.Lock()
	defer cbc.mu.Unlock()

	if cb, ok := cbc.breakers[finYear]; ok {
		return cb
	}

	name := breakerName + "/" + finYear
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]Record](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= consecutiveFailuresToTrip
			if trip {
				logging.Warn().
					Str("fin_year", finYear).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening data.gov.in circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			// Cancellation and missing configuration say nothing about the API.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	cbc.breakers[finYear] = cb
	return cb
}

// Configured reports whether the wrapped client can call the API.
func (cbc *CircuitBreakerClient) Configured() bool {
	return cbc.client.Configured()
}

// FetchAllRecordsForFinancialYear fetches through finYear's breaker.
func (cbc *CircuitBreakerClient) FetchAllRecordsForFinancialYear(ctx context.Context, finYear string) ([]Record, error) {
	cb := cbc.breaker(finYear)
	records, err := cb.Execute(func() ([]Record, error) {
		return cbc.client.FetchAllRecordsForFinancialYear(ctx, finYear)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	}
	return records, err
}

// State returns the state name of finYear's breaker. Years never fetched
// are closed.
func (cbc *CircuitBreakerClient) State(finYear string) string {
	cbc.mu.Lock()
	cb, ok := cbc.breakers[finYear]
	cbc.mu.Unlock()
	if !ok {
		return stateToString(gobreaker.StateClosed)
	}
	return stateToString(cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
