// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/datagov"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
)

var (
	// ErrSyncInProgress is returned when a trigger arrives while a pass runs.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSourceNotConfigured is returned when the API key, base URL or
	// resource ID is missing.
	ErrSourceNotConfigured = errors.New("data source not configured")
)

// Source fetches one financial year of records.
// Implemented by datagov.Client and datagov.CircuitBreakerClient.
type Source interface {
	Configured() bool
	FetchAllRecordsForFinancialYear(ctx context.Context, finYear string) ([]datagov.Record, error)
}

// RecordWriter is the part of store.Store the sync writes through.
type RecordWriter interface {
	UpsertRecord(ctx context.Context, rec *models.DistrictRecord) error
}

// Manager runs full syncs on demand and on a cron schedule.
type Manager struct {
	source   Source
	store    RecordWriter
	matcher  registry.Matcher
	cfg      *config.SyncConfig
	schedule *cronexpr.Expression
	years    []string // fixed year list; empty means StartYear..current
	loc      *time.Location
	now      func() time.Time

	// inFlight guards against overlapping passes.
	inFlight atomic.Bool

	mu         sync.RWMutex
	started    bool
	baseCtx    context.Context
	stopChan   chan struct{}
	lastSync   time.Time
	lastResult *Result
	lastError  string

	wg sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMatcher replaces the default exact/alias/fuzzy matcher chain.
func WithMatcher(matcher registry.Matcher) Option {
	return func(m *Manager) {
		m.matcher = matcher
	}
}

// WithYears fixes the financial years every pass fetches, in order,
// instead of StartYear through the current year.
func WithYears(years []string) Option {
	return func(m *Manager) {
		m.years = append([]string(nil), years...)
	}
}

// NewManager creates a sync manager. The schedule is parsed up front so a
// bad cron expression fails at startup.
func NewManager(source Source, store RecordWriter, reg *registry.Registry, cfg *config.SyncConfig, opts ...Option) (*Manager, error) {
	if source == nil || store == nil || reg == nil || cfg == nil {
		return nil, errors.New("sync manager requires a source, store, registry and config")
	}

	schedule, err := cronexpr.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", cfg.Schedule, err)
	}

	m := &Manager{
		source:   source,
		store:    store,
		matcher:  registry.NewDefaultMatcher(reg),
		cfg:      cfg,
		schedule: schedule,
		loc:      cfg.Location(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	logging.Info().
		Str("schedule", cfg.Schedule).
		Str("timezone", m.loc.String()).
		Int("start_year", cfg.StartYear).
		Bool("run_on_start", cfg.RunOnStart).
		Msg("Sync manager config loaded")

	return m, nil
}

// Start runs the initial pass (if configured) and the schedule loop in the
// background. It returns immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.started = true
	m.baseCtx = ctx
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Msg("Starting sync manager...")

	if m.cfg.RunOnStart {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runTriggered(ctx, "startup")
		}()
	}

	m.wg.Add(1)
	go m.scheduleLoop(ctx, stop)
	return nil
}

// Stop ends the schedule loop and waits for any pass the manager started,
// including ones from StartSync.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.started = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// RunFullSync runs one pass and blocks until it finishes.
func (m *Manager) RunFullSync(ctx context.Context) (*Result, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		metrics.RecordSyncSkipped()
		return nil, ErrSyncInProgress
	}
	defer m.inFlight.Store(false)

	return m.run(ctx, logging.GenerateCorrelationID())
}

// StartSync starts a pass in the background and returns its run ID. The
// pass outlives ctx; it is bound to the context given to Start, if any.
func (m *Manager) StartSync(ctx context.Context) (string, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		metrics.RecordSyncSkipped()
		return "", ErrSyncInProgress
	}

	m.mu.RLock()
	runCtx := m.baseCtx
	m.mu.RUnlock()
	if runCtx == nil {
		runCtx = context.WithoutCancel(ctx)
	}

	runID := logging.GenerateCorrelationID()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.inFlight.Store(false)
		if _, err := m.run(runCtx, runID); err != nil {
			logging.Error().Err(err).Str("run_id", runID).Msg("Triggered sync failed")
		}
	}()
	return runID, nil
}

// runTriggered runs a pass for the scheduler, logging instead of returning.
func (m *Manager) runTriggered(ctx context.Context, trigger string) {
	_, err := m.RunFullSync(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		logging.Warn().Str("trigger", trigger).Msg("Skipping sync, previous run still in progress")
	case err != nil:
		logging.Error().Err(err).Str("trigger", trigger).Msg("Sync failed")
	}
}

// IsRunning reports whether a pass is executing.
func (m *Manager) IsRunning() bool {
	return m.inFlight.Load()
}

// LastSyncTime returns when the last completed pass started.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// Status is the sync state reported by the API.
type Status struct {
	Running    bool       `json:"running"`
	Scheduled  bool       `json:"scheduled"`
	Schedule   string     `json:"schedule"`
	LastSync   *time.Time `json:"lastSync"`
	NextRun    *time.Time `json:"nextRun,omitempty"`
	LastResult *Result    `json:"lastResult,omitempty"`
	LastError  string     `json:"lastError,omitempty"`
}

// Status returns a snapshot of the sync state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Running:    m.inFlight.Load(),
		Scheduled:  m.started,
		Schedule:   m.cfg.Schedule,
		LastResult: m.lastResult,
		LastError:  m.lastError,
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		s.LastSync = &t
	}
	if m.started {
		if next := m.NextRun(); !next.IsZero() {
			s.NextRun = &next
		}
	}
	return s
}
