// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	syncpkg "github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

// SyncManager is satisfied by *sync.Manager.
type SyncManager interface {
	Start(ctx context.Context) error
	Stop() error
	Status() syncpkg.Status
}

// SyncService runs the sync manager's scheduler for the life of its
// context. Stop waits for an in-flight pass to finish, then the outcome of
// the last completed pass is logged.
type SyncService struct {
	manager SyncManager
	name    string
	log     zerolog.Logger
}

// NewSyncService wraps manager.
func NewSyncService(manager SyncManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "sync-manager",
		log:     logging.WithComponent("sync-manager"),
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	st := s.manager.Status()
	ev := s.log.Info().Str("schedule", st.Schedule)
	if st.NextRun != nil {
		ev = ev.Time("next_run", *st.NextRun)
	}
	ev.Msg("Sync scheduler running")

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	s.logLastPass(s.manager.Status())
	return ctx.Err()
}

// logLastPass reports the last pass at shutdown. Failed years or a failed
// run raise it to a warning.
func (s *SyncService) logLastPass(st syncpkg.Status) {
	r := st.LastResult
	if r == nil {
		ev := s.log.Info()
		if st.LastError != "" {
			ev = s.log.Warn().Str("last_error", st.LastError)
		}
		ev.Msg("Sync manager stopped before any pass completed")
		return
	}

	ev := s.log.Info()
	if st.LastError != "" || len(r.YearsFailed) > 0 {
		ev = s.log.Warn()
	}
	if st.LastError != "" {
		ev = ev.Str("last_error", st.LastError)
	}
	ev.Str("run_id", r.RunID).
		Time("finished_at", r.FinishedAt).
		Int("upserted", r.RecordsUpserted).
		Int("unmatched", r.RecordsUnmatched).
		Strs("years_failed", r.YearsFailed).
		Msg("Sync manager stopped")
}

func (s *SyncService) String() string {
	return s.name
}
