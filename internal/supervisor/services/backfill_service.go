// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
)

// Backfiller fills in missing record dates. Satisfied by every store.Store.
type Backfiller interface {
	BackfillRecordDates(ctx context.Context) (int64, error)
}

// BackfillService runs one record-date backfill when it starts, then idles
// until shutdown. A failed pass returns an error so the supervisor retries
// it with backoff; a completed pass is never repeated while the service
// lives.
type BackfillService struct {
	store Backfiller
	name  string
	done  bool
}

// NewBackfillService wraps store.
func NewBackfillService(store Backfiller) *BackfillService {
	return &BackfillService{store: store, name: "record-date-backfill"}
}

// Serve implements suture.Service.
func (s *BackfillService) Serve(ctx context.Context) error {
	if !s.done {
		log := logging.Ctx(ctx)
		log.Info().Msg("Backfilling record dates")

		n, err := s.store.BackfillRecordDates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("record date backfill failed: %w", err)
		}
		s.done = true
		log.Info().Int64("updated", n).Msg("Record date backfill complete")
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *BackfillService) String() string {
	return s.name
}
