// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
)

// NextRun returns the next scheduled start after now in the sync timezone,
// or the zero time if the expression has no future match.
func (m *Manager) NextRun() time.Time {
	return m.schedule.Next(m.now().In(m.loc))
}

// scheduleLoop sleeps until each cron match and runs a pass.
func (m *Manager) scheduleLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	for {
		next := m.NextRun()
		if next.IsZero() {
			logging.Warn().Str("schedule", m.cfg.Schedule).Msg("Sync schedule has no future runs, scheduler exiting")
			return
		}

		wait := next.Sub(m.now())
		logging.Debug().Time("next_run", next).Dur("wait", wait).Msg("Next scheduled sync")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			m.runTriggered(ctx, "schedule")
		}
	}
}
