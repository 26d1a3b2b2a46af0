// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*BackfillService)(nil)

type stubBackfiller struct {
	calls     atomic.Int32
	failFirst int32
}

func (b *stubBackfiller) BackfillRecordDates(context.Context) (int64, error) {
	if b.calls.Add(1) <= b.failFirst {
		return 0, errors.New("store unavailable")
	}
	return 3, nil
}

func TestBackfillServiceRunsOnce(t *testing.T) {
	t.Parallel()

	store := &stubBackfiller{}
	svc := NewBackfillService(store)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(svc, ctx)
		time.Sleep(20 * time.Millisecond)
		cancel()
		if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve = %v, want context.Canceled", err)
		}
	}
	if n := store.calls.Load(); n != 1 {
		t.Errorf("backfill calls = %d, want 1 across restarts", n)
	}
}

func TestBackfillServiceRetriedAfterFailure(t *testing.T) {
	t.Parallel()

	store := &stubBackfiller{failFirst: 1}
	sup := suture.New("backfill-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewBackfillService(store))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for store.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if n := store.calls.Load(); n != 2 {
		t.Errorf("backfill calls = %d, want 2 (one failure, one success)", n)
	}
}

func TestBackfillServiceString(t *testing.T) {
	t.Parallel()

	if s := NewBackfillService(&stubBackfiller{}).String(); s != "record-date-backfill" {
		t.Errorf("String() = %q", s)
	}
}
