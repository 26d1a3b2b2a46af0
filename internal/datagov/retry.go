// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package datagov

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
)

// retryWithBackoff runs fn up to MaxRetries+1 times. The delay starts at
// RetryDelay and doubles up to MaxRetryDelay; a Retry-After header
// replaces the computed delay for that attempt.
func (c *Client) retryWithBackoff(ctx context.Context, fn func() error) error {
	delay := c.cfg.RetryDelay
	var err error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == c.cfg.MaxRetries {
			break
		}

		wait := delay
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > 0 {
			wait = se.RetryAfter
		}
		if c.cfg.MaxRetryDelay > 0 && wait > c.cfg.MaxRetryDelay {
			wait = c.cfg.MaxRetryDelay
		}

		logging.Ctx(ctx).Warn().Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.cfg.MaxRetries).
			Dur("delay", wait).
			Msg("Page fetch failed, retrying")
		metrics.SourceRetries.Inc()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if c.cfg.MaxRetryDelay > 0 && delay > c.cfg.MaxRetryDelay {
			delay = c.cfg.MaxRetryDelay
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// The http.Client timeout surfaces as DeadlineExceeded wrapped in
		// a *url.Error; only the caller's own context is final.
		var te interface{ Timeout() bool }
		return errors.As(err, &te) && te.Timeout()
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
