// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"time"
)

// Backend is a byte-oriented key/value store with per-key expiry.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the stored bytes and true, or false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error

	// Name labels metrics and health output.
	Name() string
}
