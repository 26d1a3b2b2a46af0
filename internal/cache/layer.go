// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
)

// DefaultTTL applies when neither the call site nor the layer sets one.
const DefaultTTL = 24 * time.Hour

// ErrDisabled is returned by Ping on a layer without a backend.
var ErrDisabled = errors.New("cache disabled")

// Layer is the JSON read-through cache used by the query service.
type Layer struct {
	backend    Backend
	defaultTTL time.Duration
}

// NewLayer wraps backend. A nil backend yields a disabled layer.
func NewLayer(backend Backend, defaultTTL time.Duration) *Layer {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Layer{backend: backend, defaultTTL: defaultTTL}
}

// Enabled reports whether a backend is attached.
func (l *Layer) Enabled() bool {
	return l != nil && l.backend != nil
}

// Name returns the backend name, or "none".
func (l *Layer) Name() string {
	if !l.Enabled() {
		return "none"
	}
	return l.backend.Name()
}

// Get decodes the cached value for key into dest and reports whether it
// did. Misses, backend errors and undecodable entries all return false.
func (l *Layer) Get(ctx context.Context, key string, dest any) bool {
	if !l.Enabled() {
		return false
	}
	name := l.backend.Name()

	data, ok, err := l.backend.Get(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues(name, "get").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Str("backend", name).Msg("Cache get failed, treating as miss")
		metrics.CacheMisses.WithLabelValues(name).Inc()
		return false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues(name).Inc()
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CacheErrors.WithLabelValues(name, "decode").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cached value undecodable, treating as miss")
		metrics.CacheMisses.WithLabelValues(name).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(name).Inc()
	return true
}

// Set stores value under key. A ttl of zero or less uses the layer default.
// Failures are logged and dropped.
func (l *Layer) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !l.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	name := l.backend.Name()

	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheErrors.WithLabelValues(name, "encode").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache value not encodable, skipping")
		return
	}
	if err := l.backend.Set(ctx, key, data, ttl); err != nil {
		metrics.CacheErrors.WithLabelValues(name, "set").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Str("backend", name).Msg("Cache set failed")
	}
}

// Ping checks the backend. It returns ErrDisabled on a disabled layer.
func (l *Layer) Ping(ctx context.Context) error {
	if !l.Enabled() {
		return ErrDisabled
	}
	return l.backend.Ping(ctx)
}

// Close releases the backend.
func (l *Layer) Close() error {
	if !l.Enabled() {
		return nil
	}
	return l.backend.Close()
}
