// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemorySize bounds the in-process cache when no size is configured.
const DefaultMemorySize = 2048

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryBackend is a bounded in-process LRU with per-entry expiry.
// Expired entries are dropped lazily on Get.
type MemoryBackend struct {
	entries *lru.Cache
	now     func() time.Time
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBackend) {
		m.now = now
	}
}

// NewMemory creates an in-process backend holding at most size entries.
func NewMemory(size int, opts ...MemoryOption) (*MemoryBackend, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	m := &MemoryBackend{entries: entries, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get returns a copy of the stored bytes.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(memoryEntry)
	if !m.now().Before(e.expiresAt) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

// Set stores a copy of value.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)
	m.entries.Add(key, memoryEntry{data: data, expiresAt: m.now().Add(ttl)})
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryBackend) Len() int {
	return m.entries.Len()
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Close drops every entry.
func (m *MemoryBackend) Close() error {
	m.entries.Purge()
	return nil
}

func (m *MemoryBackend) Name() string { return "memory" }
