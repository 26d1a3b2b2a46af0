// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
)

const badgerGCInterval = 10 * time.Minute

// BadgerBackend stores entries in an embedded Badger database using native
// key TTLs.
type BadgerBackend struct {
	db        *badger.DB
	stopGC    chan struct{}
	closeOnce sync.Once
}

// NewBadger opens a Badger database at path, or an in-memory one when
// path is empty.
func NewBadger(path string) (*BadgerBackend, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	b := &BadgerBackend{db: db, stopGC: make(chan struct{})}
	if path != "" {
		go b.gcLoop()
	}
	return b, nil
}

// gcLoop reclaims value-log space left by expired entries.
func (b *BadgerBackend) gcLoop() {
	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopGC:
			return
		case <-ticker.C:
			for {
				if err := b.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}

func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *BadgerBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
}

func (b *BadgerBackend) Ping(context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger database closed")
	}
	return nil
}

func (b *BadgerBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopGC)
		err = b.db.Close()
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to close badger cache")
		}
	})
	return err
}

func (b *BadgerBackend) Name() string { return "badger" }
