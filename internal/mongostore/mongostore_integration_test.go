// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
	"github.com/tomtom215/mgnrega-dashboard/internal/store/storetest"
	"github.com/tomtom215/mgnrega-dashboard/internal/testinfra"
)

func TestStoreConformance(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	mongo, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, mongo)

	// Each subtest gets its own database on the shared server.
	var seq atomic.Int32
	storetest.Run(t, func(t *testing.T) store.Store {
		t.Helper()
		s, err := New(ctx, &config.MongoConfig{
			URI:      mongo.URI,
			Database: fmt.Sprintf("mgnrega_test_%d", seq.Add(1)),
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	})
}

func TestUniqueIndexRejectsDuplicateKeys(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	mongo, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, mongo)

	s, err := New(ctx, &config.MongoConfig{URI: mongo.URI, Database: "mgnrega_unique"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	rec := storetest.Record(t, "raipur", "Apr", 2023)
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := s.coll.InsertOne(ctx, rec); err == nil {
		t.Fatal("second insert with the same natural key succeeded, want duplicate key error")
	}
}
