// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to start real MongoDB and Redis
// instances for the store and cache backends:
//
//	func TestMongoStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    st, err := mongostore.New(ctx, &config.MongoConfig{URI: mongo.URI, Database: "test"})
//	    // ...
//	}
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
package testinfra
