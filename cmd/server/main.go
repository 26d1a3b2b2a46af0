// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/api"
	"github.com/tomtom215/mgnrega-dashboard/internal/bootstrap"
	"github.com/tomtom215/mgnrega-dashboard/internal/cache"
	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/geo"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/query"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
	"github.com/tomtom215/mgnrega-dashboard/internal/supervisor"
	"github.com/tomtom215/mgnrega-dashboard/internal/supervisor/services"
	"github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Bool("source_configured", cfg.DataGov.Configured()).
		Msg("Starting MGNREGA dashboard")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	layer := bootstrap.OpenCache(ctx, &cfg.Cache)
	defer func() {
		if err := layer.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	reg := registry.Default()
	queries := query.NewService(st, layer, reg, cache.TTLsFromConfig(&cfg.Cache))

	var geocoder *geo.Geocoder
	if cfg.Geo.ReverseGeocode {
		geocoder = geo.NewGeocoder(&cfg.Geo)
	}
	detector := geo.NewDetector(reg, geocoder)

	source := bootstrap.NewSource(&cfg.DataGov)
	syncManager, err := sync.NewManager(source, st, reg, &cfg.Sync)
	if err != nil {
		return fmt.Errorf("create sync manager: %w", err)
	}
	if !source.Configured() {
		logging.Warn().Msg("DATA_GOV_API_KEY or DATA_GOV_RESOURCE_ID not set; syncs will fail until configured")
	}

	handler := api.NewHandler(api.Dependencies{
		Queries:  queries,
		Store:    st,
		Cache:    layer,
		Sync:     syncManager,
		Source:   source,
		Detector: detector,
		Config:   cfg,
		Version:  version,
	})
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Store.BackfillOnStart {
		tree.AddDataService(services.NewBackfillService(st))
	}
	if cfg.Sync.Enabled {
		tree.AddSyncService(services.NewSyncService(syncManager))
		logging.Info().Str("schedule", cfg.Sync.Schedule).Msg("Sync manager added to supervisor tree")
	} else {
		logging.Info().Msg("Scheduled sync disabled (SYNC_ENABLED=false); manual triggers still work")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			treeErr = err
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return treeErr
}
