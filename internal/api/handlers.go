// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"context"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/cache"
	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/geo"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/query"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
	syncpkg "github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

// DistrictQuerier is the read side served by the district endpoints.
type DistrictQuerier interface {
	ListDistricts() []registry.District
	GetCurrent(ctx context.Context, code string) (*models.DistrictRecord, error)
	GetHistory(ctx context.Context, code, window string) ([]models.DistrictRecord, error)
	GetFinancialYears(ctx context.Context, code string) ([]string, error)
	CompareAll(ctx context.Context) ([]models.CompareEntry, error)
	Stats(ctx context.Context) (*query.StatsReport, error)
}

// StoreHealth is the slice of the record store health checks need.
type StoreHealth interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// CacheHealth is the slice of the cache layer health checks need.
type CacheHealth interface {
	Enabled() bool
	Name() string
	Ping(ctx context.Context) error
}

// SyncController triggers and reports background syncs.
type SyncController interface {
	StartSync(ctx context.Context) (string, error)
	Status() syncpkg.Status
}

// SourceStatus reports whether the upstream source has credentials.
type SourceStatus interface {
	Configured() bool
}

// LocationDetector resolves coordinates to a district.
type LocationDetector interface {
	Detect(ctx context.Context, lat, lng float64) (*geo.Result, error)
}

// Dependencies wires a Handler. Every field except Config is optional;
// endpoints whose dependency is missing answer 503.
type Dependencies struct {
	Queries  DistrictQuerier
	Store    StoreHealth
	Cache    CacheHealth
	Sync     SyncController
	Source   SourceStatus
	Detector LocationDetector
	Config   *config.Config
	Version  string
}

// Handler serves the API endpoints.
type Handler struct {
	queries  DistrictQuerier
	store    StoreHealth
	cache    CacheHealth
	sync     SyncController
	source   SourceStatus
	detector LocationDetector
	config   *config.Config
	version  string

	startTime time.Time
}

var _ CacheHealth = (*cache.Layer)(nil)

// NewHandler builds a handler from deps.
func NewHandler(deps Dependencies) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		queries:   deps.Queries,
		store:     deps.Store,
		cache:     deps.Cache,
		sync:      deps.Sync,
		source:    deps.Source,
		detector:  deps.Detector,
		config:    deps.Config,
		version:   version,
		startTime: time.Now(),
	}
}
