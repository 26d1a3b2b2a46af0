// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package query is the read side of the dashboard: every district view goes
// through the cache layer first and falls back to the record store,
// repopulating the cache on the way out.
//
// Concurrent misses for the same cache key are collapsed with singleflight
// so a cold cache sends one store query per key, not one per request. The
// shared query runs detached from any single request, so a caller that
// goes away only abandons its own wait.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/mgnrega-dashboard/internal/cache"
	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
)

// History windows.
const (
	WindowLast12 = "12m"
	WindowAll    = "all"
)

var (
	// ErrNotFound is returned by GetCurrent when the district has no dated
	// record yet.
	ErrNotFound = store.ErrNotFound

	// ErrUnknownDistrict is returned for codes absent from the registry.
	ErrUnknownDistrict = errors.New("unknown district")

	// ErrInvalidWindow is returned for a history window that is not "12m",
	// "all" or a "YYYY-YYYY" financial year.
	ErrInvalidWindow = errors.New("invalid history window")
)

// sharedQueryTimeout bounds a collapsed store query, which no longer
// inherits a request deadline.
const sharedQueryTimeout = 30 * time.Second

// Service answers district queries.
type Service struct {
	store    store.Store
	cache    *cache.Layer
	registry *registry.Registry
	ttls     cache.TTLs
	group    singleflight.Group
}

// NewService wires a query service. layer may be disabled but not nil.
func NewService(st store.Store, layer *cache.Layer, reg *registry.Registry, ttls cache.TTLs) *Service {
	return &Service{store: st, cache: layer, registry: reg, ttls: ttls}
}

// ListDistricts returns the registry in display order.
func (s *Service) ListDistricts() []registry.District {
	return s.registry.All()
}

// load runs fn once per key across concurrent callers. fn gets a context
// detached from ctx; each caller stops waiting when its own ctx ends.
func (s *Service) load(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()
		return fn(shared)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) checkDistrict(code string) error {
	if _, ok := s.registry.Get(code); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDistrict, code)
	}
	return nil
}

// GetCurrent returns the district's latest dated record.
func (s *Service) GetCurrent(ctx context.Context, code string) (*models.DistrictRecord, error) {
	if err := s.checkDistrict(code); err != nil {
		return nil, err
	}
	key := cache.CurrentKey(code)

	var cached models.DistrictRecord
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err := s.load(ctx, key, func(ctx context.Context) (any, error) {
		rec, err := s.store.Latest(ctx, code)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, rec, s.ttls.Current)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DistrictRecord), nil
}

// ParseWindow validates a history window and returns its canonical form
// and store query. An empty window means WindowLast12.
func ParseWindow(window string) (string, store.HistoryQuery, error) {
	switch w := strings.TrimSpace(window); w {
	case "", WindowLast12:
		return WindowLast12, store.HistoryQuery{Limit: 12}, nil
	case WindowAll:
		return WindowAll, store.HistoryQuery{IncludeUndated: true}, nil
	default:
		start, err := fiscal.ParseFinancialYear(w)
		if err != nil {
			return "", store.HistoryQuery{}, fmt.Errorf("%w %q: %v", ErrInvalidWindow, window, err)
		}
		from, to := fiscal.Bounds(start)
		return fiscal.FormatFinancialYear(start), store.HistoryQuery{From: &from, To: &to}, nil
	}
}

// GetHistory returns the district's records for window, newest first.
// No records is an empty slice.
func (s *Service) GetHistory(ctx context.Context, code, window string) ([]models.DistrictRecord, error) {
	if err := s.checkDistrict(code); err != nil {
		return nil, err
	}
	canonical, q, err := ParseWindow(window)
	if err != nil {
		return nil, err
	}
	key := cache.HistoryKey(code, canonical)

	var cached []models.DistrictRecord
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err := s.load(ctx, key, func(ctx context.Context) (any, error) {
		recs, err := s.store.History(ctx, code, q)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []models.DistrictRecord{}
		}
		s.cache.Set(ctx, key, recs, s.ttls.History)
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.DistrictRecord), nil
}

// GetFinancialYears returns "YYYY-YYYY" labels of the district's stored
// years, newest first.
func (s *Service) GetFinancialYears(ctx context.Context, code string) ([]string, error) {
	if err := s.checkDistrict(code); err != nil {
		return nil, err
	}
	key := cache.YearsKey(code)

	var cached []string
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err := s.load(ctx, key, func(ctx context.Context) (any, error) {
		years, err := s.store.DistinctYears(ctx, code)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(years))
		for i, y := range years {
			labels[i] = fiscal.FormatFinancialYear(y)
		}
		s.cache.Set(ctx, key, labels, s.ttls.Default)
		return labels, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// CompareAll returns one entry per registry district in registry order.
// Districts without a dated record carry nil Data.
func (s *Service) CompareAll(ctx context.Context) ([]models.CompareEntry, error) {
	var cached []models.CompareEntry
	if s.cache.Get(ctx, cache.CompareAllKey, &cached) {
		return cached, nil
	}

	v, err := s.load(ctx, cache.CompareAllKey, func(ctx context.Context) (any, error) {
		latest, err := s.store.LatestPerDistrict(ctx)
		if err != nil {
			return nil, err
		}

		districts := s.registry.All()
		entries := make([]models.CompareEntry, 0, len(districts))
		for _, d := range districts {
			entry := models.CompareEntry{DistrictCode: d.Code, DistrictName: d.Name}
			if rec, ok := latest[d.Code]; ok {
				data := rec.Data
				entry.Month = rec.Month
				entry.Year = rec.Year
				entry.RecordDate = rec.RecordDate
				entry.Data = &data
			}
			entries = append(entries, entry)
		}
		s.cache.Set(ctx, cache.CompareAllKey, entries, s.ttls.Compare)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CompareEntry), nil
}

// StatsSummary aggregates StatsReport.Districts.
type StatsSummary struct {
	TotalRecords              int64 `json:"totalRecords"`
	DistinctDistricts         int   `json:"distinctDistricts"`
	AverageRecordsPerDistrict int64 `json:"averageRecordsPerDistrict"`
}

// StatsReport is the storage summary served by /api/v1/stats.
type StatsReport struct {
	Districts []models.DistrictStats `json:"districts"`
	Summary   StatsSummary           `json:"summary"`
}

// Stats reads per-district counts straight from the store.
func (s *Service) Stats(ctx context.Context) (*StatsReport, error) {
	rows, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatsReport{Districts: rows}
	for _, r := range rows {
		report.Summary.TotalRecords += r.RecordCount
	}
	report.Summary.DistinctDistricts = len(rows)
	if len(rows) > 0 {
		report.Summary.AverageRecordsPerDistrict = int64(math.Round(float64(report.Summary.TotalRecords) / float64(len(rows))))
	}
	return report, nil
}
