// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Health statuses.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthError    = "error"
)

// Component statuses.
const (
	componentConnected    = "connected"
	componentDisconnected = "disconnected"
	componentDisabled     = "disabled"
)

// healthCheckTimeout bounds all health probes together.
const healthCheckTimeout = 3 * time.Second

// HealthStatus is the /api/v1/health body.
type HealthStatus struct {
	Status           string     `json:"status"`
	Version          string     `json:"version"`
	Store            string     `json:"store"`
	Cache            string     `json:"cache"`
	CacheBackend     string     `json:"cacheBackend"`
	TotalRecords     int64      `json:"totalRecords"`
	SourceConfigured bool       `json:"sourceConfigured"`
	LastSync         *time.Time `json:"lastSync"`
	Warnings         []string   `json:"warnings,omitempty"`
	UptimeSeconds    float64    `json:"uptimeSeconds"`
}

// Health handles GET /api/v1/health. It answers 200 only when every
// component is healthy and the store holds data.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := h.checkHealth(r.Context())

	code := http.StatusOK
	if status.Status != HealthOK {
		code = http.StatusServiceUnavailable
	}
	rw.WithStatus(code, status.Status == HealthOK, status)
}

func (h *Handler) checkHealth(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status := HealthStatus{
		Version:       h.version,
		Store:         componentDisconnected,
		Cache:         componentDisabled,
		CacheBackend:  "none",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	var (
		storeErr, countErr, cacheErr error
		count                        int64
	)

	// Probes report through the captured errors; the group never fails.
	var g errgroup.Group
	if h.store != nil {
		g.Go(func() error {
			if storeErr = h.store.Ping(ctx); storeErr == nil {
				count, countErr = h.store.Count(ctx)
			}
			return nil
		})
	}
	if h.cache != nil && h.cache.Enabled() {
		status.CacheBackend = h.cache.Name()
		g.Go(func() error {
			cacheErr = h.cache.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if h.source != nil {
		status.SourceConfigured = h.source.Configured()
	}
	if h.sync != nil {
		status.LastSync = h.sync.Status().LastSync
	}

	if h.store == nil || storeErr != nil || countErr != nil {
		status.Status = HealthError
		status.Warnings = append(status.Warnings, "record store is unreachable")
		return status
	}
	status.Store = componentConnected
	status.TotalRecords = count
	status.Status = HealthOK

	if count == 0 {
		status.Status = HealthDegraded
		status.Warnings = append(status.Warnings, "no records stored yet; run a sync to populate the database")
	}
	if h.cache != nil && h.cache.Enabled() {
		if cacheErr != nil {
			status.Cache = componentDisconnected
			status.Status = HealthDegraded
			status.Warnings = append(status.Warnings, "cache is unreachable; serving from the store")
		} else {
			status.Cache = componentConnected
		}
	}
	if !status.SourceConfigured {
		status.Warnings = append(status.Warnings, "data source credentials are not configured")
	}
	return status
}

// RootInfo is the GET / body.
type RootInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	State     string `json:"state"`
	Endpoints string `json:"endpoints"`
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(RootInfo{
		Name:      "MGNREGA Dashboard API",
		Version:   h.version,
		State:     "Chhattisgarh",
		Endpoints: "/api/v1",
	})
}
