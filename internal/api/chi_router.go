// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router binds a Handler to its routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses the default middleware config.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Get("/", h.Root)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/stats", h.Stats)
			r.Post("/location/detect", h.DetectLocation)

			r.Route("/districts", func(r chi.Router) {
				r.Get("/", h.ListDistricts)
				r.Get("/compare/all", h.CompareAll)
				r.Get("/{code}/current", h.DistrictCurrent)
				r.Get("/{code}/history", h.DistrictHistory)
				r.Get("/{code}/financial-years", h.DistrictFinancialYears)
			})

			r.Get("/sync/status", h.SyncStatus)
			r.With(router.chiMiddleware.RateLimitSync()).Post("/sync", h.TriggerSync)
		})
	})

	return r
}
