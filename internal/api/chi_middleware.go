// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
)

// ChiMiddlewareConfig configures the middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultChiMiddlewareConfig allows no cross-origin callers until origins
// are configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		CORSMaxAge:         86400,
		RateLimitRequests:  100,
		RateLimitWindow:    15 * time.Minute,
	}
}

// ChiMiddlewareConfigFrom builds middleware settings from security config.
func ChiMiddlewareConfigFrom(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	c := DefaultChiMiddlewareConfig()
	c.CORSAllowedOrigins = sec.CORSOrigins
	c.RateLimitRequests = sec.RateLimitReqs
	c.RateLimitWindow = sec.RateLimitWindow
	c.RateLimitDisabled = sec.RateLimitDisabled
	return c
}

// ChiMiddleware builds chi-compatible middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware uses the defaults when config is nil.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	return &ChiMiddleware{
		config: config,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: config.CORSAllowedOrigins,
			AllowedMethods: config.CORSAllowedMethods,
			AllowedHeaders: config.CORSAllowedHeaders,
			MaxAge:         config.CORSMaxAge,
		}),
	}
}

// CORS returns the CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

func passThrough(next http.Handler) http.Handler { return next }

// RateLimit limits requests per client IP over the configured window.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitSync is the stricter limit for sync triggers.
func (m *ChiMiddleware) RateLimitSync() func(http.Handler) http.Handler {
	return m.rateLimit(5, time.Minute)
}

// RateLimitHealth is permissive enough for monitoring probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.rateLimit(1000, time.Minute)
}

func (m *ChiMiddleware) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 {
		return passThrough
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).TooManyRequests("Too many requests, please try again later")
		}),
	)
}

// RequestIDWithLogging puts the request ID and a fresh correlation ID in the
// logging context, then defers to chi's RequestID.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(chimiddleware.RequestIDHeader)
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set(chimiddleware.RequestIDHeader, requestID)
			}
			w.Header().Set(chimiddleware.RequestIDHeader, requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithNewCorrelationID(ctx)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APISecurityHeaders sets the baseline headers for JSON endpoints.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrometheusMetrics records request counts and latency. The endpoint label
// is the chi route pattern, so path parameters do not explode cardinality.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// SlowRequestThreshold promotes access log lines to warn.
const SlowRequestThreshold = time.Second

// AccessLog logs one line per request at debug level, and at warn for 5xx
// responses and requests slower than SlowRequestThreshold.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		log := logging.Ctx(r.Context())
		ev := log.Debug()
		msg := "HTTP request"
		switch {
		case ww.Status() >= http.StatusInternalServerError:
			ev = log.Warn()
		case elapsed > SlowRequestThreshold:
			ev = log.Warn()
			msg = "Slow request detected"
		}
		ev.Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("status", strconv.Itoa(ww.Status())).
			Dur("duration", elapsed).
			Msg(msg)
	})
}
