// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(nil)
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want none", m.config.CORSAllowedOrigins)
	}
	if m.config.CORSMaxAge != 86400 {
		t.Errorf("CORSMaxAge = %d, want 86400", m.config.CORSMaxAge)
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	c := ChiMiddlewareConfigFrom(&config.SecurityConfig{
		CORSOrigins:       []string{"https://dashboard.example"},
		RateLimitReqs:     7,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
	})
	if len(c.CORSAllowedOrigins) != 1 || c.RateLimitRequests != 7 || c.RateLimitWindow != time.Minute || !c.RateLimitDisabled {
		t.Errorf("config = %+v", c)
	}
}

func TestChiMiddleware_CORS(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://dashboard.example"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         600,
	})
	handler := m.CORS()(okHandler())

	tests := []struct {
		origin string
		want   string
	}{
		{"https://dashboard.example", "https://dashboard.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/districts", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestChiMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	handler := m.RateLimit()(okHandler())

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes[i] = w.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute, RateLimitDisabled: true})
	handler := m.RateLimit()(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d with rate limiting disabled", i, w.Code)
		}
	}
}

func TestRequestIDWithLogging(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestIDWithLogging()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
		if chimiddleware.GetReqID(r.Context()) == "" {
			t.Error("chi request ID missing")
		}
		if logging.CorrelationIDFromContext(r.Context()) == "" {
			t.Error("correlation ID missing")
		}
	}))

	t.Run("propagates incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(chimiddleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if seen != "abc-123" {
			t.Errorf("request ID = %q, want abc-123", seen)
		}
		if got := w.Header().Get(chimiddleware.RequestIDHeader); got != "abc-123" {
			t.Errorf("response header = %q", got)
		}
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" {
			t.Error("no request ID generated")
		}
	})
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := APISecurityHeaders()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("headers = %v", w.Header())
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind TLS proxy")
	}
}
