// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
)

// SyncStartedResponse is returned when a sync is accepted.
type SyncStartedResponse struct {
	RunID   string `json:"runId"`
	Message string `json:"message"`
}

// authorizeSync checks the Bearer token when one is configured.
func (h *Handler) authorizeSync(r *http.Request) bool {
	if h.config == nil || h.config.Security.SyncToken == "" {
		return true
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.config.Security.SyncToken)) == 1
}

// TriggerSync handles POST /api/v1/sync.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.sync == nil {
		rw.ServiceUnavailable("Sync is not available")
		return
	}
	if !h.authorizeSync(r) {
		logging.Ctx(r.Context()).Warn().Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).Msg("Rejected unauthorized sync trigger")
		rw.Unauthorized("A valid sync token is required")
		return
	}
	if h.source != nil && !h.source.Configured() {
		rw.ServiceUnavailable("Data source is not configured")
		return
	}

	runID, err := h.sync.StartSync(r.Context())
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("run_id", runID).Msg("Sync triggered via API")
	rw.Accepted(SyncStartedResponse{RunID: runID, Message: "Sync started"})
}

// SyncStatus handles GET /api/v1/sync/status.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.sync == nil {
		rw.ServiceUnavailable("Sync is not available")
		return
	}
	rw.Success(h.sync.Status())
}
