// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"net/http"

	"github.com/tomtom215/mgnrega-dashboard/internal/validation"
)

// DetectLocation handles POST /api/v1/location/detect.
func (h *Handler) DetectLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.detector == nil {
		rw.ServiceUnavailable("Location detection is not available")
		return
	}

	var req validation.DetectRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	res, err := h.detector.Detect(r.Context(), *req.Lat, *req.Lng)
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(res)
}
