// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"net/http"

	"github.com/tomtom215/mgnrega-dashboard/internal/validation"
)

// DistrictHistoryResponse wraps history with its resolved window.
type DistrictHistoryResponse struct {
	DistrictCode string `json:"districtCode"`
	Window       string `json:"window"`
	Records      any    `json:"records"`
}

// FinancialYearsResponse lists a district's stored financial years.
type FinancialYearsResponse struct {
	DistrictCode string   `json:"districtCode"`
	Years        []string `json:"years"`
}

func (h *Handler) queriesAvailable(rw *ResponseWriter) bool {
	if h.queries == nil {
		rw.ServiceUnavailable("District data is not available")
		return false
	}
	return true
}

// ListDistricts handles GET /api/v1/districts.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}
	rw.Success(h.queries.ListDistricts())
}

// DistrictCurrent handles GET /api/v1/districts/{code}/current.
func (h *Handler) DistrictCurrent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}
	rec, err := h.queries.GetCurrent(r.Context(), districtCodeParam(r))
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(rec)
}

// DistrictHistory handles GET /api/v1/districts/{code}/history.
func (h *Handler) DistrictHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}

	req := validation.HistoryRequest{Window: r.URL.Query().Get("window")}
	if !validateRequest(rw, &req) {
		return
	}
	window := req.Window
	if window == "" {
		window = "12m"
	}

	code := districtCodeParam(r)
	records, err := h.queries.GetHistory(r.Context(), code, window)
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(DistrictHistoryResponse{DistrictCode: code, Window: window, Records: records})
}

// DistrictFinancialYears handles GET /api/v1/districts/{code}/financial-years.
func (h *Handler) DistrictFinancialYears(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}
	code := districtCodeParam(r)
	years, err := h.queries.GetFinancialYears(r.Context(), code)
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(FinancialYearsResponse{DistrictCode: code, Years: years})
}

// CompareAll handles GET /api/v1/districts/compare/all.
func (h *Handler) CompareAll(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}
	entries, err := h.queries.CompareAll(r.Context())
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(entries)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.queriesAvailable(rw) {
		return
	}
	report, err := h.queries.Stats(r.Context())
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(report)
}
