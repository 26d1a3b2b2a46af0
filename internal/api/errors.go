// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/mgnrega-dashboard/internal/geo"
	"github.com/tomtom215/mgnrega-dashboard/internal/query"
	syncpkg "github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

// statusClientClosedRequest is logged when the client goes away mid-request.
const statusClientClosedRequest = 499

// respondServiceError maps service errors onto responses.
func respondServiceError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrUnknownDistrict):
		rw.NotFound("Unknown district")
	case errors.Is(err, query.ErrNotFound):
		rw.NotFound("No data available for this district yet")
	case errors.Is(err, query.ErrInvalidWindow):
		rw.ValidationError(err.Error(), map[string]any{"field": "window"})
	case errors.Is(err, syncpkg.ErrSyncInProgress):
		rw.Conflict("A sync is already running")
	case errors.Is(err, syncpkg.ErrSourceNotConfigured):
		rw.ServiceUnavailable("Data source is not configured")
	case errors.Is(err, geo.ErrNoDistricts):
		rw.ServiceUnavailable("No districts configured")
	case errors.Is(err, context.Canceled):
		rw.Error(statusClientClosedRequest, ErrCodeBadRequest, "Request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeServiceUnavailable, "Request timed out")
	default:
		rw.DatabaseError(err)
	}
}
