// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package database

import (
	"errors"
	"io"
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// observe records the duration and outcome of a store operation. Call it
// deferred with a pointer to the named error result. A missing record is
// not a store error.
func observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(backendName, operation, time.Since(start), err)
}
