// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package datagov reads district employment records from the data.gov.in
// open-data API.
//
// The API serves one resource as offset/limit pages filtered server-side by
// state and financial year. Field names in the payload are not stable in
// case or separator, so raw records are read through RawRecord accessors
// and converted to a typed Record before leaving this package. The untyped
// map survives only as Record.Raw, an audit copy.
//
// Each page request is paced with a token bucket and retried with
// exponential backoff on transport errors, HTTP 429 and 5xx. A page that
// still fails aborts the financial year it belongs to; callers decide what
// that means for the rest of the run. CircuitBreakerClient keeps one breaker
// per financial year and stops fetching a year for a while after it fails
// several times in a row.
package datagov
