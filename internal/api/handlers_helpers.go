// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 16 * 1024

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// districtCodeParam reads the {code} path parameter, lower-cased.
func districtCodeParam(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "code")))
}

// decodeJSONBody decodes a bounded JSON body into dst. Unknown fields are
// ignored; trailing data is not.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return errors.New("request body is not valid JSON")
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// validateRequest validates v and writes the 400 itself on failure.
func validateRequest(rw *ResponseWriter, v any) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
	return false
}
