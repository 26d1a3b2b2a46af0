// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

/*
Package validation validates API request structs with go-playground/validator.

A single validator instance is shared process-wide; it caches struct
metadata, so building one per request would throw that work away.

Field names in messages come from the json tag, so a client posting
{"lat": 95} sees "lat must be a valid latitude (-90 to 90)".

Custom tags:

	fyear   a "YYYY-YYYY" financial-year label with consecutive years

Usage:

	var req validation.DetectRequest
	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    // respond 400 with apiErr.Code and apiErr.Message
	}
*/
package validation
