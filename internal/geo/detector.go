// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package geo

import (
	"context"
	"errors"
	"math"

	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
)

// ErrNoDistricts is returned when the registry is empty.
var ErrNoDistricts = errors.New("no districts to match against")

// Result is the location detection response.
type Result struct {
	DetectedDistrict registry.District    `json:"detectedDistrict"`
	Distance         float64              `json:"distance"` // km, one decimal
	Confidence       Confidence           `json:"confidence"`
	InState          bool                 `json:"inState"`
	Coordinates      registry.Coordinates `json:"coordinates"`
	GeocodedLocation *Location            `json:"geocodedLocation,omitempty"`
}

// Detector combines nearest-district matching with optional reverse
// geocoding.
type Detector struct {
	registry *registry.Registry
	geocoder *Geocoder
}

// NewDetector builds a detector. geocoder may be nil.
func NewDetector(reg *registry.Registry, geocoder *Geocoder) *Detector {
	return &Detector{registry: reg, geocoder: geocoder}
}

// Detect finds the nearest district to (lat, lng). Geocoding failures are
// logged and leave GeocodedLocation nil.
func (d *Detector) Detect(ctx context.Context, lat, lng float64) (*Result, error) {
	nearest, ok := Nearest(d.registry, lat, lng)
	if !ok {
		return nil, ErrNoDistricts
	}
	metrics.LocationDetections.WithLabelValues(string(nearest.Confidence)).Inc()

	res := &Result{
		DetectedDistrict: nearest.District,
		Distance:         math.Round(nearest.DistanceKm*10) / 10,
		Confidence:       nearest.Confidence,
		InState:          InStateBounds(lat, lng),
		Coordinates:      registry.Coordinates{Lat: lat, Lng: lng},
	}

	if d.geocoder != nil {
		loc, err := d.geocoder.Reverse(ctx, lat, lng)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("Reverse geocoding failed")
		} else {
			res.GeocodedLocation = loc
		}
	}
	return res, nil
}
