// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package geo maps a coordinate to the nearest registry district.
//
// Nearest is a linear great-circle scan over the registry; with a handful of
// districts nothing smarter pays off. An optional Nominatim reverse geocoder
// adds a human-readable place description alongside the detection.
package geo

import (
	"math"

	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Confidence bands a detection by distance to the district centre.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidence thresholds in kilometres.
const (
	highConfidenceKm   = 50.0
	mediumConfidenceKm = 100.0
)

// State bounding box, degrees.
const (
	minLat = 17.5
	maxLat = 24.0
	minLng = 80.0
	maxLng = 84.5
)

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b registry.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ConfidenceFor bands a distance.
func ConfidenceFor(km float64) Confidence {
	switch {
	case km < highConfidenceKm:
		return ConfidenceHigh
	case km < mediumConfidenceKm:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// InStateBounds reports whether the point falls in the state's bounding box.
func InStateBounds(lat, lng float64) bool {
	return lat >= minLat && lat <= maxLat && lng >= minLng && lng <= maxLng
}

// Detection is the nearest district to a point.
type Detection struct {
	District   registry.District
	DistanceKm float64
	Confidence Confidence
}

// Nearest scans reg for the district centre closest to (lat, lng). Ties go
// to the earlier district in registry order. It returns false only for an
// empty registry.
func Nearest(reg *registry.Registry, lat, lng float64) (Detection, bool) {
	point := registry.Coordinates{Lat: lat, Lng: lng}

	var best Detection
	found := false
	for _, d := range reg.All() {
		km := Distance(point, d.Coordinates)
		if !found || km < best.DistanceKm {
			best = Detection{District: d, DistanceKm: km}
			found = true
		}
	}
	if !found {
		return Detection{}, false
	}
	best.Confidence = ConfidenceFor(best.DistanceKm)
	return best, true
}
