// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"time"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
)

// CompareAllKey caches the cross-district comparison snapshot.
const CompareAllKey = "districts:compare:all"

// CurrentKey caches a district's latest record.
func CurrentKey(districtCode string) string {
	return "district:" + districtCode + ":current"
}

// HistoryKey caches one history window ("12m", "all" or "YYYY-YYYY").
func HistoryKey(districtCode, window string) string {
	return "district:" + districtCode + ":history:" + window
}

// YearsKey caches a district's financial-year list.
func YearsKey(districtCode string) string {
	return "district:" + districtCode + ":years"
}

// TTLs holds the expiry for each query shape.
type TTLs struct {
	Default time.Duration
	Current time.Duration
	History time.Duration
	Compare time.Duration
}

// TTLsFromConfig reads TTLs from the cache configuration.
func TTLsFromConfig(cfg *config.CacheConfig) TTLs {
	return TTLs{
		Default: cfg.DefaultTTL,
		Current: cfg.CurrentTTL,
		History: cfg.HistoryTTL,
		Compare: cfg.CompareTTL,
	}
}
