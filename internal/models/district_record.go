// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package models

import "time"

// StateName is the single state this deployment tracks.
const StateName = "Chhattisgarh"

// DistrictRecord is one month of scheme statistics for one district.
// (DistrictCode, Month, Year) is the natural key.
type DistrictRecord struct {
	DistrictCode string `json:"districtCode" bson:"districtCode"`
	DistrictName string `json:"districtName" bson:"districtName"`
	State        string `json:"state" bson:"state"`
	Month        string `json:"month" bson:"month"` // "Jan".."Dec"
	Year         int    `json:"year" bson:"year"`   // financial year start year

	// RecordDate is the first day of the calendar month the record covers.
	// Nil for rows written before the field existed and not yet backfilled.
	RecordDate *time.Time `json:"recordDate,omitempty" bson:"recordDate,omitempty"`

	Data        Statistics     `json:"data" bson:"data"`
	RawData     map[string]any `json:"rawData,omitempty" bson:"rawData,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated" bson:"lastUpdated"`
}

// Statistics is the fixed statistics block of a DistrictRecord.
type Statistics struct {
	HouseholdsEmployed  int64   `json:"householdsEmployed" bson:"householdsEmployed"`
	PersonDaysGenerated int64   `json:"personDaysGenerated" bson:"personDaysGenerated"`
	WorksCompleted      int64   `json:"worksCompleted" bson:"worksCompleted"`
	Expenditure         float64 `json:"expenditure" bson:"expenditure"` // crores (source lakhs / 100)
	ActiveWorkers       int64   `json:"activeWorkers" bson:"activeWorkers"`
	WomenEmployment     int64   `json:"womenEmployment" bson:"womenEmployment"`
}

// CompareEntry is one row of the cross-district comparison snapshot.
// Data is nil when the district has no dated record.
type CompareEntry struct {
	DistrictCode string            `json:"districtCode"`
	DistrictName map[string]string `json:"districtName"`
	Month        string            `json:"month,omitempty"`
	Year         int               `json:"year,omitempty"`
	RecordDate   *time.Time        `json:"recordDate,omitempty"`
	Data         *Statistics       `json:"data"`
}

// DistrictStats is the per-district storage summary.
type DistrictStats struct {
	DistrictCode string    `json:"districtCode" bson:"_id"`
	RecordCount  int64     `json:"recordCount" bson:"recordCount"`
	LatestUpdate time.Time `json:"latestUpdate" bson:"latestUpdate"`
}
