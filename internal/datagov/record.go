// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package datagov

import (
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/mgnrega-dashboard/internal/models"
)

// RawRecord is one untyped record as decoded from the API.
type RawRecord map[string]any

// Record is a source record after boundary conversion.
type Record struct {
	DistrictName string
	Month        string
	FinYear      string
	Stats        models.Statistics

	// Raw is the untransformed source record, kept for audit.
	Raw map[string]any
}

// Field names in order of preference. The first list entry is the name the
// dashboard was built against; later entries are names used by other
// revisions of the resource.
var (
	fieldDistrict      = []string{"district_name", "district"}
	fieldMonth         = []string{"month"}
	fieldFinYear       = []string{"fin_year", "financial_year"}
	fieldHouseholds    = []string{"households_provided_employment", "total_households_worked"}
	fieldPersonDays    = []string{"persondays_generated", "persondays_of_central_liability_so_far"}
	fieldWorks         = []string{"works_completed", "number_of_completed_works"}
	fieldExpenditure   = []string{"total_exp_rs_in_lakhs", "total_exp"}
	fieldActiveWorkers = []string{"active_workers", "total_no_of_active_workers"}
	fieldWomenDays     = []string{"women_persondays"}
)

// ParseRecord converts a raw record. It never fails; missing text fields
// are returned empty for the caller to judge.
func ParseRecord(raw RawRecord) Record {
	copied := make(map[string]any, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return Record{
		DistrictName: raw.Text(fieldDistrict...),
		Month:        raw.Text(fieldMonth...),
		FinYear:      raw.Text(fieldFinYear...),
		Stats:        TransformRawRecord(raw),
		Raw:          copied,
	}
}

// TransformRawRecord maps source statistics to the stored shape. Each field
// falls back to 0 when absent or not numeric. Expenditure arrives in lakhs
// and is stored in crores.
func TransformRawRecord(raw RawRecord) models.Statistics {
	return models.Statistics{
		HouseholdsEmployed:  roundCount(raw.Number(fieldHouseholds...)),
		PersonDaysGenerated: roundCount(raw.Number(fieldPersonDays...)),
		WorksCompleted:      roundCount(raw.Number(fieldWorks...)),
		Expenditure:         raw.Number(fieldExpenditure...) / 100,
		ActiveWorkers:       roundCount(raw.Number(fieldActiveWorkers...)),
		WomenEmployment:     roundCount(raw.Number(fieldWomenDays...)),
	}
}

func roundCount(v float64) int64 {
	return int64(math.Round(v))
}

// lookup finds the first of names present in r, comparing keys without
// case, underscores, spaces or hyphens.
func (r RawRecord) lookup(names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok && v != nil {
			return v, true
		}
	}
	for _, name := range names {
		want := foldKey(name)
		for k, v := range r {
			if v != nil && foldKey(k) == want {
				return v, true
			}
		}
	}
	return nil, false
}

// Text returns the first present field among names as trimmed text.
func (r RawRecord) Text(names ...string) string {
	v, ok := r.lookup(names...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case interface{ String() string }:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

// Number returns the first present field among names as a float, or 0.
func (r RawRecord) Number(names ...string) float64 {
	v, ok := r.lookup(names...)
	if !ok {
		return 0
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		f = parseNumber(t)
	case interface{ Float64() (float64, error) }:
		n, err := t.Float64()
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseNumber accepts "1,234.5", " 42 " and returns 0 for "NA", "-" or "".
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func foldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, c := range strings.ToLower(k) {
		switch c {
		case '_', ' ', '-':
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
