// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package fiscal converts the open-data source's month and financial-year
// tokens into calendar dates.
//
// A financial year runs April 1 of its start year through March 31 of the
// following year and is labelled "2024-2025". Records for January through
// March therefore fall in the calendar year after the label's start year.
package fiscal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidFinancialYear is returned for financial-year tokens that do not
// start with a year.
var ErrInvalidFinancialYear = errors.New("invalid financial year")

// InvalidMonthError reports a month token that does not resolve to one of
// the twelve three-letter month keys.
type InvalidMonthError struct {
	Month string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %q", e.Month)
}

// Months lists the canonical month keys, January first.
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FirstMonth is the month a financial year starts in.
const FirstMonth = time.April

// NormalizeMonth maps "June", "april" or "SEP" to "Jun", "Apr", "Sep".
func NormalizeMonth(token string) (string, error) {
	key, _, err := monthIndex(token)
	return key, err
}

// monthIndex returns the canonical key and 0-based index (Jan=0).
func monthIndex(token string) (string, int, error) {
	trimmed := strings.TrimSpace(token)
	if utf8.RuneCountInString(trimmed) < 3 {
		return "", 0, &InvalidMonthError{Month: token}
	}
	runes := []rune(trimmed)[:3]
	key := string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
	for i, m := range Months {
		if m == key {
			return key, i, nil
		}
	}
	return "", 0, &InvalidMonthError{Month: token}
}

// ParseFinancialYearStart reads the integer before the hyphen of a
// financial-year token. It is lenient about the part after the hyphen, as
// the source is; use ParseFinancialYear for user input.
func ParseFinancialYearStart(finYear string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(finYear), "-")
	start, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, finYear)
	}
	return start, nil
}

// ParseFinancialYear strictly parses "YYYY-YYYY" where the second year
// follows the first.
func ParseFinancialYear(label string) (int, error) {
	head, tail, ok := strings.Cut(label, "-")
	if !ok || len(head) != 4 || len(tail) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	start, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	end, err := strconv.Atoi(tail)
	if err != nil || end != start+1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	return start, nil
}

// FormatFinancialYear renders the label for a start year: 2024 -> "2024-2025".
func FormatFinancialYear(startYear int) string {
	return fmt.Sprintf("%d-%d", startYear, startYear+1)
}

// RecordDate resolves a month token inside a financial-year token to the
// first day of that calendar month, in UTC.
//
//	RecordDate("Feb", "2024-2025")  // 2025-02-01
//	RecordDate("June", "2023-2024") // 2023-06-01
func RecordDate(month, finYear string) (time.Time, error) {
	if _, _, err := monthIndex(month); err != nil {
		return time.Time{}, err
	}
	start, err := ParseFinancialYearStart(finYear)
	if err != nil {
		return time.Time{}, err
	}
	return RecordDateForStartYear(month, start)
}

// RecordDateForStartYear is RecordDate for an already-parsed start year, as
// stored in the record's year field.
func RecordDateForStartYear(month string, startYear int) (time.Time, error) {
	_, idx, err := monthIndex(month)
	if err != nil {
		return time.Time{}, err
	}
	year := startYear
	if idx < int(FirstMonth)-1 {
		year++
	}
	return time.Date(year, time.Month(idx+1), 1, 0, 0, 0, 0, time.UTC), nil
}

// CurrentFinancialYearStart returns the start year of the financial year
// containing now, evaluated in now's location.
func CurrentFinancialYearStart(now time.Time) int {
	if now.Month() >= FirstMonth {
		return now.Year()
	}
	return now.Year() - 1
}

// FinancialYearRange returns labels for every financial year from startYear
// through endYear inclusive. It returns nil when startYear > endYear.
func FinancialYearRange(startYear, endYear int) []string {
	if startYear > endYear {
		return nil
	}
	out := make([]string, 0, endYear-startYear+1)
	for y := startYear; y <= endYear; y++ {
		out = append(out, FormatFinancialYear(y))
	}
	return out
}

// Bounds returns the first and last day of a financial year in UTC.
func Bounds(startYear int) (from, to time.Time) {
	from = time.Date(startYear, FirstMonth, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(startYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}
