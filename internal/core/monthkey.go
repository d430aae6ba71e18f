// Package core provides the budget domain model: categories, monthly
// override ledgers, transactions, and the month-key calendar arithmetic
// everything else is built on.
//
// This file contains the MonthKey type. A MonthKey is the canonical
// "YYYY-MM" identifier for a calendar month. The month component is
// always zero-padded, so lexicographic order on MonthKey strings equals
// chronological order; every comparison in the engine relies on that.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthKey identifies a calendar month as a "YYYY-MM" string.
type MonthKey string

// ParseMonthKey validates and normalizes a month key string.
//
// Examples:
//
//	ParseMonthKey("2025-01") -> "2025-01", nil
//	ParseMonthKey("2025-1")  -> "2025-01", nil (re-padded)
//	ParseMonthKey("2025-13") -> "", error
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", Validationf("invalid month key %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 || year < 1 {
		return "", Validationf("invalid year in month key %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", Validationf("invalid month in month key %q", s)
	}
	if month < 1 || month > 12 {
		return "", Validationf("invalid month %d in month key %q: must be 1-12", month, s)
	}
	return NewMonthKey(year, month), nil
}

// NewMonthKey builds a zero-padded month key from a year and a 1-12 month.
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyOf returns the month key of the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), int(t.Month()))
}

// Validate reports whether the key is a well-formed "YYYY-MM" string.
func (m MonthKey) Validate() error {
	parsed, err := ParseMonthKey(string(m))
	if err != nil {
		return err
	}
	if parsed != m {
		return Validationf("month key %q is not normalized: want %q", m, parsed)
	}
	return nil
}

// Year returns the year component.
func (m MonthKey) Year() int {
	y, _ := strconv.Atoi(string(m)[:4])
	return y
}

// Month returns the 1-12 month component.
func (m MonthKey) Month() int {
	mo, _ := strconv.Atoi(string(m)[5:])
	return mo
}

// Time returns midnight UTC on the first day of the month.
func (m MonthKey) Time() time.Time {
	return time.Date(m.Year(), time.Month(m.Month()), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the key n months after m (n may be negative).
func (m MonthKey) AddMonths(n int) MonthKey {
	total := m.Year()*12 + (m.Month() - 1) + n
	return NewMonthKey(total/12, total%12+1)
}

// Next returns the month immediately after m.
func (m MonthKey) Next() MonthKey {
	return m.AddMonths(1)
}

// Before reports whether m is chronologically before other.
// String comparison is safe because keys are zero-padded.
func (m MonthKey) Before(other MonthKey) bool {
	return m < other
}

// After reports whether m is chronologically after other.
func (m MonthKey) After(other MonthKey) bool {
	return m > other
}
