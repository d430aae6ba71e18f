package core

import (
	"testing"
	"time"
)

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    MonthKey
		wantErr bool
	}{
		{"valid", "2025-01", "2025-01", false},
		{"valid december", "2099-12", "2099-12", false},
		{"unpadded month is normalized", "2025-1", "2025-01", false},
		{"surrounding whitespace", " 2025-07 ", "2025-07", false},
		{"month zero", "2025-00", "", true},
		{"month thirteen", "2025-13", "", true},
		{"missing month", "2025", "", true},
		{"garbage", "rent", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMonthKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthKeyOrderingMatchesChronology(t *testing.T) {
	// The engine compares keys as strings everywhere; zero padding must
	// keep string order equal to date order across year boundaries.
	ordered := []MonthKey{"2024-09", "2024-10", "2024-11", "2024-12", "2025-01", "2025-02"}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i-1].Before(ordered[i]) {
			t.Errorf("%q should sort before %q", ordered[i-1], ordered[i])
		}
		if !ordered[i].After(ordered[i-1]) {
			t.Errorf("%q should sort after %q", ordered[i], ordered[i-1])
		}
	}
}

func TestMonthKeyAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   MonthKey
		n    int
		want MonthKey
	}{
		{"next within year", "2025-01", 1, "2025-02"},
		{"year rollover", "2024-12", 1, "2025-01"},
		{"six ahead crossing year", "2024-10", 6, "2025-04"},
		{"backwards", "2025-01", -1, "2024-12"},
		{"zero", "2025-06", 0, "2025-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AddMonths(tt.n); got != tt.want {
				t.Errorf("%q.AddMonths(%d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestMonthKeyOf(t *testing.T) {
	got := MonthKeyOf(time.Date(2025, time.March, 17, 13, 45, 0, 0, time.UTC))
	if got != "2025-03" {
		t.Errorf("MonthKeyOf() = %q, want %q", got, "2025-03")
	}
}

func TestMonthKeyComponents(t *testing.T) {
	m := MonthKey("2025-04")
	if m.Year() != 2025 {
		t.Errorf("Year() = %d, want 2025", m.Year())
	}
	if m.Month() != 4 {
		t.Errorf("Month() = %d, want 4", m.Month())
	}
	if got := m.Time(); got != time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Time() = %v", got)
	}
}
