// Package export builds monthly budget reports from engine state and
// writes them through pluggable outbound adapters.
package export

import "context"

// Ports for outbound adapters.
type (
	// ReportWriter persists a monthly report somewhere durable and
	// returns an adapter-specific reference to the written output
	// (a file path, a sheet range, ...).
	ReportWriter interface {
		WriteMonthlyReport(ctx context.Context, r *MonthlyReport) (ref string, err error)
	}
)
