package export

import (
	"fmt"
	"time"

	"pockets/internal/core"
	"pockets/internal/engine"
)

// MonthlyReport is the flattened view of one budget month, ready for
// an outbound writer. Amounts stay as float64; formatting to two
// decimals happens at render time in the writers.
type MonthlyReport struct {
	Profile      string
	Month        core.MonthKey
	Totals       core.Totals
	Balances     []core.PocketBalance
	Transactions []core.Transaction
	GeneratedAt  time.Time
}

// BuildMonthlyReport assembles the report for one month from a loaded
// engine. The month does not need any budget data; an empty month
// yields a report with zero totals.
func BuildMonthlyReport(eng *engine.Engine, profile string, month core.MonthKey) (*MonthlyReport, error) {
	if err := month.Validate(); err != nil {
		return nil, fmt.Errorf("report month: %w", err)
	}

	return &MonthlyReport{
		Profile:      profile,
		Month:        month,
		Totals:       eng.ComputeTotals(month),
		Balances:     eng.ComputePocketBalancesUpTo(month),
		Transactions: eng.TransactionsByMonth()[month],
		GeneratedAt:  time.Now(),
	}, nil
}

// BuildAllReports assembles one report per month that carries any
// budget or transaction data, in chronological order.
func BuildAllReports(eng *engine.Engine, profile string) ([]*MonthlyReport, error) {
	months := eng.MonthsWithData()
	out := make([]*MonthlyReport, 0, len(months))
	for _, month := range months {
		r, err := BuildMonthlyReport(eng, profile, month)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
