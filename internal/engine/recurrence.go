package engine

import "pockets/internal/core"

// maxExpansionMonths bounds the expansion of an unbounded recurrence so
// a missing duration cannot produce an endless walk.
const maxExpansionMonths = 120

// ExpandTransactionMonths returns the months a recurring transaction
// covers: one step per frequency interval, starting at its effective
// month, for its duration in months. A non-recurring transaction covers
// exactly its own month.
//
// This is a read-side helper for consumers that need "all months this
// recurs in". The calculators deliberately do not call it: totals,
// balances, and projections read only what is literally stored per
// month, and materializing recurrences into future buckets is a
// separate, explicit step the user takes.
func ExpandTransactionMonths(tx core.Transaction) []core.MonthKey {
	r := tx.Recurrence
	if r == nil || !r.IsRecurring {
		return []core.MonthKey{tx.Month}
	}

	start := tx.Month
	if r.EffectiveFrom != nil {
		start = *r.EffectiveFrom
	}

	step := 1
	if r.Frequency != nil {
		step = r.Frequency.MonthsPerStep()
	}

	horizon := r.DurationMonths
	if horizon <= 0 || horizon > maxExpansionMonths {
		horizon = maxExpansionMonths
	}
	end := start.AddMonths(horizon - 1)

	var months []core.MonthKey
	for m := start; !m.After(end); m = m.AddMonths(step) {
		months = append(months, m)
	}
	return months
}

// RecursInMonth reports whether the transaction covers the given month
// under its recurrence rule.
func RecursInMonth(tx core.Transaction, month core.MonthKey) bool {
	for _, m := range ExpandTransactionMonths(tx) {
		if m == month {
			return true
		}
		if m.After(month) {
			return false
		}
	}
	return false
}
