package engine

import (
	"sort"

	"pockets/internal/core"
)

// ComputeTotals sums the month's overrides joined against the category
// registry: income from influx categories, outflow from the rest,
// remaining = income - outflow. A month with no ledger entry yields
// zero totals. Overrides referencing a deleted category are skipped
// (they cannot normally exist, the delete cascade removes them).
//
// Amounts accumulate as plain float64; rounding happens only at
// presentation time.
func (e *Engine) ComputeTotals(month core.MonthKey) core.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeTotalsLocked(e.mustState(), month)
}

func computeTotalsLocked(s *core.BudgetState, month core.MonthKey) core.Totals {
	var t core.Totals
	bm, ok := s.BudgetsByMonth[month]
	if !ok {
		return t
	}
	for _, o := range bm.Overrides {
		cat, ok := findCategory(s, o.CategoryID)
		if !ok {
			continue
		}
		if cat.IsInflux {
			t.TotalIncome += o.Amount
		} else {
			t.TotalOutflow += o.Amount
		}
	}
	t.Remaining = t.TotalIncome - t.TotalOutflow
	return t
}

// ComputePocketBalancesUpTo accumulates, for every non-income category,
// the signed effect of every transaction in every month up to and
// including the given month. Addition is commutative, so the result is
// independent of transaction order within a bucket.
//
// Balances are returned in registry order.
func (e *Engine) ComputePocketBalancesUpTo(month core.MonthKey) []core.PocketBalance {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	byID := make(map[string]float64)
	for txMonth, txs := range s.TransactionsByMonth {
		if txMonth.After(month) {
			continue
		}
		for _, tx := range txs {
			byID[tx.PocketCategoryID] += tx.Effect()
		}
	}

	var out []core.PocketBalance
	for _, cat := range s.Categories {
		if cat.Type == core.CategoryIncome {
			continue
		}
		out = append(out, core.PocketBalance{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Balance:    byID[cat.ID],
		})
	}
	return out
}

// MonthsWithData returns every month present in either ledger, sorted
// chronologically. Export tooling uses this to walk the state.
func (e *Engine) MonthsWithData() []core.MonthKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	seen := make(map[core.MonthKey]bool)
	for m := range s.BudgetsByMonth {
		seen[m] = true
	}
	for m := range s.TransactionsByMonth {
		seen[m] = true
	}
	out := make([]core.MonthKey, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
