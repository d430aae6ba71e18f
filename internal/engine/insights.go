package engine

import (
	"fmt"

	"pockets/internal/core"
)

// Heuristic thresholds for the tip generator. These are behavioral
// contract, not tuning knobs: tests pin them.
const (
	surplusThreshold   = 150.0
	shortfallThreshold = -50.0
	warningUsagePct    = 80.0
	overspendUsagePct  = 100.0
)

// GenerateAiTips produces the rule-based tips for a month. Tips are a
// pure function of current state; recomputation is cheap enough to run
// after every mutation.
func (e *Engine) GenerateAiTips(month core.MonthKey) []core.AiTip {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	var tips []core.AiTip

	remaining := computeTotalsLocked(s, month).Remaining
	if remaining > surplusThreshold {
		tips = append(tips, core.AiTip{
			Kind:    "surplus",
			Title:   "Surplus This Month",
			Message: fmt.Sprintf("You have $%.2f left over. Consider moving it into a savings pocket.", remaining),
		})
	}
	if remaining < shortfallThreshold {
		tips = append(tips, core.AiTip{
			Kind:    "shortfall",
			Title:   "Spending Exceeds Income",
			Message: fmt.Sprintf("You are $%.2f short this month. Try cutting low-priority categories by 10%%.", -remaining),
		})
	}

	if hasIncomeCategory(s) {
		tips = append(tips, core.AiTip{
			Kind:    "rule-503020",
			Title:   "50/30/20 Rule",
			Message: "Aim for 50% needs, 30% wants, and 20% savings of your income.",
		})
	}

	tips = append(tips, pocketUsageTipsLocked(s, month)...)

	if savings := totalSavingsLocked(s, month); savings > 0 {
		tips = append(tips, core.AiTip{
			Kind:    "great-job",
			Title:   "Great Job!",
			Message: fmt.Sprintf("Your pockets hold $%.2f in total savings. Keep it up.", savings),
		})
	}

	if transactionCount(s) == 0 {
		tips = append(tips, core.AiTip{
			Kind:    "get-started",
			Title:   "Get Started",
			Message: "Log your first transaction to start tracking your pockets.",
		})
	}

	return tips
}

// GenerateBudgetInsights reports each pocket's spend against its budget
// for the month. A pocket's budget is its override amount when one
// exists, its default amount otherwise; spend is the sum of its expense
// transactions in the month.
func (e *Engine) GenerateBudgetInsights(month core.MonthKey) []core.BudgetInsight {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	var out []core.BudgetInsight
	for _, cat := range s.Categories {
		if cat.Type == core.CategoryIncome {
			continue
		}
		budget := pocketBudgetLocked(s, cat, month)
		spent := pocketSpendLocked(s, cat.ID, month)
		insight := core.BudgetInsight{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Spent:      spent,
			Budget:     budget,
			Severity:   "ok",
		}
		if budget > 0 {
			insight.UsagePct = spent / budget * 100
			switch {
			case insight.UsagePct > overspendUsagePct:
				insight.Severity = "over"
			case insight.UsagePct > warningUsagePct:
				insight.Severity = "warning"
			}
		}
		out = append(out, insight)
	}
	return out
}

func pocketUsageTipsLocked(s *core.BudgetState, month core.MonthKey) []core.AiTip {
	var tips []core.AiTip
	for _, cat := range s.Categories {
		if cat.Type == core.CategoryIncome {
			continue
		}
		budget := pocketBudgetLocked(s, cat, month)
		if budget <= 0 {
			continue
		}
		usage := pocketSpendLocked(s, cat.ID, month) / budget * 100
		switch {
		case usage > overspendUsagePct:
			tips = append(tips, core.AiTip{
				Kind:    "overspend",
				Title:   "Overspending Alert",
				Message: fmt.Sprintf("%s is %.1f%% over budget this month.", cat.Name, usage-100),
			})
		case usage > warningUsagePct:
			tips = append(tips, core.AiTip{
				Kind:    "warning",
				Title:   "Budget Warning",
				Message: fmt.Sprintf("%s is at %.1f%% of its budget.", cat.Name, usage),
			})
		}
	}
	return tips
}

// pocketBudgetLocked resolves a pocket's budget for a month: the
// override amount when one exists, the category default otherwise.
func pocketBudgetLocked(s *core.BudgetState, cat core.Category, month core.MonthKey) float64 {
	if bm, ok := s.BudgetsByMonth[month]; ok {
		for _, o := range bm.Overrides {
			if o.CategoryID == cat.ID {
				return o.Amount
			}
		}
	}
	return cat.DefaultAmount
}

// pocketSpendLocked sums the month's expense transactions for a pocket.
func pocketSpendLocked(s *core.BudgetState, categoryID string, month core.MonthKey) float64 {
	var spent float64
	for _, tx := range s.TransactionsByMonth[month] {
		if tx.PocketCategoryID == categoryID && tx.Type == core.TransactionExpense {
			spent += tx.Amount
		}
	}
	return spent
}

// totalSavingsLocked sums every pocket's balance up to the month.
func totalSavingsLocked(s *core.BudgetState, month core.MonthKey) float64 {
	var total float64
	for txMonth, txs := range s.TransactionsByMonth {
		if txMonth.After(month) {
			continue
		}
		for _, tx := range txs {
			total += tx.Effect()
		}
	}
	return total
}

func transactionCount(s *core.BudgetState) int {
	n := 0
	for _, txs := range s.TransactionsByMonth {
		n += len(txs)
	}
	return n
}

func hasIncomeCategory(s *core.BudgetState) bool {
	for _, c := range s.Categories {
		if c.Type == core.CategoryIncome {
			return true
		}
	}
	return false
}
