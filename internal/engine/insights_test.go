package engine

import (
	"strings"
	"testing"

	"pockets/internal/core"
)

func tipKinds(tips []core.AiTip) map[string]bool {
	kinds := make(map[string]bool, len(tips))
	for _, tip := range tips {
		kinds[tip.Kind] = true
	}
	return kinds
}

func findTip(tips []core.AiTip, kind string) (core.AiTip, bool) {
	for _, tip := range tips {
		if tip.Kind == kind {
			return tip, true
		}
	}
	return core.AiTip{}, false
}

func TestAiTipsSurplusAndRule(t *testing.T) {
	e := newTestEngine(t)
	inc := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	if err := e.UpdateCategoryAmount(inc.ID, 200, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}

	kinds := tipKinds(e.GenerateAiTips("2025-01"))
	if !kinds["surplus"] {
		t.Error("remaining=200 should emit a surplus tip")
	}
	if !kinds["rule-503020"] {
		t.Error("income category present should always emit the 50/30/20 tip")
	}
	if kinds["shortfall"] {
		t.Error("remaining=200 must not emit a shortfall tip")
	}
}

func TestAiTipsShortfall(t *testing.T) {
	e := newTestEngine(t)
	inc := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	if err := e.UpdateCategoryAmount(inc.ID, 1000, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}
	if err := e.UpdateCategoryAmount(rent.ID, 1060, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}

	kinds := tipKinds(e.GenerateAiTips("2025-01"))
	if !kinds["shortfall"] {
		t.Error("remaining=-60 should emit a shortfall tip")
	}
	if !kinds["rule-503020"] {
		t.Error("income category present should always emit the 50/30/20 tip")
	}
	if kinds["surplus"] {
		t.Error("remaining=-60 must never emit a surplus tip")
	}
}

// Thresholds are strict: 150 and -50 are inside the quiet band.
func TestAiTipThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name          string
		remaining     float64
		wantSurplus   bool
		wantShortfall bool
	}{
		{"well above surplus threshold", 200, true, false},
		{"exactly 150 is not surplus", 150, false, false},
		{"just above 150", 150.01, true, false},
		{"zero", 0, false, false},
		{"exactly -50 is not shortfall", -50, false, false},
		{"just below -50", -50.01, false, true},
		{"well below", -60, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			inc := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 0, IsInflux: true})
			out := mustUpsert(t, e, core.Category{Name: "Out", Type: core.CategoryOther, DefaultAmount: 0})

			income, outflow := tt.remaining, 0.0
			if income < 0 {
				income, outflow = 0, -tt.remaining
			}
			if err := e.UpdateCategoryAmount(inc.ID, income, "2025-01", OverrideOptions{}); err != nil {
				t.Fatalf("UpdateCategoryAmount() error = %v", err)
			}
			if err := e.UpdateCategoryAmount(out.ID, outflow, "2025-01", OverrideOptions{}); err != nil {
				t.Fatalf("UpdateCategoryAmount() error = %v", err)
			}

			kinds := tipKinds(e.GenerateAiTips("2025-01"))
			if kinds["surplus"] != tt.wantSurplus {
				t.Errorf("surplus tip = %v, want %v", kinds["surplus"], tt.wantSurplus)
			}
			if kinds["shortfall"] != tt.wantShortfall {
				t.Errorf("shortfall tip = %v, want %v", kinds["shortfall"], tt.wantShortfall)
			}
		})
	}
}

func TestAiTipsPocketUsage(t *testing.T) {
	tests := []struct {
		name        string
		spent       float64
		budget      float64
		wantKind    string
		wantMessage string
	}{
		// 130/100 = 130%, 30.0% over budget.
		{"overspend", 130, 100, "overspend", "30.0% over budget"},
		// 85/100 = 85.0% usage.
		{"warning", 85, 100, "warning", "85.0% of its budget"},
		// Exactly 100% is a warning, not an overspend.
		{"exactly at budget", 100, 100, "warning", "100.0% of its budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			pocket := mustUpsert(t, e, core.Category{Name: "Groceries", Type: core.CategoryExtra, DefaultAmount: tt.budget})
			mustAddTransaction(t, e, core.Transaction{
				Month: "2025-01", PocketCategoryID: pocket.ID, Type: core.TransactionExpense, Amount: tt.spent,
			})

			tip, ok := findTip(e.GenerateAiTips("2025-01"), tt.wantKind)
			if !ok {
				t.Fatalf("no %q tip emitted", tt.wantKind)
			}
			if !strings.Contains(tip.Message, tt.wantMessage) {
				t.Errorf("tip message = %q, want it to contain %q", tip.Message, tt.wantMessage)
			}
		})
	}
}

func TestAiTipsNoUsageTipUnderThreshold(t *testing.T) {
	e := newTestEngine(t)
	pocket := mustUpsert(t, e, core.Category{Name: "Groceries", Type: core.CategoryExtra, DefaultAmount: 100})
	mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: pocket.ID, Type: core.TransactionExpense, Amount: 80,
	})

	kinds := tipKinds(e.GenerateAiTips("2025-01"))
	if kinds["warning"] || kinds["overspend"] {
		t.Errorf("80%% usage must not emit usage tips, got %v", kinds)
	}
}

func TestAiTipsGreatJobAndGetStarted(t *testing.T) {
	e := newTestEngine(t)
	pocket := mustUpsert(t, e, core.Category{Name: "Savings", Type: core.CategoryBank, DefaultAmount: 0})

	// No transactions yet: get-started, no great-job.
	kinds := tipKinds(e.GenerateAiTips("2025-01"))
	if !kinds["get-started"] {
		t.Error("zero transactions should emit the get-started tip")
	}
	if kinds["great-job"] {
		t.Error("no savings yet, great-job must not fire")
	}

	mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: pocket.ID, Type: core.TransactionIncome, Amount: 250,
	})

	tips := e.GenerateAiTips("2025-01")
	kinds = tipKinds(tips)
	if kinds["get-started"] {
		t.Error("get-started must stop firing once a transaction exists")
	}
	tip, ok := findTip(tips, "great-job")
	if !ok {
		t.Fatal("positive total savings should emit the great-job tip")
	}
	if !strings.Contains(tip.Message, "$250.00") {
		t.Errorf("great-job message = %q, want the dollar figure", tip.Message)
	}
}

func TestGenerateBudgetInsights(t *testing.T) {
	e := newTestEngine(t)
	mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	groceries := mustUpsert(t, e, core.Category{Name: "Groceries", Type: core.CategoryExtra, DefaultAmount: 400})
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})

	// Override narrows the groceries budget for the month.
	if err := e.UpdateCategoryAmount(groceries.ID, 200, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}
	mustAddTransaction(t, e, core.Transaction{Month: "2025-01", PocketCategoryID: groceries.ID, Type: core.TransactionExpense, Amount: 250})
	mustAddTransaction(t, e, core.Transaction{Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 600})

	insights := e.GenerateBudgetInsights("2025-01")
	if len(insights) != 2 {
		t.Fatalf("GenerateBudgetInsights() len = %d, want 2 (income excluded)", len(insights))
	}

	byID := make(map[string]core.BudgetInsight)
	for _, in := range insights {
		byID[in.CategoryID] = in
	}

	g := byID[groceries.ID]
	if g.Budget != 200 || g.Spent != 250 || g.UsagePct != 125 || g.Severity != "over" {
		t.Errorf("groceries insight = %+v, want over budget at 125%%", g)
	}
	r := byID[rent.ID]
	if r.Budget != 1200 || r.Spent != 600 || r.UsagePct != 50 || r.Severity != "ok" {
		t.Errorf("rent insight = %+v, want ok at 50%%", r)
	}
}
