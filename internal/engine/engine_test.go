package engine

import (
	"reflect"
	"testing"

	"pockets/internal/core"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	e := newTestEngine(t)
	pocket := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	if err := e.UpdateCategoryAmount(pocket.ID, 1200, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}

	snap := e.Snapshot()

	// Mutating the snapshot must not leak into the live state.
	snap.Categories[0].Name = "tampered"
	snap.BudgetsByMonth["2025-01"].Overrides[0].Amount = 9999

	if got := e.Categories()[0].Name; got != "Rent" {
		t.Errorf("live category name = %q, snapshot mutation leaked", got)
	}
	if got := e.BudgetsByMonth()["2025-01"].Overrides[0].Amount; got != 1200 {
		t.Errorf("live override amount = %v, snapshot mutation leaked", got)
	}
}

func TestLoadRestoresSnapshotVerbatim(t *testing.T) {
	e := newTestEngine(t)
	inc := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	if err := e.UpdateCategoryAmount(inc.ID, 3000, "2025-01", OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}
	mustAddTransaction(t, e, core.Transaction{Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 80})
	if err := e.SetLastOpenedMonth("2025-01"); err != nil {
		t.Fatalf("SetLastOpenedMonth() error = %v", err)
	}

	restored := Load(e.Snapshot())

	if !reflect.DeepEqual(e.Snapshot(), restored.Snapshot()) {
		t.Error("restored engine state differs from original")
	}
	if got := restored.ComputeTotals("2025-01"); got.TotalIncome != 3000 {
		t.Errorf("restored ComputeTotals() = %+v", got)
	}
}

func TestLoadNilStartsEmpty(t *testing.T) {
	e := Load(nil)
	if got := len(e.Categories()); got != 0 {
		t.Errorf("Load(nil) categories = %d, want 0", got)
	}
	if got := e.ComputeTotals("2025-01"); got != (core.Totals{}) {
		t.Errorf("Load(nil) totals = %+v, want zeros", got)
	}
}

// Using a zero-value Engine is a caller bug, not bad data: it panics
// instead of returning an error.
func TestZeroValueEnginePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic from zero-value engine")
		}
	}()
	var e Engine
	e.Categories()
}

func TestSetAllocationRulesRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	inc := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	save := mustUpsert(t, e, core.Category{Name: "Savings", Type: core.CategoryBank, DefaultAmount: 0})

	rules := []core.AllocationRule{
		{TargetCategoryID: save.ID, Mode: core.AllocationPercent, Value: 20},
		{TargetCategoryID: save.ID, Mode: core.AllocationAmount, Value: 150},
	}
	if err := e.SetAllocationRules(inc.ID, rules); err != nil {
		t.Fatalf("SetAllocationRules() error = %v", err)
	}

	got := e.AllocationRules()[inc.ID]
	if !reflect.DeepEqual(got, rules) {
		t.Errorf("AllocationRules() = %+v, want %+v", got, rules)
	}

	// Rules survive a snapshot/restore cycle untouched.
	restored := Load(e.Snapshot())
	if !reflect.DeepEqual(restored.AllocationRules()[inc.ID], rules) {
		t.Error("allocation rules did not round-trip through snapshot")
	}
}
