package engine

import (
	"errors"
	"testing"

	"pockets/internal/core"
)

func TestAddTransaction(t *testing.T) {
	e := newTestEngine(t)
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})

	saved := mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 42.5, Note: "window repair",
	})
	if saved.ID == "" {
		t.Fatal("AddTransaction() did not assign an id")
	}

	txs := e.TransactionsByMonth()["2025-01"]
	if len(txs) != 1 || txs[0].Amount != 42.5 {
		t.Errorf("TransactionsByMonth()[2025-01] = %+v, want the stored transaction", txs)
	}
}

func TestAddTransactionErrors(t *testing.T) {
	e := newTestEngine(t)
	income := mustUpsert(t, e, core.Category{Name: "Salary", Type: core.CategoryIncome, DefaultAmount: 3000, IsInflux: true})
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})

	tests := []struct {
		name    string
		tx      core.Transaction
		wantErr error
	}{
		{
			name:    "nonexistent pocket",
			tx:      core.Transaction{Month: "2025-01", PocketCategoryID: "ghost", Type: core.TransactionExpense, Amount: 10},
			wantErr: core.ErrValidation,
		},
		{
			name:    "income category is not a pocket",
			tx:      core.Transaction{Month: "2025-01", PocketCategoryID: income.ID, Type: core.TransactionExpense, Amount: 10},
			wantErr: core.ErrValidation,
		},
		{
			name:    "negative amount",
			tx:      core.Transaction{Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: -10},
			wantErr: core.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.AddTransaction(tt.tx); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := len(e.TransactionsByMonth()); got != 0 {
		t.Errorf("state changed on rejected transactions: %d month buckets", got)
	}
}

// Moving a transaction to a different month removes it from the old
// bucket and inserts it into the new one.
func TestUpdateTransactionMovesBetweenMonths(t *testing.T) {
	e := newTestEngine(t)
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	saved := mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 80,
	})

	saved.Month = "2025-02"
	saved.Amount = 90
	if err := e.UpdateTransaction(saved); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	byMonth := e.TransactionsByMonth()
	if got := len(byMonth["2025-01"]); got != 0 {
		t.Errorf("old bucket still has %d transactions", got)
	}
	moved := byMonth["2025-02"]
	if len(moved) != 1 || moved[0].ID != saved.ID || moved[0].Amount != 90 {
		t.Errorf("new bucket = %+v, want the moved transaction", moved)
	}
}

func TestUpdateTransactionInPlace(t *testing.T) {
	e := newTestEngine(t)
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	saved := mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 80,
	})

	saved.Note = "deposit"
	saved.Type = core.TransactionIncome
	if err := e.UpdateTransaction(saved); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	txs := e.TransactionsByMonth()["2025-01"]
	if len(txs) != 1 || txs[0].Note != "deposit" || txs[0].Type != core.TransactionIncome {
		t.Errorf("transaction = %+v, want updated in place", txs)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	e := newTestEngine(t)
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})

	err := e.UpdateTransaction(core.Transaction{
		ID: "ghost", Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 10,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	e := newTestEngine(t)
	rent := mustUpsert(t, e, core.Category{Name: "Rent", Type: core.CategoryOther, DefaultAmount: 1200})
	first := mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 10,
	})
	mustAddTransaction(t, e, core.Transaction{
		Month: "2025-01", PocketCategoryID: rent.ID, Type: core.TransactionExpense, Amount: 20,
	})

	if err := e.DeleteTransaction(first.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	txs := e.TransactionsByMonth()["2025-01"]
	if len(txs) != 1 || txs[0].Amount != 20 {
		t.Errorf("remaining transactions = %+v, want only the second", txs)
	}

	if err := e.DeleteTransaction(first.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction() repeat error = %v, want ErrNotFound", err)
	}
	if err := e.DeleteTransaction(""); !errors.Is(err, core.ErrValidation) {
		t.Errorf("DeleteTransaction(\"\") error = %v, want ErrValidation", err)
	}
}
