package engine

import (
	"strings"

	"pockets/internal/core"
)

// AddTransaction validates and stores a transaction in the bucket of
// its month, returning it with its generated id.
func (e *Engine) AddTransaction(tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	// A dangling category reference is bad input, not a missing entity.
	cat, ok := findCategory(s, tx.PocketCategoryID)
	if !ok {
		return core.Transaction{}, core.Validationf("pocket category %q does not exist", tx.PocketCategoryID)
	}
	if cat.Type == core.CategoryIncome {
		return core.Transaction{}, core.Validationf("category %q is an income category, not a pocket", tx.PocketCategoryID)
	}

	tx.ID = newID()
	s.TransactionsByMonth[tx.Month] = append(s.TransactionsByMonth[tx.Month], tx)
	return tx, nil
}

// UpdateTransaction replaces the stored transaction with the same id.
// Changing the month moves the transaction between buckets: it is
// removed from the old month and inserted into the new one.
func (e *Engine) UpdateTransaction(tx core.Transaction) error {
	if strings.TrimSpace(tx.ID) == "" {
		return core.Validationf("transaction id must not be empty")
	}
	if err := tx.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	cat, ok := findCategory(s, tx.PocketCategoryID)
	if !ok {
		return core.Validationf("pocket category %q does not exist", tx.PocketCategoryID)
	}
	if cat.Type == core.CategoryIncome {
		return core.Validationf("category %q is an income category, not a pocket", tx.PocketCategoryID)
	}

	oldMonth, idx := locateTransaction(s, tx.ID)
	if idx < 0 {
		return core.NotFoundf("transaction %q", tx.ID)
	}

	if oldMonth == tx.Month {
		s.TransactionsByMonth[oldMonth][idx] = tx
		return nil
	}

	s.TransactionsByMonth[oldMonth] = append(
		s.TransactionsByMonth[oldMonth][:idx],
		s.TransactionsByMonth[oldMonth][idx+1:]...,
	)
	s.TransactionsByMonth[tx.Month] = append(s.TransactionsByMonth[tx.Month], tx)
	return nil
}

// DeleteTransaction removes a transaction by id.
func (e *Engine) DeleteTransaction(id string) error {
	if strings.TrimSpace(id) == "" {
		return core.Validationf("transaction id must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	month, idx := locateTransaction(s, id)
	if idx < 0 {
		return core.NotFoundf("transaction %q", id)
	}
	s.TransactionsByMonth[month] = append(
		s.TransactionsByMonth[month][:idx],
		s.TransactionsByMonth[month][idx+1:]...,
	)
	return nil
}

// locateTransaction finds a transaction by id across all month buckets.
func locateTransaction(s *core.BudgetState, id string) (core.MonthKey, int) {
	for month, txs := range s.TransactionsByMonth {
		for i, tx := range txs {
			if tx.ID == id {
				return month, i
			}
		}
	}
	return "", -1
}
