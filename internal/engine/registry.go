package engine

import (
	"strings"

	"pockets/internal/core"
)

// UpsertCategory creates or replaces a category. If the id matches an
// existing category it is replaced in place, preserving its position in
// the registry; otherwise a new category is appended with a freshly
// generated id. The created or updated category is returned.
//
// Validation is defensive: the UI pre-validates, but an empty name or a
// negative default amount is still rejected here with a validation
// error and no state change.
func (e *Engine) UpsertCategory(cat core.Category) (core.Category, error) {
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	if strings.TrimSpace(cat.ID) != "" {
		for i, existing := range s.Categories {
			if existing.ID == cat.ID {
				s.Categories[i] = cat
				return cat, nil
			}
		}
	}

	cat.ID = newID()
	s.Categories = append(s.Categories, cat)
	return cat, nil
}

// DeleteCategories removes the listed categories together with every
// override and transaction referencing them, in every month. The
// cascade is atomic: the state lock is held for the whole pass, so no
// reader ever observes a partial cascade. Unknown ids are ignored.
func (e *Engine) DeleteCategories(ids []string) error {
	if len(ids) == 0 {
		return core.Validationf("no category ids given")
	}
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return core.Validationf("empty category id in delete list")
		}
		doomed[id] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	kept := s.Categories[:0]
	for _, c := range s.Categories {
		if !doomed[c.ID] {
			kept = append(kept, c)
		}
	}
	s.Categories = kept

	for _, bm := range s.BudgetsByMonth {
		overrides := bm.Overrides[:0]
		for _, o := range bm.Overrides {
			if !doomed[o.CategoryID] {
				overrides = append(overrides, o)
			}
		}
		bm.Overrides = overrides
	}

	for month, txs := range s.TransactionsByMonth {
		keptTxs := txs[:0]
		for _, tx := range txs {
			if !doomed[tx.PocketCategoryID] {
				keptTxs = append(keptTxs, tx)
			}
		}
		s.TransactionsByMonth[month] = keptTxs
	}

	for id := range doomed {
		delete(s.AllocationRules, id)
	}

	return nil
}
