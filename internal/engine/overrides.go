package engine

import "pockets/internal/core"

// OverrideOptions controls how an override write behaves.
type OverrideOptions struct {
	// Note is attached to the written override.
	Note string
	// PropagateToFuture copies the new value into every later month
	// that already exists in the ledger. It never fabricates months.
	PropagateToFuture bool
}

// EnsureMonth lazily creates the BudgetMonth entry for a month.
// Idempotent: an existing entry is left untouched.
func (e *Engine) EnsureMonth(month core.MonthKey) error {
	if err := month.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureMonthLocked(month)
	return nil
}

func (e *Engine) ensureMonthLocked(month core.MonthKey) *core.BudgetMonth {
	s := e.mustState()
	if bm, ok := s.BudgetsByMonth[month]; ok {
		return bm
	}
	bm := &core.BudgetMonth{}
	s.BudgetsByMonth[month] = bm
	return bm
}

// UpdateCategoryAmount sets or replaces the override for a category in
// a month. With PropagateToFuture it also writes the same value into
// every already-existing later month for that category; months not yet
// present in the ledger are not created ("change my rent going forward"
// only touches months the user has already opened).
//
// Re-running the call with identical arguments leaves state unchanged.
func (e *Engine) UpdateCategoryAmount(categoryID string, amount float64, month core.MonthKey, opts OverrideOptions) error {
	if err := month.Validate(); err != nil {
		return err
	}
	override := core.CategoryAmountOverride{
		CategoryID:      categoryID,
		Amount:          amount,
		Note:            opts.Note,
		AppliedToFuture: opts.PropagateToFuture,
	}
	if err := override.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	// A dangling category reference is bad input, not a missing entity.
	if !categoryExists(s, categoryID) {
		return core.Validationf("category %q does not exist", categoryID)
	}

	setOverride(e.ensureMonthLocked(month), override)

	if opts.PropagateToFuture {
		for key, bm := range s.BudgetsByMonth {
			if key.After(month) {
				setOverride(bm, override)
			}
		}
	}

	return nil
}

// setOverride replaces the override for the category if one exists
// (last-write-wins), appending otherwise. At most one override per
// category per month.
func setOverride(bm *core.BudgetMonth, override core.CategoryAmountOverride) {
	for i, o := range bm.Overrides {
		if o.CategoryID == override.CategoryID {
			bm.Overrides[i] = override
			return
		}
	}
	bm.Overrides = append(bm.Overrides, override)
}
