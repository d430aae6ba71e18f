package core

import "strings"

const (
	CategoryIncome CategoryType = "income"
	CategoryBank   CategoryType = "bank"
	CategoryExtra  CategoryType = "extra"
	CategoryOther  CategoryType = "other"
)

const (
	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"
)

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

const (
	AllocationPercent AllocationMode = "percent"
	AllocationAmount  AllocationMode = "amount"
)

type (
	CategoryType    string
	TransactionType string
	Frequency       string
	AllocationMode  string

	// Recurrence carries the recurrence metadata stored on categories
	// and transactions. It is never materialized eagerly: a recurring
	// entry is stored once and consumers expand it on read.
	Recurrence struct {
		IsRecurring    bool       `json:"isRecurring"`
		EffectiveFrom  *MonthKey  `json:"effectiveFrom,omitempty"`
		Frequency      *Frequency `json:"frequency,omitempty"`
		DurationMonths int        `json:"durationMonths,omitempty"` // 0 = unbounded
	}

	// Category is a budgeting bucket. DefaultAmount is always a
	// non-negative magnitude; the sign of its effect on totals is
	// derived solely from IsInflux.
	Category struct {
		ID            string       `json:"id"`
		Name          string       `json:"name"`
		Type          CategoryType `json:"type"`
		Color         string       `json:"color,omitempty"` // display-only passthrough
		DefaultAmount float64      `json:"defaultAmount"`
		IsInflux      bool         `json:"isInflux"`
		Recurrence    *Recurrence  `json:"recurrence,omitempty"`
		Notes         string       `json:"notes,omitempty"`
	}

	// CategoryAmountOverride is a per-month deviation from a category's
	// default amount. At most one override per category lives in a
	// BudgetMonth; writes are last-write-wins.
	CategoryAmountOverride struct {
		CategoryID      string  `json:"categoryId"`
		Amount          float64 `json:"amount"`
		Note            string  `json:"note,omitempty"`
		AppliedToFuture bool    `json:"appliedToFuture,omitempty"`
	}

	// BudgetMonth is the override ledger entry for one calendar month.
	// Created lazily the first time a month is touched, never auto-deleted.
	BudgetMonth struct {
		Overrides []CategoryAmountOverride `json:"overrides"`
	}

	// Transaction is a discrete, dated ledger entry against a pocket.
	// Amount is a non-negative magnitude; the signed effect on a pocket
	// balance is -Amount for expenses and +Amount for income.
	Transaction struct {
		ID               string          `json:"id"`
		Month            MonthKey        `json:"month"`
		PocketCategoryID string          `json:"pocketCategoryId"`
		Type             TransactionType `json:"type"`
		Amount           float64         `json:"amount"`
		Note             string          `json:"note,omitempty"`
		Recurrence       *Recurrence     `json:"recurrence,omitempty"`
	}

	// AllocationRule describes how an income category's inflow is
	// distributed to a pocket. Rules are pass-through state: no
	// calculator consumes them yet, but they must round-trip losslessly.
	AllocationRule struct {
		TargetCategoryID string         `json:"targetCategoryId"`
		Mode             AllocationMode `json:"mode"`
		Value            float64        `json:"value"` // 0-100 if percent, currency if amount
	}

	// BudgetState is the root aggregate and the unit of persistence.
	// It is serialized as one opaque JSON blob; MonthKey strings are the
	// only temporal values inside it.
	BudgetState struct {
		Categories          []Category                   `json:"categories"`
		BudgetsByMonth      map[MonthKey]*BudgetMonth    `json:"budgetsByMonth"`
		LastOpenedMonth     MonthKey                     `json:"lastOpenedMonth,omitempty"`
		AllocationRules     map[string][]AllocationRule  `json:"allocationRules"`
		TransactionsByMonth map[MonthKey][]Transaction   `json:"transactionsByMonth"`
	}
)

func (t CategoryType) Validate() error {
	switch t {
	case CategoryIncome, CategoryBank, CategoryExtra, CategoryOther:
		return nil
	}
	return Validationf("invalid category type %q", string(t))
}

func (t TransactionType) Validate() error {
	switch t {
	case TransactionExpense, TransactionIncome:
		return nil
	}
	return Validationf("invalid transaction type %q", string(t))
}

func (f Frequency) Validate() error {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return nil
	}
	return Validationf("invalid frequency %q", string(f))
}

func (m AllocationMode) Validate() error {
	switch m {
	case AllocationPercent, AllocationAmount:
		return nil
	}
	return Validationf("invalid allocation mode %q", string(m))
}

// MonthsPerStep returns how many months one recurrence step spans.
func (f Frequency) MonthsPerStep() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

func (r *Recurrence) Validate() error {
	if r == nil {
		return nil
	}
	if r.EffectiveFrom != nil {
		if err := r.EffectiveFrom.Validate(); err != nil {
			return err
		}
	}
	if r.Frequency != nil {
		if err := r.Frequency.Validate(); err != nil {
			return err
		}
	}
	if r.DurationMonths < 0 {
		return Validationf("recurrence duration must not be negative, got %d", r.DurationMonths)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validationf("category name must not be empty")
	}
	if c.DefaultAmount < 0 {
		return Validationf("category default amount must not be negative, got %v", c.DefaultAmount)
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	return c.Recurrence.Validate()
}

func (o CategoryAmountOverride) Validate() error {
	if strings.TrimSpace(o.CategoryID) == "" {
		return Validationf("override category id must not be empty")
	}
	if o.Amount < 0 {
		return Validationf("override amount must not be negative, got %v", o.Amount)
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Month.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.PocketCategoryID) == "" {
		return Validationf("transaction pocket category id must not be empty")
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 {
		return Validationf("transaction amount must not be negative, got %v", t.Amount)
	}
	return t.Recurrence.Validate()
}

func (r AllocationRule) Validate() error {
	if strings.TrimSpace(r.TargetCategoryID) == "" {
		return Validationf("allocation rule target category id must not be empty")
	}
	if err := r.Mode.Validate(); err != nil {
		return err
	}
	if r.Mode == AllocationPercent && (r.Value < 0 || r.Value > 100) {
		return Validationf("allocation percent must be 0-100, got %v", r.Value)
	}
	if r.Mode == AllocationAmount && r.Value < 0 {
		return Validationf("allocation amount must not be negative, got %v", r.Value)
	}
	return nil
}

// Effect returns the signed contribution of the transaction to its
// pocket's balance.
func (t Transaction) Effect() float64 {
	if t.Type == TransactionExpense {
		return -t.Amount
	}
	return t.Amount
}

// NewBudgetState returns an empty state with all maps initialized.
func NewBudgetState() *BudgetState {
	return &BudgetState{
		BudgetsByMonth:      make(map[MonthKey]*BudgetMonth),
		AllocationRules:     make(map[string][]AllocationRule),
		TransactionsByMonth: make(map[MonthKey][]Transaction),
	}
}

// Normalize fills in nil maps after JSON decoding so callers never have
// to distinguish "absent" from "empty".
func (s *BudgetState) Normalize() {
	if s.BudgetsByMonth == nil {
		s.BudgetsByMonth = make(map[MonthKey]*BudgetMonth)
	}
	if s.AllocationRules == nil {
		s.AllocationRules = make(map[string][]AllocationRule)
	}
	if s.TransactionsByMonth == nil {
		s.TransactionsByMonth = make(map[MonthKey][]Transaction)
	}
}
