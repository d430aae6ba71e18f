// Package engine owns the authoritative BudgetState for one session and
// implements every mutation and calculation on it: the category
// registry, the monthly override ledger, the transaction ledger, totals
// and pocket balances, the six-month projection, and the rule-based tip
// generators.
//
// The engine is an explicit, constructor-injected state holder. It has
// no ambient singletons, so independent sessions (and tests) run in
// isolation. All operations take the whole state under one mutex; there
// is exactly one logical writer per session and the lock only exists
// because the state is served over HTTP.
package engine

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pockets/internal/core"
)

// Engine holds one BudgetState and serializes all access to it.
type Engine struct {
	mu    sync.Mutex
	state *core.BudgetState
}

// New returns an engine with a fresh, empty state.
func New() *Engine {
	return &Engine{state: core.NewBudgetState()}
}

// Load returns an engine over a previously persisted state. The state
// is normalized (nil maps filled in) but otherwise trusted verbatim;
// the engine performs no schema migration.
func Load(state *core.BudgetState) *Engine {
	if state == nil {
		state = core.NewBudgetState()
	}
	state.Normalize()
	return &Engine{state: state}
}

// mustState guards against use of a zero-value Engine, which is a
// caller bug rather than bad data.
func (e *Engine) mustState() *core.BudgetState {
	if e.state == nil {
		panic("engine: used before New or Load")
	}
	return e.state
}

// Snapshot returns a deep copy of the current state for persistence or
// export. The copy shares nothing with the live state.
func (e *Engine) Snapshot() *core.BudgetState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.mustState())
}

// Categories returns a copy of the category list in registry order.
func (e *Engine) Categories() []core.Category {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()
	out := make([]core.Category, len(s.Categories))
	copy(out, s.Categories)
	return out
}

// BudgetsByMonth returns a copy of the override ledger.
func (e *Engine) BudgetsByMonth() map[core.MonthKey]*core.BudgetMonth {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()
	out := make(map[core.MonthKey]*core.BudgetMonth, len(s.BudgetsByMonth))
	for k, v := range s.BudgetsByMonth {
		bm := &core.BudgetMonth{Overrides: make([]core.CategoryAmountOverride, len(v.Overrides))}
		copy(bm.Overrides, v.Overrides)
		out[k] = bm
	}
	return out
}

// TransactionsByMonth returns a copy of the transaction ledger.
func (e *Engine) TransactionsByMonth() map[core.MonthKey][]core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()
	out := make(map[core.MonthKey][]core.Transaction, len(s.TransactionsByMonth))
	for k, v := range s.TransactionsByMonth {
		txs := make([]core.Transaction, len(v))
		copy(txs, v)
		out[k] = txs
	}
	return out
}

// LastOpenedMonth returns the month the user last had open.
func (e *Engine) LastOpenedMonth() core.MonthKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mustState().LastOpenedMonth
}

// SetLastOpenedMonth records the month the user has open.
func (e *Engine) SetLastOpenedMonth(month core.MonthKey) error {
	if err := month.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mustState().LastOpenedMonth = month
	return nil
}

// AllocationRules returns a copy of the allocation rule map. Rules are
// pass-through state: stored and round-tripped, not yet consumed by any
// calculator.
func (e *Engine) AllocationRules() map[string][]core.AllocationRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()
	out := make(map[string][]core.AllocationRule, len(s.AllocationRules))
	for k, v := range s.AllocationRules {
		rules := make([]core.AllocationRule, len(v))
		copy(rules, v)
		out[k] = rules
	}
	return out
}

// SetAllocationRules replaces the rules for one income category.
func (e *Engine) SetAllocationRules(incomeCategoryID string, rules []core.AllocationRule) error {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()
	if !categoryExists(s, incomeCategoryID) {
		return core.Validationf("category %q does not exist", incomeCategoryID)
	}
	s.AllocationRules[incomeCategoryID] = append([]core.AllocationRule(nil), rules...)
	return nil
}

func categoryExists(s *core.BudgetState, id string) bool {
	for _, c := range s.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func findCategory(s *core.BudgetState, id string) (core.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// cloneState deep-copies a state through its JSON form. The state is
// JSON-serializable by contract (it is the unit of persistence), so the
// round trip is lossless.
func cloneState(s *core.BudgetState) *core.BudgetState {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("engine: state not serializable: %v", err))
	}
	var out core.BudgetState
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("engine: state round trip failed: %v", err))
	}
	out.Normalize()
	return &out
}

// newID generates a unique id for categories and transactions.
func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
