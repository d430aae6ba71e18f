package core

// Totals is the per-month income/outflow summary derived from the
// override ledger. Remaining is the core "am I in the black" metric.
type Totals struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalOutflow float64 `json:"totalOutflow"`
	Remaining    float64 `json:"remaining"`
}

// PocketBalance is the cumulative signed balance of one pocket as of a
// given month, accumulated over every transaction up to and including it.
type PocketBalance struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Balance    float64 `json:"balance"`
}

// ProjectionPoint is one month of the six-month remaining-balance
// projection.
type ProjectionPoint struct {
	Month     MonthKey `json:"month"`
	Remaining float64  `json:"remaining"`
}

// AiTip is a rule-based insight produced from current state.
type AiTip struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// BudgetInsight reports one pocket's spend against its budget for a
// month. UsagePct is spent/budget*100; Severity grades it.
type BudgetInsight struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Spent      float64 `json:"spent"`
	Budget     float64 `json:"budget"`
	UsagePct   float64 `json:"usagePct"`
	Severity   string  `json:"severity"` // "ok", "warning", "over"
}
