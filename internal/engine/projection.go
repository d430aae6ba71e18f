package engine

import "pockets/internal/core"

// projectionMonths is the fixed horizon of the projection.
const projectionMonths = 6

// ProjectSixMonths produces exactly six projection points, one per
// consecutive month starting at start, in chronological order. Each
// point's remaining is the month's own totals; whatIfDelta is added to
// the first point only, modelling a one-time "what if I changed this
// month by X" without rippling into later months. Months with no
// ledger entry project as zero: this is a direct per-month re-read of
// the override data, not a trend forecast.
func (e *Engine) ProjectSixMonths(start core.MonthKey, whatIfDelta float64) ([]core.ProjectionPoint, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.mustState()

	points := make([]core.ProjectionPoint, 0, projectionMonths)
	month := start
	for i := 0; i < projectionMonths; i++ {
		remaining := computeTotalsLocked(s, month).Remaining
		if i == 0 {
			remaining += whatIfDelta
		}
		points = append(points, core.ProjectionPoint{Month: month, Remaining: remaining})
		month = month.Next()
	}
	return points, nil
}
