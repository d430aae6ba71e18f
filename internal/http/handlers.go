package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pockets/internal/core"
	"pockets/internal/engine"
	applog "pockets/internal/log"
)

// monthParam reads and normalizes the month query parameter, falling
// back to the current month when absent.
func monthParam(r *http.Request) (core.MonthKey, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.MonthKeyOf(time.Now()), nil
	}
	return core.ParseMonthKey(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, s.engine.Snapshot())
	case http.MethodPut:
		var req struct {
			LastOpenedMonth core.MonthKey `json:"lastOpenedMonth"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.engine.SetLastOpenedMonth(req.LastOpenedMonth); err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, map[string]core.MonthKey{"lastOpenedMonth": req.LastOpenedMonth})
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, s.engine.Categories())

	case http.MethodPost:
		var cat core.Category
		if err := decodeBody(r, &cat); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		saved, err := s.engine.UpsertCategory(cat)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, saved)

	case http.MethodDelete:
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.engine.DeleteCategories(req.IDs); err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, map[string]int{"deleted": len(req.IDs)})

	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, s.engine.MonthsWithData())

	case http.MethodPost:
		var req struct {
			Month core.MonthKey `json:"month"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.engine.EnsureMonth(req.Month); err != nil {
			writeEngineError(w, err)
			return
		}
		writeSuccess(w, map[string]core.MonthKey{"month": req.Month})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		CategoryID        string        `json:"categoryId"`
		Amount            float64       `json:"amount"`
		Month             core.MonthKey `json:"month"`
		Note              string        `json:"note"`
		PropagateToFuture bool          `json:"propagateToFuture"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := s.engine.UpdateCategoryAmount(req.CategoryID, req.Amount, req.Month, engine.OverrideOptions{
		Note:              req.Note,
		PropagateToFuture: req.PropagateToFuture,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.invalidateComputed()
	writeSuccess(w, map[string]any{
		"categoryId": req.CategoryID,
		"month":      req.Month,
		"amount":     req.Amount,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		month, err := monthParam(r)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		txs := s.engine.TransactionsByMonth()[month]
		if txs == nil {
			txs = []core.Transaction{}
		}
		writeSuccess(w, txs)

	case http.MethodPost:
		var tx core.Transaction
		if err := decodeBody(r, &tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		saved, err := s.engine.AddTransaction(tx)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, saved)

	case http.MethodPut:
		var tx core.Transaction
		if err := decodeBody(r, &tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.engine.UpdateTransaction(tx); err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, tx)

	case http.MethodDelete:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusUnprocessableEntity, "missing id parameter")
			return
		}
		if err := s.engine.DeleteTransaction(id); err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, map[string]string{"deleted": id})

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	key := string(month)
	if totals, ok := s.totalsCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Totals cache hit", "month", key)
		writeSuccess(w, totals)
		return
	}

	totals := s.engine.ComputeTotals(month)
	s.totalsCache.Set(key, totals)
	writeSuccess(w, totals)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	balances := s.engine.ComputePocketBalancesUpTo(month)
	if balances == nil {
		balances = []core.PocketBalance{}
	}
	writeSuccess(w, balances)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	var delta float64
	if v := strings.TrimSpace(r.URL.Query().Get("delta")); v != "" {
		delta, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid delta parameter: "+v)
			return
		}
	}

	points, err := s.engine.ProjectSixMonths(month, delta)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w, points)
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	tips := s.engine.GenerateAiTips(month)
	if tips == nil {
		tips = []core.AiTip{}
	}
	writeSuccess(w, tips)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	insights := s.engine.GenerateBudgetInsights(month)
	if insights == nil {
		insights = []core.BudgetInsight{}
	}
	writeSuccess(w, insights)
}

func (s *Server) handleAllocationRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, s.engine.AllocationRules())

	case http.MethodPost:
		var req struct {
			IncomeCategoryID string                `json:"incomeCategoryId"`
			Rules            []core.AllocationRule `json:"rules"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.engine.SetAllocationRules(req.IncomeCategoryID, req.Rules); err != nil {
			writeEngineError(w, err)
			return
		}
		s.invalidateComputed()
		writeSuccess(w, map[string]int{"rules": len(req.Rules)})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	sl := applog.NewStructuredLogger(applog.FromContext(r.Context()))

	revision, err := s.store.Save(r.Context(), s.profile, s.engine.Snapshot())
	if err != nil {
		sl.LogError(r.Context(), "Snapshot save failed", err,
			applog.ComponentStorage, applog.OpSave,
			applog.NewFields().WithSnapshot(s.profile, 0))
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	sl.LogSnapshotSaved(r.Context(), s.profile, revision)

	if _, err := s.store.Prune(r.Context(), s.profile, s.snapshotsKept); err != nil {
		// Old revisions pile up but the save itself succeeded.
		slog.WarnContext(r.Context(), "Snapshot prune failed", "profile", s.profile, "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotSaved(r.Context(), s.profile, revision); err != nil {
			// Export lags until the next sweep; the save is still good.
			slog.WarnContext(r.Context(), "Snapshot publish failed",
				"profile", s.profile,
				"revision", revision,
				"error", err)
		}
	}

	writeSuccess(w, map[string]any{
		"profile":  s.profile,
		"revision": revision,
	})
}
