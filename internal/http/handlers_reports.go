package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/cache"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/report"
	"github.com/LukasAlexandre/Finance-Hub/internal/services"
)

// reportHandlers serves the aggregated chart endpoints. Responses are
// cached briefly per request URI; any mutation clears the cache.
type reportHandlers struct {
	txService *services.TransactionService
	assets    *services.AssetService
	payloads  *cache.TTLCache[[]byte]
}

// cached serves a report from the payload cache when possible, filling
// it from the wrapped handler on a miss. Only 200 responses are kept.
func (h *reportHandlers) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		if body, ok := h.payloads.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if rec.status == http.StatusOK {
			h.payloads.Set(key, rec.body.Bytes())
		}
	}
}

// invalidate drops every cached report payload.
func (h *reportHandlers) invalidate() {
	h.payloads.Clear()
}

// recordingWriter tees the response body so a cacheable copy survives
// the write.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	rw.body.Write(p)
	return rw.ResponseWriter.Write(p)
}

// rangeTransactions validates the query range and fetches categorized
// transactions for it. A nil return with handled=true means the
// response is already written.
func (h *reportHandlers) rangeTransactions(w http.ResponseWriter, r *http.Request) (txs []core.CategorizedTransaction, from, to string, handled bool) {
	q := r.URL.Query()
	from, to = q.Get("from"), q.Get("to")

	if from != "" && !core.ValidDate(from) || to != "" && !core.ValidDate(to) {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return nil, "", "", true
	}

	txs, err := h.txService.ListTransactions(r.Context(), q.Get("accountId"), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch transactions for report", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch transactions")
		return nil, "", "", true
	}
	return txs, from, to, false
}

func (h *reportHandlers) handleDaily(w http.ResponseWriter, r *http.Request) {
	txs, _, _, handled := h.rangeTransactions(w, r)
	if handled {
		return
	}

	days := report.GroupByDay(txs)
	if days == nil {
		days = []report.DailyBalance{}
	}
	writeJSON(w, http.StatusOK, days)
}

type monthlyFlowResponse struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

func (h *reportHandlers) handleMonthly(w http.ResponseWriter, r *http.Request) {
	txs, from, to, handled := h.rangeTransactions(w, r)
	if handled {
		return
	}

	flows := report.GroupByMonth(txs, from, to)
	out := make([]monthlyFlowResponse, len(flows))
	for i, f := range flows {
		out[i] = monthlyFlowResponse{
			Year:     f.Year,
			Month:    f.Month,
			Label:    f.Label(),
			Income:   f.Income,
			Expenses: f.Expenses,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *reportHandlers) handleBalanceEvolution(w http.ResponseWriter, r *http.Request) {
	txs, from, to, handled := h.rangeTransactions(w, r)
	if handled {
		return
	}

	points := report.BalanceEvolution(txs, from, to)
	if points == nil {
		points = []report.BalancePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

type categoryTotalResponse struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Color    string          `json:"color"`
	Total    decimal.Decimal `json:"total"`
}

func (h *reportHandlers) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	txs, from, to, handled := h.rangeTransactions(w, r)
	if handled {
		return
	}

	ruleset := h.txService.Ruleset()
	totals := report.CategoryBreakdown(txs, from, to)
	out := make([]categoryTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = categoryTotalResponse{
			Category: t.Category,
			Label:    ruleset.LabelFor(t.Category),
			Color:    ruleset.ColorFor(t.Category),
			Total:    t.Total,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *reportHandlers) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.txService.Ruleset())
}

type allocationResponse struct {
	Total       decimal.Decimal     `json:"total"`
	Allocations []report.Allocation `json:"allocations"`
}

func (h *reportHandlers) handleAllocation(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.ListAssets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list assets for allocation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, allocationResponse{
		Total:       report.PortfolioValue(assets),
		Allocations: report.Allocate(assets),
	})
}

func (h *reportHandlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	months := 12
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 120 {
			writeError(w, http.StatusBadRequest, "invalid months")
			return
		}
		months = n
	}

	assets, err := h.assets.ListAssets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list assets for history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	start := now.AddDate(0, -(months - 1), 0)
	points := report.PatrimonyByMonth(assets,
		start.Year(), int(start.Month()),
		now.Year(), int(now.Month()))
	if points == nil {
		points = []report.PatrimonyPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}
