package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LukasAlexandre/Finance-Hub/internal/categories"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.txService.ListAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list accounts", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch accounts")
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, accountID := q.Get("from"), q.Get("to"), q.Get("accountId")

	if from != "" && !core.ValidDate(from) {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	if to != "" && !core.ValidDate(to) {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	txs, err := s.txService.ListTransactions(r.Context(), accountID, from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.CategorizedTransaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

type recategorizeRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleRecategorize(w http.ResponseWriter, r *http.Request) {
	txID := r.PathValue("id")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	var req recategorizeRequest
	if err := decodeJSON(r, &req); err != nil || req.Category == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.txService.Recategorize(r.Context(), txID, req.Category)
	if errors.Is(err, categories.ErrUnknownCategory) {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type syncRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.From != "" && !core.ValidDate(req.From) || req.To != "" && !core.ValidDate(req.To) {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	if err := s.txService.Sync(r.Context(), req.From, req.To); err != nil {
		slog.ErrorContext(r.Context(), "Sync failed", "error", err)
		writeError(w, http.StatusBadGateway, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
