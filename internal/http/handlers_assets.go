package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/quotes"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.ListAssets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list assets", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if assets == nil {
		assets = []core.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

type createAssetRequest struct {
	Type         string          `json:"type"`
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	PurchaseDate string          `json:"purchaseDate"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := s.assets.CreateAsset(r.Context(), core.Asset{
		Type:         core.AssetType(req.Type),
		Ticker:       req.Ticker,
		Quantity:     req.Quantity,
		Price:        req.Price,
		PurchaseDate: req.PurchaseDate,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidAssetType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create asset", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing asset id")
		return
	}

	if err := s.assets.DeleteAsset(r.Context(), id); err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.RefreshPrices(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to refresh prices", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if assets == nil {
		assets = []core.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.txService.ListInvestments(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list investments", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch investments")
		return
	}
	if investments == nil {
		investments = []core.Asset{}
	}
	writeJSON(w, http.StatusOK, investments)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = q.Get("ticker")
	}
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing ticker")
		return
	}
	assetType := core.NormalizeAssetType(q.Get("type"))

	price, err := s.assets.Quote(r.Context(), symbol, assetType)
	if errors.Is(err, quotes.ErrQuoteNotFound) || errors.Is(err, quotes.ErrUnsupportedSymbol) {
		writeError(w, http.StatusNotFound, "price not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch quote", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"price": price})
}
