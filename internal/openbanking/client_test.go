package openbanking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ItemID:       "item-1",
		BaseURL:      srv.URL,
	})
	return client, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestAccessTokenIsCached(t *testing.T) {
	var authCalls atomic.Int64

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			authCalls.Add(1)
			writeJSON(t, w, map[string]any{"apiKey": "key-123", "expiresIn": 7200})
		case "/accounts":
			if r.Header.Get("X-API-KEY") != "key-123" {
				t.Errorf("X-API-KEY = %q, want key-123", r.Header.Get("X-API-KEY"))
			}
			writeJSON(t, w, map[string]any{"results": []any{}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.GetAccounts(ctx); err != nil {
			t.Fatalf("GetAccounts() error = %v", err)
		}
	}

	if got := authCalls.Load(); got != 1 {
		t.Errorf("auth endpoint called %d times, want 1", got)
	}
}

func TestGetTransactionsMapsFields(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			writeJSON(t, w, map[string]any{"apiKey": "key-123"})
		case "/transactions":
			q := r.URL.Query()
			if q.Get("itemId") != "item-1" {
				t.Errorf("itemId = %q, want item-1", q.Get("itemId"))
			}
			if q.Get("accountId") != "acc1" || q.Get("from") != "2025-08-01" || q.Get("to") != "2025-08-31" {
				t.Errorf("unexpected query: %v", q)
			}
			writeJSON(t, w, map[string]any{
				"total": 1,
				"results": []map[string]any{{
					"id":          "tx1",
					"accountId":   "acc1",
					"date":        "2025-08-10T03:00:00.000Z",
					"description": "SUPERMERCADO EXTRA",
					"amount":      -156.78,
					"balance":     842.10,
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	txs, err := client.GetTransactions(context.Background(), "acc1", "2025-08-01", "2025-08-31")
	if err != nil {
		t.Fatalf("GetTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("GetTransactions() returned %d, want 1", len(txs))
	}

	tx := txs[0]
	if tx.Date != "2025-08-10" {
		t.Errorf("Date = %q, want 2025-08-10 (timestamp trimmed)", tx.Date)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(-156.78)) {
		t.Errorf("Amount = %v, want -156.78", tx.Amount)
	}
	if tx.SnapshotBalance == nil || !tx.SnapshotBalance.Equal(decimal.NewFromFloat(842.10)) {
		t.Errorf("SnapshotBalance = %v, want 842.10", tx.SnapshotBalance)
	}
}

func TestFetchAllTransactionsSkipsFailingAccount(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			writeJSON(t, w, map[string]any{"apiKey": "key-123"})
		case "/accounts":
			writeJSON(t, w, map[string]any{
				"results": []map[string]any{
					{"id": "acc1", "name": "Checking", "type": "BANK", "balance": 1000.0},
					{"id": "acc2", "name": "Broken", "type": "BANK", "balance": 0.0},
				},
			})
		case "/transactions":
			if r.URL.Query().Get("accountId") == "acc2" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(t, w, map[string]any{
				"results": []map[string]any{{
					"id": "tx1", "accountId": "acc1", "date": "2025-08-10",
					"description": "ok", "amount": -10.0,
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	txs, err := client.FetchAllTransactions(context.Background(), "", "")
	if err != nil {
		t.Fatalf("FetchAllTransactions() error = %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "tx1" {
		t.Errorf("FetchAllTransactions() = %+v, want only tx1", txs)
	}
}

func TestGetInvestmentsMapsTypes(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			writeJSON(t, w, map[string]any{"apiKey": "key-123"})
		case "/investments":
			writeJSON(t, w, map[string]any{
				"results": []map[string]any{
					{"id": "i1", "code": "PETR4", "type": "EQUITY", "quantity": 100.0, "value": 36.52, "balance": 3652.0, "date": "2025-03-15T00:00:00Z"},
					{"id": "i2", "code": "CDB", "type": "FIXED_INCOME", "balance": 12850.45, "date": "2025-01-02"},
					{"id": "i3", "code": "???", "type": "SOMETHING_NEW", "balance": 10.0, "date": "2025-01-02"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	assets, err := client.GetInvestments(context.Background())
	if err != nil {
		t.Fatalf("GetInvestments() error = %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("GetInvestments() returned %d, want 3", len(assets))
	}

	if assets[0].Type != core.AssetStock {
		t.Errorf("assets[0].Type = %v, want stock", assets[0].Type)
	}
	if assets[0].PurchaseDate != "2025-03-15" {
		t.Errorf("assets[0].PurchaseDate = %q, want 2025-03-15", assets[0].PurchaseDate)
	}
	if assets[1].Type != core.AssetFixedIncome {
		t.Errorf("assets[1].Type = %v, want fixed_income", assets[1].Type)
	}
	if !assets[1].Total.Equal(decimal.NewFromFloat(12850.45)) {
		t.Errorf("assets[1].Total = %v, want 12850.45", assets[1].Total)
	}
	if assets[2].Type != core.AssetOther {
		t.Errorf("assets[2].Type = %v, want other", assets[2].Type)
	}
}
