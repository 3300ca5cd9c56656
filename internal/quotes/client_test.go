package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

func newTestClient(t *testing.T, brapi, gecko http.HandlerFunc) *Client {
	t.Helper()

	brapiSrv := httptest.NewServer(brapi)
	t.Cleanup(brapiSrv.Close)
	geckoSrv := httptest.NewServer(gecko)
	t.Cleanup(geckoSrv.Close)

	return NewClient("test-token", WithBaseURLs(brapiSrv.URL, geckoSrv.URL))
}

func TestStockPrice(t *testing.T) {
	client := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/quote/PETR4" {
				t.Errorf("path = %s, want /api/quote/PETR4", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"results":[{"regularMarketPrice":36.52}]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("CoinGecko should not be called for stocks")
		})

	price, err := client.Price(context.Background(), "PETR4", core.AssetStock)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if !price.Equal(decimal.NewFromFloat(36.52)) {
		t.Errorf("Price() = %v, want 36.52", price)
	}
}

func TestCryptoPrice(t *testing.T) {
	client := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("Brapi should not be called for crypto")
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("ids"); got != "bitcoin" {
				t.Errorf("ids = %q, want bitcoin", got)
			}
			w.Write([]byte(`{"bitcoin":{"brl":350000.55}}`))
		})

	price, err := client.Price(context.Background(), "btc", core.AssetCrypto)
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if !price.Equal(decimal.NewFromFloat(350000.55)) {
		t.Errorf("Price() = %v, want 350000.55", price)
	}
}

func TestCryptoPriceUnsupportedSymbol(t *testing.T) {
	client := NewClient("")

	_, err := client.Price(context.Background(), "NOTACOIN", core.AssetCrypto)
	if !errors.Is(err, ErrUnsupportedSymbol) {
		t.Errorf("Price() error = %v, want ErrUnsupportedSymbol", err)
	}
}

func TestPriceNotFound(t *testing.T) {
	client := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

	if _, err := client.Price(context.Background(), "XXXX3", core.AssetStock); !errors.Is(err, ErrQuoteNotFound) {
		t.Errorf("stock Price() error = %v, want ErrQuoteNotFound", err)
	}
	if _, err := client.Price(context.Background(), "BTC", core.AssetCrypto); !errors.Is(err, ErrQuoteNotFound) {
		t.Errorf("crypto Price() error = %v, want ErrQuoteNotFound", err)
	}
}
