// Package quotes fetches current market prices: CoinGecko for crypto,
// Brapi for B3-listed tickers. Prices are quoted in BRL.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

var (
	// ErrQuoteNotFound means the provider answered but had no price for
	// the symbol.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrUnsupportedSymbol means the crypto symbol has no CoinGecko
	// mapping.
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
)

// coinGeckoIDs maps ticker symbols to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
}

type Client struct {
	brapiToken   string
	brapiBaseURL string
	geckoBaseURL string
	httpClient   *http.Client
}

type Option func(*Client)

// WithBaseURLs overrides the provider endpoints, mainly for tests.
func WithBaseURLs(brapi, gecko string) Option {
	return func(c *Client) {
		c.brapiBaseURL = brapi
		c.geckoBaseURL = gecko
	}
}

func NewClient(brapiToken string, opts ...Option) *Client {
	c := &Client{
		brapiToken:   brapiToken,
		brapiBaseURL: "https://brapi.dev",
		geckoBaseURL: "https://api.coingecko.com",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Price fetches the current price for a symbol, routing crypto symbols
// to CoinGecko and everything else to Brapi.
func (c *Client) Price(ctx context.Context, symbol string, assetType core.AssetType) (decimal.Decimal, error) {
	if assetType == core.AssetCrypto {
		return c.cryptoPrice(ctx, symbol)
	}
	return c.stockPrice(ctx, symbol)
}

func (c *Client) cryptoPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}

	u := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=brl", c.geckoBaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch crypto price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch crypto price: status %d", resp.StatusCode)
	}

	var payload map[string]struct {
		BRL *float64 `json:"brl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode crypto price: %w", err)
	}

	entry, ok := payload[id]
	if !ok || entry.BRL == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
	}

	price := decimal.NewFromFloat(*entry.BRL)
	slog.DebugContext(ctx, "Crypto quote fetched", "symbol", symbol, "price", price)
	return price, nil
}

func (c *Client) stockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/api/quote/%s", c.brapiBaseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}
	if c.brapiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.brapiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch stock price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch stock price: status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode stock price: %w", err)
	}

	if len(payload.Results) == 0 || payload.Results[0].RegularMarketPrice == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
	}

	price := decimal.NewFromFloat(*payload.Results[0].RegularMarketPrice)
	slog.DebugContext(ctx, "Stock quote fetched", "symbol", symbol, "price", price)
	return price, nil
}
