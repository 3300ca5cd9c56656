// Package openbanking talks to the Pluggy aggregation API, which fronts
// the user's linked bank accounts and brokerage positions.
package openbanking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

const (
	defaultPageSize = 500

	// Pluggy API keys are valid for 2 hours; renew a bit early so an
	// in-flight request never carries an expired key.
	tokenSafetyMargin = 5 * time.Minute
)

type Config struct {
	ClientID     string
	ClientSecret string
	ItemID       string
	BaseURL      string
}

type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	apiKey      string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type authResponse struct {
	APIKey    string `json:"apiKey"`
	ExpiresIn int64  `json:"expiresIn"`
}

// page is the envelope Pluggy wraps every list endpoint in.
type page[T any] struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	Results    []T `json:"results"`
}

type pluggyAccount struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Subtype string  `json:"subtype"`
	Balance float64 `json:"balance"`
}

type pluggyTransaction struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"accountId"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Balance     *float64 `json:"balance"`
}

type pluggyInvestment struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Type     string  `json:"type"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
	Balance  float64 `json:"balance"`
	Date     string  `json:"date"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.apiKey != "" && time.Now().Before(c.tokenExpiry) {
		return c.apiKey, nil
	}

	body, err := json.Marshal(map[string]string{
		"clientId":     c.cfg.ClientID,
		"clientSecret": c.cfg.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("authenticate: status %d: %s", resp.StatusCode, respBody)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if auth.APIKey == "" {
		return "", fmt.Errorf("authenticate: empty api key in response")
	}

	expiresIn := auth.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 7200
	}

	c.apiKey = auth.APIKey
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenSafetyMargin)

	slog.InfoContext(ctx, "Pluggy API key renewed", "expires_in", expiresIn)
	return c.apiKey, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	u := c.cfg.BaseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request %s: status %d: %s", endpoint, resp.StatusCode, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) GetAccounts(ctx context.Context) ([]core.Account, error) {
	query := url.Values{"itemId": {c.cfg.ItemID}}

	var p page[pluggyAccount]
	if err := c.get(ctx, "/accounts", query, &p); err != nil {
		return nil, err
	}

	accounts := make([]core.Account, len(p.Results))
	for i, a := range p.Results {
		accounts[i] = core.Account{
			ID:      a.ID,
			Name:    a.Name,
			Type:    a.Type,
			Balance: decimal.NewFromFloat(a.Balance),
		}
	}
	return accounts, nil
}

// GetTransactions fetches one account's transactions in the inclusive
// [from, to] ISO date range. Empty bounds are open.
func (c *Client) GetTransactions(ctx context.Context, accountID, from, to string) ([]core.Transaction, error) {
	query := url.Values{
		"itemId":   {c.cfg.ItemID},
		"pageSize": {fmt.Sprintf("%d", defaultPageSize)},
	}
	if accountID != "" {
		query.Set("accountId", accountID)
	}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}

	var p page[pluggyTransaction]
	if err := c.get(ctx, "/transactions", query, &p); err != nil {
		return nil, err
	}

	txs := make([]core.Transaction, len(p.Results))
	for i, t := range p.Results {
		tx := core.Transaction{
			ID:          t.ID,
			AccountID:   t.AccountID,
			Date:        isoDate(t.Date),
			Description: t.Description,
			Amount:      decimal.NewFromFloat(t.Amount),
		}
		if t.Balance != nil {
			balance := decimal.NewFromFloat(*t.Balance)
			tx.SnapshotBalance = &balance
		}
		txs[i] = tx
	}
	return txs, nil
}

// FetchAllTransactions fans out one fetch per linked account. An account
// that fails is logged and skipped so the dashboard still renders the
// accounts that did answer.
func (c *Client) FetchAllTransactions(ctx context.Context, from, to string) ([]core.Transaction, error) {
	accounts, err := c.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var mu sync.Mutex
	var all []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, account := range accounts {
		g.Go(func() error {
			txs, err := c.GetTransactions(gctx, account.ID, from, to)
			if err != nil {
				slog.WarnContext(gctx, "Skipping account after fetch failure",
					"account_id", account.ID, "error", err)
				return nil
			}
			mu.Lock()
			all = append(all, txs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetInvestments(ctx context.Context) ([]core.Asset, error) {
	query := url.Values{"itemId": {c.cfg.ItemID}}

	var p page[pluggyInvestment]
	if err := c.get(ctx, "/investments", query, &p); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, len(p.Results))
	for i, inv := range p.Results {
		total := decimal.NewFromFloat(inv.Balance)
		quantity := decimal.NewFromFloat(inv.Quantity)
		price := decimal.NewFromFloat(inv.Value)
		if total.IsZero() && !quantity.IsZero() {
			total = quantity.Mul(price)
		}
		assets[i] = core.Asset{
			ID:           inv.ID,
			Type:         investmentType(inv.Type),
			Ticker:       inv.Code,
			Quantity:     quantity,
			Price:        price,
			Total:        total,
			PurchaseDate: isoDate(inv.Date),
		}
	}
	return assets, nil
}

// investmentType maps Pluggy's investment type labels onto local asset
// types.
func investmentType(s string) core.AssetType {
	switch strings.ToUpper(s) {
	case "EQUITY", "ETF", "SECURITY":
		return core.AssetStock
	case "MUTUAL_FUND", "FUND":
		return core.AssetFund
	case "FIXED_INCOME", "COE":
		return core.AssetFixedIncome
	case "CRYPTO", "CRYPTOCURRENCY":
		return core.AssetCrypto
	default:
		return core.AssetOther
	}
}

// isoDate trims a Pluggy ISO-8601 timestamp down to its date part.
func isoDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
