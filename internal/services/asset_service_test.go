package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

type fakeQuotes struct {
	prices map[string]decimal.Decimal
	calls  int
}

func (f *fakeQuotes) Price(ctx context.Context, symbol string, assetType core.AssetType) (decimal.Decimal, error) {
	f.calls++
	price, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, errors.New("quote not found")
	}
	return price, nil
}

func TestCreateAssetDerivesFields(t *testing.T) {
	svc := NewAssetService(newTestRepo(t), &fakeQuotes{}, time.Minute)

	created, err := svc.CreateAsset(context.Background(), core.Asset{
		Type:         "Ação", // unknown label, normalized to other
		Ticker:       "PETR4",
		Quantity:     decimal.NewFromInt(100),
		Price:        decimal.NewFromFloat(36.52),
		PurchaseDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}

	if created.ID == "" {
		t.Error("CreateAsset() did not assign an ID")
	}
	if created.Type != core.AssetOther {
		t.Errorf("Type = %v, want other for unknown input", created.Type)
	}
	if !created.Total.Equal(decimal.NewFromInt(3652)) {
		t.Errorf("Total = %v, want 3652", created.Total)
	}
}

func TestCreateAssetDefaultsPurchaseDate(t *testing.T) {
	svc := NewAssetService(newTestRepo(t), &fakeQuotes{}, time.Minute)

	created, err := svc.CreateAsset(context.Background(), core.Asset{
		Type:     core.AssetStock,
		Quantity: decimal.NewFromInt(1),
		Price:    decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
	if created.PurchaseDate != time.Now().Format("2006-01-02") {
		t.Errorf("PurchaseDate = %q, want today", created.PurchaseDate)
	}
}

func TestQuoteUsesCache(t *testing.T) {
	provider := &fakeQuotes{prices: map[string]decimal.Decimal{"PETR4": decimal.NewFromFloat(36.52)}}
	svc := NewAssetService(newTestRepo(t), provider, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		price, err := svc.Quote(ctx, "PETR4", core.AssetStock)
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		if !price.Equal(decimal.NewFromFloat(36.52)) {
			t.Errorf("Quote() = %v, want 36.52", price)
		}
	}

	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit)", provider.calls)
	}
}

func TestRefreshPricesKeepsStoredPriceOnFailure(t *testing.T) {
	repo := newTestRepo(t)
	provider := &fakeQuotes{prices: map[string]decimal.Decimal{"PETR4": decimal.NewFromInt(40)}}
	svc := NewAssetService(repo, provider, time.Minute)
	ctx := context.Background()

	for _, a := range []core.Asset{
		{ID: "a1", Type: core.AssetStock, Ticker: "PETR4", Quantity: decimal.NewFromInt(100), Price: decimal.NewFromFloat(36.52), PurchaseDate: "2025-03-15"},
		{ID: "a2", Type: core.AssetStock, Ticker: "DEAD11", Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(5), PurchaseDate: "2025-03-15"},
		{ID: "a3", Type: core.AssetFixedIncome, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1000), PurchaseDate: "2025-03-15"},
	} {
		if _, err := svc.CreateAsset(ctx, a); err != nil {
			t.Fatalf("CreateAsset(%s) error = %v", a.ID, err)
		}
	}

	assets, err := svc.RefreshPrices(ctx)
	if err != nil {
		t.Fatalf("RefreshPrices() error = %v", err)
	}

	byID := map[string]core.Asset{}
	for _, a := range assets {
		byID[a.ID] = a
	}

	if !byID["a1"].Total.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("a1 Total = %v, want 4000 after refresh", byID["a1"].Total)
	}
	if !byID["a2"].Price.Equal(decimal.NewFromInt(5)) {
		t.Errorf("a2 Price = %v, want stored 5 after quote failure", byID["a2"].Price)
	}
	if !byID["a3"].Price.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("a3 Price = %v, want untouched (no ticker)", byID["a3"].Price)
	}
}
