package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/cache"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/quotes"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

// QuoteProvider fetches the current price for a symbol.
type QuoteProvider interface {
	Price(ctx context.Context, symbol string, assetType core.AssetType) (decimal.Decimal, error)
}

var _ QuoteProvider = (*quotes.Client)(nil)

// AssetService manages manually entered investment positions.
type AssetService struct {
	storage    *storage.SQLiteRepository
	quotes     QuoteProvider
	quoteCache *cache.TTLCache[decimal.Decimal]
}

func NewAssetService(repo *storage.SQLiteRepository, provider QuoteProvider, quoteTTL time.Duration) *AssetService {
	if quoteTTL <= 0 {
		quoteTTL = 5 * time.Minute
	}
	return &AssetService{
		storage:    repo,
		quotes:     provider,
		quoteCache: cache.New[decimal.Decimal](256, quoteTTL),
	}
}

// CreateAsset validates, derives the total, and stores a new position.
// A missing ID gets a generated one; a missing purchase date defaults to
// today.
func (s *AssetService) CreateAsset(ctx context.Context, asset core.Asset) (core.Asset, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.PurchaseDate == "" {
		asset.PurchaseDate = time.Now().Format("2006-01-02")
	}
	asset.Type = core.NormalizeAssetType(string(asset.Type))
	asset.Recalculate()

	if err := asset.Validate(); err != nil {
		return core.Asset{}, fmt.Errorf("validate asset: %w", err)
	}

	if err := s.storage.CreateAsset(ctx, asset); err != nil {
		return core.Asset{}, err
	}
	return asset, nil
}

func (s *AssetService) ListAssets(ctx context.Context) ([]core.Asset, error) {
	return s.storage.ListAssets(ctx)
}

func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	return s.storage.DeleteAsset(ctx, id)
}

// Quote returns the current price for a symbol, serving repeats from
// cache.
func (s *AssetService) Quote(ctx context.Context, symbol string, assetType core.AssetType) (decimal.Decimal, error) {
	key := string(assetType) + ":" + symbol
	if price, ok := s.quoteCache.Get(key); ok {
		return price, nil
	}

	price, err := s.quotes.Price(ctx, symbol, assetType)
	if err != nil {
		return decimal.Zero, err
	}

	s.quoteCache.Set(key, price)
	return price, nil
}

// RefreshPrices re-quotes every position with a ticker and persists the
// updated totals. Positions whose quote fails keep their stored price.
func (s *AssetService) RefreshPrices(ctx context.Context) ([]core.Asset, error) {
	assets, err := s.storage.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	for i, asset := range assets {
		if asset.Ticker == "" {
			continue
		}

		price, err := s.Quote(ctx, asset.Ticker, asset.Type)
		if err != nil {
			slog.WarnContext(ctx, "Keeping stored price after quote failure",
				"id", asset.ID, "ticker", asset.Ticker, "error", err)
			continue
		}

		asset.Price = price
		asset.Recalculate()
		if err := s.storage.UpdateAsset(ctx, asset); err != nil {
			return nil, fmt.Errorf("persist refreshed price for %s: %w", asset.ID, err)
		}
		assets[i] = asset
	}
	return assets, nil
}
