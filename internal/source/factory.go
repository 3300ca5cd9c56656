package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LukasAlexandre/Finance-Hub/internal/config"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/openbanking"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateSource builds the transaction source named by the config. The
// SQLite repository is shared state owned by the caller, so Cleanup
// never closes it.
func (f *Factory) CreateSource(ctx context.Context, cfg *config.Config, repo *storage.SQLiteRepository) (*Result, error) {
	typ := Type(cfg.DataSource)
	if !typ.IsValid() {
		return nil, fmt.Errorf("invalid data source: %s", cfg.DataSource)
	}

	switch typ {
	case SQLiteSource:
		f.logger.Info("Initialized SQLite transaction source", "db_path", cfg.SQLiteDBPath)
		return &Result{Source: &sqliteSource{repo: repo}}, nil
	case PluggySource:
		client := openbanking.NewClient(openbanking.Config{
			ClientID:     cfg.PluggyClientID,
			ClientSecret: cfg.PluggyClientSecret,
			ItemID:       cfg.PluggyItemID,
			BaseURL:      cfg.PluggyBaseURL,
		})
		f.logger.Info("Initialized Pluggy transaction source", "base_url", cfg.PluggyBaseURL)
		return &Result{Source: &pluggySource{client: client}}, nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", typ)
	}
}

// sqliteSource serves previously synced data from the local database.
type sqliteSource struct {
	repo *storage.SQLiteRepository
}

func (s *sqliteSource) Accounts(ctx context.Context) ([]core.Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *sqliteSource) Transactions(ctx context.Context, accountID, from, to string) ([]core.Transaction, error) {
	txs, _, err := s.repo.ListTransactions(ctx, from, to, accountID)
	return txs, err
}

func (s *sqliteSource) Investments(ctx context.Context) ([]core.Asset, error) {
	return s.repo.ListAssets(ctx)
}

// pluggySource fetches live data from the open-banking API.
type pluggySource struct {
	client *openbanking.Client
}

func (s *pluggySource) Accounts(ctx context.Context) ([]core.Account, error) {
	return s.client.GetAccounts(ctx)
}

func (s *pluggySource) Transactions(ctx context.Context, accountID, from, to string) ([]core.Transaction, error) {
	if accountID == "" {
		return s.client.FetchAllTransactions(ctx, from, to)
	}
	return s.client.GetTransactions(ctx, accountID, from, to)
}

func (s *pluggySource) Investments(ctx context.Context) ([]core.Asset, error) {
	return s.client.GetInvestments(ctx)
}
