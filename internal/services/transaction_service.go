package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LukasAlexandre/Finance-Hub/internal/amqp"
	"github.com/LukasAlexandre/Finance-Hub/internal/categories"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/source"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

// TransactionService fetches transactions from the configured source,
// classifies them, and applies user recategorizations on top.
type TransactionService struct {
	source     source.TransactionSource
	storage    *storage.SQLiteRepository
	ruleset    *categories.Ruleset
	amqpClient *amqp.Client
}

func NewTransactionService(src source.TransactionSource, repo *storage.SQLiteRepository, ruleset *categories.Ruleset, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		source:     src,
		storage:    repo,
		ruleset:    ruleset,
		amqpClient: amqpClient,
	}
}

// Ruleset exposes the category registry backing the classifier.
func (s *TransactionService) Ruleset() *categories.Ruleset {
	return s.ruleset
}

// ListAccounts returns the linked accounts.
func (s *TransactionService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	accounts, err := s.source.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ListInvestments returns the positions held at the data source.
func (s *TransactionService) ListInvestments(ctx context.Context) ([]core.Asset, error) {
	investments, err := s.source.Investments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return investments, nil
}

// ListTransactions returns categorized transactions for the range. Each
// transaction gets its keyword category, except where the user has set
// one explicitly.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID, from, to string) ([]core.CategorizedTransaction, error) {
	txs, err := s.source.Transactions(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	overrides, err := s.categoryOverrides(ctx, from, to)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load category overrides, serving automatic categories only", "error", err)
		overrides = nil
	}

	out := make([]core.CategorizedTransaction, len(txs))
	for i, tx := range txs {
		category := s.ruleset.Classify(tx.Description, tx.Amount)
		if manual, ok := overrides[tx.ID]; ok {
			category = manual
		}
		out[i] = core.CategorizedTransaction{
			Transaction:   tx,
			LocalCategory: category,
		}
	}
	return out, nil
}

// Recategorize stores a manual category for a transaction. Unknown
// category ids are rejected; "income" and the fallback are accepted like
// any registered category.
func (s *TransactionService) Recategorize(ctx context.Context, txID, categoryID string) error {
	if _, ok := s.ruleset.CategoryByID(categoryID); !ok {
		return fmt.Errorf("%w: %s", categories.ErrUnknownCategory, categoryID)
	}

	if err := s.storage.SetUserCategory(ctx, txID, categoryID); err != nil {
		return fmt.Errorf("recategorize transaction: %w", err)
	}
	return nil
}

// Sync pulls the source's accounts and transactions into the local
// database and, when AMQP is configured, queues a spreadsheet export of
// the synced range.
func (s *TransactionService) Sync(ctx context.Context, from, to string) error {
	accounts, err := s.source.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("sync accounts: %w", err)
	}
	for _, account := range accounts {
		if err := s.storage.UpsertAccount(ctx, account); err != nil {
			return fmt.Errorf("sync account %s: %w", account.ID, err)
		}
	}

	txs, err := s.source.Transactions(ctx, "", from, to)
	if err != nil {
		return fmt.Errorf("sync transactions: %w", err)
	}
	for _, tx := range txs {
		if err := s.storage.UpsertTransaction(ctx, tx); err != nil {
			return fmt.Errorf("sync transaction %s: %w", tx.ID, err)
		}
	}

	slog.InfoContext(ctx, "Synced transactions from source",
		"accounts", len(accounts),
		"transactions", len(txs),
		"from", from,
		"to", to)

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExport(ctx, from, to, ""); err != nil {
			// The local sync succeeded; the export can be retried later.
			slog.ErrorContext(ctx, "Failed to queue spreadsheet export", "error", err)
		}
	}

	return nil
}

// SyncEvery re-syncs the trailing thirty days on a fixed interval until
// the context is cancelled. A failed cycle is logged and the loop keeps
// running.
func (s *TransactionService) SyncEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			to := time.Now()
			from := to.AddDate(0, 0, -30)
			if err := s.Sync(ctx, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (s *TransactionService) categoryOverrides(ctx context.Context, from, to string) (map[string]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	_, overrides, err := s.storage.ListTransactions(ctx, from, to, "")
	if err != nil {
		return nil, err
	}
	return overrides, nil
}
