package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/categories"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
	"github.com/LukasAlexandre/Finance-Hub/internal/storage"
)

type fakeSource struct {
	accounts []core.Account
	txs      []core.Transaction
	err      error
}

func (f *fakeSource) Accounts(ctx context.Context) ([]core.Account, error) {
	return f.accounts, f.err
}

func (f *fakeSource) Transactions(ctx context.Context, accountID, from, to string) ([]core.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeSource) Investments(ctx context.Context) ([]core.Asset, error) {
	return nil, f.err
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestListTransactionsClassifies(t *testing.T) {
	src := &fakeSource{
		txs: []core.Transaction{
			{ID: "tx1", AccountID: "acc1", Date: "2025-08-10", Description: "SUPERMERCADO EXTRA", Amount: decimal.NewFromFloat(-156.78)},
			{ID: "tx2", AccountID: "acc1", Date: "2025-08-05", Description: "TRANSFERENCIA RECEBIDA", Amount: decimal.NewFromInt(5500)},
			{ID: "tx3", AccountID: "acc1", Date: "2025-08-01", Description: "COMPRA MISTERIOSA", Amount: decimal.NewFromInt(-10)},
		},
	}
	svc := NewTransactionService(src, newTestRepo(t), categories.DefaultRuleset(), nil)

	got, err := svc.ListTransactions(context.Background(), "", "2025-08-01", "2025-08-31")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListTransactions() returned %d, want 3", len(got))
	}

	want := map[string]string{
		"tx1": "food",
		"tx2": categories.IncomeCategory,
		"tx3": categories.FallbackCategory,
	}
	for _, tx := range got {
		if tx.LocalCategory != want[tx.ID] {
			t.Errorf("%s category = %q, want %q", tx.ID, tx.LocalCategory, want[tx.ID])
		}
	}
}

func TestListTransactionsAppliesOverrides(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{ID: "tx1", AccountID: "acc1", Date: "2025-08-10", Description: "SUPERMERCADO EXTRA", Amount: decimal.NewFromInt(-50)}
	if err := repo.UpsertAccount(ctx, core.Account{ID: "acc1", Name: "Checking", Type: "checking", Balance: decimal.Zero}); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	if err := repo.UpsertTransaction(ctx, tx); err != nil {
		t.Fatalf("UpsertTransaction() error = %v", err)
	}

	src := &fakeSource{txs: []core.Transaction{tx}}
	svc := NewTransactionService(src, repo, categories.DefaultRuleset(), nil)

	if err := svc.Recategorize(ctx, "tx1", "health"); err != nil {
		t.Fatalf("Recategorize() error = %v", err)
	}

	got, err := svc.ListTransactions(ctx, "", "", "")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if got[0].LocalCategory != "health" {
		t.Errorf("category = %q, want manual override health", got[0].LocalCategory)
	}
}

func TestRecategorizeRejectsUnknownCategory(t *testing.T) {
	svc := NewTransactionService(&fakeSource{}, newTestRepo(t), categories.DefaultRuleset(), nil)

	err := svc.Recategorize(context.Background(), "tx1", "no-such-category")
	if !errors.Is(err, categories.ErrUnknownCategory) {
		t.Errorf("Recategorize() error = %v, want ErrUnknownCategory", err)
	}
}

func TestSyncPersistsSourceData(t *testing.T) {
	repo := newTestRepo(t)
	src := &fakeSource{
		accounts: []core.Account{{ID: "acc1", Name: "Checking", Type: "BANK", Balance: decimal.NewFromInt(1000)}},
		txs: []core.Transaction{
			{ID: "tx1", AccountID: "acc1", Date: "2025-08-10", Description: "UBER TRIP", Amount: decimal.NewFromInt(-25)},
		},
	}
	svc := NewTransactionService(src, repo, categories.DefaultRuleset(), nil)
	ctx := context.Background()

	if err := svc.Sync(ctx, "2025-08-01", "2025-08-31"); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acc1" {
		t.Errorf("ListAccounts() = %+v, want acc1", accounts)
	}

	txs, _, err := repo.ListTransactions(ctx, "", "", "")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "tx1" {
		t.Errorf("ListTransactions() = %+v, want tx1", txs)
	}

	// Re-sync is idempotent.
	if err := svc.Sync(ctx, "2025-08-01", "2025-08-31"); err != nil {
		t.Fatalf("Sync() second error = %v", err)
	}
	txs, _, _ = repo.ListTransactions(ctx, "", "", "")
	if len(txs) != 1 {
		t.Errorf("ListTransactions() after re-sync = %d rows, want 1", len(txs))
	}
}

func TestListTransactionsSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("provider down")}
	svc := NewTransactionService(src, newTestRepo(t), categories.DefaultRuleset(), nil)

	if _, err := svc.ListTransactions(context.Background(), "", "", ""); err == nil {
		t.Error("ListTransactions() error = nil, want source error")
	}
}

func TestSyncEveryPersistsOnInterval(t *testing.T) {
	src := &fakeSource{
		accounts: []core.Account{{ID: "acc1", Name: "Checking", Type: "BANK"}},
		txs: []core.Transaction{
			{ID: "tx1", AccountID: "acc1", Date: "2025-08-10", Description: "PADARIA", Amount: decimal.NewFromInt(-25)},
		},
	}
	repo := newTestRepo(t)
	svc := NewTransactionService(src, repo, categories.DefaultRuleset(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.SyncEvery(ctx, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		txs, _, err := repo.ListTransactions(context.Background(), "", "", "")
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(txs) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("periodic sync never persisted the transaction")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
