// Package source selects where account and transaction data comes
// from: the local SQLite database or the Pluggy open-banking API.
package source

import (
	"context"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

// TransactionSource reads accounts, transactions, and investment
// positions from a data provider.
type TransactionSource interface {
	// Accounts lists the linked bank accounts.
	Accounts(ctx context.Context) ([]core.Account, error)

	// Transactions returns transactions in the inclusive [from, to] ISO
	// date range. Empty bounds are open; an empty accountID matches all
	// accounts.
	Transactions(ctx context.Context, accountID, from, to string) ([]core.Transaction, error)

	// Investments lists positions held at the provider.
	Investments(ctx context.Context) ([]core.Asset, error)
}

// CleanupFunc releases resources held by a source.
type CleanupFunc func() error

// Result bundles a source with its cleanup.
type Result struct {
	Source  TransactionSource
	Cleanup CleanupFunc
}

// Type selects a source implementation.
type Type string

const (
	SQLiteSource Type = "sqlite"
	PluggySource Type = "pluggy"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteSource, PluggySource:
		return true
	default:
		return false
	}
}
