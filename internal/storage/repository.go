package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User is a registered dashboard user.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user. The caller assigns the ID and hashes
// the password.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpsertAccount inserts or refreshes an account snapshot.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, balance) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, balance = excluded.balance`,
		a.ID, a.Name, a.Type, a.Balance.String())
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, balance FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var balance string
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("parse account balance: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpsertTransaction inserts a transaction or refreshes its upstream
// fields. A user-set category on the existing row survives the update.
func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, tx core.Transaction) error {
	var snapshot any
	if tx.SnapshotBalance != nil {
		snapshot = tx.SnapshotBalance.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, date, description, amount, snapshot_balance)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   account_id = excluded.account_id,
		   date = excluded.date,
		   description = excluded.description,
		   amount = excluded.amount,
		   snapshot_balance = excluded.snapshot_balance`,
		tx.ID, tx.AccountID, tx.Date, tx.Description, tx.Amount.String(), snapshot)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns transactions in the inclusive [from, to] date
// range, newest first. Empty bounds are open; an empty accountID matches
// all accounts. The second return value maps transaction IDs to
// user-set category overrides.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to, accountID string) ([]core.Transaction, map[string]string, error) {
	query := `SELECT id, account_id, date, description, amount, snapshot_balance, user_category
		FROM transactions WHERE 1=1`
	var args []any
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	overrides := make(map[string]string)
	for rows.Next() {
		var tx core.Transaction
		var amount string
		var snapshot, userCategory sql.NullString
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Date, &tx.Description, &amount, &snapshot, &userCategory); err != nil {
			return nil, nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, nil, fmt.Errorf("parse transaction amount: %w", err)
		}
		if snapshot.Valid {
			balance, err := decimal.NewFromString(snapshot.String)
			if err != nil {
				return nil, nil, fmt.Errorf("parse snapshot balance: %w", err)
			}
			tx.SnapshotBalance = &balance
		}
		if userCategory.Valid {
			overrides[tx.ID] = userCategory.String
		}
		txs = append(txs, tx)
	}
	return txs, overrides, rows.Err()
}

// SetUserCategory records a manual recategorization for a transaction.
func (r *SQLiteRepository) SetUserCategory(ctx context.Context, id, category string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET user_category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("set user category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction recategorized", "id", id, "category", category)
	return nil
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, ticker, type, quantity, price, total, purchase_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Ticker, string(a.Type), a.Quantity.String(), a.Price.String(), a.Total.String(), a.PurchaseDate)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}

	slog.InfoContext(ctx, "Asset created", "id", a.ID, "type", a.Type, "ticker", a.Ticker)
	return nil
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, a core.Asset) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET ticker = ?, type = ?, quantity = ?, price = ?, total = ?, purchase_date = ?
		 WHERE id = ?`,
		a.Ticker, string(a.Type), a.Quantity.String(), a.Price.String(), a.Total.String(), a.PurchaseDate, a.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticker, type, quantity, price, total, purchase_date FROM assets ORDER BY purchase_date`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []core.Asset
	for rows.Next() {
		var a core.Asset
		var typ, quantity, price, total string
		var ticker sql.NullString
		if err := rows.Scan(&a.ID, &ticker, &typ, &quantity, &price, &total, &a.PurchaseDate); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.Ticker = ticker.String
		a.Type = core.NormalizeAssetType(typ)
		if a.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("parse asset quantity: %w", err)
		}
		if a.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse asset price: %w", err)
		}
		if a.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse asset total: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
