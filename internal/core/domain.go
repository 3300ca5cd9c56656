package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AssetStock       AssetType = "stock"
	AssetFund        AssetType = "fund"
	AssetFixedIncome AssetType = "fixed_income"
	AssetCrypto      AssetType = "crypto"
	AssetOther       AssetType = "other"
)

type (
	// AssetType identifies the instrument class of an investment asset.
	AssetType string

	// Transaction is a raw bank movement as reported by a data source.
	// Amount is signed: positive for credits, negative for debits.
	// Date is an opaque calendar key (YYYY-MM-DD), never a timestamp.
	Transaction struct {
		ID              string           `json:"id"`
		AccountID       string           `json:"accountId"`
		Date            string           `json:"date"`
		Description     string           `json:"description"`
		Amount          decimal.Decimal  `json:"amount"`
		SnapshotBalance *decimal.Decimal `json:"balance,omitempty"`
	}

	// CategorizedTransaction is a Transaction with a local category
	// attached. LocalCategory is set once by the classifier and replaced
	// only by an explicit user recategorization.
	CategorizedTransaction struct {
		Transaction
		LocalCategory string   `json:"localCategory"`
		Subcategory   string   `json:"subcategory,omitempty"`
		Tags          []string `json:"tags,omitempty"`
		IsRecurring   bool     `json:"isRecurring,omitempty"`
	}

	// Account is a bank account summary from a data source.
	Account struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Type    string          `json:"type"`
		Balance decimal.Decimal `json:"balance"`
	}

	// Asset is a manually entered investment position.
	// Total is derived (Quantity * Price) and must be recomputed whenever
	// quantity or price changes.
	Asset struct {
		ID           string          `json:"id"`
		Type         AssetType       `json:"type"`
		Ticker       string          `json:"ticker,omitempty"`
		Quantity     decimal.Decimal `json:"quantity"`
		Price        decimal.Decimal `json:"price"`
		Total        decimal.Decimal `json:"total"`
		PurchaseDate string          `json:"purchaseDate"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAssetType = errors.New("invalid asset type")
)

// KnownAssetTypes returns every asset type in the fixed order used for
// allocation charts, so legends stay complete and stable.
func KnownAssetTypes() []AssetType {
	return []AssetType{AssetStock, AssetFund, AssetFixedIncome, AssetCrypto, AssetOther}
}

var assetTypeLabels = map[AssetType]string{
	AssetStock:       "Ações",
	AssetFund:        "Fundos",
	AssetFixedIncome: "Renda Fixa",
	AssetCrypto:      "Criptomoedas",
	AssetOther:       "Outros",
}

// Label returns the display name for the asset type, falling back to the
// raw value for unrecognized types.
func (t AssetType) Label() string {
	if label, ok := assetTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// IsValid returns true if the asset type is one of the known types.
func (t AssetType) IsValid() bool {
	_, ok := assetTypeLabels[t]
	return ok
}

// NormalizeAssetType maps free-form type strings onto a known AssetType,
// defaulting to AssetOther.
func NormalizeAssetType(s string) AssetType {
	t := AssetType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return AssetOther
}

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (tx Transaction) Validate() error {
	if !ValidDate(tx.Date) {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if tx.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

// Recalculate refreshes the derived Total from Quantity and Price.
func (a *Asset) Recalculate() {
	a.Total = a.Quantity.Mul(a.Price)
}

func (a Asset) Validate() error {
	if !a.Type.IsValid() {
		return ErrInvalidAssetType
	}
	if !ValidDate(a.PurchaseDate) {
		return ErrInvalidDate
	}
	if a.Quantity.Sign() <= 0 || a.Price.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
