package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

// MonthlyFlow is one bar of the income-vs-expense chart.
type MonthlyFlow struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Label renders the month in the MM/YY form the charts use. Display
// only; grouping and ordering never touch it.
func (m MonthlyFlow) Label() string {
	return fmt.Sprintf("%02d/%02d", m.Month, m.Year%100)
}

// BalancePoint is a point-in-time account balance snapshot, as reported
// alongside a transaction. Distinct from DailyBalance.NetFlow: this is
// the balance the bank stated, not a computed sum.
type BalancePoint struct {
	Date            string          `json:"date"`
	SnapshotBalance decimal.Decimal `json:"balance"`
}

// CategoryTotal is one slice of the expense pie chart.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// GroupByMonth groups transactions into (year, month) buckets in
// ascending chronological order. from/to are optional inclusive ISO-date
// bounds. Transactions without a parseable date are skipped rather than
// failing the whole aggregation.
func GroupByMonth(txs []core.CategorizedTransaction, from, to string) []MonthlyFlow {
	type key struct{ year, month int }
	groups := make(map[key]*MonthlyFlow)
	for _, tx := range txs {
		if !inRange(tx.Date, from, to) {
			continue
		}
		year, month, ok := monthKey(tx.Date)
		if !ok {
			continue
		}
		k := key{year, month}
		flow, ok := groups[k]
		if !ok {
			flow = &MonthlyFlow{
				Year:     year,
				Month:    month,
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
			}
			groups[k] = flow
		}
		if tx.Amount.Sign() > 0 {
			flow.Income = flow.Income.Add(tx.Amount)
		} else if tx.Amount.Sign() < 0 {
			flow.Expenses = flow.Expenses.Add(tx.Amount.Abs())
		}
	}

	out := make([]MonthlyFlow, 0, len(groups))
	for _, flow := range groups {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// BalanceEvolution picks the terminal snapshot balance recorded against
// each day, ascending by date. When several transactions share a date
// the last one carrying a balance wins: this charts the account's
// end-of-day position, not a sum. Transactions without a snapshot
// balance contribute nothing.
func BalanceEvolution(txs []core.CategorizedTransaction, from, to string) []BalancePoint {
	byDay := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.SnapshotBalance == nil || !inRange(tx.Date, from, to) {
			continue
		}
		byDay[tx.Date] = *tx.SnapshotBalance
	}

	out := make([]BalancePoint, 0, len(byDay))
	for date, balance := range byDay {
		out = append(out, BalancePoint{Date: date, SnapshotBalance: balance})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CategoryBreakdown sums absolute amounts per local category across
// expense transactions (amount < 0) in the period, descending by total.
// Credits and zero amounts are ignored; ties break on category id so
// the output is stable.
func CategoryBreakdown(txs []core.CategorizedTransaction, from, to string) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Amount.Sign() >= 0 || !inRange(tx.Date, from, to) {
			continue
		}
		totals[tx.LocalCategory] = totals[tx.LocalCategory].Add(tx.Amount.Abs())
	}

	out := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
