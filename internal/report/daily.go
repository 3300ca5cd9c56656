// Package report contains the pure aggregation functions behind the
// dashboard charts: daily and monthly flows, balance evolution, category
// breakdowns and portfolio allocation. Every function is a deterministic
// transformation over the caller's slice; nothing here does I/O or keeps
// state between calls.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

// DailyBalance summarizes one calendar day of movements. NetFlow is
// income minus expenses for the day; it is not the account's running
// balance (see BalancePoint for that notion).
type DailyBalance struct {
	Date         string                        `json:"date"`
	Income       decimal.Decimal               `json:"income"`
	Expenses     decimal.Decimal               `json:"expenses"`
	NetFlow      decimal.Decimal               `json:"netFlow"`
	Transactions []core.CategorizedTransaction `json:"transactions"`
}

// GroupByDay groups transactions by their calendar date, newest day
// first. Per day: income sums the positive amounts, expenses sums the
// absolute value of the rest, and the transaction list keeps input
// order. Records without a date are skipped.
func GroupByDay(txs []core.CategorizedTransaction) []DailyBalance {
	groups := make(map[string]*DailyBalance)
	for _, tx := range txs {
		if tx.Date == "" {
			continue
		}
		day, ok := groups[tx.Date]
		if !ok {
			day = &DailyBalance{
				Date:     tx.Date,
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
			}
			groups[tx.Date] = day
		}
		day.Transactions = append(day.Transactions, tx)
		if tx.Amount.Sign() > 0 {
			day.Income = day.Income.Add(tx.Amount)
		} else {
			day.Expenses = day.Expenses.Add(tx.Amount.Abs())
		}
		day.NetFlow = day.Income.Sub(day.Expenses)
	}

	out := make([]DailyBalance, 0, len(groups))
	for _, day := range groups {
		out = append(out, *day)
	}
	// ISO date keys sort chronologically as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// monthKey extracts (year, month) from the first two components of an
// ISO date string. Grouping and sorting use this numeric pair, never the
// display label, so "2024-12" and "2025-01" cannot collide or mis-sort.
func monthKey(date string) (year, month int, ok bool) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// inRange applies inclusive ISO-date bounds; empty bounds are open.
func inRange(date, from, to string) bool {
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
