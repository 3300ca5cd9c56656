package report

import (
	"github.com/shopspring/decimal"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

var oneHundred = decimal.NewFromInt(100)

// Allocation is one ring of the portfolio allocation chart.
type Allocation struct {
	Type       core.AssetType  `json:"type"`
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PatrimonyPoint is one bar of the patrimony-over-time chart.
type PatrimonyPoint struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Allocate groups assets by instrument type and computes each group's
// share of the total portfolio value. The result carries every known
// type in declared order, zero-valued ones included, so allocation
// charts always show the full legend. Assets with an unrecognized type
// count under "other". A zero-valued portfolio yields zero percentages,
// never a division error.
func Allocate(assets []core.Asset) []Allocation {
	values := make(map[core.AssetType]decimal.Decimal)
	grand := decimal.Zero
	for _, a := range assets {
		t := a.Type
		if !t.IsValid() {
			t = core.AssetOther
		}
		values[t] = values[t].Add(a.Total)
		grand = grand.Add(a.Total)
	}

	types := core.KnownAssetTypes()
	out := make([]Allocation, 0, len(types))
	for _, t := range types {
		value := values[t]
		pct := decimal.Zero
		if grand.Sign() > 0 {
			pct = value.Mul(oneHundred).DivRound(grand, 4)
		}
		out = append(out, Allocation{
			Type:       t,
			Label:      t.Label(),
			Value:      value,
			Percentage: pct,
		})
	}
	return out
}

// PortfolioValue sums the derived totals across all assets.
func PortfolioValue(assets []core.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.Total)
	}
	return total
}

// PatrimonyByMonth buckets assets cumulatively: an asset counts in every
// month from its purchase month onward, so each point is the portfolio
// value held at that month, not a per-month delta. The series covers the
// inclusive [from, to] month range in chronological order. Assets with
// an unparseable purchase date are skipped.
func PatrimonyByMonth(assets []core.Asset, fromYear, fromMonth, toYear, toMonth int) []PatrimonyPoint {
	if fromYear > toYear || (fromYear == toYear && fromMonth > toMonth) {
		return nil
	}

	var out []PatrimonyPoint
	year, month := fromYear, fromMonth
	for {
		total := decimal.Zero
		for _, a := range assets {
			py, pm, ok := monthKey(a.PurchaseDate)
			if !ok {
				continue
			}
			if py < year || (py == year && pm <= month) {
				total = total.Add(a.Total)
			}
		}
		out = append(out, PatrimonyPoint{Year: year, Month: month, Total: total})

		if year == toYear && month == toMonth {
			break
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return out
}
