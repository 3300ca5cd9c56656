package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

func asset(typ core.AssetType, total float64, purchaseDate string) core.Asset {
	return core.Asset{
		ID:           "a-" + string(typ),
		Type:         typ,
		Quantity:     decimal.NewFromInt(1),
		Price:        decimal.NewFromFloat(total),
		Total:        decimal.NewFromFloat(total),
		PurchaseDate: purchaseDate,
	}
}

func TestAllocatePercentages(t *testing.T) {
	allocs := Allocate([]core.Asset{
		asset(core.AssetStock, 6660, "2024-01-10"),
		asset(core.AssetFixedIncome, 12850.45, "2024-02-10"),
	})

	// One entry per known type, declared order, zero-valued included.
	require.Len(t, allocs, len(core.KnownAssetTypes()))
	byType := map[core.AssetType]Allocation{}
	sum := decimal.Zero
	for _, a := range allocs {
		byType[a.Type] = a
		sum = sum.Add(a.Percentage)
	}

	stockPct, _ := byType[core.AssetStock].Percentage.Float64()
	assert.InDelta(t, 34.1356, stockPct, 0.0001)
	fixedPct, _ := byType[core.AssetFixedIncome].Percentage.Float64()
	assert.InDelta(t, 65.8644, fixedPct, 0.0001)
	total, _ := sum.Float64()
	assert.InDelta(t, 100.0, total, 0.01)

	assert.True(t, byType[core.AssetCrypto].Value.IsZero())
	assert.True(t, byType[core.AssetCrypto].Percentage.IsZero())
}

func TestAllocateEmpty(t *testing.T) {
	allocs := Allocate(nil)
	require.Len(t, allocs, len(core.KnownAssetTypes()))
	for _, a := range allocs {
		assert.True(t, a.Value.IsZero(), "type %s", a.Type)
		assert.True(t, a.Percentage.IsZero(), "type %s", a.Type)
	}
}

func TestAllocateUnknownTypeFallsBackToOther(t *testing.T) {
	allocs := Allocate([]core.Asset{
		{Type: "collectible", Total: decimal.NewFromInt(500)},
	})
	for _, a := range allocs {
		if a.Type == core.AssetOther {
			assert.True(t, a.Value.Equal(decimal.NewFromInt(500)))
			return
		}
	}
	t.Fatal("missing other bucket")
}

func TestAllocateKeepsDeclaredOrder(t *testing.T) {
	allocs := Allocate([]core.Asset{asset(core.AssetCrypto, 100, "2024-01-01")})
	want := core.KnownAssetTypes()
	require.Len(t, allocs, len(want))
	for i, a := range allocs {
		assert.Equal(t, want[i], a.Type)
	}
}

func TestPatrimonyByMonthCumulative(t *testing.T) {
	assets := []core.Asset{
		asset(core.AssetStock, 1000, "2025-03-15"),
		asset(core.AssetFund, 500, "2025-04-01"),
	}
	points := PatrimonyByMonth(assets, 2025, 2, 2025, 5)
	require.Len(t, points, 4)

	// February: nothing purchased yet. March: stock only. April onward:
	// both, and the total never decreases (no disposal path).
	assert.True(t, points[0].Total.IsZero())
	assert.True(t, points[1].Total.Equal(decimal.NewFromInt(1000)))
	assert.True(t, points[2].Total.Equal(decimal.NewFromInt(1500)))
	assert.True(t, points[3].Total.Equal(decimal.NewFromInt(1500)))
}

func TestPatrimonyByMonthYearRollover(t *testing.T) {
	assets := []core.Asset{asset(core.AssetStock, 1000, "2024-11-20")}
	points := PatrimonyByMonth(assets, 2024, 11, 2025, 2)
	require.Len(t, points, 4)
	assert.Equal(t, 2024, points[0].Year)
	assert.Equal(t, 11, points[0].Month)
	assert.Equal(t, 2025, points[3].Year)
	assert.Equal(t, 2, points[3].Month)
	for _, p := range points {
		assert.True(t, p.Total.Equal(decimal.NewFromInt(1000)))
	}
}

func TestPatrimonyByMonthSkipsBadDates(t *testing.T) {
	assets := []core.Asset{
		asset(core.AssetStock, 1000, "not-a-date"),
		asset(core.AssetFund, 200, "2025-01-05"),
	}
	points := PatrimonyByMonth(assets, 2025, 1, 2025, 1)
	require.Len(t, points, 1)
	assert.True(t, points[0].Total.Equal(decimal.NewFromInt(200)))
}

func TestPatrimonyByMonthEmptyRange(t *testing.T) {
	assert.Nil(t, PatrimonyByMonth(nil, 2025, 5, 2025, 2))
}

func TestPortfolioValue(t *testing.T) {
	total := PortfolioValue([]core.Asset{
		asset(core.AssetStock, 6660, "2024-01-10"),
		asset(core.AssetFixedIncome, 12850.45, "2024-02-10"),
	})
	assert.True(t, total.Equal(decimal.NewFromFloat(19510.45)))
}
