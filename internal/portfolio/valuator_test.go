package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper_trader/internal/models"
)

func lookupFrom(prices map[string]float64) PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		px, ok := prices[symbol]
		if !ok {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(px), true
	}
}

func TestValuateMarksPositions(t *testing.T) {
	p := New(d(100000))
	e := NewExecutor(0.05)
	_, err := e.Execute(p, "X", models.ActionBuy, d(50), testTime)
	require.NoError(t, err) // 100 shares, cash 95000

	v := Valuate(p, lookupFrom(map[string]float64{"X": 55}))

	pos, _ := p.Ledger().Get("X")
	assert.True(t, pos.CurrentPrice.Equal(d(55)))
	assert.True(t, pos.UnrealizedPnL.Equal(d(500)))

	// 95000 cash + 100*55
	assert.True(t, v.TotalValue.Equal(d(100500)), "total = %s", v.TotalValue)
	assert.True(t, v.TotalReturn.Equal(d(0.5)), "return = %s", v.TotalReturn)
}

// A missing quote leaves the previous mark in place and never fails the
// valuation.
func TestValuateMissingQuoteKeepsStaleMark(t *testing.T) {
	p := New(d(100000))
	e := NewExecutor(0.05)
	_, err := e.Execute(p, "X", models.ActionBuy, d(50), testTime)
	require.NoError(t, err)

	Valuate(p, lookupFrom(map[string]float64{"X": 55}))
	v := Valuate(p, lookupFrom(nil)) // no quotes at all this cycle

	pos, _ := p.Ledger().Get("X")
	assert.True(t, pos.CurrentPrice.Equal(d(55)), "stale mark overwritten")
	assert.True(t, pos.UnrealizedPnL.Equal(d(500)))
	assert.True(t, v.TotalValue.Equal(d(100500)))
}

func TestValuateNeverPricedPosition(t *testing.T) {
	p := New(d(100000))
	e := NewExecutor(0.05)
	_, err := e.Execute(p, "X", models.ActionBuy, d(50), testTime)
	require.NoError(t, err)

	// No quote has ever arrived: the position carries no mark and
	// contributes nothing beyond cash, same as before it was valued.
	v := Valuate(p, lookupFrom(nil))
	assert.True(t, v.TotalValue.Equal(d(95000)), "total = %s", v.TotalValue)
}

func TestValuateEmptyPortfolio(t *testing.T) {
	p := New(d(100000))
	v := Valuate(p, lookupFrom(nil))
	assert.True(t, v.TotalValue.Equal(d(100000)))
	assert.True(t, v.TotalReturn.IsZero())
}
