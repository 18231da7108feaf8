package portfolio

import (
	"github.com/shopspring/decimal"
)

// PriceLookup returns the latest tradable price for symbol. ok is false
// when no quote is available.
type PriceLookup func(symbol string) (decimal.Decimal, bool)

// Valuation is the derived portfolio summary for one cycle.
type Valuation struct {
	TotalValue  decimal.Decimal
	TotalReturn decimal.Decimal // percent relative to initial capital
}

var hundred = decimal.NewFromInt(100)

// Valuate marks every open position to market and aggregates total value
// and return. A position whose quote is unavailable keeps its previous
// CurrentPrice and UnrealizedPnL; one missing quote never fails the cycle.
//
// Total value is always recomputed from cash plus position marks, never
// carried over from a previous cycle.
func Valuate(p *Portfolio, lookup PriceLookup) Valuation {
	total := p.Cash

	for _, symbol := range p.ledger.Symbols() {
		pos, _ := p.ledger.Get(symbol)
		if price, ok := lookup(symbol); ok {
			pos.CurrentPrice = price
			pos.UnrealizedPnL = price.Sub(pos.EntryPrice).Mul(decimal.NewFromInt(pos.Quantity))
		}
		total = total.Add(pos.MarketValue())
	}

	v := Valuation{TotalValue: total}
	if p.InitialCapital.IsPositive() {
		v.TotalReturn = total.Sub(p.InitialCapital).Div(p.InitialCapital).Mul(hundred)
	}
	return v
}
