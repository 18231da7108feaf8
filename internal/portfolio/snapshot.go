package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"paper_trader/internal/models"
)

// Snapshot renders the portfolio into its durable document form. The trade
// list is truncated to the most recent models.MaxSnapshotTrades entries,
// newest first.
func (p *Portfolio) Snapshot(v Valuation, now time.Time) models.Snapshot {
	positions := make(map[string]models.SnapshotPosition, p.ledger.Len())
	for _, symbol := range p.ledger.Symbols() {
		pos, _ := p.ledger.Get(symbol)
		positions[symbol] = models.SnapshotPosition{
			Quantity:     pos.Quantity,
			BuyPrice:     pos.EntryPrice.InexactFloat64(),
			CurrentPrice: pos.CurrentPrice.InexactFloat64(),
			PnL:          pos.UnrealizedPnL.InexactFloat64(),
		}
	}

	recent := p.RecentTrades(models.MaxSnapshotTrades)
	trades := make([]models.SnapshotTrade, 0, len(recent))
	for _, t := range recent {
		trades = append(trades, models.NewSnapshotTrade(t))
	}

	return models.Snapshot{
		Portfolio: models.SnapshotPortfolio{
			Cash:        p.Cash.InexactFloat64(),
			TotalValue:  v.TotalValue.InexactFloat64(),
			TotalReturn: v.TotalReturn.InexactFloat64(),
			Positions:   positions,
		},
		Trades:    trades,
		Timestamp: now.Format(time.RFC3339),
	}
}

// FromSnapshot rebuilds a portfolio from a persisted snapshot so a restarted
// process resumes where the last cycle left off. initialCapital is the
// configured starting capital, which the snapshot does not carry; returns
// are computed against it.
//
// The snapshot only holds the most recent trades, so a restored history may
// be shorter than the one the previous process accumulated.
func FromSnapshot(snap models.Snapshot, initialCapital decimal.Decimal) *Portfolio {
	p := New(initialCapital)
	p.Cash = decimal.NewFromFloat(snap.Portfolio.Cash)

	for symbol, sp := range snap.Portfolio.Positions {
		if err := p.ledger.Open(symbol, sp.Quantity, decimal.NewFromFloat(sp.BuyPrice)); err != nil {
			continue
		}
		pos, _ := p.ledger.Get(symbol)
		pos.CurrentPrice = decimal.NewFromFloat(sp.CurrentPrice)
		pos.UnrealizedPnL = decimal.NewFromFloat(sp.PnL)
	}

	// Snapshot trades are newest-first; the in-memory history is oldest-first.
	for i := len(snap.Trades) - 1; i >= 0; i-- {
		p.appendTrade(snap.Trades[i].Record())
	}
	return p
}
