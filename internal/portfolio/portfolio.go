// Package portfolio owns the simulated account: cash, the position ledger
// and the trade history. Nothing in here talks to the outside world; the
// orchestrator is the sole owner of a Portfolio and passes it into each
// operation explicitly.
package portfolio

import (
	"github.com/shopspring/decimal"

	"paper_trader/internal/models"
)

// Portfolio is the full mutable account state. Cash and the ledger only
// move together, through the Executor; the trade history is append-only.
type Portfolio struct {
	Cash           decimal.Decimal
	InitialCapital decimal.Decimal

	ledger *Ledger
	trades []models.TradeRecord
}

// New returns a portfolio holding initialCapital in cash and no positions.
func New(initialCapital decimal.Decimal) *Portfolio {
	return &Portfolio{
		Cash:           initialCapital,
		InitialCapital: initialCapital,
		ledger:         NewLedger(),
	}
}

// Ledger exposes the open positions.
func (p *Portfolio) Ledger() *Ledger { return p.ledger }

// TradeCount reports the total number of trades executed so far.
func (p *Portfolio) TradeCount() int { return len(p.trades) }

// RecentTrades returns up to n trades, newest first. The returned slice is
// a copy; records themselves are immutable.
func (p *Portfolio) RecentTrades(n int) []models.TradeRecord {
	if n > len(p.trades) {
		n = len(p.trades)
	}
	out := make([]models.TradeRecord, 0, n)
	for i := len(p.trades) - 1; i >= len(p.trades)-n; i-- {
		out = append(out, p.trades[i])
	}
	return out
}

func (p *Portfolio) appendTrade(rec models.TradeRecord) {
	p.trades = append(p.trades, rec)
}
