package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"paper_trader/internal/models"
)

// DefaultSizingFraction is the share of current cash committed per trade.
const DefaultSizingFraction = 0.05

// ErrInvalidPrice rejects executions against a non-positive price.
var ErrInvalidPrice = errors.New("price must be positive")

// Executor applies trade intents to a portfolio. Each call either mutates
// cash and the ledger together and appends exactly one trade record, or
// leaves the portfolio untouched. No partial trade state is ever visible.
type Executor struct {
	fraction decimal.Decimal
}

// NewExecutor returns an executor sizing each trade at the given fraction
// of current cash. Fractions outside (0, 1] fall back to the default; a
// fraction above 1 could overdraw cash, which the account contract forbids.
func NewExecutor(fraction float64) *Executor {
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultSizingFraction
	}
	return &Executor{fraction: decimal.NewFromFloat(fraction)}
}

// Execute applies one intent for symbol at price.
//
// Sizing: quantity = floor(cash * fraction / price). A zero quantity means
// insufficient capital and is a silent no-op, not an error. On SELL the
// position's full quantity is closed regardless of the sized quantity.
//
// Returns the appended trade record, or nil on a no-op. A BUY on an open
// position returns ErrPositionOpen; a SELL with no position returns
// ErrNoPosition. Both leave the portfolio unchanged.
func (e *Executor) Execute(p *Portfolio, symbol string, action models.Action, price decimal.Decimal, now time.Time) (*models.TradeRecord, error) {
	if action == models.ActionHold {
		return nil, nil
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	switch action {
	case models.ActionBuy:
		return e.buy(p, symbol, price, now)
	case models.ActionSell:
		return e.sell(p, symbol, price, now)
	}
	return nil, nil
}

func (e *Executor) buy(p *Portfolio, symbol string, price decimal.Decimal, now time.Time) (*models.TradeRecord, error) {
	if _, ok := p.ledger.Get(symbol); ok {
		return nil, ErrPositionOpen
	}

	quantity := p.Cash.Mul(e.fraction).Div(price).Floor().IntPart()
	if quantity <= 0 {
		return nil, nil
	}

	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(p.Cash) {
		// Unreachable with fraction <= 1; kept so cash can never go negative.
		return nil, nil
	}

	if err := p.ledger.Open(symbol, quantity, price); err != nil {
		return nil, err
	}
	p.Cash = p.Cash.Sub(cost)

	rec := models.TradeRecord{
		Timestamp: now,
		Symbol:    symbol,
		Action:    models.ActionBuy,
		Quantity:  quantity,
		Price:     price,
	}
	p.appendTrade(rec)
	return &rec, nil
}

func (e *Executor) sell(p *Portfolio, symbol string, price decimal.Decimal, now time.Time) (*models.TradeRecord, error) {
	pos, err := p.ledger.Close(symbol)
	if err != nil {
		return nil, err
	}

	quantity := pos.Quantity
	proceeds := price.Mul(decimal.NewFromInt(quantity))
	p.Cash = p.Cash.Add(proceeds)

	profit := price.Sub(pos.EntryPrice).Mul(decimal.NewFromInt(quantity))
	rec := models.TradeRecord{
		Timestamp: now,
		Symbol:    symbol,
		Action:    models.ActionSell,
		Quantity:  quantity,
		Price:     price,
		Profit:    &profit,
	}
	p.appendTrade(rec)
	return &rec, nil
}
