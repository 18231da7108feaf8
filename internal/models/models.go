package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the trade intent for one symbol in one cycle.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Position is a single open lot of a symbol. The ledger holds at most one
// per symbol; there is no averaging into an open lot and no partial exit.
//
// CurrentPrice and UnrealizedPnL are derived fields. The valuator refreshes
// them each cycle; when no quote is available they keep their last value.
type Position struct {
	Symbol        string
	Quantity      int64
	EntryPrice    decimal.Decimal
	CurrentPrice  decimal.Decimal
	UnrealizedPnL decimal.Decimal
}

// MarketValue is Quantity * CurrentPrice, using the last known mark.
func (p Position) MarketValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// TradeRecord is one executed trade. Records are append-only and never
// mutated after creation. Profit is set only on SELL records.
type TradeRecord struct {
	Timestamp time.Time
	Symbol    string
	Action    Action
	Quantity  int64
	Price     decimal.Decimal
	Profit    *decimal.Decimal
}
