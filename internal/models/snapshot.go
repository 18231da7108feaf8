package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxSnapshotTrades caps the trade history carried in a snapshot. The
// in-memory history is unbounded; the snapshot keeps only the most recent
// trades, newest-first.
const MaxSnapshotTrades = 20

// Snapshot is the durable portfolio document written to the blob store
// after every cycle. It is the only externally visible artifact, so its
// JSON shape is fixed: plain numbers (not decimal strings), ISO-8601
// timestamps, and "profit" present only on SELL trades.
type Snapshot struct {
	Portfolio SnapshotPortfolio `json:"portfolio"`
	Trades    []SnapshotTrade   `json:"trades"`
	Timestamp string            `json:"timestamp"`
}

// SnapshotPortfolio is the portfolio section of a Snapshot.
type SnapshotPortfolio struct {
	Cash        float64                     `json:"cash"`
	TotalValue  float64                     `json:"total_value"`
	TotalReturn float64                     `json:"total_return"`
	Positions   map[string]SnapshotPosition `json:"positions"`
}

// SnapshotPosition is one open position as persisted in a Snapshot.
type SnapshotPosition struct {
	Quantity     int64   `json:"quantity"`
	BuyPrice     float64 `json:"buy_price"`
	CurrentPrice float64 `json:"current_price"`
	PnL          float64 `json:"pnl"`
}

// SnapshotTrade is one trade record as persisted in a Snapshot.
type SnapshotTrade struct {
	Timestamp string   `json:"timestamp"`
	Symbol    string   `json:"symbol"`
	Action    Action   `json:"action"`
	Quantity  int64    `json:"quantity"`
	Price     float64  `json:"price"`
	Profit    *float64 `json:"profit,omitempty"`
}

// NewSnapshotTrade converts a TradeRecord to its persisted form.
func NewSnapshotTrade(t TradeRecord) SnapshotTrade {
	st := SnapshotTrade{
		Timestamp: t.Timestamp.Format(time.RFC3339),
		Symbol:    t.Symbol,
		Action:    t.Action,
		Quantity:  t.Quantity,
		Price:     t.Price.InexactFloat64(),
	}
	if t.Profit != nil {
		profit := t.Profit.InexactFloat64()
		st.Profit = &profit
	}
	return st
}

// Record converts a persisted trade back to a TradeRecord. Timestamps that
// fail to parse are left at the zero time rather than failing the load.
func (st SnapshotTrade) Record() TradeRecord {
	ts, _ := time.Parse(time.RFC3339, st.Timestamp)
	rec := TradeRecord{
		Timestamp: ts,
		Symbol:    st.Symbol,
		Action:    st.Action,
		Quantity:  st.Quantity,
		Price:     decimal.NewFromFloat(st.Price),
	}
	if st.Profit != nil {
		profit := decimal.NewFromFloat(*st.Profit)
		rec.Profit = &profit
	}
	return rec
}
