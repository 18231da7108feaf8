// Package market supplies prices and candle history to the trading engine.
//
// PricingSource and Broker are interfaces so the engine can run against the
// local CSV cache in simulation and against Alpaca when mirroring orders to
// a live paper account, without the core noticing the difference.
package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricingSource supplies market data for one symbol at a time.
//
// LatestPrice reports ok=false when no tradable price is available; that is
// an expected per-symbol condition, not an error. Candles returns up to n
// of the most recent daily bars, oldest first.
type PricingSource interface {
	LatestPrice(ctx context.Context, symbol string) (price decimal.Decimal, ok bool, err error)
	Candles(ctx context.Context, symbol string, n int) ([]Candle, error)
}

// Broker routes orders to a live brokerage. The engine treats submission as
// fire-and-forget: the order id (or failure) is only logged.
type Broker interface {
	SubmitOrder(ctx context.Context, symbol string, quantity int64, side string) (orderID string, err error)
}
