package market

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"paper_trader/internal/id"
)

// AlpacaProvider implements PricingSource and Broker against the Alpaca
// paper-trading API. The clients read APCA_API_KEY_ID / APCA_API_SECRET_KEY
// / APCA_API_BASE_URL from the environment.
type AlpacaProvider struct {
	mdClient    *marketdata.Client
	tradeClient *alpaca.Client
}

func NewAlpacaProvider() *AlpacaProvider {
	return &AlpacaProvider{
		mdClient:    marketdata.NewClient(marketdata.ClientOpts{}),
		tradeClient: alpaca.NewClient(alpaca.ClientOpts{}),
	}
}

// LatestPrice returns the price of the most recent trade for symbol.
func (a *AlpacaProvider) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	_ = ctx // the alpaca client does not take a context

	trade, err := a.mdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("alpaca: latest trade %s: %w", symbol, err)
	}
	if trade == nil || trade.Price <= 0 {
		return decimal.Decimal{}, false, nil
	}
	return decimal.NewFromFloat(trade.Price), true, nil
}

// Candles returns up to n recent daily bars for symbol, oldest first.
func (a *AlpacaProvider) Candles(ctx context.Context, symbol string, n int) ([]Candle, error) {
	_ = ctx

	bars, err := a.mdClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      time.Now().AddDate(0, 0, -2*n), // weekends and holidays thin the calendar out
		TotalLimit: n,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: bars %s: %w", symbol, err)
	}

	candles := make([]Candle, 0, len(bars))
	for _, b := range bars {
		candles = append(candles, Candle{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return candles, nil
}

// SubmitOrder places a day market order. The client order id is a ULID so
// retried submissions stay distinguishable in the Alpaca console.
func (a *AlpacaProvider) SubmitOrder(ctx context.Context, symbol string, quantity int64, side string) (string, error) {
	_ = ctx

	qty := decimal.NewFromInt(quantity)
	order, err := a.tradeClient.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &qty,
		Side:          alpaca.Side(side),
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		ClientOrderID: id.New(),
	})
	if err != nil {
		return "", fmt.Errorf("alpaca: place order %s %s: %w", side, symbol, err)
	}
	return order.ID, nil
}
