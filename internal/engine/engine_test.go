package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper_trader/internal/config"
	"paper_trader/internal/market"
	"paper_trader/internal/models"
	"paper_trader/internal/signal"
	"paper_trader/internal/storage"
)

type fakePricing struct {
	prices map[string]float64
	err    error
}

func (f *fakePricing) LatestPrice(_ context.Context, symbol string) (decimal.Decimal, bool, error) {
	if f.err != nil {
		return decimal.Decimal{}, false, f.err
	}
	px, ok := f.prices[symbol]
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	return decimal.NewFromFloat(px), true, nil
}

func (f *fakePricing) Candles(context.Context, string, int) ([]market.Candle, error) {
	return nil, errors.New("not backed by history")
}

type fakePredictions struct {
	signals map[string]*signal.Signal
	err     error
}

func (f *fakePredictions) Predict(_ context.Context, symbol string) (*signal.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals[symbol], nil
}

type memBlobs struct {
	blobs  map[string][]byte
	putErr error
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: map[string][]byte{}} }

func (m *memBlobs) Put(_ context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.blobs[key] = data
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := m.blobs[key]
	return data, ok, nil
}

type fakeBroker struct {
	orders []string
	err    error
}

func (f *fakeBroker) SubmitOrder(_ context.Context, symbol string, qty int64, side string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.orders = append(f.orders, side+" "+symbol)
	return "order-1", nil
}

func testProfile(symbols ...string) *config.Profile {
	return &config.Profile{
		Symbols:             symbols,
		InitialCapital:      100000,
		ConfidenceThreshold: 0.65,
		SizingFraction:      0.05,
	}
}

var cycleTime = time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)

func newTestEngine(p Params) *Engine {
	if p.Snapshots == nil {
		p.Snapshots = storage.NewSnapshotStore(newMemBlobs(), "")
	}
	if p.Now == nil {
		p.Now = func() time.Time { return cycleTime }
	}
	return New(p)
}

func buySignal(conf float64) *signal.Signal {
	return &signal.Signal{Action: models.ActionBuy, Confidence: conf}
}

func sellSignal(conf float64) *signal.Signal {
	return &signal.Signal{Action: models.ActionSell, Confidence: conf}
}

func TestRunCycleExecutesBuy(t *testing.T) {
	blobs := newMemBlobs()
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}},
		Snapshots:   storage.NewSnapshotStore(blobs, ""),
	})

	require.NoError(t, e.RunCycle(context.Background()))

	pf := e.Portfolio()
	assert.True(t, pf.Cash.Equal(decimal.NewFromInt(95000)), "cash is %s", pf.Cash)
	pos, ok := pf.Ledger().Get("X")
	require.True(t, ok)
	assert.Equal(t, int64(100), pos.Quantity)
	assert.Equal(t, 1, pf.TradeCount())

	_, saved, err := blobs.Get(context.Background(), storage.DefaultSnapshotKey)
	require.NoError(t, err)
	assert.True(t, saved, "cycle must persist a snapshot")
}

func TestRunCycleSellRealizesProfit(t *testing.T) {
	preds := &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}}
	pricing := &fakePricing{prices: map[string]float64{"X": 50}}
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     pricing,
		Predictions: preds,
	})
	ctx := context.Background()

	require.NoError(t, e.RunCycle(ctx))

	preds.signals["X"] = sellSignal(0.8)
	pricing.prices["X"] = 60
	require.NoError(t, e.RunCycle(ctx))

	pf := e.Portfolio()
	assert.True(t, pf.Cash.Equal(decimal.NewFromInt(101000)), "cash is %s", pf.Cash)
	assert.Equal(t, 0, pf.Ledger().Len())

	trades := pf.RecentTrades(1)
	require.Len(t, trades, 1)
	require.NotNil(t, trades[0].Profit)
	assert.True(t, trades[0].Profit.Equal(decimal.NewFromInt(1000)), "profit is %s", trades[0].Profit)
}

func TestRunCycleLowConfidenceHolds(t *testing.T) {
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.6)}},
	})

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Equal(t, 0, e.Portfolio().TradeCount())
	assert.True(t, e.Portfolio().Cash.Equal(decimal.NewFromInt(100000)))
}

func TestRunCyclePredictionFailureHolds(t *testing.T) {
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{err: errors.New("model service down")},
	})

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Equal(t, 0, e.Portfolio().TradeCount())
}

func TestRunCycleNoModelHolds(t *testing.T) {
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{}},
	})

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Equal(t, 0, e.Portfolio().TradeCount())
}

func TestRunCycleMissingPriceSkipsSymbol(t *testing.T) {
	e := newTestEngine(Params{
		Profile: testProfile("X", "Y"),
		Pricing: &fakePricing{prices: map[string]float64{"Y": 20}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{
			"X": buySignal(0.9),
			"Y": buySignal(0.9),
		}},
	})

	require.NoError(t, e.RunCycle(context.Background()))

	pf := e.Portfolio()
	_, ok := pf.Ledger().Get("X")
	assert.False(t, ok, "unpriced symbol must not trade")
	_, ok = pf.Ledger().Get("Y")
	assert.True(t, ok, "priced symbol still trades in the same cycle")
}

func TestRunCyclePersistFailureKeepsState(t *testing.T) {
	blobs := newMemBlobs()
	blobs.putErr = errors.New("store unavailable")
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}},
		Snapshots:   storage.NewSnapshotStore(blobs, ""),
	})

	err := e.RunCycle(context.Background())
	require.Error(t, err)

	// The trade survives in memory so a later persist carries it.
	pf := e.Portfolio()
	assert.Equal(t, 1, pf.TradeCount())
	assert.True(t, pf.Cash.Equal(decimal.NewFromInt(95000)))

	blobs.putErr = nil
	require.NoError(t, e.RunCycle(context.Background()))
}

func TestRestoreResumesFromSnapshot(t *testing.T) {
	blobs := newMemBlobs()
	snaps := storage.NewSnapshotStore(blobs, "")
	ctx := context.Background()

	first := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}},
		Snapshots:   snaps,
	})
	require.NoError(t, first.RunCycle(ctx))

	second := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{}},
		Snapshots:   snaps,
	})
	require.NoError(t, second.Restore(ctx))

	pf := second.Portfolio()
	assert.True(t, pf.Cash.Equal(decimal.NewFromInt(95000)), "cash is %s", pf.Cash)
	pos, ok := pf.Ledger().Get("X")
	require.True(t, ok)
	assert.Equal(t, int64(100), pos.Quantity)
	assert.Equal(t, 1, pf.TradeCount())
}

func TestRestoreWithoutSnapshotStartsFresh(t *testing.T) {
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{},
		Predictions: &fakePredictions{},
	})

	require.NoError(t, e.Restore(context.Background()))
	assert.True(t, e.Portfolio().Cash.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, 0, e.Portfolio().TradeCount())
}

func TestRunCycleMirrorsOrdersToBroker(t *testing.T) {
	broker := &fakeBroker{}
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}},
		Broker:      broker,
	})

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Equal(t, []string{"buy X"}, broker.orders)
}

func TestRunCycleBrokerFailureDoesNotAffectAccounting(t *testing.T) {
	e := newTestEngine(Params{
		Profile:     testProfile("X"),
		Pricing:     &fakePricing{prices: map[string]float64{"X": 50}},
		Predictions: &fakePredictions{signals: map[string]*signal.Signal{"X": buySignal(0.9)}},
		Broker:      &fakeBroker{err: errors.New("alpaca rejected")},
	})

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Equal(t, 1, e.Portfolio().TradeCount())
	assert.True(t, e.Portfolio().Cash.Equal(decimal.NewFromInt(95000)))
}
