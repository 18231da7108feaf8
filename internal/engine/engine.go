// Package engine runs the trading cycle: for each tracked symbol it pulls
// a prediction, gates it through the confidence threshold, executes at
// most one simulated trade, then values the portfolio and persists a
// snapshot.
//
// The engine owns the portfolio for the lifetime of the process. Cycles
// run one at a time; nothing here is safe for concurrent cycles against
// the same snapshot key, and none are ever started.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"paper_trader/internal/config"
	"paper_trader/internal/id"
	"paper_trader/internal/market"
	"paper_trader/internal/models"
	"paper_trader/internal/notifications"
	"paper_trader/internal/portfolio"
	"paper_trader/internal/predict"
	"paper_trader/internal/signal"
	"paper_trader/internal/storage"
)

// DefaultTimeout bounds each collaborator call when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Params wires the engine's collaborators. Broker is optional; when set,
// successful simulated trades are mirrored as live orders. Now is optional
// and exists for tests.
type Params struct {
	Profile     *config.Profile
	Pricing     market.PricingSource
	Predictions predict.PredictionSource
	Snapshots   *storage.SnapshotStore
	Broker      market.Broker
	Timeout     time.Duration
	Now         func() time.Time
}

type Engine struct {
	profile     *config.Profile
	pf          *portfolio.Portfolio
	interpreter signal.Interpreter
	executor    *portfolio.Executor
	pricing     market.PricingSource
	predictions predict.PredictionSource
	snapshots   *storage.SnapshotStore
	broker      market.Broker
	timeout     time.Duration
	now         func() time.Time
}

func New(p Params) *Engine {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Engine{
		profile:     p.Profile,
		pf:          portfolio.New(decimal.NewFromFloat(p.Profile.InitialCapital)),
		interpreter: signal.NewInterpreter(p.Profile.ConfidenceThreshold),
		executor:    portfolio.NewExecutor(p.Profile.SizingFraction),
		pricing:     p.Pricing,
		predictions: p.Predictions,
		snapshots:   p.Snapshots,
		broker:      p.Broker,
		timeout:     p.Timeout,
		now:         p.Now,
	}
}

// Portfolio exposes the engine's account state, e.g. for a post-run
// summary. Callers must not mutate it; the engine is the sole owner.
func (e *Engine) Portfolio() *portfolio.Portfolio { return e.pf }

// Restore resumes from the latest persisted snapshot, if one exists.
// Called once before the first cycle, never mid-run.
func (e *Engine) Restore(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	snap, err := e.snapshots.Load(callCtx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if snap == nil {
		log.Printf("No snapshot at %s, starting with fresh capital %.2f",
			e.snapshots.Key(), e.profile.InitialCapital)
		return nil
	}

	e.pf = portfolio.FromSnapshot(*snap, decimal.NewFromFloat(e.profile.InitialCapital))
	log.Printf("Restored snapshot from %s: cash %s, %d open positions, %d trades",
		snap.Timestamp, e.pf.Cash.StringFixed(2), e.pf.Ledger().Len(), e.pf.TradeCount())
	return nil
}

// RunCycle processes every tracked symbol once, then values the portfolio
// and persists a snapshot.
//
// Collaborator failures degrade the affected symbol to HOLD or a skip and
// never abort the cycle. The only error RunCycle returns is a snapshot
// persistence failure; in-memory state is kept even then, so the next
// successful persist carries the full trade history.
func (e *Engine) RunCycle(ctx context.Context) error {
	cycleID := id.New()
	log.Printf("--- cycle %s: starting over %d symbols ---", cycleID, len(e.profile.Symbols))

	for _, symbol := range e.profile.Symbols {
		e.processSymbol(ctx, symbol)
	}

	valuation := portfolio.Valuate(e.pf, e.priceLookup(ctx))
	snap := e.pf.Snapshot(valuation, e.now())

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.snapshots.Save(callCtx, snap); err != nil {
		// State stays in memory; the next successful persist supersedes
		// the missing snapshot.
		log.Printf("ERROR: cycle %s: snapshot not persisted: %v", cycleID, err)
		notifications.Notify(fmt.Sprintf("⚠️ Snapshot persist failed: %v", err))
		return fmt.Errorf("persist snapshot: %w", err)
	}

	log.Printf("--- cycle %s: complete, total value %s (%s%%) ---",
		cycleID, valuation.TotalValue.StringFixed(2), valuation.TotalReturn.StringFixed(2))
	return nil
}

// processSymbol runs signal -> decision -> execution for one symbol. Every
// failure path logs and returns; a symbol can never take the cycle down.
func (e *Engine) processSymbol(ctx context.Context, symbol string) {
	sig := e.fetchSignal(ctx, symbol)
	action := e.interpreter.Decide(sig)
	log.Printf("Prediction for %s: %s (confidence %.2f%%) -> %s",
		symbol, sig.Action, sig.Confidence*100, action)

	if action == models.ActionHold {
		return
	}

	price, ok := e.latestPrice(ctx, symbol)
	if !ok {
		log.Printf("No price for %s, skipping this cycle", symbol)
		return
	}

	rec, err := e.executor.Execute(e.pf, symbol, action, price, e.now())
	if err != nil {
		log.Printf("Trade rejected for %s: %v", symbol, err)
		return
	}
	if rec == nil {
		log.Printf("Insufficient capital to %s %s at %s, skipping", action, symbol, price.StringFixed(2))
		return
	}

	if rec.Action == models.ActionSell && rec.Profit != nil {
		log.Printf("SIMULATED SELL: %d %s @ $%s, P/L: $%s",
			rec.Quantity, rec.Symbol, rec.Price.StringFixed(2), rec.Profit.StringFixed(2))
	} else {
		log.Printf("SIMULATED BUY: %d %s @ $%s", rec.Quantity, rec.Symbol, rec.Price.StringFixed(2))
	}

	e.mirrorOrder(ctx, rec)
}

// fetchSignal asks the prediction service for a signal, degrading to HOLD
// on any failure or missing model.
func (e *Engine) fetchSignal(ctx context.Context, symbol string) signal.Signal {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	sig, err := e.predictions.Predict(callCtx, symbol)
	if err != nil {
		log.Printf("Prediction error for %s, holding: %v", symbol, err)
		return signal.Hold()
	}
	if sig == nil {
		log.Printf("No trained model for %s, holding", symbol)
		return signal.Hold()
	}
	return *sig
}

func (e *Engine) latestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	price, ok, err := e.pricing.LatestPrice(callCtx, symbol)
	if err != nil {
		log.Printf("Price lookup failed for %s: %v", symbol, err)
		return decimal.Decimal{}, false
	}
	return price, ok
}

func (e *Engine) priceLookup(ctx context.Context) portfolio.PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		return e.latestPrice(ctx, symbol)
	}
}

// mirrorOrder forwards an executed simulated trade to the live broker,
// fire-and-forget. The order id or failure is only logged.
func (e *Engine) mirrorOrder(ctx context.Context, rec *models.TradeRecord) {
	if e.broker == nil {
		return
	}

	side := "buy"
	if rec.Action == models.ActionSell {
		side = "sell"
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	orderID, err := e.broker.SubmitOrder(callCtx, rec.Symbol, rec.Quantity, side)
	if err != nil {
		log.Printf("Broker mirror failed for %s %s: %v", side, rec.Symbol, err)
		return
	}
	log.Printf("Broker order submitted: %s %d %s (order %s)", side, rec.Quantity, rec.Symbol, orderID)
}
