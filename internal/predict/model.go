package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"paper_trader/internal/features"
	"paper_trader/internal/market"
	"paper_trader/internal/models"
	"paper_trader/internal/signal"
	"paper_trader/internal/storage"
)

// DefaultHistory is how many daily bars feed the feature pipeline per
// prediction.
const DefaultHistory = 100

// ModelDoc is the persisted form of a trained per-symbol classifier: a
// logistic model over standardized features. It mirrors the training
// pipeline's export, which bundles the model with its scaler and the exact
// feature list it was fitted on.
type ModelDoc struct {
	Version  string    `json:"version"`
	Features []string  `json:"features"`
	Means    []float64 `json:"means"`
	Stds     []float64 `json:"stds"`
	Weights  []float64 `json:"weights"`
	Bias     float64   `json:"bias"`
}

func (d *ModelDoc) validate() error {
	if len(d.Features) == 0 {
		return fmt.Errorf("model has no features")
	}
	if len(d.Means) != len(d.Features) || len(d.Stds) != len(d.Features) || len(d.Weights) != len(d.Features) {
		return fmt.Errorf("model arrays disagree: %d features, %d means, %d stds, %d weights",
			len(d.Features), len(d.Means), len(d.Stds), len(d.Weights))
	}
	return nil
}

// ModelKey is the blob key a symbol's latest model lives under.
func ModelKey(symbol string) string {
	return "models/" + symbol + "/latest_model.json"
}

// ModelService is a PredictionSource backed by model documents in the blob
// store and candle history from a pricing source. Loaded models are cached
// for the life of the process; a new model is picked up on restart.
type ModelService struct {
	store   storage.BlobStore
	pricing market.PricingSource
	history int

	mu    sync.Mutex
	cache map[string]*ModelDoc
}

func NewModelService(store storage.BlobStore, pricing market.PricingSource, history int) *ModelService {
	if history <= 0 {
		history = DefaultHistory
	}
	return &ModelService{
		store:   store,
		pricing: pricing,
		history: history,
		cache:   make(map[string]*ModelDoc),
	}
}

// Predict scores the symbol's latest feature vector with its model.
// The classifier output is BUY when the positive class wins and SELL
// otherwise; confidence is the probability of the winning class. The
// confidence gate downstream decides whether that becomes a trade.
func (s *ModelService) Predict(ctx context.Context, symbol string) (*signal.Signal, error) {
	doc, err := s.model(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	candles, err := s.pricing.Candles(ctx, symbol, s.history)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	vec, err := features.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}

	p := doc.score(vec)
	sig := &signal.Signal{Action: models.ActionBuy, Confidence: p}
	if p < 0.5 {
		sig.Action = models.ActionSell
		sig.Confidence = 1 - p
	}
	return sig, nil
}

// score returns the probability of the positive (BUY) class. Features the
// vector does not carry score as zero, matching the training pipeline's
// fillna(0) behavior.
func (d *ModelDoc) score(vec features.Vector) float64 {
	z := d.Bias
	for i, name := range d.Features {
		x := vec[name]
		if d.Stds[i] > 0 {
			x = (x - d.Means[i]) / d.Stds[i]
		}
		z += d.Weights[i] * x
	}
	return 1 / (1 + math.Exp(-z))
}

func (s *ModelService) model(ctx context.Context, symbol string) (*ModelDoc, error) {
	s.mu.Lock()
	if doc, ok := s.cache[symbol]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	data, ok, err := s.store.Get(ctx, ModelKey(symbol))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", symbol, err)
	}
	if !ok {
		return nil, nil
	}

	var doc ModelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load model %s: %w", symbol, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("load model %s: %w", symbol, err)
	}

	s.mu.Lock()
	s.cache[symbol] = &doc
	s.mu.Unlock()
	return &doc, nil
}
