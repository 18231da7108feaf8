// Package predict produces per-symbol trading signals from trained model
// documents stored in the blob store.
package predict

import (
	"context"

	"paper_trader/internal/signal"
)

// PredictionSource produces a trading signal for a symbol.
//
// A nil signal with a nil error means no model is available for the symbol;
// absence is a first-class outcome, not an error. Errors are reserved for
// genuine failures (bad model document, unreachable store, no usable
// market history).
type PredictionSource interface {
	Predict(ctx context.Context, symbol string) (*signal.Signal, error)
}
