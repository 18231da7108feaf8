// Package signal turns raw classifier output into a trade intent.
package signal

import "paper_trader/internal/models"

// Signal is the classifier output for one symbol at one point in time.
type Signal struct {
	Action     models.Action `json:"action"`
	Confidence float64       `json:"confidence"`
}

// Hold is the neutral signal used when a prediction is unavailable.
func Hold() Signal {
	return Signal{Action: models.ActionHold, Confidence: 0}
}

// DefaultThreshold is the minimum confidence required before a BUY/SELL
// classification is allowed through.
const DefaultThreshold = 0.65

// Interpreter gates noisy classifier output behind a confidence threshold.
// It is a pure function of its input: below the threshold every action is
// downgraded to HOLD, regardless of the upstream classification.
type Interpreter struct {
	Threshold float64
}

// NewInterpreter returns an Interpreter, falling back to DefaultThreshold
// when threshold is not positive.
func NewInterpreter(threshold float64) Interpreter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Interpreter{Threshold: threshold}
}

// Decide maps a signal to the action the executor should apply.
func (i Interpreter) Decide(s Signal) models.Action {
	if s.Confidence < i.Threshold {
		return models.ActionHold
	}
	return s.Action
}
