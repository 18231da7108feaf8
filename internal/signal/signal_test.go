package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paper_trader/internal/models"
)

func TestDecideConfidenceGate(t *testing.T) {
	i := NewInterpreter(0.65)

	tests := []struct {
		name string
		in   Signal
		want models.Action
	}{
		{"confident buy", Signal{models.ActionBuy, 0.8}, models.ActionBuy},
		{"confident sell", Signal{models.ActionSell, 0.9}, models.ActionSell},
		{"buy below threshold", Signal{models.ActionBuy, 0.5}, models.ActionHold},
		{"sell below threshold", Signal{models.ActionSell, 0.64}, models.ActionHold},
		{"exactly at threshold", Signal{models.ActionBuy, 0.65}, models.ActionBuy},
		{"hold stays hold", Signal{models.ActionHold, 0.99}, models.ActionHold},
		{"zero confidence", Signal{models.ActionBuy, 0}, models.ActionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, i.Decide(tt.in))
		})
	}
}

// Below the threshold every upstream action collapses to HOLD.
func TestDecideGateIsActionIndependent(t *testing.T) {
	i := NewInterpreter(0.65)
	for _, action := range []models.Action{models.ActionBuy, models.ActionSell, models.ActionHold} {
		for _, conf := range []float64{0, 0.1, 0.3, 0.64, 0.649} {
			assert.Equal(t, models.ActionHold, i.Decide(Signal{action, conf}),
				"action %s conf %v", action, conf)
		}
	}
}

func TestNewInterpreterDefaultThreshold(t *testing.T) {
	i := NewInterpreter(0)
	assert.Equal(t, DefaultThreshold, i.Threshold)

	i = NewInterpreter(-1)
	assert.Equal(t, DefaultThreshold, i.Threshold)

	i = NewInterpreter(0.8)
	assert.Equal(t, 0.8, i.Threshold)
}

func TestHold(t *testing.T) {
	h := Hold()
	assert.Equal(t, models.ActionHold, h.Action)
	assert.Zero(t, h.Confidence)
}
