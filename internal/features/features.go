// Package features computes the model feature vector for a symbol from its
// OHLCV history. The set mirrors what the models were trained on: a block
// of standard technical indicators plus simple return and calendar
// features.
package features

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"paper_trader/internal/market"
)

// MinHistory is the minimum number of bars required before every indicator
// in the set has a defined value (SMA-50 is the longest lookback).
const MinHistory = 51

// Vector maps feature name to value for one symbol at one timestamp.
type Vector map[string]float64

// Names lists every feature Compute produces, in a stable order.
var Names = []string{
	"sma_20", "sma_50", "ema_12", "ema_26",
	"rsi_14", "macd", "macd_signal", "macd_hist",
	"bb_upper", "bb_middle", "bb_lower",
	"atr_14", "obv", "adx_14", "cci_14",
	"stoch_k", "stoch_d",
	"returns_1d", "log_returns", "volatility_20d",
	"day_of_week", "month",
}

// Compute derives the feature vector for the most recent bar.
func Compute(candles []market.Candle) (Vector, error) {
	if len(candles) < MinHistory {
		return nil, fmt.Errorf("features: need %d bars, have %d", MinHistory, len(candles))
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	macd, macdSignal, macdHist := talib.Macd(closes, 12, 26, 9)
	bbUpper, bbMiddle, bbLower := talib.BBands(closes, 20, 2, 2, talib.SMA)
	stochK, stochD := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)

	v := Vector{
		"sma_20":      last(talib.Sma(closes, 20)),
		"sma_50":      last(talib.Sma(closes, 50)),
		"ema_12":      last(talib.Ema(closes, 12)),
		"ema_26":      last(talib.Ema(closes, 26)),
		"rsi_14":      last(talib.Rsi(closes, 14)),
		"macd":        last(macd),
		"macd_signal": last(macdSignal),
		"macd_hist":   last(macdHist),
		"bb_upper":    last(bbUpper),
		"bb_middle":   last(bbMiddle),
		"bb_lower":    last(bbLower),
		"atr_14":      last(talib.Atr(highs, lows, closes, 14)),
		"obv":         last(talib.Obv(closes, volumes)),
		"adx_14":      last(talib.Adx(highs, lows, closes, 14)),
		"cci_14":      last(talib.Cci(highs, lows, closes, 14)),
		"stoch_k":     last(stochK),
		"stoch_d":     last(stochD),
	}

	prev, curr := closes[n-2], closes[n-1]
	ret := 0.0
	if prev != 0 {
		ret = curr/prev - 1
	}
	v["returns_1d"] = ret
	if prev > 0 && curr > 0 {
		v["log_returns"] = math.Log(curr / prev)
	} else {
		v["log_returns"] = 0
	}
	v["volatility_20d"] = rollingVolatility(closes, 20)

	ts := candles[n-1].Time
	v["day_of_week"] = float64(ts.Weekday())
	v["month"] = float64(ts.Month())

	return v, nil
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	x := series[len(series)-1]
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// rollingVolatility is the standard deviation of the last `window` daily
// returns.
func rollingVolatility(closes []float64, window int) float64 {
	if len(closes) < window+1 {
		return 0
	}
	returns := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(returns)))
}
