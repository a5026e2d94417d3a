package analysis

import (
	"fmt"

	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/model"
)

// Zone calculation constants.
const (
	zoneSRWindow     = 10   // tighter support/resistance window for targets
	zoneMargin       = 0.02 // strong/moderate band around a target
	zoneFallbackDrop = 0.95 // buy fallback when no indicator is defined
	zoneFallbackRise = 1.05 // sell fallback
)

// Zones derives buy and sell target zones independently of the score.
// The buy target averages the defined values among {lower Bollinger(20),
// support(10), SMA(20)}; the sell target averages {upper Bollinger(20),
// resistance(10), SMA(5)}. When none is defined the target falls back to
// ±5% of the current price. After clamping, BuyStrong <= price <= SellStrong.
func Zones(bars []model.Bar, price float64) (model.TargetZones, error) {
	if len(bars) == 0 {
		return model.TargetZones{}, fmt.Errorf("zones: empty series: %w", indicator.ErrInsufficientData)
	}

	closes := model.Closes(bars)
	upper, lower := indicator.Bollinger(closes, 20)
	ma5 := indicator.LastValue(indicator.SMA(closes, 5))
	ma20 := indicator.LastValue(indicator.SMA(closes, 20))

	support, resistance := indicator.Undefined(), indicator.Undefined()
	if s, r, err := indicator.SupportResistance(bars, zoneSRWindow); err == nil {
		support, resistance = s, r
	}

	buyTarget := meanOrFallback(price*zoneFallbackDrop,
		indicator.LastValue(lower), support, ma20)
	sellTarget := meanOrFallback(price*zoneFallbackRise,
		indicator.LastValue(upper), resistance, ma5)

	z := model.TargetZones{
		BuyStrong:    buyTarget * (1 - zoneMargin),
		BuyModerate:  buyTarget * (1 + zoneMargin),
		SellStrong:   sellTarget * (1 + zoneMargin),
		SellModerate: sellTarget * (1 - zoneMargin),
	}

	// Keep zones on the correct side of the current price.
	if z.BuyStrong > price {
		z.BuyStrong = price * 0.95
		z.BuyModerate = price * 0.98
	}
	if z.SellStrong < price {
		z.SellStrong = price * 1.05
		z.SellModerate = price * 1.02
	}
	return z, nil
}

// SuggestStops tightens the scorer's ATR stops with the zone levels.
// For a Buy: stop below the strong buy zone, target at least the moderate
// sell zone. For a Sell the roles invert.
func SuggestStops(sc model.Score, z model.TargetZones) (stopLoss, stopGain float64) {
	if sc.Operation() == model.OperationBuy {
		stopLoss = minDefined(z.BuyStrong*0.95, sc.StopLoss)
		stopGain = maxDefined(z.SellModerate, sc.StopGain)
		return stopLoss, stopGain
	}
	// Sell: the scorer already swapped the pair, so StopLoss sits above the
	// price and StopGain below it.
	stopLoss = minDefined(z.BuyModerate, sc.StopLoss)
	stopGain = maxDefined(z.SellStrong*1.05, sc.StopGain)
	return stopLoss, stopGain
}

// meanOrFallback averages the defined candidates, or returns the fallback
// when every candidate is undefined.
func meanOrFallback(fallback float64, candidates ...float64) float64 {
	sum, n := 0.0, 0
	for _, c := range candidates {
		if indicator.Defined(c) {
			sum += c
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

func minDefined(a, b float64) float64 {
	if !indicator.Defined(b) || a < b {
		return a
	}
	return b
}

func maxDefined(a, b float64) float64 {
	if !indicator.Defined(b) || a > b {
		return a
	}
	return b
}
