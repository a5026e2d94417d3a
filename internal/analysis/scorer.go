// Package analysis turns a bar series into a trading decision: the momentum
// scorer votes eight independent rule groups into a buy score and a sell
// score, and the zone calculator derives target price zones.
package analysis

import (
	"fmt"

	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/model"
)

// MinBars is the minimum series length the scorer accepts: 20 bars of
// indicator warm-up plus the decision bar.
const MinBars = 21

// Scorer tuning constants.
const (
	rsiOversold   = 30
	rsiOverbought = 70
	maGapStrong   = 5  // percent gap between MA5 and MA20
	adxTrending   = 25 // ADX above this means a significant trend
	srWindow      = 20 // support/resistance lookback for proximity checks
	atrStopMult   = 2
	atrGainMult   = 3
)

// Momentum scores the most recent bar. The latest RSI and the short/mid
// moving averages are passed in (the callers already have them); everything
// else is derived from the series. Each rule group contributes to exactly one
// side of the score. The ATR stop pair is swapped when the decision is Sell,
// so the downside level becomes the short's take-profit target.
func Momentum(bars []model.Bar, rsi, maShort, maMid float64) (model.Score, error) {
	if len(bars) < MinBars {
		return model.Score{}, fmt.Errorf("momentum score needs %d bars, have %d: %w",
			MinBars, len(bars), indicator.ErrInsufficientData)
	}

	closes := model.Closes(bars)
	price := closes[len(closes)-1]
	sc := model.Score{}

	// 1. RSI extremes
	if rsi < rsiOversold {
		sc.Messages = append(sc.Messages, "✅ RSI strongly oversold (< 30)")
		sc.BuyScore += 2
	} else if rsi > rsiOverbought {
		sc.Messages = append(sc.Messages, "🔴 RSI strongly overbought (> 70)")
		sc.SellScore += 2
	}

	// 2. Short moving-average trend
	gap := (maShort - maMid) / maMid * 100
	if maShort > maMid {
		if gap > maGapStrong {
			sc.Messages = append(sc.Messages, "⚠️ Strong uptrend")
			sc.BuyScore += 2
		} else {
			sc.Messages = append(sc.Messages, "✅ Uptrend starting")
			sc.BuyScore++
		}
	} else {
		if gap < -maGapStrong || gap > maGapStrong {
			sc.Messages = append(sc.Messages, "✅ Strong price correction")
			sc.BuyScore++
		} else {
			sc.Messages = append(sc.Messages, "🔴 Downtrend starting")
			sc.SellScore++
		}
	}

	// 3. MACD cross between the last two bars
	macd, signal := indicator.MACD(closes, indicator.MACDFastSpan, indicator.MACDSlowSpan, indicator.MACDSignalSpan)
	last, prev := len(closes)-1, len(closes)-2
	if macd[last] > signal[last] && macd[prev] <= signal[prev] {
		sc.Messages = append(sc.Messages, "✅ MACD crossed up (buy signal)")
		sc.BuyScore++
	} else if macd[last] < signal[last] && macd[prev] >= signal[prev] {
		sc.Messages = append(sc.Messages, "🔴 MACD crossed down (sell signal)")
		sc.SellScore++
	}

	// 4. Bollinger band touch
	upper, lower := indicator.Bollinger(closes, 20)
	if price <= lower[last] {
		sc.Messages = append(sc.Messages, "✅ Price touched the lower Bollinger band")
		sc.BuyScore++
	} else if price >= upper[last] {
		sc.Messages = append(sc.Messages, "🔴 Price touched the upper Bollinger band")
		sc.SellScore++
	}

	// 5. Support/resistance proximity (within 2%)
	if support, resistance, err := indicator.SupportResistance(bars, srWindow); err == nil {
		if price <= support*1.02 {
			sc.Messages = append(sc.Messages, "✅ Price near support")
			sc.BuyScore++
		} else if price >= resistance*0.98 {
			sc.Messages = append(sc.Messages, "🔴 Price near resistance")
			sc.SellScore++
		}
	}

	// 6. Long-term trend
	trend, strength := indicator.LongTermTrend(closes)
	switch trend {
	case indicator.TrendUp:
		sc.Messages = append(sc.Messages, fmt.Sprintf("📈 UP trend over the period (strength: %.1f%%)", strength))
		sc.BuyScore++
	case indicator.TrendDown:
		sc.Messages = append(sc.Messages, fmt.Sprintf("📉 DOWN trend over the period (strength: %.1f%%)", strength))
		sc.SellScore++
	}

	// 7. Ichimoku composite: net signed force lands on one side
	ichiMsgs, ichiForce := scoreIchimoku(indicator.Ichimoku(bars), price)
	for _, m := range ichiMsgs {
		sc.Messages = append(sc.Messages, "☁️ "+m)
	}
	if ichiForce > 0 {
		sc.BuyScore += ichiForce
	} else {
		sc.SellScore -= ichiForce
	}

	// 8. ADX/ATR composite: directional force plus the ATR stop pair
	adxMsgs, adxForce, stopLoss, stopGain := scoreDirectional(bars, price)
	for _, m := range adxMsgs {
		sc.Messages = append(sc.Messages, "📊 "+m)
	}
	if adxForce > 0 {
		sc.BuyScore += adxForce
	} else {
		sc.SellScore -= adxForce
	}

	if sc.Operation() == model.OperationBuy {
		sc.StopLoss, sc.StopGain = stopLoss, stopGain
	} else {
		// Short positions profit on the downside level.
		sc.StopLoss, sc.StopGain = stopGain, stopLoss
	}
	return sc, nil
}

// scoreIchimoku evaluates price vs cloud (±2), Tenkan/Kijun cross (±1) and
// Chikou vs price (±1). Undefined lines contribute nothing: at the latest bar
// the Chikou span is always still undefined, so that check only matters for
// historical positions.
func scoreIchimoku(lines indicator.IchimokuLines, price float64) (msgs []string, force float64) {
	last := len(lines.Tenkan) - 1
	if last < 0 {
		return nil, 0
	}
	spanA, spanB := lines.SenkouA[last], lines.SenkouB[last]
	if price > spanA && price > spanB {
		msgs = append(msgs, "Price above the cloud (uptrend)")
		force += 2
	} else if price < spanA && price < spanB {
		msgs = append(msgs, "Price below the cloud (downtrend)")
		force -= 2
	}

	if lines.Tenkan[last] > lines.Kijun[last] {
		msgs = append(msgs, "Tenkan-sen above Kijun-sen (buy signal)")
		force++
	} else if lines.Tenkan[last] < lines.Kijun[last] {
		msgs = append(msgs, "Tenkan-sen below Kijun-sen (sell signal)")
		force--
	}

	if chikou := lines.Chikou[last]; indicator.Defined(chikou) {
		if chikou > price {
			msgs = append(msgs, "Chikou Span above price (bullish confirmation)")
			force++
		} else {
			msgs = append(msgs, "Chikou Span below price (bearish confirmation)")
			force--
		}
	}
	return msgs, force
}

// scoreDirectional evaluates ADX trend strength and derives the ATR stop
// pair: stop at price - 2*ATR, target at price + 3*ATR.
func scoreDirectional(bars []model.Bar, price float64) (msgs []string, force, stopLoss, stopGain float64) {
	adx, plusDI, minusDI := indicator.DirectionalIndex(bars, indicator.DirectionalPeriod)
	lastADX := indicator.LastValue(adx)

	if lastADX > adxTrending {
		msgs = append(msgs, fmt.Sprintf("Strong ADX (%.1f) - significant trend", lastADX))
		if indicator.LastValue(plusDI) > indicator.LastValue(minusDI) {
			msgs = append(msgs, "DI+ > DI- (uptrend)")
			force += 2
		} else {
			msgs = append(msgs, "DI- > DI+ (downtrend)")
			force -= 2
		}
	} else {
		msgs = append(msgs, fmt.Sprintf("Weak ADX (%.1f) - no defined trend", lastADX))
	}

	atr := indicator.ATR(bars, indicator.DirectionalPeriod)
	current := indicator.LastValue(atr)
	mean := indicator.MeanDefined(atr)
	if current > mean*1.5 {
		msgs = append(msgs, "High volatility - trade with caution")
	} else if current < mean*0.5 {
		msgs = append(msgs, "Low volatility - a sharp move may be near")
	}

	stopLoss = price - current*atrStopMult
	stopGain = price + current*atrGainMult
	return msgs, force, stopLoss, stopGain
}
