package indicator

import (
	"math"

	"stocksignalsv1/internal/model"
)

// DirectionalPeriod is the default ADX/ATR lookback.
const DirectionalPeriod = 14

// trueRange computes the TR series. Position 0 is undefined; TR needs the
// previous close.
func trueRange(bars []model.Bar) []float64 {
	tr := undefinedSeries(len(bars))
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// DirectionalIndex computes ADX, +DI and -DI over the given period.
//
// TR and the directional movements are smoothed with an EMA of the same span
// (an approximation of Wilder's recursive smoothing). Ratios are
// guarded so a zero smoothed TR or a zero DI sum yields 0 rather than NaN.
// All three outputs lie in [0,100] where defined; position 0 is undefined.
func DirectionalIndex(bars []model.Bar, period int) (adx, plusDI, minusDI []float64) {
	n := len(bars)
	tr := trueRange(bars)
	plusDM := undefinedSeries(n)
	minusDM := undefinedSeries(n)
	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		plusDM[i], minusDM[i] = 0, 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	smTR := EMA(tr, period)
	smPlus := EMA(plusDM, period)
	smMinus := EMA(minusDM, period)

	plusDI = undefinedSeries(n)
	minusDI = undefinedSeries(n)
	dx := undefinedSeries(n)
	for i := 1; i < n; i++ {
		if !Defined(smTR[i]) {
			continue
		}
		if smTR[i] == 0 {
			plusDI[i], minusDI[i] = 0, 0
		} else {
			plusDI[i] = 100 * smPlus[i] / smTR[i]
			minusDI[i] = 100 * smMinus[i] / smTR[i]
		}
		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}
	adx = EMA(dx, period)
	return adx, plusDI, minusDI
}

// ATR computes the Average True Range as a simple rolling mean of TR over
// the period. Deliberately a different smoothing than DirectionalIndex uses
// internally; the asymmetry is part of the strategy's definition.
func ATR(bars []model.Bar, period int) []float64 {
	return rollingMean(trueRange(bars), period)
}

// rollingMean is SMA over a series that may hold leading NaNs: a window is
// defined only once every member is defined.
func rollingMean(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if !Defined(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}
