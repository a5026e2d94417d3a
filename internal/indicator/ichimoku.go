package indicator

import (
	"math"

	"stocksignalsv1/internal/model"
)

// Ichimoku periods.
const (
	TenkanPeriod = 9
	KijunPeriod  = 26
	SenkouPeriod = 52
	CloudShift   = 26
)

// IchimokuLines holds the five Ichimoku Cloud series, aligned with the bars.
// Senkou spans are plotted shifted forward: the value at position i was
// computed CloudShift bars earlier. Chikou is the close shifted backward, so
// its last CloudShift positions are always undefined.
type IchimokuLines struct {
	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
	Chikou  []float64
}

// Ichimoku computes the Ichimoku Cloud over a bar series. Span B needs
// SenkouPeriod+CloudShift bars before its first defined value.
func Ichimoku(bars []model.Bar) IchimokuLines {
	n := len(bars)
	highs := model.Highs(bars)
	lows := model.Lows(bars)

	lines := IchimokuLines{
		Tenkan:  midpoints(highs, lows, TenkanPeriod),
		Kijun:   midpoints(highs, lows, KijunPeriod),
		SenkouA: undefinedSeries(n),
		SenkouB: undefinedSeries(n),
		Chikou:  undefinedSeries(n),
	}

	senkouBRaw := midpoints(highs, lows, SenkouPeriod)
	for i := CloudShift; i < n; i++ {
		lines.SenkouA[i] = (lines.Tenkan[i-CloudShift] + lines.Kijun[i-CloudShift]) / 2
		lines.SenkouB[i] = senkouBRaw[i-CloudShift]
	}
	for i := 0; i+CloudShift < n; i++ {
		lines.Chikou[i] = bars[i+CloudShift].Close
	}
	return lines
}

// midpoints computes (highest high + lowest low)/2 over a trailing window.
func midpoints(highs, lows []float64, window int) []float64 {
	out := undefinedSeries(len(highs))
	for i := window - 1; i < len(highs); i++ {
		hi := math.Inf(-1)
		lo := math.Inf(1)
		for j := i - window + 1; j <= i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		out[i] = (hi + lo) / 2
	}
	return out
}
