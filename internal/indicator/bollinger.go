package indicator

import "math"

// Bollinger computes Bollinger Bands: SMA(window) ± 2 sample standard
// deviations. Both bands are undefined for the first window-1 positions.
func Bollinger(closes []float64, window int) (upper, lower []float64) {
	upper = undefinedSeries(len(closes))
	lower = undefinedSeries(len(closes))
	if window <= 1 || len(closes) < window {
		return upper, lower
	}
	mean := SMA(closes, window)
	for i := window - 1; i < len(closes); i++ {
		sumSq := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean[i]
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(window-1))
		upper[i] = mean[i] + 2*sd
		lower[i] = mean[i] - 2*sd
	}
	return upper, lower
}
