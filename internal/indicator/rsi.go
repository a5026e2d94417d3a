package indicator

// RSI computes the Relative Strength Index with windowed recomputation:
// each position averages the gains and losses of its own trailing window of
// period+1 closes, independently of earlier windows (no Wilder smoothing
// across the whole history). When the window's average loss is zero the RSI
// is 100. Values always lie in [0,100]; the first period positions are
// undefined.
func RSI(closes []float64, period int) []float64 {
	out := undefinedSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	for i := period; i < len(closes); i++ {
		sumGain, sumLoss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := closes[j] - closes[j-1]
			if diff > 0 {
				sumGain += diff
			} else {
				sumLoss -= diff
			}
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
