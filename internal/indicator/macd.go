package indicator

// MACD default periods.
const (
	MACDFastSpan   = 12
	MACDSlowSpan   = 26
	MACDSignalSpan = 9
)

// MACD computes the Moving Average Convergence Divergence line
// (EMA(fast) - EMA(slow) of the closes) and its signal line
// (EMA(signalSpan) of the MACD line).
func MACD(closes []float64, fast, slow, signalSpan int) (macd, signal []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i] // NaN propagates
	}
	signal = EMA(macd, signalSpan)
	return macd, signal
}
