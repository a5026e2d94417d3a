package indicator

import "testing"

func TestMACD_ConstantSeries_IsZero(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50
	}
	macd, signal := MACD(closes, MACDFastSpan, MACDSlowSpan, MACDSignalSpan)
	last := len(closes) - 1
	assertClose(t, "macd", macd[last], 0, 0.0001)
	assertClose(t, "signal", signal[last], 0, 0.0001)
}

func TestMACD_RisingSeries_PositiveCross(t *testing.T) {
	// In a steady uptrend the fast EMA sits above the slow one, and the
	// MACD line leads its own signal EMA.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	macd, signal := MACD(closes, MACDFastSpan, MACDSlowSpan, MACDSignalSpan)
	last := len(closes) - 1
	if macd[last] <= 0 {
		t.Errorf("macd = %.4f, want positive in uptrend", macd[last])
	}
	if macd[last] <= signal[last] {
		t.Errorf("macd %.4f should lead signal %.4f in uptrend", macd[last], signal[last])
	}
}
