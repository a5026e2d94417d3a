package indicator

import (
	"testing"

	"stocksignalsv1/internal/model"
)

func flatBars(n int, high, low, close float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = bar(high, low, close)
	}
	return bars
}

func TestIchimoku_FlatSeries_Midpoints(t *testing.T) {
	// Constant bars: every midpoint is (10+8)/2 = 9 once its window fills.
	bars := flatBars(80, 10, 8, 9)
	lines := Ichimoku(bars)

	assertUndefined(t, "tenkan[7]", lines.Tenkan[7])
	assertClose(t, "tenkan[8]", lines.Tenkan[8], 9, 0.0001)
	assertUndefined(t, "kijun[24]", lines.Kijun[24])
	assertClose(t, "kijun[25]", lines.Kijun[25], 9, 0.0001)

	// Senkou A is the tenkan/kijun midpoint shifted forward: first defined
	// where both components were defined 26 bars earlier (25+26 = 51).
	assertUndefined(t, "senkouA[50]", lines.SenkouA[50])
	assertClose(t, "senkouA[51]", lines.SenkouA[51], 9, 0.0001)

	// Senkou B needs 52 bars plus the 26-bar shift (51+26 = 77).
	assertUndefined(t, "senkouB[76]", lines.SenkouB[76])
	assertClose(t, "senkouB[77]", lines.SenkouB[77], 9, 0.0001)
}

func TestIchimoku_ChikouShiftedBackward(t *testing.T) {
	bars := flatBars(60, 10, 8, 9)
	bars[59].Close = 12
	lines := Ichimoku(bars)

	// chikou[i] holds close[i+26]; the last 26 positions have no future
	// close and stay undefined, including the final bar.
	assertClose(t, "chikou[33]", lines.Chikou[33], 12, 0.0001)
	assertClose(t, "chikou[0]", lines.Chikou[0], 9, 0.0001)
	assertUndefined(t, "chikou[34]", lines.Chikou[34])
	assertUndefined(t, "chikou[last]", lines.Chikou[59])
}

func TestIchimoku_TenkanTracksWindowExtremes(t *testing.T) {
	bars := flatBars(20, 10, 8, 9)
	bars[15].High = 20 // spike inside the 9-bar window

	lines := Ichimoku(bars)
	// Window for index 19 covers bars 11..19: highest high 20, lowest low 8.
	assertClose(t, "tenkan with spike", lines.Tenkan[19], 14, 0.0001)
	// Window for index 10 is untouched by the spike.
	assertClose(t, "tenkan before spike", lines.Tenkan[10], 9, 0.0001)
}
