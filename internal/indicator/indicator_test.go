package indicator

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func assertUndefined(t *testing.T, label string, got float64) {
	t.Helper()
	if Defined(got) {
		t.Errorf("%s: got %.6f, want undefined", label, got)
	}
}

// ────────────────────────────────────────────────────────────
// SMA
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Window3(t *testing.T) {
	// Closes: 100, 102, 104, 103, 105
	// SMA(3) at index 2: (100+102+104)/3 = 102.0
	// SMA(3) at index 3: (102+104+103)/3 = 103.0
	// SMA(3) at index 4: (104+103+105)/3 = 104.0
	out := SMA([]float64{100, 102, 104, 103, 105}, 3)

	assertUndefined(t, "SMA[0]", out[0])
	assertUndefined(t, "SMA[1]", out[1])
	assertClose(t, "SMA[2]", out[2], 102.0, 0.0001)
	assertClose(t, "SMA[3]", out[3], 103.0, 0.0001)
	assertClose(t, "SMA[4]", out[4], 104.0, 0.0001)
}

func TestSMA_ShortSeries_AllUndefined(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for i, v := range out {
		assertUndefined(t, "SMA short series", v)
		_ = i
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_SeededWithFirstValue(t *testing.T) {
	// EMA(3): alpha = 2/(3+1) = 0.5, seeded at the first value.
	// 100 -> 100
	// 102 -> 0.5*102 + 0.5*100  = 101
	// 104 -> 0.5*104 + 0.5*101  = 102.5
	out := EMA([]float64{100, 102, 104}, 3)

	assertClose(t, "EMA[0]", out[0], 100.0, 0.0001)
	assertClose(t, "EMA[1]", out[1], 101.0, 0.0001)
	assertClose(t, "EMA[2]", out[2], 102.5, 0.0001)
}

func TestEMA_SkipsLeadingUndefined(t *testing.T) {
	// Seed lands on the first defined value; leading NaNs stay undefined.
	out := EMA([]float64{math.NaN(), math.NaN(), 10, 12}, 3)

	assertUndefined(t, "EMA[0]", out[0])
	assertUndefined(t, "EMA[1]", out[1])
	assertClose(t, "EMA[2]", out[2], 10.0, 0.0001)
	assertClose(t, "EMA[3]", out[3], 11.0, 0.0001)
}

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func TestLastDefined(t *testing.T) {
	assertClose(t, "last defined", LastDefined([]float64{1, 2, math.NaN()}), 2, 0.0001)
	assertUndefined(t, "all undefined", LastDefined([]float64{math.NaN(), math.NaN()}))
	assertUndefined(t, "empty", LastDefined(nil))
}

func TestMeanDefined(t *testing.T) {
	assertClose(t, "mean skips NaN", MeanDefined([]float64{2, math.NaN(), 4}), 3, 0.0001)
	assertUndefined(t, "mean of none", MeanDefined([]float64{math.NaN()}))
}

func TestLastValue(t *testing.T) {
	assertClose(t, "last value", LastValue([]float64{1, 2, 3}), 3, 0.0001)
	assertUndefined(t, "last of empty", LastValue(nil))
}
