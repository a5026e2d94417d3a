package indicator

import "testing"

func TestBollinger_SampleStdev(t *testing.T) {
	// Window 3 over 1..5. Sample stdev (n-1 divisor) of any three
	// consecutive integers is 1, so the bands sit at mean ± 2.
	upper, lower := Bollinger([]float64{1, 2, 3, 4, 5}, 3)

	assertUndefined(t, "upper[1]", upper[1])
	assertClose(t, "upper[2]", upper[2], 4.0, 0.0001) // mean 2 + 2*1
	assertClose(t, "lower[2]", lower[2], 0.0, 0.0001)
	assertClose(t, "upper[4]", upper[4], 6.0, 0.0001) // mean 4 + 2*1
	assertClose(t, "lower[4]", lower[4], 2.0, 0.0001)
}

func TestBollinger_ConstantSeries_BandsCollapse(t *testing.T) {
	upper, lower := Bollinger([]float64{7, 7, 7, 7}, 3)
	assertClose(t, "upper", upper[3], 7.0, 0.0001)
	assertClose(t, "lower", lower[3], 7.0, 0.0001)
}

func TestBollinger_LowerNeverAboveUpper(t *testing.T) {
	closes := []float64{20, 22, 21, 25, 24, 23, 26, 28, 27, 25, 24, 26, 29, 30, 28}
	upper, lower := Bollinger(closes, 5)
	for i := range closes {
		if !Defined(upper[i]) {
			continue
		}
		if lower[i] > upper[i] {
			t.Errorf("index %d: lower %.4f above upper %.4f", i, lower[i], upper[i])
		}
	}
}
