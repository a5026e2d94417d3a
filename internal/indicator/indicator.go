// Package indicator provides technical indicator calculations over daily bars.
//
// All indicators are pure functions over aligned series: the output slice has
// the same length as the input, and positions inside an indicator's warm-up
// window hold NaN. Callers must check Defined before consuming a value;
// undefined entries propagate, they are never coerced to zero.
package indicator

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a bar series is shorter than the
// minimum lookback a computation requires.
var ErrInsufficientData = errors.New("insufficient bar data")

// Undefined returns the sentinel for a not-yet-computable value.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v holds a computed value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// undefinedSeries returns a slice of n NaNs.
func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average over a rolling window.
// The first window-1 positions are undefined.
func SMA(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes an exponential moving average with alpha = 2/(span+1),
// seeded with the first defined input value. Leading NaNs stay undefined;
// every position from the seed onward is defined.
func EMA(values []float64, span int) []float64 {
	out := undefinedSeries(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	prev := math.NaN()
	for i, v := range values {
		if !Defined(v) {
			continue
		}
		if !Defined(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// LastDefined returns the most recent defined value in the series,
// or NaN if there is none.
func LastDefined(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if Defined(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}

// MeanDefined averages the defined values in the series, NaN if none.
func MeanDefined(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if Defined(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
