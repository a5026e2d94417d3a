package indicator

import (
	"fmt"
	"math"

	"stocksignalsv1/internal/model"
)

// SupportResistance returns the most recent fully-computed support and
// resistance levels: the rolling min of lows and max of highs over a centered
// window of the given width. Centering means the last complete window ends at
// the final bar, so the reported level lags the present by ⌈window/2⌉ bars.
// Returns ErrInsufficientData when fewer than window bars are available.
func SupportResistance(bars []model.Bar, window int) (support, resistance float64, err error) {
	if len(bars) < window {
		return 0, 0, fmt.Errorf("support/resistance needs %d bars, have %d: %w",
			window, len(bars), ErrInsufficientData)
	}
	support = math.Inf(1)
	resistance = math.Inf(-1)
	for _, b := range bars[len(bars)-window:] {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
	}
	return support, resistance, nil
}
