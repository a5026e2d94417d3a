// Package marketdata defines the boundary to external bar providers.
// The engine packages depend only on this interface; concrete clients live
// under pkg/.
package marketdata

import (
	"context"
	"fmt"

	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/model"
)

// Provider supplies chronologically ordered daily bars for an instrument.
type Provider interface {
	// History returns up to `days` calendar days of daily bars, oldest
	// first. A short or empty series for the requested range is the
	// provider's error to report, not to silently truncate.
	History(ctx context.Context, ticker string, days int) ([]model.Bar, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, ticker string, days int) ([]model.Bar, error)

func (f ProviderFunc) History(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	return f(ctx, ticker, days)
}

// Validate checks that the series meets the minimum bar count and is in
// chronological order, returning a data error otherwise.
func Validate(bars []model.Bar, minBars int) error {
	if len(bars) < minBars {
		return fmt.Errorf("provider returned %d bars, need %d: %w",
			len(bars), minBars, indicator.ErrInsufficientData)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].TS.Before(bars[i-1].TS) {
			return fmt.Errorf("bars out of order at index %d (%s after %s)",
				i, bars[i-1].TS.Format("2006-01-02"), bars[i].TS.Format("2006-01-02"))
		}
	}
	return nil
}
