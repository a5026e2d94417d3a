package indicator

import (
	"errors"
	"testing"

	"stocksignalsv1/internal/model"
)

func TestSupportResistance_LastWindowExtremes(t *testing.T) {
	bars := []model.Bar{
		bar(50, 40, 45), // outside the window
		bar(12, 10, 11),
		bar(14, 9, 12),
		bar(13, 11, 12),
	}
	support, resistance, err := SupportResistance(bars, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "support", support, 9, 0.0001)
	assertClose(t, "resistance", resistance, 14, 0.0001)
}

func TestSupportResistance_TooFewBars(t *testing.T) {
	_, _, err := SupportResistance(flatBars(5, 10, 8, 9), 10)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("want ErrInsufficientData, got %v", err)
	}
}
