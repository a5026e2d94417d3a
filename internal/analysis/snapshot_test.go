package analysis

import (
	"errors"
	"testing"

	"stocksignalsv1/internal/indicator"
)

func TestAnalyze_TooFewBars(t *testing.T) {
	_, err := Analyze(rangeBars(MinBars-1, 10, 1))
	if !errors.Is(err, indicator.ErrInsufficientData) {
		t.Fatalf("want ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_FlatSeries(t *testing.T) {
	snap, err := Analyze(rangeBars(80, 10, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertClose(t, "price", snap.Price, 10, 0.0001)
	assertClose(t, "daily change", snap.DailyChange, 0, 0.0001)
	// Zero losses in every RSI window peg it at 100.
	assertClose(t, "rsi", snap.RSI, 100, 0.0001)
	assertClose(t, "ma5", snap.MA5, 10, 0.0001)
	assertClose(t, "ma50", snap.MA50, 10, 0.0001)
	if indicator.Defined(snap.MA200) {
		t.Fatalf("MA200 must be undefined with 80 bars, got %.4f", snap.MA200)
	}
	assertClose(t, "atr", snap.ATR, 2, 0.0001)

	if snap.StopLoss >= snap.Price && snap.StopGain >= snap.Price {
		// one stop above, one below is fine; both above is not
		t.Fatalf("stop pair %.2f/%.2f does not bracket price %.2f",
			snap.StopLoss, snap.StopGain, snap.Price)
	}
}

func TestAdvice_CarriesScoreFields(t *testing.T) {
	snap, err := Analyze(rangeBars(80, 10, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := snap.Advice("PETR4")
	if a.Ticker != "PETR4" {
		t.Fatalf("ticker = %q", a.Ticker)
	}
	assertClose(t, "advice price", a.Price, snap.Price, 0.0001)
	assertClose(t, "advice confidence", a.Confidence, snap.Score.Confidence(), 0.0001)
	if a.Operation != snap.Score.Operation() {
		t.Fatalf("operation mismatch: %s vs %s", a.Operation, snap.Score.Operation())
	}
	if len(a.Messages) != len(snap.Score.Messages) {
		t.Fatalf("messages not carried over")
	}
}

func TestHorizonTrends_OmitsUndefinedHorizons(t *testing.T) {
	// 80 bars define MA5..MA50 but not MA200: the long horizon is omitted.
	snap, err := Analyze(rangeBars(80, 10, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trends := snap.HorizonTrends()
	if len(trends) != 2 {
		t.Fatalf("got %d horizons, want 2 (short, medium)", len(trends))
	}
	for _, h := range trends {
		if h.Horizon == "long" {
			t.Fatal("long horizon must be omitted without MA200")
		}
	}
}
