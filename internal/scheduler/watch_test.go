package scheduler

import (
	"context"
	"testing"
	"time"

	"stocksignalsv1/internal/model"
)

type zoneMap map[string]model.TargetZones

func (z zoneMap) Zones(ticker string) (model.TargetZones, bool) {
	t, ok := z[ticker]
	return t, ok
}

func TestClassifyZone(t *testing.T) {
	z := model.TargetZones{BuyStrong: 9.47, BuyModerate: 9.86, SellModerate: 10.13, SellStrong: 10.54}
	cases := []struct {
		price float64
		want  string
	}{
		{9.40, "strong buy"},
		{9.47, "strong buy"},
		{9.70, "moderate buy"},
		{10.00, ""},
		{10.20, "moderate sell"},
		{10.60, "strong sell"},
	}
	for _, c := range cases {
		zone, _ := classifyZone(c.price, z)
		if zone != c.want {
			t.Errorf("classifyZone(%.2f) = %q, want %q", c.price, zone, c.want)
		}
	}
}

func TestLiveWatcher_AlertsOnZoneEntryOnly(t *testing.T) {
	zones := zoneMap{
		"PETR4": {BuyStrong: 9.47, BuyModerate: 9.86, SellModerate: 10.13, SellStrong: 10.54},
	}
	notifier := &recordingNotifier{}
	w := NewLiveWatcher(16, zones, notifier, nil)
	w.now = func() time.Time { return openTime }

	ctx := context.Background()
	w.handle(ctx, Quote{Ticker: "PETR4", Price: 9.80})
	w.handle(ctx, Quote{Ticker: "PETR4", Price: 9.82}) // still moderate buy
	if got := notifier.countTitled("Price alert"); got != 1 {
		t.Fatalf("got %d zone alerts inside one zone, want 1", got)
	}

	// Leaving the zone is silent, re-entering alerts again.
	w.handle(ctx, Quote{Ticker: "PETR4", Price: 10.00})
	w.handle(ctx, Quote{Ticker: "PETR4", Price: 9.80})
	if got := notifier.countTitled("Price alert"); got != 2 {
		t.Fatalf("got %d zone alerts after re-entry, want 2", got)
	}

	// Unknown tickers have no zones yet and are ignored.
	w.handle(ctx, Quote{Ticker: "VALE3", Price: 1})
	if got := notifier.countTitled("Price alert"); got != 2 {
		t.Fatalf("got %d zone alerts after unknown ticker, want 2", got)
	}
}

func TestLiveWatcher_OfferDropsWhenFull(t *testing.T) {
	w := NewLiveWatcher(2, zoneMap{}, &recordingNotifier{}, nil)
	w.Offer(Quote{Ticker: "A"})
	w.Offer(Quote{Ticker: "B"})
	if w.Offer(Quote{Ticker: "C"}) {
		t.Fatal("offer to a full buffer must drop")
	}
	if w.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", w.Dropped())
	}
}
