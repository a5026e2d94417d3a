package scheduler

import (
	"context"
	"log"
	"time"

	"stocksignalsv1/internal/metrics"
	"stocksignalsv1/internal/model"
	"stocksignalsv1/internal/notification"
	"stocksignalsv1/internal/ringbuf"
)

// watcherIdleWait is the drain-loop sleep when no quotes are buffered.
const watcherIdleWait = 250 * time.Millisecond

// Quote is a live price update handed over by the stream adapter.
type Quote struct {
	Ticker string
	Price  float64
	TS     time.Time
}

// ZoneSource exposes the latest target zones per ticker. Implemented by the
// Poller.
type ZoneSource interface {
	Zones(ticker string) (model.TargetZones, bool)
}

// LiveWatcher consumes live quotes between full analysis cycles and fires
// zone alerts against the latest computed target zones. An alert fires on
// zone entry; staying inside the same zone is silent until the price leaves.
type LiveWatcher struct {
	ring     *ringbuf.Ring[Quote]
	zones    ZoneSource
	notifier notification.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time

	lastZone map[string]string
}

// NewLiveWatcher creates a watcher with a quote buffer of the given capacity.
// metrics may be nil.
func NewLiveWatcher(capacity int, zones ZoneSource, notifier notification.Notifier, m *metrics.Metrics) *LiveWatcher {
	return &LiveWatcher{
		ring:     ringbuf.New[Quote](capacity),
		zones:    zones,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
		lastZone: make(map[string]string),
	}
}

// Offer hands a quote to the watcher. Called from the stream's read loop;
// never blocks, drops the quote when the watcher is behind.
func (w *LiveWatcher) Offer(q Quote) bool {
	return w.ring.Push(q)
}

// Dropped returns the number of quotes rejected by a full buffer.
func (w *LiveWatcher) Dropped() uint64 {
	return w.ring.Dropped()
}

// Run drains the quote buffer until ctx is cancelled.
func (w *LiveWatcher) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		q, ok := w.ring.Pop()
		if !ok {
			if err := sleepCtx(ctx, watcherIdleWait); err != nil {
				return err
			}
			continue
		}
		w.handle(ctx, q)
	}
}

func (w *LiveWatcher) handle(ctx context.Context, q Quote) {
	z, ok := w.zones.Zones(q.Ticker)
	if !ok {
		// No analysis has completed for this ticker yet.
		return
	}
	zone, target := classifyZone(q.Price, z)
	if zone == w.lastZone[q.Ticker] {
		return
	}
	w.lastZone[q.Ticker] = zone
	if zone == "" {
		return
	}
	if err := w.notifier.Send(ctx, notification.ZoneAlert(q.Ticker, q.Price, target, zone, w.now())); err != nil {
		log.Printf("[watcher] notify: %v", err)
		return
	}
	if w.metrics != nil {
		w.metrics.AlertsTotal.WithLabelValues("zone_live").Inc()
	}
}

// classifyZone maps a price onto the zone it sits in, buy side first.
func classifyZone(price float64, z model.TargetZones) (zone string, target float64) {
	switch {
	case price <= z.BuyStrong:
		return "strong buy", z.BuyStrong
	case price <= z.BuyModerate:
		return "moderate buy", z.BuyModerate
	case price >= z.SellStrong:
		return "strong sell", z.SellStrong
	case price >= z.SellModerate:
		return "moderate sell", z.SellModerate
	}
	return "", 0
}
