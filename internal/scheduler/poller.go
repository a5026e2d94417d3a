// Package scheduler drives the monitoring loop: it gates polling on market
// hours, serves bar history through the cache, and turns analysis snapshots
// into alerts with change detection.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"stocksignalsv1/internal/analysis"
	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/markethours"
	"stocksignalsv1/internal/marketdata"
	"stocksignalsv1/internal/metrics"
	"stocksignalsv1/internal/model"
	"stocksignalsv1/internal/notification"
	redisstore "stocksignalsv1/internal/store/redis"
)

// sharpMoveThresholdPct triggers a volatility alert on the day's move.
const sharpMoveThresholdPct = 5.0

// Store is the cache and alert-state backend the poller needs. Implemented
// by the Redis cache; tests swap in an in-memory fake.
type Store interface {
	History(ctx context.Context, ticker string) ([]model.Bar, time.Time, error)
	PutHistory(ctx context.Context, ticker string, bars []model.Bar, fetchedAt time.Time) error
	LastStatus(ctx context.Context, ticker string) (string, error)
	SetLastStatus(ctx context.Context, ticker, status string) error
}

// Config configures the poller.
type Config struct {
	Tickers     []string
	HistoryDays int
	Interval    time.Duration
}

// Poller runs the periodic analyze-and-alert cycle over a set of tickers.
type Poller struct {
	cfg      Config
	provider marketdata.Provider
	notifier notification.Notifier
	store    Store
	metrics  *metrics.Metrics
	now      func() time.Time
	onPoll   func(time.Time)

	errStreak map[string]int

	zoneMu sync.RWMutex
	zones  map[string]model.TargetZones
}

// New creates a poller. metrics may be nil.
func New(cfg Config, provider marketdata.Provider, notifier notification.Notifier, store Store, m *metrics.Metrics) *Poller {
	return &Poller{
		cfg:       cfg,
		provider:  provider,
		notifier:  notifier,
		store:     store,
		metrics:   m,
		now:       time.Now,
		errStreak: make(map[string]int),
		zones:     make(map[string]model.TargetZones),
	}
}

// SetPollObserver registers a callback invoked after each completed poll
// cycle, e.g. to feed the health endpoint.
func (p *Poller) SetPollObserver(fn func(time.Time)) {
	p.onPoll = fn
}

// Zones returns the target zones from the ticker's latest analysis, for the
// live-quote watcher. ok is false before the first successful poll.
func (p *Poller) Zones(ticker string) (model.TargetZones, bool) {
	p.zoneMu.RLock()
	defer p.zoneMu.RUnlock()
	z, ok := p.zones[ticker]
	return z, ok
}

// Run blocks until ctx is cancelled, polling every Interval while the market
// is open and sleeping through closed sessions.
func (p *Poller) Run(ctx context.Context) error {
	for _, ticker := range p.cfg.Tickers {
		p.send(ctx, "startup", notification.StartupAlert(ticker, p.cfg.Interval, p.now()))
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		now := p.now()
		if !markethours.IsMarketOpen(now) {
			if p.metrics != nil {
				p.metrics.MarketState.Set(0)
			}
			wait := markethours.ClosedWait(now)
			log.Printf("[poller] %s, sleeping %s", markethours.StatusString(now), wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.MarketState.Set(1)
		}

		for _, ticker := range p.cfg.Tickers {
			if err := p.pollTicker(ctx, ticker); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[poller] %s: %v", ticker, err)
			}
		}

		if p.metrics != nil {
			p.metrics.LastPollTS.Set(float64(p.now().Unix()))
		}
		if p.onPoll != nil {
			p.onPoll(p.now())
		}
		if err := sleepCtx(ctx, p.cfg.Interval); err != nil {
			return err
		}
	}
}

// pollTicker fetches history, analyzes it, and fires any due alerts.
// Once a ticker reaches MaxConsecutiveErrors fetch failures it is rested
// with an escalating backoff; a successful fetch clears the streak.
func (p *Poller) pollTicker(ctx context.Context, ticker string) error {
	bars, err := p.history(ctx, ticker)
	if err != nil {
		p.errStreak[ticker]++
		if p.metrics != nil {
			p.metrics.FetchErrorsTotal.WithLabelValues(ticker).Inc()
		}
		if streak := p.errStreak[ticker]; streak >= MaxConsecutiveErrors {
			wait := Backoff(streak - MaxConsecutiveErrors + 1)
			log.Printf("[poller] %s: %d consecutive fetch errors, backing off %s",
				ticker, streak, wait)
			if serr := sleepCtx(ctx, wait); serr != nil {
				return serr
			}
		}
		return fmt.Errorf("history: %w", err)
	}
	p.errStreak[ticker] = 0

	var snap *analysis.Snapshot
	start := time.Now()
	snap, err = analysis.Analyze(bars)
	if p.metrics != nil {
		p.metrics.AnalysisDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if p.metrics != nil {
		p.metrics.AnalysesTotal.WithLabelValues(ticker).Inc()
	}

	p.zoneMu.Lock()
	p.zones[ticker] = snap.Zones
	p.zoneMu.Unlock()

	return p.alert(ctx, ticker, snap)
}

// history serves bars from the cache when fresh, fetching from the provider
// otherwise. A failed fetch falls back to a stale cache entry when one exists.
func (p *Poller) history(ctx context.Context, ticker string) ([]model.Bar, error) {
	cached, fetchedAt, err := p.store.History(ctx, ticker)
	if err != nil {
		log.Printf("[poller] %s: cache read: %v", ticker, err)
	}
	now := p.now()
	if len(cached) > 0 && now.Sub(fetchedAt) < redisstore.HistoryTTL {
		if p.metrics != nil {
			p.metrics.CacheHits.Inc()
		}
		return cached, nil
	}
	if p.metrics != nil {
		p.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	bars, err := p.provider.History(ctx, ticker, p.cfg.HistoryDays)
	if p.metrics != nil {
		p.metrics.FetchDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if len(cached) > 0 {
			if p.metrics != nil {
				p.metrics.StaleFallbacks.Inc()
			}
			log.Printf("[poller] %s: fetch failed (%v), using stale cache from %s",
				ticker, err, fetchedAt.Format(time.RFC3339))
			return cached, nil
		}
		return nil, err
	}
	if err := marketdata.Validate(bars, analysis.MinBars); err != nil {
		return nil, err
	}

	if err := p.store.PutHistory(ctx, ticker, bars, now); err != nil {
		log.Printf("[poller] %s: cache write: %v", ticker, err)
	}
	return bars, nil
}

// alert fires the status-change, target-zone, and sharp-move alerts for a
// fresh snapshot. Status alerts are deduplicated against the stored status.
func (p *Poller) alert(ctx context.Context, ticker string, snap *analysis.Snapshot) error {
	advice := snap.Advice(ticker)
	status := notification.Status(advice, snap.Score.Actionable())

	last, err := p.store.LastStatus(ctx, ticker)
	if err != nil {
		log.Printf("[poller] %s: status read: %v", ticker, err)
	}
	if status != last {
		if status != "" {
			trends := trendLines(snap)
			p.send(ctx, "signal", notification.SignalAlert(advice, status, trends, p.now()))
		}
		if err := p.store.SetLastStatus(ctx, ticker, status); err != nil {
			log.Printf("[poller] %s: status write: %v", ticker, err)
		}
	}

	p.zoneAlerts(ctx, ticker, snap)

	change := snap.DailyChange
	if change > sharpMoveThresholdPct || change < -sharpMoveThresholdPct {
		p.send(ctx, "sharp_move", notification.SharpMoveAlert(ticker, snap.Price, change, p.now()))
	}
	return nil
}

func (p *Poller) zoneAlerts(ctx context.Context, ticker string, snap *analysis.Snapshot) {
	z := snap.Zones
	price := snap.Price
	switch {
	case price <= z.BuyStrong:
		p.send(ctx, "zone", notification.ZoneAlert(ticker, price, z.BuyStrong, "strong buy", p.now()))
	case price <= z.BuyModerate:
		p.send(ctx, "zone", notification.ZoneAlert(ticker, price, z.BuyModerate, "moderate buy", p.now()))
	}
	switch {
	case price >= z.SellStrong:
		p.send(ctx, "zone", notification.ZoneAlert(ticker, price, z.SellStrong, "strong sell", p.now()))
	case price >= z.SellModerate:
		p.send(ctx, "zone", notification.ZoneAlert(ticker, price, z.SellModerate, "moderate sell", p.now()))
	}
}

func (p *Poller) send(ctx context.Context, kind string, a notification.Alert) {
	if err := p.notifier.Send(ctx, a); err != nil {
		log.Printf("[poller] notify (%s): %v", kind, err)
		return
	}
	if p.metrics != nil {
		p.metrics.AlertsTotal.WithLabelValues(kind).Inc()
	}
}

// trendLines renders the multi-horizon readout for the signal alert body.
func trendLines(snap *analysis.Snapshot) []string {
	var out []string
	for _, h := range snap.HorizonTrends() {
		emoji := "📉"
		if h.Trend == indicator.TrendUp {
			emoji = "📈"
		}
		out = append(out, fmt.Sprintf("%s %s-term trend: %s (%.1f%%)", emoji, h.Horizon, h.Trend, h.Strength))
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
