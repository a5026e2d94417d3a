package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"stocksignalsv1/internal/marketdata"
	"stocksignalsv1/internal/model"
	"stocksignalsv1/internal/notification"
)

// openTime is a Wednesday at 14:00 BRT, well inside the trading session.
var openTime = time.Date(2026, 3, 4, 14, 0, 0, 0, time.FixedZone("BRT", -3*3600))

// barSeries builds n daily bars with close 10 and range 9..11. The flat
// closes peg RSI at 100, so analysis always produces an actionable SELL.
func barSeries(n int) []model.Bar {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			TS:   start.AddDate(0, 0, i),
			Open: 10, High: 11, Low: 9, Close: 10,
		}
	}
	return bars
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	bars  []model.Bar
	err   error
}

func (c *countingProvider) History(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.bars, c.err
}

func (c *countingProvider) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notification.Alert
}

func (r *recordingNotifier) Send(ctx context.Context, a notification.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingNotifier) countTitled(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.alerts {
		if strings.HasPrefix(a.Title, prefix) {
			n++
		}
	}
	return n
}

func newTestPoller(provider marketdata.Provider, notifier notification.Notifier, store Store) *Poller {
	p := New(Config{
		Tickers:     []string{"PETR4"},
		HistoryDays: 90,
		Interval:    time.Minute,
	}, provider, notifier, store, nil)
	p.now = func() time.Time { return openTime }
	return p
}

func TestBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Minute},
		{1, 5 * time.Minute},
		{2, 10 * time.Minute},
		{12, 60 * time.Minute},
		{13, 60 * time.Minute},
		{100, 60 * time.Minute},
	}
	for _, c := range cases {
		if got := Backoff(c.attempt); got != c.want {
			t.Errorf("Backoff(%d) = %s, want %s", c.attempt, got, c.want)
		}
	}
}

func TestHistory_CacheHitSkipsProvider(t *testing.T) {
	store := NewMemStore()
	provider := &countingProvider{bars: barSeries(60)}
	p := newTestPoller(provider, &recordingNotifier{}, store)

	ctx := context.Background()
	if err := store.PutHistory(ctx, "PETR4", barSeries(60), openTime.Add(-time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	bars, err := p.history(ctx, "PETR4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 60 {
		t.Fatalf("got %d bars, want 60", len(bars))
	}
	if provider.callCount() != 0 {
		t.Fatalf("provider called %d times on a fresh cache, want 0", provider.callCount())
	}
}

func TestHistory_RefetchAfterTTL(t *testing.T) {
	store := NewMemStore()
	provider := &countingProvider{bars: barSeries(60)}
	p := newTestPoller(provider, &recordingNotifier{}, store)

	ctx := context.Background()
	if err := store.PutHistory(ctx, "PETR4", barSeries(30), openTime.Add(-16*time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	bars, err := p.history(ctx, "PETR4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.callCount() != 1 {
		t.Fatalf("provider called %d times on an expired cache, want 1", provider.callCount())
	}
	if len(bars) != 60 {
		t.Fatalf("got %d bars, want the refetched 60", len(bars))
	}

	// The refetch also rewrites the cache with a fresh timestamp.
	_, fetchedAt, err := store.History(ctx, "PETR4")
	if err != nil {
		t.Fatalf("cache read: %v", err)
	}
	if !fetchedAt.Equal(openTime) {
		t.Fatalf("cache timestamp = %v, want %v", fetchedAt, openTime)
	}
}

func TestHistory_StaleFallbackOnFetchFailure(t *testing.T) {
	store := NewMemStore()
	provider := &countingProvider{err: errors.New("upstream down")}
	p := newTestPoller(provider, &recordingNotifier{}, store)

	ctx := context.Background()
	if err := store.PutHistory(ctx, "PETR4", barSeries(30), openTime.Add(-2*time.Hour)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	bars, err := p.history(ctx, "PETR4")
	if err != nil {
		t.Fatalf("stale cache must absorb the fetch failure, got %v", err)
	}
	if len(bars) != 30 {
		t.Fatalf("got %d bars, want the 30 stale ones", len(bars))
	}
}

func TestHistory_FetchFailureWithEmptyCache(t *testing.T) {
	provider := &countingProvider{err: errors.New("upstream down")}
	p := newTestPoller(provider, &recordingNotifier{}, NewMemStore())

	if _, err := p.history(context.Background(), "PETR4"); err == nil {
		t.Fatal("want an error with no cache to fall back on")
	}
}

func TestPollTicker_StatusAlertDeduplicated(t *testing.T) {
	store := NewMemStore()
	provider := &countingProvider{bars: barSeries(60)}
	notifier := &recordingNotifier{}
	p := newTestPoller(provider, notifier, store)

	ctx := context.Background()
	if err := p.pollTicker(ctx, "PETR4"); err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if got := notifier.countTitled("Signal change"); got != 1 {
		t.Fatalf("got %d signal alerts after first poll, want 1", got)
	}

	last, _ := store.LastStatus(ctx, "PETR4")
	if last != "🔴 EXCELLENT MOMENT TO SELL" {
		t.Fatalf("stored status = %q", last)
	}

	// Same status on the next poll: no repeat alert.
	if err := p.pollTicker(ctx, "PETR4"); err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if got := notifier.countTitled("Signal change"); got != 1 {
		t.Fatalf("got %d signal alerts after second poll, want still 1", got)
	}
}

func TestPollTicker_FetchFailureBackoff(t *testing.T) {
	provider := &countingProvider{err: errors.New("upstream down")}
	p := newTestPoller(provider, &recordingNotifier{}, NewMemStore())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < MaxConsecutiveErrors-1; i++ {
		if err := p.pollTicker(ctx, "PETR4"); err == nil {
			t.Fatal("want a fetch error")
		}
	}
	if p.errStreak["PETR4"] != MaxConsecutiveErrors-1 {
		t.Fatalf("streak = %d, want %d", p.errStreak["PETR4"], MaxConsecutiveErrors-1)
	}

	// The third failure starts the backoff sleep. A cancelled context cuts
	// it short; the streak keeps growing so later failures back off longer.
	cancel()
	if err := p.pollTicker(ctx, "PETR4"); err == nil {
		t.Fatal("want an error from the backed-off poll")
	}
	if p.errStreak["PETR4"] != MaxConsecutiveErrors {
		t.Fatalf("streak = %d after backoff, want %d", p.errStreak["PETR4"], MaxConsecutiveErrors)
	}

	// A successful fetch clears the streak.
	provider.mu.Lock()
	provider.err = nil
	provider.bars = barSeries(60)
	provider.mu.Unlock()
	if err := p.pollTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("poll after recovery: %v", err)
	}
	if p.errStreak["PETR4"] != 0 {
		t.Fatalf("streak = %d after recovery, want 0", p.errStreak["PETR4"])
	}
}

func TestBackoff_EscalatesWithTheStreak(t *testing.T) {
	// Streak 3 is the first rested failure; each further failure adds a step.
	for streak, want := MaxConsecutiveErrors, 5*time.Minute; streak < MaxConsecutiveErrors+3; streak++ {
		if got := Backoff(streak - MaxConsecutiveErrors + 1); got != want {
			t.Errorf("streak %d: backoff = %s, want %s", streak, got, want)
		}
		want += 5 * time.Minute
	}
}

func TestMemStore_StatusRoundTrip(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	last, err := store.LastStatus(ctx, "VALE3")
	if err != nil || last != "" {
		t.Fatalf("empty store: got (%q, %v)", last, err)
	}
	if err := store.SetLastStatus(ctx, "VALE3", "🟢 EXCELLENT MOMENT TO BUY"); err != nil {
		t.Fatalf("set: %v", err)
	}
	last, _ = store.LastStatus(ctx, "VALE3")
	if last != "🟢 EXCELLENT MOMENT TO BUY" {
		t.Fatalf("got %q", last)
	}
	if err := store.SetLastStatus(ctx, "VALE3", ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if last, _ = store.LastStatus(ctx, "VALE3"); last != "" {
		t.Fatalf("status not cleared, got %q", last)
	}
}
