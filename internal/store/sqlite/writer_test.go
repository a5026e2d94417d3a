package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"stocksignalsv1/internal/model"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := New(WriterConfig{DBPath: filepath.Join(t.TempDir(), "signals.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestSaveTrades_RowsPersisted(t *testing.T) {
	w := newTestWriter(t)

	runTS := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	trades := []model.Trade{
		{
			Ticker:     "PETR4",
			Direction:  model.OperationBuy,
			EntryPrice: 60, ExitPrice: 54,
			EntryTime:  runTS.AddDate(0, 0, -3),
			ExitTime:   runTS.AddDate(0, 0, -1),
			ExitReason: model.ExitStopLoss,
			ReturnPct:  -10,
		},
		{
			Ticker:     "PETR4",
			Direction:  model.OperationSell,
			EntryPrice: 10, ExitPrice: 6,
			EntryTime:  runTS.AddDate(0, 0, -2),
			ExitTime:   runTS,
			ExitReason: model.ExitTakeProfit,
			ReturnPct:  66.67,
		},
	}
	if err := w.SaveTrades("PETR4", trades, runTS); err != nil {
		t.Fatalf("save trades: %v", err)
	}

	var count int
	if err := w.DB().QueryRow(`SELECT COUNT(*) FROM trades WHERE ticker = ?`, "PETR4").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("got %d trade rows, want 2", count)
	}
}

func TestLastRunTS_EmptyDatabase(t *testing.T) {
	w := newTestWriter(t)

	last, err := w.LastRunTS()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("got %v on an empty database, want zero time", last)
	}
}

func TestLastRunTS_ReturnsLatestRanking(t *testing.T) {
	w := newTestWriter(t)

	opps := []model.Opportunity{{
		Ticker:    "VALE3",
		Operation: model.OperationBuy,
		Price:     60, AggregateScore: 4, Confidence: 66.7, RSI: 0,
		WinRate: 100, AvgReturn: 15, StopLoss: 54, StopGain: 69,
		Messages: []string{"RSI oversold"},
	}}

	older := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	if err := w.SaveRankings(opps, older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	if err := w.SaveRankings(opps, newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	last, err := w.LastRunTS()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.Unix() != newer.Unix() {
		t.Fatalf("last run = %v, want %v", last, newer)
	}
}
