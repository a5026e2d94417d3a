// cmd/analyze runs a one-shot analysis of a single ticker: the full
// indicator readout, the momentum score, target zones, and a walk-forward
// backtest over the configured lookback.
//
// Usage:
//
//	go run ./cmd/analyze -ticker PETR4 -days 90 -backtest-days 365
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stocksignalsv1/config"
	"stocksignalsv1/internal/analysis"
	"stocksignalsv1/internal/backtest"
	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/logger"
	"stocksignalsv1/internal/marketdata"
	sqlitestore "stocksignalsv1/internal/store/sqlite"
	"stocksignalsv1/pkg/feedgate"

	"github.com/pquerna/otp/totp"
)

func main() {
	cfg := config.Load()
	logger.Init("analyze", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	ticker := flag.String("ticker", "", "Ticker to analyze (default: first of TICKERS)")
	days := flag.Int("days", cfg.HistoryDays, "Lookback days for the live analysis")
	backtestDays := flag.Int("backtest-days", cfg.BacktestDays, "Lookback days for the backtest")
	save := flag.Bool("save", false, "Persist backtest trades to SQLite")
	flag.Parse()

	symbol := *ticker
	if symbol == "" {
		tickers := cfg.ParseTickers()
		if len(tickers) == 0 {
			log.Fatal("[analyze] no ticker given and TICKERS is empty")
		}
		symbol = tickers[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider := login(ctx, cfg)

	bars, err := provider.History(ctx, symbol, *days)
	if err != nil {
		log.Fatalf("[analyze] history fetch failed: %v", err)
	}
	if err := marketdata.Validate(bars, analysis.MinBars); err != nil {
		log.Fatalf("[analyze] %v", err)
	}

	snap, err := analysis.Analyze(bars)
	if err != nil {
		log.Fatalf("[analyze] %v", err)
	}
	printSnapshot(symbol, snap)

	btBars, err := provider.History(ctx, symbol, *backtestDays)
	if err != nil {
		log.Fatalf("[analyze] backtest history fetch failed: %v", err)
	}
	res, err := backtest.Run(symbol, btBars)
	if err != nil {
		log.Fatalf("[analyze] backtest failed: %v", err)
	}
	printBacktest(res)

	if *save {
		store, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
		if err != nil {
			log.Fatalf("[analyze] sqlite open failed: %v", err)
		}
		defer store.Close()
		if err := store.SaveTrades(symbol, res.Trades, time.Now()); err != nil {
			log.Fatalf("[analyze] save trades failed: %v", err)
		}
		fmt.Printf("\nSaved %d trades to %s\n", len(res.Trades), cfg.SQLitePath)
	}
}

func login(ctx context.Context, cfg *config.Config) *feedgate.Client {
	totpCode, err := totp.GenerateCode(cfg.FeedTOTPSecret, time.Now())
	if err != nil {
		log.Fatalf("[analyze] totp generation failed: %v", err)
	}
	client := feedgate.NewClient(feedgate.Config{
		APIKey:     cfg.FeedAPIKey,
		ClientCode: cfg.FeedClientCode,
		BaseURL:    cfg.FeedBaseURL,
	})
	if err := client.GenerateSession(ctx, cfg.FeedPassword, totpCode); err != nil {
		log.Fatalf("[analyze] feed login failed: %v", err)
	}
	return client
}

func printSnapshot(symbol string, s *analysis.Snapshot) {
	fmt.Printf("=== %s ===\n", symbol)
	fmt.Printf("Price:         R$ %.2f (%+.2f%% today)\n", s.Price, s.DailyChange)
	fmt.Printf("RSI(14):       %s\n", fval(s.RSI))
	fmt.Printf("MA5 / MA20:    %s / %s\n", fval(s.MA5), fval(s.MA20))
	fmt.Printf("MA50 / MA200:  %s / %s\n", fval(s.MA50), fval(s.MA200))
	fmt.Printf("MACD / Signal: %s / %s\n", fval(s.MACD), fval(s.MACDSignal))
	fmt.Printf("Bollinger:     %s .. %s\n", fval(s.BollLower), fval(s.BollUpper))
	fmt.Printf("Ichimoku:      tenkan %s kijun %s senkouA %s senkouB %s\n",
		fval(s.Tenkan), fval(s.Kijun), fval(s.SenkouA), fval(s.SenkouB))
	fmt.Printf("ADX / +DI/-DI: %s / %s / %s   ATR %s\n",
		fval(s.ADX), fval(s.PlusDI), fval(s.MinusDI), fval(s.ATR))

	fmt.Printf("\nScore: BUY %.1f x SELL %.1f -> %s (confidence %.0f%%)\n",
		s.Score.BuyScore, s.Score.SellScore, s.Score.Operation(), s.Score.Confidence())
	for _, m := range s.Score.Messages {
		fmt.Printf("  • %s\n", m)
	}
	if s.Score.Actionable() {
		fmt.Println("  => actionable signal")
	}

	fmt.Printf("\nZones: buy strong %.2f moderate %.2f | sell moderate %.2f strong %.2f\n",
		s.Zones.BuyStrong, s.Zones.BuyModerate, s.Zones.SellModerate, s.Zones.SellStrong)
	fmt.Printf("Stops: loss R$ %.2f gain R$ %.2f\n", s.StopLoss, s.StopGain)

	for _, h := range s.HorizonTrends() {
		fmt.Printf("Trend (%s): %s %.1f%%\n", h.Horizon, h.Trend, h.Strength)
	}
}

func printBacktest(res *backtest.Result) {
	st := res.Stats
	fmt.Printf("\n=== Backtest %s ===\n", res.Ticker)
	fmt.Printf("Trades: %d (%d wins, %d losses)\n", st.TotalTrades, st.Wins, st.Losses)
	fmt.Printf("Win rate:   %.1f%%\n", st.WinRate)
	fmt.Printf("Avg return: %+.2f%%\n", st.AvgReturn)
	fmt.Printf("Cum return: %+.2f%%\n", st.CumReturn)
	for _, t := range res.Trades {
		fmt.Printf("  %s %s %s %.2f -> %.2f (%s, %+.2f%%)\n",
			t.EntryTime.Format("2006-01-02"), t.Direction, t.Ticker,
			t.EntryPrice, t.ExitPrice, t.ExitReason, t.ReturnPct)
	}
}

// fval renders an indicator value, showing "-" while it is still warming up.
func fval(v float64) string {
	if !indicator.Defined(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
