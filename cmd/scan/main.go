// cmd/scan analyzes and backtests every configured ticker, ranks the
// opportunities, prints the report, and stores the ranking in SQLite.
//
// Usage:
//
//	TICKERS=PETR4,VALE3,ITUB4 go run ./cmd/scan
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stocksignalsv1/config"
	"stocksignalsv1/internal/analysis"
	"stocksignalsv1/internal/backtest"
	"stocksignalsv1/internal/logger"
	"stocksignalsv1/internal/marketdata"
	"stocksignalsv1/internal/model"
	"stocksignalsv1/internal/notification"
	"stocksignalsv1/internal/rank"
	sqlitestore "stocksignalsv1/internal/store/sqlite"
	"stocksignalsv1/pkg/feedgate"

	"github.com/pquerna/otp/totp"
)

func main() {
	cfg := config.Load()
	logger.Init("scan", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	tickersFlag := flag.String("tickers", "", "Comma-separated tickers (default: TICKERS env)")
	days := flag.Int("days", cfg.BacktestDays, "Lookback days per ticker")
	top := flag.Int("top", 0, "Notify the top N opportunities via Telegram (0=off)")
	flag.Parse()

	tickers := cfg.ParseTickers()
	if *tickersFlag != "" {
		tickers = splitTickers(*tickersFlag)
	}
	if len(tickers) == 0 {
		log.Fatal("[scan] no tickers configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	totpCode, err := totp.GenerateCode(cfg.FeedTOTPSecret, time.Now())
	if err != nil {
		log.Fatalf("[scan] totp generation failed: %v", err)
	}
	client := feedgate.NewClient(feedgate.Config{
		APIKey:     cfg.FeedAPIKey,
		ClientCode: cfg.FeedClientCode,
		BaseURL:    cfg.FeedBaseURL,
	})
	if err := client.GenerateSession(ctx, cfg.FeedPassword, totpCode); err != nil {
		log.Fatalf("[scan] feed login failed: %v", err)
	}

	store, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[scan] sqlite open failed: %v", err)
	}
	defer store.Close()

	if last, err := store.LastRunTS(); err != nil {
		log.Printf("[scan] last run lookup: %v", err)
	} else if !last.IsZero() {
		log.Printf("[scan] previous scan run: %s", last.Format("2006-01-02 15:04:05"))
	}

	runTS := time.Now()
	var opps []model.Opportunity
	for _, ticker := range tickers {
		opp, trades, err := scanTicker(ctx, client, ticker, *days)
		if err != nil {
			log.Printf("[scan] %s skipped: %v", ticker, err)
			continue
		}
		opps = append(opps, opp)
		if err := store.SaveTrades(ticker, trades, runTS); err != nil {
			log.Printf("[scan] %s: save trades: %v", ticker, err)
		}
	}
	if len(opps) == 0 {
		log.Fatal("[scan] no ticker produced a ranking entry")
	}

	rank.Sort(opps)

	fmt.Printf("Opportunity ranking (%d tickers, %d days)\n\n", len(opps), *days)
	if err := rank.WriteReport(os.Stdout, opps); err != nil {
		log.Fatalf("[scan] report: %v", err)
	}

	if err := store.SaveRankings(opps, runTS); err != nil {
		log.Fatalf("[scan] save rankings: %v", err)
	}

	if *top > 0 && cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifyTop(ctx, cfg, opps, *top)
	}
}

// scanTicker produces one ranking entry: live snapshot plus backtest stats.
func scanTicker(ctx context.Context, provider marketdata.Provider, ticker string, days int) (model.Opportunity, []model.Trade, error) {
	bars, err := provider.History(ctx, ticker, days)
	if err != nil {
		return model.Opportunity{}, nil, err
	}
	if err := marketdata.Validate(bars, analysis.MinBars+1); err != nil {
		return model.Opportunity{}, nil, err
	}

	snap, err := analysis.Analyze(bars)
	if err != nil {
		return model.Opportunity{}, nil, err
	}
	res, err := backtest.Run(ticker, bars)
	if err != nil {
		return model.Opportunity{}, nil, err
	}

	opp := rank.Build(ticker, snap.Price, snap.RSI, res.Stats, snap.Score)
	return opp, res.Trades, nil
}

func notifyTop(ctx context.Context, cfg *config.Config, opps []model.Opportunity, n int) {
	if n > len(opps) {
		n = len(opps)
	}
	var b strings.Builder
	rank.WriteReport(&b, opps[:n])

	notifier := notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	alert := notification.Alert{
		Level:   notification.AlertInfo,
		Title:   fmt.Sprintf("Top %d opportunities", n),
		Message: b.String(),
	}
	if err := notifier.Send(ctx, alert); err != nil {
		log.Printf("[scan] telegram notify: %v", err)
	}
}

func splitTickers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
