// cmd/alertbot runs the continuous monitoring bot: it polls daily bars for
// the configured tickers during B3 trading hours, analyzes them, and sends
// signal, zone, and sharp-move alerts.
//
// Usage:
//
//	TICKERS=PETR4,VALE3 TELEGRAM_BOT_TOKEN=... go run ./cmd/alertbot
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocksignalsv1/config"
	"stocksignalsv1/internal/logger"
	"stocksignalsv1/internal/metrics"
	"stocksignalsv1/internal/notification"
	"stocksignalsv1/internal/scheduler"
	redisstore "stocksignalsv1/internal/store/redis"
	"stocksignalsv1/pkg/feedgate"

	"github.com/pquerna/otp/totp"
)

func main() {
	cfg := config.Load()
	logg := logger.Init("alertbot", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logg.Info("shutdown signal received", "signal", s.String())
		cancel()
	}()

	// Fresh TOTP per session; the gateway rejects reused codes.
	totpCode, err := totp.GenerateCode(cfg.FeedTOTPSecret, time.Now())
	if err != nil {
		logg.Error("totp generation failed", "err", err)
		os.Exit(1)
	}

	client := feedgate.NewClient(feedgate.Config{
		APIKey:     cfg.FeedAPIKey,
		ClientCode: cfg.FeedClientCode,
		BaseURL:    cfg.FeedBaseURL,
	})
	if err := client.GenerateSession(ctx, cfg.FeedPassword, totpCode); err != nil {
		logg.Error("feed login failed", "err", err)
		os.Exit(1)
	}
	defer client.TerminateSession(context.Background())

	m := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetSQLiteOK(true) // the bot does not use SQLite

	var store scheduler.Store
	if cfg.RedisAddr != "" {
		cache, err := redisstore.New(redisstore.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logg.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		defer cache.Close()
		store = cache
		health.StartLivenessChecker(ctx, cache.Client(), nil, 30*time.Second)
	} else {
		logg.Warn("REDIS_ADDR not set, using in-memory cache")
		store = scheduler.NewMemStore()
		health.SetRedisConnected(true)
	}

	var backends []notification.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret))
	}
	var notifier notification.Notifier
	switch len(backends) {
	case 0:
		logg.Warn("no delivery channel configured, alerts go to the log")
		notifier = notification.NewLogNotifier()
	case 1:
		notifier = backends[0]
	default:
		notifier = notification.NewMultiNotifier(backends...)
	}

	server := metrics.NewServer(cfg.MetricsAddr, health)
	server.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		server.Stop(stopCtx)
	}()

	tickers := cfg.ParseTickers()
	logg.Info("starting poller",
		slog.Any("tickers", tickers),
		slog.Int("history_days", cfg.HistoryDays),
		slog.Int("interval_min", cfg.PollIntervalMin),
	)

	poller := scheduler.New(scheduler.Config{
		Tickers:     tickers,
		HistoryDays: cfg.HistoryDays,
		Interval:    time.Duration(cfg.PollIntervalMin) * time.Minute,
	}, client, notifier, store, m)
	poller.SetPollObserver(health.SetLastPollTime)

	// Live quotes ride the websocket stream between full analysis cycles and
	// are checked against the latest target zones.
	stream, err := feedgate.NewStream(feedgate.StreamConfig{
		WSURL:      cfg.FeedWSURL,
		APIKey:     cfg.FeedAPIKey,
		ClientCode: cfg.FeedClientCode,
		FeedToken:  client.FeedToken(),
	})
	if err != nil {
		logg.Warn("live quotes disabled", "err", err)
	} else {
		if err := stream.Subscribe(tickers); err != nil {
			logg.Warn("quote subscription failed", "err", err)
		}
		watcher := scheduler.NewLiveWatcher(1024, poller, notifier, m)
		stream.OnQuote = func(q feedgate.Quote) {
			watcher.Offer(scheduler.Quote{Ticker: q.Ticker, Price: q.Price, TS: q.TS})
		}
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				logg.Error("quote stream stopped", "err", err)
			}
		}()
		go watcher.Run(ctx)
	}

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("poller stopped", "err", err)
		os.Exit(1)
	}
	logg.Info("alertbot stopped")
}
