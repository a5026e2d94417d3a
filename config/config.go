package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Feed gateway credentials
	FeedAPIKey     string
	FeedClientCode string
	FeedPassword   string
	FeedTOTPSecret string
	FeedBaseURL    string
	FeedWSURL      string

	// Alert delivery
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string // optional extra delivery channel
	WebhookSecret    string

	// Infrastructure
	RedisAddr     string // empty = in-memory cache only
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string

	// Analysis
	Tickers         string // comma-separated, e.g. "PETR4,VALE3"
	HistoryDays     int    // lookback for the live analysis window
	BacktestDays    int    // lookback for backtest runs
	PollIntervalMin int    // minutes between live analyses
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		FeedAPIKey:     mustEnv("FEED_API_KEY"),
		FeedClientCode: mustEnv("FEED_CLIENT_CODE"),
		FeedPassword:   mustEnv("FEED_PASSWORD"),
		FeedTOTPSecret: mustEnv("FEED_TOTP_SECRET"),
		FeedBaseURL:    getEnv("FEED_BASE_URL", "https://api.feedgate.example.com"),
		FeedWSURL:      getEnv("FEED_WS_URL", "wss://stream.feedgate.example.com/quotes"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/signals.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":8080"),

		Tickers:         getEnv("TICKERS", "PETR4"),
		HistoryDays:     getEnvInt("HISTORY_DAYS", 90),
		BacktestDays:    getEnvInt("BACKTEST_DAYS", 365),
		PollIntervalMin: getEnvInt("POLL_INTERVAL_MIN", 30),
	}
}

// ParseTickers splits the Tickers string into a cleaned slice.
func (c *Config) ParseTickers() []string {
	parts := strings.Split(c.Tickers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] skipping invalid value for %s: %q", key, v)
		return fallback
	}
	return n
}
