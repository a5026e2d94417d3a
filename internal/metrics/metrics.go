package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: ticker
	AlertsTotal      *prometheus.CounterVec // labels: kind=signal|zone|zone_live|sharp_move|startup
	FetchErrorsTotal *prometheus.CounterVec // labels: ticker
	FetchDur         prometheus.Histogram
	AnalysisDur      prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	StaleFallbacks   prometheus.Counter
	MarketState      prometheus.Gauge // 0=closed, 1=open
	LastPollTS       prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_analyses_total",
			Help: "Total analyses computed (by ticker)",
		}, []string{"ticker"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_alerts_total",
			Help: "Total alerts sent (by kind)",
		}, []string{"kind"}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_fetch_errors_total",
			Help: "Total bar history fetch failures (by ticker)",
		}, []string{"ticker"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_fetch_duration_seconds",
			Help:    "Bar history fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_analysis_duration_seconds",
			Help:    "Full indicator and scoring pass latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_history_cache_hits_total",
			Help: "History requests served from the Redis cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_history_cache_misses_total",
			Help: "History requests that went to the provider",
		}),
		StaleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_history_stale_fallbacks_total",
			Help: "Fetch failures served from an expired cache entry",
		}),
		MarketState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signals_market_state",
			Help: "Market session state (0=closed, 1=open)",
		}),
		LastPollTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signals_last_poll_timestamp_seconds",
			Help: "Unix time of the last completed poll cycle",
		}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AlertsTotal,
		m.FetchErrorsTotal,
		m.FetchDur,
		m.AnalysisDur,
		m.CacheHits,
		m.CacheMisses,
		m.StaleFallbacks,
		m.MarketState,
		m.LastPollTS,
	)

	return m
}

// HealthStatus represents the bot health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`
	LastPollTime   time.Time `json:"last_poll_time"`

	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetLastPollTime(t time.Time) {
	h.mu.Lock()
	h.LastPollTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	pollAge := ""
	if !h.LastPollTime.IsZero() {
		pollAge = time.Since(h.LastPollTime).Round(time.Second).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		LastPollTime    string  `json:"last_poll_time"`
		PollAge         string  `json:"poll_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		LastPollTime:    h.LastPollTime.Format(time.RFC3339),
		PollAge:         pollAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz. The root path
// answers 200 OK so free-tier hosts that probe the service keep it awake.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Bot is running!"))
	})

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
