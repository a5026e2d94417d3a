package feedgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWSURL      = "wss://stream.feedgate.example.com/quotes"
	heartbeatInterval = 10 * time.Second
	writeTimeout      = 5 * time.Second
)

// Quote is a live price update from the stream.
type Quote struct {
	Ticker string    `json:"symbol"`
	Price  float64   `json:"price"`
	TS     time.Time `json:"ts"`
}

// StreamConfig configures the websocket quote stream.
type StreamConfig struct {
	WSURL      string // default: defaultWSURL
	APIKey     string
	ClientCode string
	FeedToken  string

	MaxRetries int           // reconnect attempts before giving up, default 5
	RetryDelay time.Duration // base delay between attempts, default 5s
}

// Stream maintains a websocket connection to the quote feed, resubscribing
// after reconnects.
type Stream struct {
	cfg StreamConfig

	mu      sync.Mutex
	conn    *websocket.Conn
	tickers []string

	// OnQuote is invoked from the read loop for every parsed quote.
	OnQuote func(Quote)
}

// NewStream validates the credentials and builds an unconnected stream.
func NewStream(cfg StreamConfig) (*Stream, error) {
	if cfg.APIKey == "" || cfg.ClientCode == "" || cfg.FeedToken == "" {
		return nil, errors.New("feedgate stream: api key, client code and feed token are required")
	}
	if cfg.WSURL == "" {
		cfg.WSURL = defaultWSURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Stream{cfg: cfg}, nil
}

// Run connects and processes quotes until ctx is cancelled or reconnect
// attempts are exhausted.
func (s *Stream) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := s.connect(ctx); err != nil {
			attempt++
			if attempt > s.cfg.MaxRetries {
				return fmt.Errorf("feedgate stream: giving up after %d attempts: %w", attempt-1, err)
			}
			log.Printf("[feedgate-ws] connect failed (attempt %d/%d): %v", attempt, s.cfg.MaxRetries, err)
			if serr := sleepCtx(ctx, time.Duration(attempt)*s.cfg.RetryDelay); serr != nil {
				return serr
			}
			continue
		}
		attempt = 0

		err := s.readLoop(ctx)
		s.close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[feedgate-ws] connection lost: %v, reconnecting", err)
	}
}

// Subscribe registers tickers for quote delivery. Safe to call before Run;
// the subscription is replayed on every (re)connect.
func (s *Stream) Subscribe(tickers []string) error {
	s.mu.Lock()
	s.tickers = append(s.tickers, tickers...)
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return s.sendSubscribe(conn, tickers)
}

func (s *Stream) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("X-API-Key", s.cfg.APIKey)
	header.Set("X-Client-Code", s.cfg.ClientCode)
	header.Set("X-Feed-Token", s.cfg.FeedToken)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.WSURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	tickers := append([]string(nil), s.tickers...)
	s.mu.Unlock()

	if len(tickers) > 0 {
		if err := s.sendSubscribe(conn, tickers); err != nil {
			conn.Close()
			return fmt.Errorf("resubscribe: %w", err)
		}
	}

	log.Printf("[feedgate-ws] connected to %s (%d tickers)", s.cfg.WSURL, len(tickers))
	return nil
}

func (s *Stream) sendSubscribe(conn *websocket.Conn, tickers []string) error {
	req := map[string]any{
		"action":  "subscribe",
		"symbols": tickers,
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(req)
}

func (s *Stream) readLoop(ctx context.Context) error {
	conn := s.currentConn()
	if conn == nil {
		return errors.New("no connection")
	}

	// Heartbeat keeps intermediary proxies from dropping the idle stream.
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c := s.currentConn()
				if c == nil {
					return
				}
				if err := c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var q Quote
		if err := json.Unmarshal(message, &q); err != nil {
			log.Printf("[feedgate-ws] bad quote frame: %v", err)
			continue
		}
		if q.Ticker == "" {
			continue
		}
		if s.OnQuote != nil {
			s.OnQuote(q)
		}
	}
}

func (s *Stream) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
		s.conn = nil
	}
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
