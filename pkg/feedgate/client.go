// Package feedgate is a client for the FeedGate market-data gateway: REST
// session handling plus daily candle history, and a websocket quote stream.
package feedgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocksignalsv1/internal/model"
)

const defaultBaseURL = "https://api.feedgate.example.com"

// Config configures the REST client.
type Config struct {
	APIKey     string
	ClientCode string
	BaseURL    string        // default: defaultBaseURL
	Timeout    time.Duration // default: 10s
	Debug      bool
}

// Client is the FeedGate REST client. Safe for use from a single goroutine;
// the poller owns it.
type Client struct {
	apiKey     string
	clientCode string
	baseURL    string
	debug      bool

	accessToken string
	feedToken   string

	httpClient *http.Client
}

// NewClient initializes the client without logging in. Call GenerateSession
// before any data request.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		clientCode: cfg.ClientCode,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		debug:      cfg.Debug,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FeedToken returns the websocket feed token obtained at login.
func (c *Client) FeedToken() string { return c.feedToken }

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GenerateSession logs in with the account password and a fresh TOTP code,
// storing the access and feed tokens on the client.
func (c *Client) GenerateSession(ctx context.Context, password, totpCode string) error {
	payload := map[string]string{
		"clientcode": c.clientCode,
		"password":   password,
		"totp":       totpCode,
	}
	data, err := c.post(ctx, "/auth/v1/session", payload)
	if err != nil {
		return fmt.Errorf("feedgate login: %w", err)
	}

	var tokens struct {
		AccessToken string `json:"accessToken"`
		FeedToken   string `json:"feedToken"`
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("feedgate login: decode tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("feedgate login: empty access token")
	}
	c.accessToken = tokens.AccessToken
	c.feedToken = tokens.FeedToken
	log.Printf("[feedgate] session established for %s", c.clientCode)
	return nil
}

// TerminateSession logs out and clears the stored tokens.
func (c *Client) TerminateSession(ctx context.Context) error {
	_, err := c.post(ctx, "/auth/v1/logout", map[string]string{"clientcode": c.clientCode})
	c.accessToken = ""
	c.feedToken = ""
	return err
}

// candleRow is the wire format: [unix_ts, open, high, low, close].
type candleRow [5]float64

// History returns up to `days` calendar days of daily bars for a ticker,
// oldest first. Implements the marketdata Provider interface.
func (c *Client) History(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("interval", "1d")
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))

	data, err := c.get(ctx, "/marketdata/v1/candles", q)
	if err != nil {
		return nil, fmt.Errorf("feedgate history %s: %w", ticker, err)
	}

	var rows []candleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("feedgate history %s: decode candles: %w", ticker, err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, model.Bar{
			TS:    time.Unix(int64(r[0]), 0).UTC(),
			Open:  r[1],
			High:  r[2],
			Low:   r[3],
			Close: r[4],
		})
	}
	return bars, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	if c.debug {
		log.Printf("[feedgate] %s %s", req.Method, req.URL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Status {
		return nil, fmt.Errorf("api error: %s", out.Message)
	}
	return out.Data, nil
}
