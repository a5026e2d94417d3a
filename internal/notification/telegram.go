package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Transient delivery failures are retried before giving up.
const (
	telegramAttempts  = 3
	telegramRetryWait = 2 * time.Second
)

// TelegramNotifier sends alerts via Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier.
// botToken: Bot API token from @BotFather
// chatID: Target chat/group/channel ID
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	emoji := "ℹ️"
	switch alert.Level {
	case AlertWarning:
		emoji = "🔔"
	case AlertCritical:
		emoji = "⚠️"
	}

	text := fmt.Sprintf("%s <b>%s</b>\n\n%s", emoji, alert.Title, alert.Message)

	body, _ := json.Marshal(map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})

	var lastErr error
	for attempt := 1; attempt <= telegramAttempts; attempt++ {
		if lastErr = t.post(ctx, body); lastErr == nil {
			log.Printf("[telegram] sent alert: %s", alert.Title)
			return nil
		}
		if attempt < telegramAttempts {
			log.Printf("[telegram] attempt %d/%d failed: %v", attempt, telegramAttempts, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(telegramRetryWait):
			}
		}
	}
	return lastErr
}

func (t *TelegramNotifier) post(ctx context.Context, body []byte) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
