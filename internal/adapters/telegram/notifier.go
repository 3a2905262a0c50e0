// Package telegram delivers trade notifications to a Telegram channel.
package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"swingTraderBot/internal/ports"
)

const defaultTimeout = 5 * time.Second

// Notifier implements ports.Notifier over the Telegram Bot API.
// Delivery is fire-and-forget: failures are logged and swallowed so the
// trading cycle never blocks on chat.
type Notifier struct {
	client *resty.Client
	chatID string
	logger ports.Logger
}

// Config holds configuration for the Telegram notifier.
type Config struct {
	Token   string
	ChatID  string
	Timeout time.Duration
	Logger  ports.Logger
}

// New creates a Telegram notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for telegram notifier")
	}
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram token and chat ID are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL("https://api.telegram.org/bot" + cfg.Token).
		SetTimeout(timeout)

	return &Notifier{client: client, chatID: cfg.ChatID, logger: cfg.Logger}, nil
}

// Notify sends one message to the configured chat.
func (n *Notifier) Notify(ctx context.Context, message string) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    message,
		}).
		Post("/sendMessage")
	if err != nil {
		n.logger.Warn(ctx, "Failed to deliver notification", map[string]interface{}{"error": err.Error()})
		return
	}
	if resp.IsError() {
		n.logger.Warn(ctx, "Notification rejected by Telegram", map[string]interface{}{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		})
	}
}
