package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pkt.systems/leafcheck/schema"
)

// DefaultAPIURL is the Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// TelegramConfig configures the Telegram sender.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	APIURL   string
	Timeout  time.Duration
}

// Enabled reports whether both the token and the chat id are set.
func (c TelegramConfig) Enabled() bool {
	return strings.TrimSpace(c.BotToken) != "" && strings.TrimSpace(c.ChatID) != ""
}

// Telegram posts messages through the Bot API sendMessage method.
type Telegram struct {
	token  string
	chatID string
	client *resty.Client
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram returns a sender, or schema.ErrNotifyDisabled when the token
// or chat id is missing.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if !cfg.Enabled() {
		return nil, schema.ErrNotifyDisabled
	}
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(apiURL)
	client.SetTimeout(timeout)
	return &Telegram{
		token:  strings.TrimSpace(cfg.BotToken),
		chatID: strings.TrimSpace(cfg.ChatID),
		client: client,
	}, nil
}

// Send delivers text with HTML formatting.
func (t *Telegram) Send(ctx context.Context, text string) error {
	var result apiResponse
	res, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + t.token + "/sendMessage")
	if err != nil {
		return errors.New("telegram send: " + t.redact(err.Error()))
	}
	if res.IsError() {
		if result.Description != "" {
			return fmt.Errorf("telegram send: status %d: %s", res.StatusCode(), result.Description)
		}
		return fmt.Errorf("telegram send: status %d", res.StatusCode())
	}
	if !result.OK {
		return fmt.Errorf("telegram send: rejected: %s", result.Description)
	}
	return nil
}

// redact keeps the bot token out of errors that embed the request URL.
func (t *Telegram) redact(s string) string {
	return strings.ReplaceAll(s, t.token, "<redacted>")
}
