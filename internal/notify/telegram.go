// Package notify delivers run summaries to a Telegram chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Status classifies the outcome of a notification attempt.
type Status string

// Notification outcomes. Skipped means the destination is not configured;
// it is a valid state, not a failure.
const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome reports what happened to a single notification.
type Outcome struct {
	Status Status
	Err    error
}

// Config is the optional notification destination.
type Config struct {
	BotToken string
	ChatID   string
}

// Enabled reports whether both destination fields are present after trimming.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BotToken) != "" && strings.TrimSpace(c.ChatID) != ""
}

const (
	defaultAPIBase = "https://api.telegram.org"
	// Telegram caps messages at 4096 chars; stay under it like the original.
	maxMessageRunes = 4000
	maxSendAttempts = 3
)

// Telegram implements the notifier against the Bot API sendMessage endpoint.
type Telegram struct {
	cfg     Config
	client  *http.Client
	apiBase string
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// Option customizes a Telegram notifier; used by tests to point it at a
// local server.
type Option func(*Telegram)

// WithClient replaces the HTTP client.
func WithClient(client *http.Client) Option {
	return func(t *Telegram) { t.client = client }
}

// WithAPIBase replaces the Bot API base URL.
func WithAPIBase(base string) Option {
	return func(t *Telegram) { t.apiBase = strings.TrimRight(base, "/") }
}

// NewTelegram builds a notifier for the given destination.
func NewTelegram(cfg Config, logger *zap.Logger, opts ...Option) *Telegram {
	t := &Telegram{
		cfg:     cfg,
		client:  &http.Client{Timeout: 20 * time.Second},
		apiBase: defaultAPIBase,
		logger:  logger,
		backoff: func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send delivers text to the configured chat. An unconfigured destination
// short-circuits to skipped without touching the network. Failures are
// reported in the Outcome and never abort the caller's run.
func (t *Telegram) Send(ctx context.Context, text string) Outcome {
	if !t.cfg.Enabled() {
		t.logger.Info("telegram destination not configured, notification skipped")
		return Outcome{Status: StatusSkipped}
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  strings.TrimSpace(t.cfg.ChatID),
		"text":                     truncateRunes(text, maxMessageRunes),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, strings.TrimSpace(t.cfg.BotToken))

	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Outcome{Status: StatusFailed, Err: ctx.Err()}
			case <-time.After(t.backoff(attempt)):
			}
		}

		status, desc, err := t.post(ctx, endpoint, payload)
		switch {
		case err != nil:
			lastErr = err
		case status/100 == 2:
			return Outcome{Status: StatusSent}
		case status == http.StatusUnauthorized:
			// Almost always a bad token or chat id; no point retrying.
			t.logger.Warn("telegram rejected credentials, check TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID",
				zap.String("description", desc))
			return Outcome{Status: StatusFailed, Err: fmt.Errorf("telegram status 401: %s", desc)}
		case status/100 == 5:
			lastErr = fmt.Errorf("telegram status %d: %s", status, desc)
		default:
			return Outcome{Status: StatusFailed, Err: fmt.Errorf("telegram status %d: %s", status, desc)}
		}
	}
	return Outcome{Status: StatusFailed, Err: lastErr}
}

func (t *Telegram) post(ctx context.Context, endpoint string, payload []byte) (status int, desc string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, apiDescription(body), nil
}

// apiDescription extracts the human-readable error from a Bot API response
// body, falling back to the raw body.
func apiDescription(body []byte) string {
	var api struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &api); err == nil && api.Description != "" {
		return api.Description
	}
	return strings.TrimSpace(string(body))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
