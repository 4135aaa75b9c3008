package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiClient is a minimal Telegram Bot API client covering what the bot
// needs: long-polling for updates, sending messages with inline keyboards
// and acknowledging callbacks.
type apiClient struct {
	token   string
	base    string
	client  *http.Client
	timeout time.Duration
}

func newAPIClient(token, base string, pollTimeout time.Duration) *apiClient {
	if base == "" {
		base = "https://api.telegram.org"
	}
	// The HTTP timeout must outlast the long-poll hold.
	return &apiClient{
		token:   strings.TrimSpace(token),
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: pollTimeout + 10*time.Second},
		timeout: pollTimeout,
	}
}

type update struct {
	UpdateID int64     `json:"update_id"`
	Message  *message  `json:"message"`
	Callback *callback `json:"callback_query"`
}

type message struct {
	Chat chat   `json:"chat"`
	Text string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type callback struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *message `json:"message"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *apiClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}
	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s: api error: %s", method, api.Description)
	}
	return api.Result, nil
}

// getUpdates long-polls for new updates past offset.
func (c *apiClient) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	result, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": int(c.timeout.Seconds()),
	})
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// sendMessage posts text to a chat, with an optional inline keyboard.
func (c *apiClient) sendMessage(ctx context.Context, chatID int64, text string, markup *inlineKeyboard) error {
	params := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if markup != nil {
		params["reply_markup"] = markup
	}
	_, err := c.call(ctx, "sendMessage", params)
	return err
}

// answerCallback dismisses the client-side spinner on an inline button.
func (c *apiClient) answerCallback(ctx context.Context, callbackID string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID})
	return err
}
