// Package telegram wraps the Telegram Bot API for DocuBridge.
//
// The Bot API is plain HTTPS+JSON, so the wrapper is a thin net/http client:
// sendMessage with optional quick-reply keyboards, chat actions and webhook
// management. Inbound updates arrive over the webhook endpoint and are parsed
// with ParseUpdate.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"
)

// DefaultAPIBaseURL is the public Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token      string
	APIBaseURL string
	HTTPClient *http.Client
}

// Option defines a configuration option for the Telegram client.
type Option func(*Opts)

// WithToken sets the bot token explicitly instead of reading
// TELEGRAM_BOT_TOKEN from the environment.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithAPIBaseURL overrides the Bot API base URL; tests point it at a local
// server.
func WithAPIBaseURL(url string) Option {
	return func(o *Opts) { o.APIBaseURL = url }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client is a minimal Telegram Bot API client.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient builds a Telegram client, falling back to TELEGRAM_BOT_TOKEN from
// the environment when no token option is given.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token not set")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{token: cfg.Token, baseURL: cfg.APIBaseURL, http: cfg.HTTPClient}, nil
}

// Update is one inbound Bot API update. Only message updates are consumed.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	Date      int64  `json:"date"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// ParseUpdate decodes a webhook payload into an Update.
func ParseUpdate(data []byte) (*Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to decode telegram update: %w", err)
	}
	return &u, nil
}

// keyboardButton is one tappable quick-reply button.
type keyboardButton struct {
	Text string `json:"text"`
}

// replyKeyboard renders choices as a one-column quick-reply keyboard that
// collapses after use.
type replyKeyboard struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// apiResult is the Bot API response envelope.
type apiResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends text to a chat. When choices is non-empty they render as
// a tappable quick-reply keyboard mirroring the allowed values.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, choices []string) error {
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if len(choices) > 0 {
		kb := replyKeyboard{ResizeKeyboard: true, OneTimeKeyboard: true}
		for _, choice := range choices {
			kb.Keyboard = append(kb.Keyboard, []keyboardButton{{Text: choice}})
		}
		req.ReplyMarkup = kb
	}
	return c.call(ctx, "sendMessage", req)
}

// SendChatAction sends a chat action such as "typing"; best-effort.
func (c *Client) SendChatAction(ctx context.Context, chatID, action string) error {
	return c.call(ctx, "sendChatAction", map[string]string{"chat_id": chatID, "action": action})
}

// SetWebhook registers the webhook URL, dropping pending updates.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, "setWebhook", map[string]any{"url": url, "drop_pending_updates": true})
}

// DeleteWebhook removes any registered webhook.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{})
}

// call posts one Bot API method with a JSON body and checks the envelope.
func (c *Client) call(ctx context.Context, method string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var result apiResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode telegram %s response: %w", method, err)
	}
	if !result.OK {
		slog.Error("Telegram API call rejected", "method", method, "status", resp.StatusCode, "description", result.Description)
		return fmt.Errorf("telegram %s failed: %s", method, result.Description)
	}
	slog.Debug("Telegram API call succeeded", "method", method)
	return nil
}

// ChatIDString converts a numeric chat id to its canonical string form.
func ChatIDString(id int64) string { return strconv.FormatInt(id, 10) }
