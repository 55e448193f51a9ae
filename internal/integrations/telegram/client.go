package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"finance-bot/internal/domain"
)

const defaultBaseURL = "https://api.telegram.org"

type sendMessageRequest struct {
	ChatID      string `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyKeyboardMarkup struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// tokenPayload is the expected JSON shape stored in SSM for the bot token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx Bot API responses. The token-bearing URL
// is never included.
type HTTPStatusError struct {
	StatusCode int
	Method     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("telegram: unexpected status %d from %s: %s", e.StatusCode, e.Method, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client sends messages to the single owner chat.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string
	chatID      string

	tokenMu sync.Mutex
	token   string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client that fetches its bot token from SSM on first use
// and reuses it for the lifetime of the process.
func NewClient(ps Getter, paramPrefix, chatID string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("telegram: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("telegram: parameter prefix must not be empty")
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, errors.New("telegram: chat id must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
		chatID:      chatID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolveToken caches the bot token after the first successful fetch. A failed
// fetch is not cached, so the next call tries SSM again.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	token, err := fetchTokenFromParamStore(ctx, c.getter, c.tokenParameterName())
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/telegram-bot-token"
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func methodURL(baseURL, token, method string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/bot" + token + "/" + method
}

// Send posts text to the owner chat with an optional keyboard.
func (c *Client) Send(ctx context.Context, text string, kb *domain.Keyboard) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      c.chatID,
		Text:        text,
		ReplyMarkup: replyMarkup(kb),
	})
}

// AcknowledgeChoice dismisses the loading indicator on a tapped button.
func (c *Client) AcknowledgeChoice(ctx context.Context, interactionID string) error {
	if strings.TrimSpace(interactionID) == "" {
		return errors.New("telegram: callback query id must not be empty")
	}
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: interactionID})
}

func replyMarkup(kb *domain.Keyboard) any {
	switch {
	case kb == nil:
		return nil
	case len(kb.Inline) > 0:
		rows := make([][]inlineKeyboardButton, 0, len(kb.Inline))
		for _, r := range kb.Inline {
			row := make([]inlineKeyboardButton, 0, len(r))
			for _, b := range r {
				row = append(row, inlineKeyboardButton{Text: b.Text, CallbackData: b.ChoiceID})
			}
			rows = append(rows, row)
		}
		return inlineKeyboardMarkup{InlineKeyboard: rows}
	case len(kb.Reply) > 0:
		rows := make([][]keyboardButton, 0, len(kb.Reply))
		for _, r := range kb.Reply {
			row := make([]keyboardButton, 0, len(r))
			for _, text := range r {
				row = append(row, keyboardButton{Text: text})
			}
			rows = append(rows, row)
		}
		return replyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true, OneTimeKeyboard: true}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s request: %w", method, err)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, methodURL(c.baseURL, token, method), bytes.NewReader(body))
	if reqErr != nil {
		return fmt.Errorf("telegram: create %s request: %w", method, reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, method, token)
	if err != nil {
		return fmt.Errorf("telegram: %s failed: %w", method, err)
	}

	var out apiResponse
	if decErr := json.Unmarshal(raw, &out); decErr != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, decErr)
	}
	if !out.OK {
		return fmt.Errorf("telegram: %s rejected: %s", method, out.Description)
	}
	return nil
}

func (c *Client) doJSONRequest(req *http.Request, method, token string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		// url.Error embeds the request URL, which carries the token.
		return nil, errors.New(redact(doErr.Error(), token))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			Method:     method,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func redact(msg, token string) string {
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "<redacted>")
}

func fetchTokenFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("telegram: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("telegram: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("telegram: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("telegram: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("telegram: bot token is empty")
	}
	return tp.Token, nil
}
