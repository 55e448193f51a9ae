package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finance-bot/internal/domain"
)

// appendResponse is what the Apps Script web app returns for a POST. Older
// deployments reply with "mensagem".
type appendResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Mensagem string `json:"mensagem"`
}

type checkResponse struct {
	Found bool   `json:"encontrado"`
	Error string `json:"erro"`
}

type categoriesResponse struct {
	Categories []any `json:"categorias"`
}

// HTTPStatusError captures non-2xx responses from the ledger web app.
type HTTPStatusError struct {
	StatusCode int
	Method     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("ledger: unexpected status %d from %s: %s", e.StatusCode, e.Method, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the spreadsheet-backed web app. It allocates no ids: rows
// are matched by name, amount, date and card flag.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("ledger: endpoint must not be empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("ledger: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ledger: endpoint scheme %q not supported", u.Scheme)
	}
	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Append posts one record. A 2xx reply without a JSON body counts as accepted.
func (c *Client) Append(ctx context.Context, record domain.LedgerRecord) (domain.AppendResult, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return domain.AppendResult{}, fmt.Errorf("ledger: marshal record: %w", err)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if reqErr != nil {
		return domain.AppendResult{}, fmt.Errorf("ledger: create append request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, "append")
	if err != nil {
		return domain.AppendResult{}, fmt.Errorf("ledger: append failed: %w", err)
	}

	var payload appendResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return domain.AppendResult{}, nil
	}
	msg := payload.Message
	if msg == "" {
		msg = payload.Mensagem
	}
	return domain.AppendResult{Status: strings.TrimSpace(payload.Status), Message: msg}, nil
}

// Check asks whether a just-appended row is visible yet.
func (c *Client) Check(ctx context.Context, query domain.CheckQuery) (domain.CheckResult, error) {
	params := url.Values{}
	params.Set("action", "check")
	params.Set("nome", query.Name)
	params.Set("valor", query.Amount)
	params.Set("data", query.Date)
	params.Set("cc", strconv.FormatBool(query.IsCreditCard))

	raw, err := c.get(ctx, "check", params)
	if err != nil {
		return domain.CheckResult{}, err
	}

	var payload checkResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return domain.CheckResult{}, fmt.Errorf("ledger: decode check response: %w", decErr)
	}
	return domain.CheckResult{Found: payload.Found, Error: payload.Error}, nil
}

// ListCategories returns the sheet's categories, dropping blank and
// non-string entries.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	raw, err := c.get(ctx, "categories", nil)
	if err != nil {
		return nil, err
	}

	var payload categoriesResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("ledger: decode categories response: %w", decErr)
	}
	out := make([]string, 0, len(payload.Categories))
	for _, v := range payload.Categories {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	u := *c.endpoint
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if reqErr != nil {
		return nil, fmt.Errorf("ledger: create %s request: %w", method, reqErr)
	}
	raw, err := c.doJSONRequest(req, method)
	if err != nil {
		return nil, fmt.Errorf("ledger: %s failed: %w", method, err)
	}
	return raw, nil
}

func (c *Client) doJSONRequest(req *http.Request, method string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		// url.Error embeds the web app URL, which grants write access to the sheet.
		return nil, redactURL(doErr)
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

func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s <redacted>: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
