// Package cacheclient is a typed HTTP client for the remote cache service.
package cacheclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cache-viewer/internal/models"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every remote operation unless overridden.
const DefaultTimeout = 5 * time.Second

const (
	cachePath = "/api/cache"
	// maxErrorBody caps how much of a failure body is read for diagnostics.
	maxErrorBody = 4 << 10
)

// Client issues the remote cache operations. It holds no cache state.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// listResponse is the GET /api/cache body. Data is absent or null for an empty cache.
type listResponse struct {
	Data []models.CacheEntry `json:"data"`
}

// getResponse accepts both a bare entry and an entry wrapped in a data envelope.
type getResponse struct {
	models.CacheEntry
	Data *models.CacheEntry `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Client for the service rooted at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse cache service url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cache service url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every entry. An absent or null data field yields an empty slice.
func (c *Client) List(ctx context.Context) ([]models.CacheEntry, error) {
	const op = "list"

	resp, cancel, err := c.do(ctx, op, http.MethodGet, c.baseURL+cachePath, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return nil, c.statusError(op, resp)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, transportError(op, fmt.Errorf("decode response: %w", err))
	}
	if payload.Data == nil {
		return []models.CacheEntry{}, nil
	}
	return payload.Data, nil
}

// Get fetches one entry.
func (c *Client) Get(ctx context.Context, key string) (models.CacheEntry, error) {
	const op = "get"

	resp, cancel, err := c.do(ctx, op, http.MethodGet, c.entryURL(key), nil)
	if err != nil {
		return models.CacheEntry{}, err
	}
	defer cancel()
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return models.CacheEntry{}, c.statusError(op, resp)
	}

	var payload getResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.CacheEntry{}, transportError(op, fmt.Errorf("decode response: %w", err))
	}
	entry := payload.CacheEntry
	if payload.Data != nil {
		entry = *payload.Data
	}
	if entry.Key == "" {
		entry.Key = key
	}
	return entry, nil
}

// Delete removes one entry. A key absent at the remote yields a NotFound error.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.expectAck(ctx, "delete", http.MethodDelete, c.entryURL(key), nil)
}

// Clear removes every entry.
func (c *Client) Clear(ctx context.Context) error {
	return c.expectAck(ctx, "clear", http.MethodDelete, c.baseURL+cachePath, nil)
}

// Create inserts an entry. Remote validation failures carry the server message verbatim.
func (c *Client) Create(ctx context.Context, entry models.CacheEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return transportError("create", err)
	}
	return c.expectAck(ctx, "create", http.MethodPost, c.baseURL+cachePath, body)
}

func (c *Client) expectAck(ctx context.Context, op, method, endpoint string, body []byte) error {
	resp, cancel, err := c.do(ctx, op, method, endpoint, body)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return c.statusError(op, resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

// do sends one request bounded by the client timeout. The returned cancel func must be
// called once the body has been consumed.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		cancel()
		return nil, nil, transportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", c.timeout, err)
		}
		c.log.Debug().Err(err).Str("op", op).Str("url", endpoint).Msg("cache request failed")
		return nil, nil, transportError(op, err)
	}
	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("cache request done")
	return resp, cancel, nil
}

// statusError classifies a non-2xx response.
func (c *Client) statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorResponse
	_ = json.Unmarshal(raw, &payload)
	serverMsg := strings.TrimSpace(payload.Error)

	switch {
	case resp.StatusCode == http.StatusNotFound && (op == "get" || op == "delete"):
		msg := serverMsg
		if msg == "" {
			msg = "key not found"
		}
		return &Error{Kind: KindNotFound, Op: op, Message: msg}
	case op == "create" && resp.StatusCode >= 400 && resp.StatusCode < 500 && serverMsg != "":
		return &Error{Kind: KindValidation, Op: op, Message: serverMsg}
	}

	detail := serverMsg
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}
	err := fmt.Errorf("unexpected status %d", resp.StatusCode)
	if detail != "" {
		err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}
	return transportError(op, err)
}

func (c *Client) entryURL(key string) string {
	return c.baseURL + cachePath + "/" + url.PathEscape(key)
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
