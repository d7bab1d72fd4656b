// Package apiclient is the HTTP client every console component uses to talk
// to the lending API. It owns the default Authorization header and the
// response interceptor that ends the session on a 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/creditor/creditor_console/internal/logging"
)

const maxResponseBytes = 4 << 20

// UnauthorizedHandler is notified when a request that carried a token is
// rejected with 401.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// Observer records upstream request outcomes. Status is 0 when no response
// was received.
type Observer interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// Requester is the part of Client the resource services depend on.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	Logger     *slog.Logger
}

// Client is a JSON client bound to one base URL and at most one bearer token.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	logger   *slog.Logger

	mu           sync.RWMutex
	token        string
	unauthorized UnauthorizedHandler
}

// New validates the options and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", u.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Timeout > 0 {
		copied := *hc
		copied.Timeout = opts.Timeout
		hc = &copied
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{baseURL: base, http: hc, observer: opts.Observer, logger: logger}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// SetAuthToken makes every later request carry "Authorization: Bearer <token>".
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearAuthToken removes the default Authorization header.
func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

// AuthToken returns the token currently attached to requests.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetUnauthorizedHandler registers h as the 401 interceptor. Passing nil detaches it.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	c.unauthorized = h
	c.mu.Unlock()
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a JSON request to path (relative to the base URL) and decodes a
// 2xx body into out when out is non-nil. Failures are ErrNoResponse-wrapped
// transport errors or *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token, handler := c.token, c.unauthorized
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		c.logger.WarnContext(ctx, "upstream request failed",
			slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%w: %s %s: %v", ErrNoResponse, method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrNoResponse, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{Status: resp.StatusCode, Message: serverMessage(payload)}
		c.logger.DebugContext(ctx, "upstream request rejected",
			slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		// A 401 without a token is a failed credential check, not an expired session.
		if resp.StatusCode == http.StatusUnauthorized && token != "" && handler != nil {
			handler.HandleUnauthorized(ctx)
		}
		return herr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) observe(method, path string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, path, status, elapsed)
	}
}

func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
