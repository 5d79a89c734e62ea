// Package api provides a typed client for the finance REST service:
// auth, categories, transactions and budgets.
package api

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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "github.com/theirongolddev/tally/1.0"
)

func init() {
	// The service expects amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TokenSource supplies the bearer token for authenticated requests.
// An empty token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to the finance REST service. It is safe for concurrent use.
// No retries and no caching happen at this layer.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.SugaredLogger

	mu     sync.RWMutex
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient creates a client for the service rooted at baseURL,
// e.g. "https://finance.example.com/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     logger.Named("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource swaps the token source after construction.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do sends one request. in, when non-nil, is encoded as the JSON body; out,
// when non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debugw("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decoding %s %s: %w", method, path, err)
	}
	return nil
}

// errorBody is the service's error envelope. Field errors come from an
// express-validator style list.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Msg   string `json:"msg"`
		Path  string `json:"path"`
		Param string `json:"param"`
	} `json:"errors"`
}

func decodeError(status int, raw []byte) error {
	apiErr := &apperr.APIError{Status: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		for _, fe := range body.Errors {
			field := fe.Path
			if field == "" {
				field = fe.Param
			}
			apiErr.FieldErrors = append(apiErr.FieldErrors, apperr.FieldError{Field: field, Message: fe.Msg})
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var a *apperr.APIError
	return errors.As(err, &a) && a.Status == http.StatusNotFound
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
