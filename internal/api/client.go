// Package api holds the HTTP gateways the client consumes: authentication
// and learning content. Both speak JSON and share one transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/payload"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client is the shared transport for AuthClient and ContentClient.
type Client struct {
	baseURL     string
	http        *http.Client
	logger      *zap.Logger
	tokenSource func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokenSource supplies the bearer token sent with each request. An
// empty token sends no Authorization header.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenSource = fn }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and returns the body of a 2xx response. Non-2xx
// responses become *StatusError carrying the body's error message.
func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var token string
	if c.tokenSource != nil {
		token = c.tokenSource()
	}
	return c.send(ctx, method, path, in, token)
}

// send is do with an explicit bearer token.
func (c *Client) send(ctx context.Context, method, path string, in any, token string) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	reqID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// envelope is the {success, data, error} wrapper most endpoints use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// openEnvelope returns the payload inside body. Bodies without an envelope
// are treated as the payload itself. A body with success=false is an error
// even when the status was 2xx.
func openEnvelope(body []byte) (json.RawMessage, error) {
	body = payload.Unwrap(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Arrays and scalars are bare payloads.
		return body, nil
	}
	if env.Success == nil && env.Data == nil {
		return body, nil
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return nil, &StatusError{Code: http.StatusOK, Message: msg}
	}
	return payload.Unwrap(env.Data), nil
}

// errorMessage extracts the "error" (or "message") field of an error body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(payload.Unwrap(body), &env); err != nil {
		return ""
	}
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
