// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxResponseSize caps how much of a response body is read.
const MaxResponseSize = 10 * 1024 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout per HTTP attempt (default: 30s)
	Timeout time.Duration

	// MaxRetries after the first attempt (default: 3, negative disables)
	MaxRetries int

	// RetryDelay is the first backoff step (default: 500ms)
	RetryDelay time.Duration

	// RetryMaxDelay caps backoff and Retry-After waits (default: 10s)
	RetryMaxDelay time.Duration

	// RateLimit in requests per second (default: 10) and its burst (default: 20)
	RateLimit float64
	RateBurst int

	// UserAgent sent with every request (default: aisle/dev)
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:8000",
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
		RetryMaxDelay: 10 * time.Second,
		RateLimit:     10,
		RateBurst:     20,
		UserAgent:     "aisle/dev",
	}
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("api")
		}
	}
}

// WithRateLimit replaces the client-side limiter. A zero limit disables it.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the storefront backend. Every method unwraps the
// backend's {success, ...} envelope and reports success:false as a
// *ClientError.
//
// The Client is safe for concurrent use.
//
// Example:
//
//	client := api.NewClient()
//	sess, err := client.CreateSession(ctx, 42, model.ChannelWeb)
//	reply, err := client.ChannelChat(ctx, api.ChatRequest{Message: "running shoes", SessionID: sess.ID})
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleeper    func(time.Duration)
}

// NewClient creates a new client with default configuration.
func NewClient(opts ...Option) *Client {
	return NewClientWithConfig(DefaultConfig(), opts...)
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig, opts ...Option) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.RetryMaxDelay == 0 {
		cfg.RetryMaxDelay = defaults.RetryMaxDelay
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaults.RateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaults.RateBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	c := &Client{
		config:     &cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// request describes one backend call. Scalars travel in query; structured
// payloads in body.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

func (r request) idempotent() bool {
	return r.method == http.MethodGet || r.method == http.MethodHead
}

// do sends r, retrying transient failures, and returns the raw body of a
// 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	endpoint := c.config.BaseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var payload []byte
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: r.op + ": failed to marshal request", Cause: err}
		}
		payload = encoded
	}

	requestID := uuid.NewString()
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.transportError(ctx, r.op, err)
			}
		}

		start := time.Now()
		body, err := c.attempt(ctx, r, endpoint, payload, requestID)
		c.logger.Debug("backend request",
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", requestID),
			zap.Int("attempt", attempt),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		if err == nil {
			return body, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, r, err, attempt, attempts)
		if !retry {
			return nil, err
		}
		c.logger.Info("retrying backend request",
			zap.String("op", r.op),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, c.transportError(ctx, r.op, err)
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, r request, endpoint string, payload []byte, requestID string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: r.op + ": failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, r.op, err)
	}
	defer resp.Body.Close()

	// SECURITY: Bound the read so a misbehaving backend cannot exhaust memory.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, c.transportError(ctx, r.op, err)
	}
	if len(body) > MaxResponseSize {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: r.op + ": response exceeds size limit"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusFailure(r.op, resp, errorText(body))
	}
	return body, nil
}

// transportError maps a failed round trip to ErrTypeTimeout or
// ErrTypeConnection.
func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &ClientError{Type: ErrTypeTimeout, Message: op + ": request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: op + ": backend is not reachable", Cause: err}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDialError reports whether the request never reached the server.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// =============================================================================
// RETRY POLICY
// =============================================================================

func (c *Client) retryAttempts() int {
	if c.config.MaxRetries < 0 {
		return 1
	}
	return c.config.MaxRetries + 1
}

// retryDelay decides whether a failed attempt is retried. GETs retry on any
// transient failure. POSTs retry only when the server cannot have acted on
// them: dial failures and 429.
func (c *Client) retryDelay(ctx context.Context, r request, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || ctx.Err() != nil {
		return 0, false
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		return 0, false
	}

	switch ce.Type {
	case ErrTypeConnection:
		if r.idempotent() || isDialError(ce.Cause) {
			return c.backoffDelay(attempt), true
		}
	case ErrTypeTimeout:
		if r.idempotent() {
			return c.backoffDelay(attempt), true
		}
	case ErrTypeHTTPStatus:
		retryable := ce.StatusCode == http.StatusRequestTimeout ||
			ce.StatusCode >= http.StatusInternalServerError
		if ce.StatusCode == http.StatusTooManyRequests || (retryable && r.idempotent()) {
			if ce.RetryAfter > 0 {
				return c.capDelay(ce.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		}
	}
	return 0, false
}

// backoffDelay doubles from RetryDelay: attempt 1 -> base, 2 -> base*2, ...
func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.config.RetryDelay
	maxDelay := c.config.RetryMaxDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.config.RetryMaxDelay > 0 && delay > c.config.RetryMaxDelay {
		return c.config.RetryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
