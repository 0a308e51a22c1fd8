// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cyrenxxxxx/cli-chat/internal/logging"
)

const (
	// MaxResponseSize is the maximum allowed response body size for regular calls.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// MaxDownloadResponseSize bounds download_file responses: a 100 MiB file
	// grows by a third once base64 encoded, plus the JSON envelope.
	MaxDownloadResponseSize = 140 * 1024 * 1024

	userAgent = "cli-chat/1.0"
)

// sharedTransport pools connections across all requests of the process.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Timeouts are the per-call deadlines applied by the client.
type Timeouts struct {
	Poll   time.Duration // messages, rooms, files listing
	Action time.Duration // send, create, join, leave, delete, auth
	Upload time.Duration // upload_file, download_file
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Poll:   5 * time.Second,
		Action: 5 * time.Second,
		Upload: 30 * time.Second,
	}
}

// Client talks to the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
	limiter    *rate.Limiter
}

// NewClient creates a client for the backend endpoint at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: sharedTransport},
		timeouts:   DefaultTimeouts(),
	}
}

// WithTimeouts sets the per-call timeouts. Zero fields keep their current value.
func (c *Client) WithTimeouts(t Timeouts) *Client {
	if t.Poll > 0 {
		c.timeouts.Poll = t.Poll
	}
	if t.Action > 0 {
		c.timeouts.Action = t.Action
	}
	if t.Upload > 0 {
		c.timeouts.Upload = t.Upload
	}
	return c
}

// WithRateLimit throttles outbound requests to rps per second (0 disables).
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// BaseURL returns the backend endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// payload is a POST body. The action field is added by post.
type payload map[string]any

// get performs a GET for action with the given query parameters.
func (c *Client) get(ctx context.Context, action string, params url.Values, timeout time.Duration, limit int64) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Action: action, Err: fmt.Errorf("invalid base URL: %w", err)}
	}
	q := u.Query()
	q.Set("action", action)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	return c.do(ctx, action, timeout, limit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	})
}

// post performs a POST of body (plus the action field) as JSON.
func (c *Client) post(ctx context.Context, action string, body payload, timeout time.Duration, limit int64) ([]byte, error) {
	if body == nil {
		body = payload{}
	}
	body["action"] = action
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Action: action, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	return c.do(ctx, action, timeout, limit, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// do runs one request under its own deadline and returns the body of a
// successful (non-error-envelope) response.
func (c *Client) do(ctx context.Context, action string, timeout time.Duration, limit int64, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := logging.FromContext(ctx).With("action", action)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("api request throttled past deadline", "error", err)
			return nil, &Error{Kind: KindTimeout, Action: action, Err: err}
		}
	}

	req, err := build(ctx)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Action: action, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	// Bodies are never logged; login and signup carry passwords.
	logger.Debug("api request", "method", req.Method)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		kind := classifyTransport(ctx, err)
		logger.Warn("api request failed", "kind", kind.String(), "duration", duration, "error", err)
		return nil, &Error{Kind: kind, Action: action, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("api response", "status", resp.StatusCode, "duration", duration)

	body, err := readResponse(resp, limit)
	if err != nil {
		kind := KindMalformed
		if !errors.Is(err, errResponseTooLarge) {
			kind = classifyTransport(ctx, err)
		}
		return nil, &Error{Kind: kind, Action: action, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("api non-200 response", "status", resp.StatusCode)
		return nil, &Error{Kind: KindHTTPStatus, Action: action, Status: resp.StatusCode}
	}

	if envErr := checkEnvelope(action, body); envErr != nil {
		logger.Info("api application error", "kind", envErr.Kind.String(), "message", envErr.Message)
		return nil, envErr
	}
	return body, nil
}

var errResponseTooLarge = errors.New("response exceeded maximum size")

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", errResponseTooLarge, limit)
	}
	return body, nil
}

// classifyTransport decides whether a failed round trip was a timeout or a
// connection problem.
func classifyTransport(ctx context.Context, err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

// envelope is the status wrapper used by mutating actions and by errors.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// checkEnvelope returns an application error when body is an error envelope.
// Bare arrays and non-envelope objects pass through.
func checkEnvelope(action string, body []byte) *Error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Status != "error" {
		return nil
	}
	if env.Message == "" {
		env.Message = "Request failed"
	}
	return newApplicationError(action, env.Message)
}

// decode unmarshals body into v, reporting failures as KindMalformed.
func decode(action string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Kind: KindMalformed, Action: action, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}
