package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

)

// maxErrorBody caps how much of a failed response ends up in HTTPError
const maxErrorBody = 4 << 10

// Connector sends JSON requests to one base URL
type Connector struct {
	baseURL    string
	httpClient *http.Client
}

// ConnectorConfig configures a Connector. Requests log through the ctxzap logger of their context.
type ConnectorConfig struct {
	BaseURL string
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: NewClient(options...),
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     http.Header
	overrideURL string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		c.headers.Set(key, value)
	}
}

// WithBearerToken authenticates a single request
func WithBearerToken(token string) RequestOpt {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithURL sends the request to url instead of baseURL + endpoint
func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// Post is DoRequest with the POST method
func (c *Connector) Post(ctx context.Context, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	return c.DoRequest(ctx, http.MethodPost, endpoint, reqBody, respBody, opts...)
}

// DoRequest encodes reqBody as JSON, sends it and decodes a 2xx answer into respBody.
// Failures come back as *NetworkError, *HTTPError or *DecodeError.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{headers: make(http.Header)}
	for _, opt := range opts {
		opt(cfg)
	}

	req, err := c.newRequest(ctx, method, endpoint, reqBody, cfg)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if respBody == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, respBody); err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}

func (c *Connector) newRequest(ctx context.Context, method, endpoint string, reqBody any, cfg *requestConfig) (*http.Request, error) {
	url := cfg.overrideURL
	if url == "" {
		url = c.baseURL + endpoint
	}

	var bodyReader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
		// Attach payload to context for logging transport
		ctx = context.WithValue(ctx, payloadContextKey{}, payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range cfg.headers {
		req.Header[key] = values
	}

	return req, nil
}

// parseRetryAfter understands the delay-seconds form only
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// HTTPError is a non-2xx answer
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration // zero when the server sent none
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError means the server answered 2xx with a body that is not the expected JSON
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
