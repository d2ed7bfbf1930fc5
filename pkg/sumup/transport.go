package sumup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// Sender executes one HTTP request and returns the raw, unclassified outcome.
// Errors returned by Send mean the exchange did not complete.
type Sender interface {
	Send(ctx context.Context, method, path string, payload any, headers map[string]string) (*Response, error)
}

// HTTPClient is the default Sender, backed by resty
type HTTPClient struct {
	config  *ClientConfig
	conn    *resty.Client
	breaker *gobreaker.CircuitBreaker
	lg      *slog.Logger
}

var _ Sender = (*HTTPClient)(nil)

// NewHTTPClient creates a transport for the given configuration
func NewHTTPClient(config *ClientConfig) *HTTPClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return newHTTPClient(config, resty.New().SetTimeout(timeout))
}

// NewHTTPClientWithHTTPClient creates a transport using a custom HTTP client.
// The client's own timeout applies.
func NewHTTPClientWithHTTPClient(config *ClientConfig, httpClient *http.Client) *HTTPClient {
	return newHTTPClient(config, resty.NewWithClient(httpClient))
}

func newHTTPClient(config *ClientConfig, conn *resty.Client) *HTTPClient {
	c := &HTTPClient{
		config: config,
		conn:   conn.SetBaseURL(config.BaseURL),
		lg:     config.Logger,
	}

	if config.BreakerMaxFailures > 0 {
		maxFailures := config.BreakerMaxFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "sumup",
			Timeout: config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if c.lg != nil {
					c.lg.Warn("circuit breaker state changed",
						slog.String("name", name), slog.String("from", from.String()), slog.String("to", to.String()))
				}
			},
		})
	}

	return c
}

// Send performs the request. A nil payload sends no body. Any non-empty
// response body is decoded as JSON; bodies that are not JSON are returned as
// a string.
func (c *HTTPClient) Send(ctx context.Context, method, path string, payload any, headers map[string]string) (*Response, error) {
	start := time.Now()

	send := func() (interface{}, error) {
		return c.do(ctx, method, path, payload, headers)
	}

	var (
		out interface{}
		err error
	)
	if c.breaker != nil {
		out, err = c.breaker.Execute(send)
	} else {
		out, err = send()
	}
	if err != nil {
		if c.lg != nil {
			c.lg.Debug("sumup request failed",
				slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		}
		return nil, &ConnectionError{Method: method, Path: path, Err: err}
	}

	resp := out.(*Response)
	if c.lg != nil {
		c.lg.Debug("sumup request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.HTTPResponseCode()),
			slog.Duration("duration", time.Since(start)))
	}
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, headers map[string]string) (*Response, error) {
	req := c.conn.R().
		SetContext(ctx).
		SetHeaders(headers)
	if payload != nil {
		req.SetBody(payload)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("failed to execute http request: %w", err)
	}

	return NewResponse(res.StatusCode(), decodeResponseBody(res.Body())), nil
}

func decodeResponseBody(raw []byte) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body
}
