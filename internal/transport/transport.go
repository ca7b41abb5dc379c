// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport sends every remote call through one shared rate limiter
// and a retry policy that only retries rate-limit responses.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 30 * time.Second

// Request is one outbound call.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport executes requests under a Limiter and a RetryPolicy.
type Transport struct {
	client  *http.Client
	limiter *Limiter
	retry   RetryPolicy
	log     zerolog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.client = c }
}

// WithTimeout sets the per-attempt timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithLimiter shares l with other transports.
func WithLimiter(l *Limiter) Option {
	return func(t *Transport) { t.limiter = l }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(t *Transport) { t.retry = p }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New returns a Transport. Without WithLimiter it gets its own limiter at DefaultMaxRPS.
func New(opts ...Option) *Transport {
	t := &Transport{
		client: &http.Client{Timeout: DefaultTimeout},
		retry:  DefaultRetryPolicy(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.limiter == nil {
		t.limiter = NewLimiter(DefaultMaxRPS)
	}
	return t
}

// Do sends req, waiting on the limiter before every attempt.
//
// Non-2xx responses are returned as *StatusError. Only 429 responses are retried.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := t.retry.Do(ctx, t.log, func() error {
		r, err := t.attempt(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *Transport) attempt(ctx context.Context, req Request) (*Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading body: %w", req.Method, req.URL, err)
	}

	t.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &StatusError{Method: req.Method, URL: req.URL, StatusCode: httpResp.StatusCode, Body: data}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}
