package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kbukum/shownotes/httpclient"
)

// Client speaks JSON over an httpclient.Client.
type Client struct {
	http *httpclient.Client
}

// New builds a Client that sends and accepts application/json unless cfg
// says otherwise.
func New(cfg httpclient.Config) (*Client, error) {
	headers := map[string]string{"Content-Type": "application/json", "Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP exposes the underlying client for streaming calls.
func (c *Client) HTTP() *httpclient.Client { return c.http }

// Name returns the client name.
func (c *Client) Name() string { return c.http.Name() }

// Close drops idle connections.
func (c *Client) Close(ctx context.Context) error { return c.http.Close(ctx) }

// RequestOption adjusts a single request.
type RequestOption func(*httpclient.Request)

// WithQuery sets the query parameters.
func WithQuery(params map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Query = params }
}

// WithHeaders sets per-request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Headers = headers }
}

// WithAuth replaces the client's authentication for one request.
func WithAuth(auth *httpclient.Auth) RequestOption {
	return func(r *httpclient.Request) { r.Auth = auth }
}

// Response carries the decoded body of a 2xx reply.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
}

// Get fetches path and decodes the reply into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return call[T](ctx, c, httpclient.Request{Method: http.MethodGet, Path: path}, opts)
}

// Post sends body to path and decodes the reply into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return call[T](ctx, c, httpclient.Request{Method: http.MethodPost, Path: path, Body: body}, opts)
}

// An empty body leaves T at its zero value.
func call[T any](ctx context.Context, c *Client, req httpclient.Request, opts []RequestOption) (*Response[T], error) {
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &Response[T]{StatusCode: resp.StatusCode, Headers: resp.Headers}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", httpclient.ErrDecode, err)
	}
	return out, nil
}
