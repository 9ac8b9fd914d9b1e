package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Client sends authenticated requests and classifies failed exchanges.
type Client struct {
	cfg Config
	// http is bounded by cfg.Timeout; stream shares its transport without one.
	http   *http.Client
	stream *http.Client
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: transport, Timeout: cfg.Timeout},
		stream: &http.Client{Transport: transport},
	}, nil
}

// Name returns Config.Name.
func (c *Client) Name() string { return c.cfg.Name }

// BaseURL returns Config.BaseURL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Do sends req and reads the whole body. A non-2xx status yields the
// response together with a KindStatus *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := req.build(ctx, &c.cfg)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: body}
	if serr := statusError(resp, body); serr != nil {
		return out, serr
	}
	return out, nil
}

// DoStream sends req and hands back the open body. Failed statuses are
// read in full and returned as an *Error instead.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := req.build(ctx, &c.cfg)
	if err != nil {
		return nil, err
	}
	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, statusError(resp, body)
	}
	return &StreamResponse{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: resp.Body}, nil
}

// Close drops idle connections.
func (c *Client) Close(_ context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}
