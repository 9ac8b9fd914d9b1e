package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/shownotes/version"
)

// Request describes one outbound call.
type Request struct {
	Method string
	// Path is joined with Config.BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body may be an io.Reader, []byte, string or a value to encode as JSON.
	Body any
	// Auth replaces Config.Auth for this request.
	Auth *Auth
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	// Headers keeps the first value of each response header.
	Headers map[string]string
	Body    []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StreamResponse is a response whose body is still being received.
// The caller must Close it.
type StreamResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       io.ReadCloser
}

// Close releases the connection.
func (r *StreamResponse) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

func (r Request) target(base string) (string, error) {
	raw := r.Path
	if base != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	if len(r.Query) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range r.Query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r Request) build(ctx context.Context, cfg *Config) (*http.Request, error) {
	target, err := r.target(cfg.BaseURL)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Err: fmt.Errorf("url: %w", err)}
	}
	body, contentType, err := encode(r.Body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Err: fmt.Errorf("encode body: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Err: err}
	}

	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && r.Headers["Content-Type"] == "" {
		req.Header.Set("Content-Type", contentType)
	}

	auth := cfg.Auth
	if r.Auth != nil {
		auth = r.Auth
	}
	auth.apply(req)
	return req, nil
}

// encode leaves the content type empty for readers and raw bytes so the
// caller's header stands.
func encode(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain; charset=utf-8", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
