package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
)

// ErrDecode marks a response body that could not be decoded.
var ErrDecode = errors.New("httpclient: decode response")

// Kind says where in the exchange a request failed.
type Kind int

const (
	// KindStatus is a response with a non-2xx status.
	KindStatus Kind = iota
	// KindTimeout is a request cut short by its deadline or the client timeout.
	KindTimeout
	// KindConnection is a failure to reach the server or read its reply.
	KindConnection
	// KindRequest is a request that could not be built.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindRequest:
		return "request"
	}
	return "unknown"
}

// Error is a failed HTTP exchange.
type Error struct {
	Kind Kind
	// StatusCode is zero unless Kind is KindStatus.
	StatusCode int
	Body       []byte
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("httpclient: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	}
	return "httpclient: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether sending the same request again may succeed.
// Timeouts, connection failures, 408, 429 and 5xx qualify.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindConnection:
		return true
	case KindStatus:
		return e.StatusCode == http.StatusRequestTimeout ||
			e.StatusCode == http.StatusTooManyRequests ||
			e.StatusCode >= 500
	}
	return false
}

func transportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnection, Err: err}
}

// statusError returns nil for 2xx responses.
func statusError(resp *http.Response, body []byte) *Error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &Error{
		Kind:       KindStatus,
		StatusCode: resp.StatusCode,
		Body:       body,
		RetryAfter: retryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

// retryAfter accepts both delay-seconds and HTTP-date forms.
func retryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindStatus {
		return e.StatusCode
	}
	return 0
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsAuth reports a 401 or 403 response.
func IsAuth(err error) bool {
	s := StatusCode(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsTransient reports whether err is an *Error worth resending.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Transient()
}

// ToProviderError maps a transport failure onto the shared error codes.
// Status and connection failures become PROVIDER_ERROR, undecodable bodies
// PARSE_ERROR and unbuildable requests INVALID_INPUT. AppErrors and
// caller cancellations are returned as is.
func ToProviderError(provider string, err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, ErrDecode) {
		return apperrors.Parse(provider, err)
	}
	var e *Error
	if !errors.As(err, &e) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return apperrors.Provider(provider, 0, nil).WithCause(err)
	}
	if e.Kind == KindRequest {
		return apperrors.Validation(e.Err.Error()).WithCause(err)
	}
	out := apperrors.Provider(provider, e.StatusCode, e.Body).WithCause(err)
	if e.RetryAfter > 0 {
		out = out.WithDetail("retry_after", e.RetryAfter.String())
	}
	return out
}
