package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		code      int
		wantNil   bool
		transient bool
	}{
		{200, true, false},
		{204, true, false},
		{400, false, false},
		{401, false, false},
		{404, false, false},
		{408, false, true},
		{429, false, true},
		{500, false, true},
		{503, false, true},
	}
	for _, tt := range tests {
		e := statusError(&http.Response{StatusCode: tt.code, Header: http.Header{}}, nil)
		if tt.wantNil {
			if e != nil {
				t.Errorf("%d: expected nil, got %v", tt.code, e)
			}
			continue
		}
		if e == nil {
			t.Errorf("%d: expected error", tt.code)
			continue
		}
		if e.Kind != KindStatus || e.StatusCode != tt.code {
			t.Errorf("%d: got kind %s status %d", tt.code, e.Kind, e.StatusCode)
		}
		if e.Transient() != tt.transient {
			t.Errorf("%d: transient = %v, want %v", tt.code, e.Transient(), tt.transient)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-3", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.in, now); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToProviderError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apperrors.ErrorCode
		status int
	}{
		{"auth", &Error{Kind: KindStatus, StatusCode: 401, Body: []byte("denied")}, apperrors.ErrCodeProvider, 401},
		{"server", &Error{Kind: KindStatus, StatusCode: 502}, apperrors.ErrCodeProvider, 502},
		{"connection", &Error{Kind: KindConnection, Err: fmt.Errorf("refused")}, apperrors.ErrCodeProvider, 0},
		{"timeout", &Error{Kind: KindTimeout, Err: context.DeadlineExceeded}, apperrors.ErrCodeProvider, 0},
		{"decode", fmt.Errorf("%w: unexpected end of JSON input", ErrDecode), apperrors.ErrCodeParse, 502},
		{"plain", errors.New("boom"), apperrors.ErrCodeProvider, 0},
		{"bad request build", &Error{Kind: KindRequest, Err: errors.New("bad url")}, apperrors.ErrCodeInvalidInput, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToProviderError("deepgram", tt.err)
			appErr, ok := apperrors.AsAppError(got)
			if !ok {
				t.Fatalf("expected AppError, got %T", got)
			}
			if appErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, appErr.Code)
			}
			if appErr.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, appErr.HTTPStatus)
			}
		})
	}
}

func TestToProviderError_Details(t *testing.T) {
	got := ToProviderError("claude", &Error{
		Kind: KindStatus, StatusCode: 529, Body: []byte(`{"error":"overloaded"}`), RetryAfter: 20 * time.Second,
	})
	appErr, _ := apperrors.AsAppError(got)
	if appErr.Details["body"] != `{"error":"overloaded"}` {
		t.Errorf("expected body in details, got %v", appErr.Details["body"])
	}
	if appErr.Details["retry_after"] != "20s" {
		t.Errorf("expected retry_after 20s, got %v", appErr.Details["retry_after"])
	}
}

func TestToProviderError_PassThrough(t *testing.T) {
	if ToProviderError("x", nil) != nil {
		t.Error("expected nil for nil")
	}
	cfgErr := apperrors.MissingCredential("x")
	if ToProviderError("x", cfgErr) != cfgErr {
		t.Error("expected AppError to pass through")
	}
	if !errors.Is(ToProviderError("x", context.Canceled), context.Canceled) {
		t.Error("expected context.Canceled to pass through")
	}
}

func TestHelpers(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", &Error{Kind: KindStatus, StatusCode: 403})
	if !IsAuth(wrapped) || IsTransient(wrapped) || StatusCode(wrapped) != 403 {
		t.Error("403 should be auth, not transient, and expose its status")
	}
	timeout := &Error{Kind: KindTimeout, Err: context.DeadlineExceeded}
	if !IsKind(timeout, KindTimeout) || !IsTransient(timeout) || StatusCode(timeout) != 0 {
		t.Error("timeout should match its kind, be transient and carry no status")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("foreign errors are not transient")
	}
}
