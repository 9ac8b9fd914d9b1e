package httpclient

import (
	"net/http"
	"testing"
)

func TestAuth_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *Auth
		header string
		want   string
	}{
		{"bearer", BearerAuth("sk-1"), "Authorization", "Bearer sk-1"},
		{"token scheme", SchemeAuth("Token", "dg-1"), "Authorization", "Token dg-1"},
		{"raw", RawAuth("aai-1"), "Authorization", "aai-1"},
		{"own header", HeaderAuth("x-api-key", "ant-1"), "X-Api-Key", "ant-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tt.auth.apply(req)
			if got := req.Header.Get(tt.header); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuth_Empty(t *testing.T) {
	for _, auth := range []*Auth{nil, {}} {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		auth.apply(req)
		if len(req.Header) != 0 {
			t.Errorf("expected no headers, got %v", req.Header)
		}
	}
}
