package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/llm"
)

func TestExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "goog-key" {
			t.Errorf("x-goog-api-key = %q", r.Header.Get("x-goog-api-key"))
		}
		var body request
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Contents) != 1 || body.Contents[0].Role != "user" || body.Contents[0].Parts[0].Text != "p\nt" {
			t.Errorf("contents = %+v", body.Contents)
		}
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Notes"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 2, "totalTokenCount": 7},
			"modelVersion": "gemini-2.5-flash"
		}`))
	}))
	defer srv.Close()

	p, err := NewFactory()(map[string]any{"api_key": "goog-key", "base_url": srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := llm.Generate(context.Background(), p, "gemini-2.5-flash", "p", "t")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	u := resp.Usage
	if resp.Content != "Notes" || *u.InputTokens != 5 || *u.OutputTokens != 2 || *u.TotalTokens != 7 || u.StopReason != "STOP" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestBuildRequest(t *testing.T) {
	body, _ := Dialect{}.BuildRequest(llm.CompletionRequest{
		SystemPrompt: "sys",
		Temperature:  0.5,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "a"},
			{Role: llm.RoleAssistant, Content: "b"},
		},
	})
	req := body.(request)
	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "sys" {
		t.Errorf("system = %+v", req.SystemInstruction)
	}
	if req.Contents[1].Role != "model" {
		t.Errorf("assistant role = %q, want model", req.Contents[1].Role)
	}
	if req.GenerationConfig == nil || req.GenerationConfig.Temperature != 0.5 {
		t.Errorf("generation config = %+v", req.GenerationConfig)
	}
}

func TestParseResponseEmpty(t *testing.T) {
	for _, body := range []string{`{"candidates": []}`, `{"candidates": [{"content": {"parts": []}}]}`} {
		if _, err := (Dialect{}).ParseResponse([]byte(body)); err != llm.ErrNoContent {
			t.Errorf("%s: err = %v, want ErrNoContent", body, err)
		}
	}
}

func TestFactoryMissingKey(t *testing.T) {
	if _, err := NewFactory()(nil); !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
