package claude

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
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		var body request
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "claude-3-5-haiku-20241022" || body.MaxTokens != defaultMaxTokens {
			t.Errorf("body = %+v", body)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "Write notes\ntranscript" {
			t.Errorf("messages = %+v", body.Messages)
		}
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "model": "claude-3-5-haiku-20241022",
			"content": [{"type": "text", "text": "# Notes"}, {"type": "text", "text": "\n- one"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 30}
		}`))
	}))
	defer srv.Close()

	p, err := NewFactory()(map[string]any{"api_key": "sk-ant-test", "base_url": srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := llm.Generate(context.Background(), p, "", "Write notes", "transcript")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "# Notes\n- one" {
		t.Errorf("content = %q", resp.Content)
	}
	u := resp.Usage
	if *u.InputTokens != 12 || *u.OutputTokens != 30 || *u.TotalTokens != 42 || u.StopReason != "end_turn" {
		t.Errorf("usage = %+v", u)
	}
}

func TestBuildRequestSystem(t *testing.T) {
	body, _ := Dialect{}.BuildRequest(llm.CompletionRequest{
		Model:        "m",
		SystemPrompt: "Be brief.",
		MaxTokens:    100,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	req := body.(request)
	if req.System != "Be brief." || req.MaxTokens != 100 || len(req.Messages) != 1 {
		t.Errorf("request = %+v", req)
	}
}

func TestParseResponse(t *testing.T) {
	if _, err := (Dialect{}).ParseResponse([]byte(`{"content": [{"type": "tool_use"}]}`)); err != llm.ErrNoContent {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
	resp, err := Dialect{}.ParseResponse([]byte(`{"content": [{"type": "text", "text": "x"}], "stop_reason": "max_tokens"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Usage.InputTokens != nil || resp.Usage.TotalTokens != nil || resp.Usage.StopReason != "max_tokens" {
		t.Errorf("usage = %+v, want counts left unset", resp.Usage)
	}
}

func TestFactoryMissingKey(t *testing.T) {
	_, err := NewFactory()(map[string]any{})
	if !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRegistered(t *testing.T) {
	if _, err := llm.GetDialect(ProviderName); err != nil {
		t.Fatal(err)
	}
}
