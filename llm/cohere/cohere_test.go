package cohere

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
		if r.URL.Path != "/v2/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer co-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body request
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "command-r-08-2024" || body.Stream || len(body.Messages) != 1 {
			t.Errorf("body = %+v", body)
		}
		_, _ = w.Write([]byte(`{
			"id": "c1", "finish_reason": "COMPLETE",
			"message": {"role": "assistant", "content": [{"type": "text", "text": "Summary"}]},
			"usage": {"billed_units": {"input_tokens": 9, "output_tokens": 4}, "tokens": {"input_tokens": 80, "output_tokens": 4}}
		}`))
	}))
	defer srv.Close()

	p, err := NewFactory()(map[string]any{"api_key": "co-key", "base_url": srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := llm.Generate(context.Background(), p, "", "prompt", "transcript")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	u := resp.Usage
	if resp.Content != "Summary" || *u.InputTokens != 80 || *u.TotalTokens != 84 || u.StopReason != "COMPLETE" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Model != "command-r-08-2024" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestParseResponseBilledUnits(t *testing.T) {
	resp, err := Dialect{}.ParseResponse([]byte(`{"message": {"content": [{"type": "text", "text": "x"}]}, "usage": {"billed_units": {"input_tokens": 3}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if *resp.Usage.InputTokens != 3 || resp.Usage.OutputTokens != nil || resp.Usage.TotalTokens != nil {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestParseResponseErrors(t *testing.T) {
	if _, err := (Dialect{}).ParseResponse([]byte(`{"message": {"content": []}}`)); err != llm.ErrNoContent {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
	if _, err := (Dialect{}).ParseResponse([]byte(`not json`)); err == nil || err == llm.ErrNoContent {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestSystemPromptLeads(t *testing.T) {
	body, _ := Dialect{}.BuildRequest(llm.CompletionRequest{
		SystemPrompt: "sys",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "u"}},
	})
	msgs := body.(request).Messages
	if len(msgs) != 2 || msgs[0].Role != llm.RoleSystem {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestFactoryMissingKey(t *testing.T) {
	if _, err := NewFactory()(map[string]any{"api_key": ""}); !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
