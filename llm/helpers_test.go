package llm

import (
	"context"
	"reflect"
	"testing"
)

type recordingProvider struct {
	got CompletionRequest
}

func (p *recordingProvider) Name() string                     { return "recording" }
func (p *recordingProvider) IsAvailable(context.Context) bool { return true }
func (p *recordingProvider) Execute(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	p.got = req
	return CompletionResponse{Content: "notes", Model: req.Model}, nil
}

func TestGenerate(t *testing.T) {
	p := &recordingProvider{}
	resp, err := Generate(context.Background(), p, "claude-3-5-haiku", "Summarise:", "[00:00] Hello\n")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "notes" {
		t.Errorf("Content = %q", resp.Content)
	}
	want := []Message{{Role: RoleUser, Content: "Summarise:\n[00:00] Hello\n"}}
	if !reflect.DeepEqual(p.got.Messages, want) || p.got.Model != "claude-3-5-haiku" {
		t.Errorf("request = %+v", p.got)
	}
}

func TestSplitSystem(t *testing.T) {
	system, msgs := SplitSystem(CompletionRequest{
		SystemPrompt: "Be brief.",
		Messages: []Message{
			{Role: RoleSystem, Content: "Use markdown."},
			{Role: RoleUser, Content: "Hi"},
			{Role: RoleAssistant, Content: "Hello"},
		},
	})
	if system != "Be brief.\n\nUse markdown." {
		t.Errorf("system = %q", system)
	}
	if len(msgs) != 2 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestCompletionRequestText(t *testing.T) {
	req := CompletionRequest{SystemPrompt: "sys", Messages: []Message{{Content: "a b"}, {Content: "c"}}}
	if got := req.Text(); got != "sys\na b\nc" {
		t.Errorf("Text() = %q", got)
	}
}

func TestUsage(t *testing.T) {
	u := NewUsage(1000, 4000, "end_turn")
	if !u.Complete() || *u.TotalTokens != 5000 {
		t.Errorf("usage = %+v", u)
	}
	if (Usage{OutputTokens: u.OutputTokens}).Complete() {
		t.Error("usage without input tokens reported complete")
	}
}

func TestConfigFromMap(t *testing.T) {
	cfg := ConfigFromMap(map[string]any{
		"base_url":    "https://proxy.internal",
		"model":       "m",
		"temperature": 0.2,
		"max_tokens":  "1024",
		"timeout":     "30s",
	})
	if cfg.BaseURL != "https://proxy.internal" || cfg.Model != "m" || cfg.Temperature != 0.2 ||
		cfg.MaxTokens != 1024 || cfg.Timeout.Seconds() != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
}
