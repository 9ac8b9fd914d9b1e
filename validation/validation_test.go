package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/shownotes/errors"
)

func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name string
		v    *Validator
		want int
	}{
		{"require ok", New().Require("provider", "deepgram"), 0},
		{"require blank", New().Require("provider", "  "), 1},
		{"min ok", New().Min("max_polls", 60, 1), 0},
		{"min below", New().Min("max_polls", 0, 1), 1},
		{"in ok", New().In("format", "lrc", "lrc", "json"), 0},
		{"in empty left to require", New().In("format", "", "lrc", "json"), 0},
		{"in rejected", New().In("format", "srt", "lrc", "json"), 1},
		{"check ok", New().Check(true, "interval", "must be positive"), 0},
		{"check failed", New().Check(false, "interval", "must be positive"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.v.Errors()); got != tt.want {
				t.Errorf("got %d errors, want %d: %+v", got, tt.want, tt.v.Errors())
			}
		})
	}
}

func TestValidator_Report(t *testing.T) {
	if New().AsInput() != nil || New().AsConfig() != nil {
		t.Fatal("an empty validator reports nothing")
	}

	v := New().Require("provider", "").Min("max_polls", 0, 1)
	in := v.AsInput()
	if in.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("code = %s", in.Code)
	}
	if in.Message != "provider: is required; max_polls: must be at least 1" {
		t.Errorf("message = %q", in.Message)
	}
	if fields, ok := in.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("details = %+v", in.Details)
	}

	cfg := v.AsConfig()
	if cfg.Code != errors.ErrCodeConfiguration || cfg.Retryable {
		t.Errorf("AsConfig() = %+v", cfg)
	}
}

func TestValidator_Nest(t *testing.T) {
	inner := New().Require("level", "").AsConfig()
	v := New().
		Nest("logging", inner).
		Nest("service", stderrors.New("name is required")).
		Nest("", New().Add("environment", "must be one of: staging").AsConfig()).
		Nest("ignored", nil)

	got := v.Errors()
	want := []FieldError{
		{"logging.level", "is required"},
		{"service", "name is required"},
		{"environment", "must be one of: staging"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestValidate_AudioSource(t *testing.T) {
	type Audio struct {
		URL  string `json:"url" validate:"omitempty,url,excluded_with=Path"`
		Path string `json:"path" validate:"required_without=URL"`
	}

	tests := []struct {
		name string
		in   Audio
		want string
	}{
		{"url only", Audio{URL: "https://cdn.example.com/ep1.mp3"}, ""},
		{"path only", Audio{Path: "/tmp/ep1.wav"}, ""},
		{"neither", Audio{}, "path: is required when url is empty"},
		{"both", Audio{URL: "https://a.b/c.mp3", Path: "/tmp/x"}, "url: must be empty when path is set"},
		{"bad url", Audio{URL: "not a url"}, "url: must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_UntaggedFieldNames(t *testing.T) {
	type Input struct {
		DurationHint float64 `validate:"gte=0"`
		APIKey       string  `validate:"required"`
	}
	if err := Validate(Input{DurationHint: 600, APIKey: "k"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Validate(Input{DurationHint: -1})
	for _, want := range []string{"duration_hint: must be at least 0", "api_key: is required"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("err = %v, want %q", err, want)
		}
	}
}

func TestSnake(t *testing.T) {
	for in, want := range map[string]string{
		"Provider":     "provider",
		"DurationHint": "duration_hint",
		"URL":          "url",
		"APIKey":       "api_key",
		"RunID":        "run_id",
	} {
		if got := snake(in); got != want {
			t.Errorf("snake(%q) = %q, want %q", in, got, want)
		}
	}
}
