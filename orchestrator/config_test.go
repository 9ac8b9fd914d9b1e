package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/shownotes/config"
	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/resilience"
)

const sampleConfig = `
name: shownotes-worker
environment: staging
logging:
  level: warn
  format: json
retry:
  max_attempts: 3
  initial_backoff: 250ms
  transient_only: true
polling:
  interval: 2s
providers:
  whisper:
    binary: /usr/local/bin/whisper-cli
    format: json
  ollama:
    base_url: http://gpu-box:11434
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shownotes.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SHOWNOTES_PROVIDERS_DEEPGRAM_API_KEY", "dg-from-env")
	t.Setenv("SHOWNOTES_RETRY_MAX_ATTEMPTS", "5")

	cfg, err := LoadConfig(
		config.WithConfigFile(writeConfig(t, sampleConfig)),
		config.WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Name != "shownotes-worker" || cfg.Environment != "staging" || cfg.Logging.Level != "warn" {
		t.Errorf("service config not loaded: %+v", cfg.ServiceConfig)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.InitialBackoff != 250*time.Millisecond || !cfg.Retry.TransientOnly {
		t.Errorf("retry not loaded: %+v", cfg.Retry)
	}
	if cfg.Retry.BackoffFactor != 2 {
		t.Errorf("expected default backoff factor, got %v", cfg.Retry.BackoffFactor)
	}
	if cfg.Polling.Interval != 2*time.Second || cfg.Polling.MaxPolls != resilience.DefaultMaxPolls {
		t.Errorf("polling not loaded: %+v", cfg.Polling)
	}
	if cfg.Providers["whisper"]["format"] != "json" || cfg.Providers["ollama"]["base_url"] != "http://gpu-box:11434" {
		t.Errorf("provider options not loaded: %v", cfg.Providers)
	}
	if cfg.Providers["deepgram"]["api_key"] != "dg-from-env" {
		t.Errorf("expected env api key, got %v", cfg.Providers["deepgram"])
	}
	if cfg.Observability.ServiceName != "shownotes-worker" || cfg.Observability.Environment != "staging" {
		t.Errorf("observability defaults not derived: %+v", cfg.Observability)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != ServiceName || cfg.Environment != "development" {
		t.Errorf("unexpected service defaults %+v", cfg.ServiceConfig)
	}
	d := resilience.DefaultRetryConfig()
	if cfg.Retry.MaxAttempts != d.MaxAttempts || cfg.Retry.InitialBackoff != d.InitialBackoff || cfg.Retry.BackoffFactor != d.BackoffFactor {
		t.Errorf("unexpected retry defaults %+v", cfg.Retry)
	}
	if cfg.Polling.Interval != resilience.DefaultPollInterval || cfg.Polling.MaxPolls != resilience.DefaultMaxPolls {
		t.Errorf("unexpected polling defaults %+v", cfg.Polling)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"shrinking backoff", func(c *Config) { c.Retry.BackoffFactor = 0.5 }},
		{"negative backoff", func(c *Config) { c.Retry.InitialBackoff = -time.Second }},
		{"no polls", func(c *Config) { c.Polling.MaxPolls = 0 }},
		{"bad environment", func(c *Config) { c.Environment = "qa" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	rc := RetryConfig{MaxAttempts: 4, InitialBackoff: time.Second, BackoffFactor: 3, MaxBackoff: 5 * time.Second}.policy()
	if rc.MaxAttempts != 4 || rc.BackoffFactor != 3 || rc.MaxBackoff != 5*time.Second {
		t.Errorf("unexpected policy %+v", rc)
	}
	if rc.RetryIf(apperrors.EmptyResult("x", "content")) != true {
		t.Error("default policy retries empty results")
	}

	rc = RetryConfig{MaxAttempts: 4, TransientOnly: true}.policy()
	if rc.RetryIf(apperrors.EmptyResult("x", "content")) {
		t.Error("transient-only policy must not retry empty results")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := Config{Providers: map[string]map[string]any{"ollama": {"base_url": "http://127.0.0.1:1"}}}
	cfg.Logging.Output = "stderr"
	cfg.Retry.MaxAttempts = 2

	o, err := NewFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer func() { _ = o.Close(context.Background()) }()

	if o.retry.MaxAttempts != 2 || o.polling.MaxPolls != resilience.DefaultMaxPolls {
		t.Errorf("config not applied: retry=%+v polling=%+v", o.retry, o.polling)
	}
	if o.providers["ollama"]["base_url"] != "http://127.0.0.1:1" {
		t.Errorf("provider config not applied: %v", o.providers)
	}

	bad := Config{}
	bad.Environment = "qa"
	if _, err := NewFromConfig(context.Background(), bad); !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
