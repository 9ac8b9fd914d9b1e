package llm

import (
	"time"

	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/util"
)

const defaultTimeout = 120 * time.Second

// Config holds configuration for creating an LLM adapter.
// It is provider-agnostic; the Dialect field selects the provider mapping.
type Config struct {
	// Name identifies this adapter instance. Defaults to the dialect name.
	Name string `yaml:"name" mapstructure:"name"`

	// Dialect selects the provider mapping (e.g. "claude", "gemini", "cohere").
	// Must match a dialect registered via RegisterDialect.
	Dialect string `yaml:"dialect" mapstructure:"dialect"`

	// BaseURL is the provider's API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Model is the default model to use.
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens is the default maximum tokens for responses. 0 means provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout for HTTP requests. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures authentication (Bearer token, API key header, ...).
	Auth *httpclient.Auth `yaml:"-" mapstructure:"-"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ConfigFromMap reads the generic factory options shared by every dialect:
// base_url, model, temperature, max_tokens and timeout.
func ConfigFromMap(cfg map[string]any) Config {
	return Config{
		BaseURL:     util.String(cfg, "base_url"),
		Model:       util.String(cfg, "model"),
		Temperature: util.Float(cfg, "temperature", 0),
		MaxTokens:   util.Int(cfg, "max_tokens", 0),
		Timeout:     util.Duration(cfg, "timeout", defaultTimeout),
	}
}

// applyDefaults sets default values for unset config fields.
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = c.Dialect
	}
}
