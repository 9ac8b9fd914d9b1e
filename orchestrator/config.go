package orchestrator

import (
	"time"

	"github.com/kbukum/shownotes/config"
	"github.com/kbukum/shownotes/observability"
	"github.com/kbukum/shownotes/resilience"
	"github.com/kbukum/shownotes/validation"
)

// ServiceName is the default service name used for config files, the
// environment prefix and telemetry.
const ServiceName = "shownotes"

// Config is the loadable configuration of an Orchestrator.
//
//	name: shownotes
//	environment: production
//	logging: {level: info, format: json}
//	retry: {max_attempts: 7, initial_backoff: 1s, backoff_factor: 2}
//	polling: {interval: 3s, max_polls: 60}
//	providers:
//	  deepgram: {api_key: "..."}
//	  whisper: {binary: whisper-cli, models_dir: /opt/whisper/models, format: lrc}
//	  ollama: {base_url: "http://gpu-box:11434"}
//	observability: {enabled: true, endpoint: "otel-collector:4318"}
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Retry         RetryConfig               `yaml:"retry" mapstructure:"retry"`
	Polling       PollingConfig             `yaml:"polling" mapstructure:"polling"`
	Providers     map[string]map[string]any `yaml:"providers" mapstructure:"providers"`
	Observability observability.Config      `yaml:"observability" mapstructure:"observability"`
}

// RetryConfig is the retry policy applied to every provider call.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	// TransientOnly retries only 5xx, 429, network and parse failures
	// instead of every retryable error.
	TransientOnly bool `yaml:"transient_only" mapstructure:"transient_only"`
}

// PollingConfig bounds asynchronous transcription jobs.
type PollingConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	MaxPolls int           `yaml:"max_polls" mapstructure:"max_polls"`
}

// ApplyDefaults fills zero values with the standard retry and polling policy.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	d := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = d.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = d.InitialBackoff
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = d.BackoffFactor
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = resilience.DefaultPollInterval
	}
	if c.Polling.MaxPolls == 0 {
		c.Polling.MaxPolls = resilience.DefaultMaxPolls
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
}

// Validate checks the configuration. Failures are CONFIGURATION_ERRORs.
func (c *Config) Validate() error {
	v := validation.New().
		Nest("", c.ServiceConfig.Validate()).
		Min("retry.max_attempts", c.Retry.MaxAttempts, 1).
		Check(c.Retry.InitialBackoff >= 0, "retry.initial_backoff", "must not be negative").
		Check(c.Retry.BackoffFactor >= 1, "retry.backoff_factor", "must be at least 1").
		Min("polling.max_polls", c.Polling.MaxPolls, 1).
		Check(c.Polling.Interval > 0, "polling.interval", "must be positive")
	if appErr := v.AsConfig(); appErr != nil {
		return appErr
	}
	return nil
}

// policy converts the retry settings into a resilience.RetryConfig.
func (c RetryConfig) policy() resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	rc.MaxAttempts = c.MaxAttempts
	rc.InitialBackoff = c.InitialBackoff
	rc.MaxBackoff = c.MaxBackoff
	rc.BackoffFactor = c.BackoffFactor
	if c.TransientOnly {
		rc.RetryIf = resilience.TransientOnly
	}
	return rc
}

// credentialKeys are the provider settings that may come only from the
// environment, e.g. SHOWNOTES_PROVIDERS_DEEPGRAM_API_KEY.
var credentialKeys = []string{
	"providers.deepgram.api_key",
	"providers.assembly.api_key",
	"providers.claude.api_key",
	"providers.gemini.api_key",
	"providers.cohere.api_key",
	"providers.chatgpt.api_key",
	"providers.deepseek.api_key",
	"providers.groq.api_key",
	"providers.together.api_key",
	"providers.fireworks.api_key",
	"providers.mistral.api_key",
}

// tuningKeys may be overridden from the environment without appearing in
// the file, e.g. SHOWNOTES_RETRY_MAX_ATTEMPTS=3.
var tuningKeys = []string{
	"environment",
	"logging.level",
	"logging.format",
	"retry.max_attempts",
	"retry.initial_backoff",
	"retry.transient_only",
	"polling.interval",
	"polling.max_polls",
	"observability.enabled",
	"observability.endpoint",
}

// LoadConfig reads shownotes.yml (or config/config.yml) and the matching
// .env file, lets SHOWNOTES_* variables override any key, and applies
// defaults. It does not validate; NewFromConfig does.
func LoadConfig(opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	base := []config.LoaderOption{
		config.WithEnvPrefix(ServiceName),
		config.WithEnvKeys(credentialKeys...),
		config.WithEnvKeys(tuningKeys...),
	}
	if err := config.LoadConfig(ServiceName, &cfg, append(base, opts...)...); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
