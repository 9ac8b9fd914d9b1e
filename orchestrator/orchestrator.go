package orchestrator

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/shownotes/cost"
	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/llm/claude"
	"github.com/kbukum/shownotes/llm/cohere"
	"github.com/kbukum/shownotes/llm/gemini"
	"github.com/kbukum/shownotes/llm/ollama"
	"github.com/kbukum/shownotes/llm/openaicompat"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/observability"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/resilience"
	"github.com/kbukum/shownotes/transcription"
	"github.com/kbukum/shownotes/transcription/assemblyai"
	"github.com/kbukum/shownotes/transcription/deepgram"
	"github.com/kbukum/shownotes/transcription/whisper"
	"github.com/kbukum/shownotes/util"
)

// Orchestrator resolves providers by id and runs transcription and
// generation calls under the retry policy. It holds only read-only state
// after New returns and is safe for concurrent use.
type Orchestrator struct {
	name         string
	transcribers *provider.Registry[transcription.Provider]
	generators   *provider.Registry[llm.Provider]
	rates        *cost.Estimator
	metrics      *observability.Metrics
	log          *logger.Logger
	retry        resilience.RetryConfig
	polling      resilience.PollConfig
	providers    map[string]map[string]any
	shutdown     observability.ShutdownFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithServiceName sets the name used for span names.
func WithServiceName(name string) Option {
	return func(o *Orchestrator) { o.name = name }
}

// WithRetryConfig replaces the retry policy. Observer hooks set on cfg are
// called alongside the orchestrator's own logging hooks.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithPolling sets the interval and poll bound for asynchronous jobs.
func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(o *Orchestrator) {
		o.polling.Interval = interval
		o.polling.MaxPolls = maxPolls
	}
}

// WithProviderConfig sets the factory options for one provider, such as a
// base URL or whisper binary. Request options override them per call.
func WithProviderConfig(name string, cfg map[string]any) Option {
	return func(o *Orchestrator) { o.providers[name] = maps.Clone(cfg) }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithEstimator replaces the embedded rate tables.
func WithEstimator(e *cost.Estimator) Option {
	return func(o *Orchestrator) { o.rates = e }
}

// WithSleep replaces the backoff timer, mainly for tests.
func WithSleep(sleep resilience.SleepFunc) Option {
	return func(o *Orchestrator) { o.retry.Sleep = sleep }
}

// WithTranscriptionFactory registers an additional or replacement
// transcription provider.
func WithTranscriptionFactory(name string, f provider.Factory[transcription.Provider]) Option {
	return func(o *Orchestrator) { o.transcribers.RegisterFactory(name, f) }
}

// WithLLMFactory registers an additional or replacement LLM provider.
func WithLLMFactory(name string, f provider.Factory[llm.Provider]) Option {
	return func(o *Orchestrator) { o.generators.RegisterFactory(name, f) }
}

// New creates an Orchestrator with every built-in provider registered.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		name:         ServiceName,
		transcribers: transcription.NewRegistry(),
		generators:   llm.NewRegistry(),
		rates:        cost.Default(),
		retry:        resilience.DefaultRetryConfig(),
		polling:      resilience.DefaultPollConfig(),
		providers:    make(map[string]map[string]any),
	}

	o.transcribers.RegisterFactory(deepgram.ProviderName, deepgram.NewFactory())
	o.transcribers.RegisterFactory(assemblyai.ProviderName, assemblyai.NewFactory())
	o.transcribers.RegisterFactory(whisper.ProviderName, whisper.NewFactory())

	o.generators.RegisterFactory(claude.ProviderName, claude.NewFactory())
	o.generators.RegisterFactory(gemini.ProviderName, gemini.NewFactory())
	o.generators.RegisterFactory(cohere.ProviderName, cohere.NewFactory())
	o.generators.RegisterFactory(ollama.ProviderName, ollama.Factory())
	for _, name := range openaicompat.Profiles() {
		o.generators.RegisterFactory(name, openaicompat.NewFactory(name))
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.WithComponent("orchestrator")
	}
	if o.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter(o.name))
		if err != nil {
			return nil, apperrors.Configuration("create metric instruments").WithCause(err)
		}
		o.metrics = m
	}
	return o, nil
}

// NewFromConfig validates cfg, sets up logging and telemetry export, and
// creates an Orchestrator from it. Options are applied after the config.
// Close flushes the exporters.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Init(cfg.Logging, cfg.Name).WithComponent("orchestrator")
	metrics, shutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, apperrors.Configuration("set up observability").WithCause(err)
	}

	base := []Option{
		WithServiceName(cfg.Name),
		WithLogger(log),
		WithMetrics(metrics),
		WithRetryConfig(cfg.Retry.policy()),
		WithPolling(cfg.Polling.Interval, cfg.Polling.MaxPolls),
	}
	for name, pc := range cfg.Providers {
		base = append(base, WithProviderConfig(name, pc))
	}

	o, err := New(append(base, opts...)...)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	o.shutdown = shutdown
	log.Info("orchestrator ready", logger.Fields(
		"transcription_providers", o.transcribers.List(),
		"llm_providers", o.generators.List(),
		"environment", cfg.Environment,
	))
	return o, nil
}

// Close flushes telemetry when the Orchestrator was built from config.
func (o *Orchestrator) Close(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	return o.shutdown(ctx)
}

// TranscriptionProviders returns the registered transcription provider ids.
func (o *Orchestrator) TranscriptionProviders() []string { return o.transcribers.List() }

// LLMProviders returns the registered LLM provider ids.
func (o *Orchestrator) LLMProviders() []string { return o.generators.List() }

// Rates returns the estimator used for cost figures.
func (o *Orchestrator) Rates() *cost.Estimator { return o.rates }

// Health probes every provider that has configuration. A provider that
// cannot even be created (e.g. a missing key) is reported down with the
// reason.
func (o *Orchestrator) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(o.name)
	for _, name := range o.transcribers.List() {
		if cfg, ok := o.providers[name]; ok {
			probe(ctx, sh, name, func() (observability.AvailabilityChecker, error) {
				return o.transcribers.Create(name, cfg)
			})
		}
	}
	for _, name := range o.generators.List() {
		if cfg, ok := o.providers[name]; ok {
			probe(ctx, sh, name, func() (observability.AvailabilityChecker, error) {
				return o.generators.Create(name, cfg)
			})
		}
	}
	return sh
}

func probe(ctx context.Context, sh *observability.ServiceHealth, name string, create func() (observability.AvailabilityChecker, error)) {
	p, err := create()
	if err != nil {
		sh.AddComponent(observability.Health{Name: name, Status: observability.HealthStatusDown, Message: err.Error()})
		return
	}
	defer provider.Release(ctx, p)
	sh.Check(ctx, p)
}

// options merges configured provider options with per-call overrides.
// A non-empty apiKey wins over both.
func (o *Orchestrator) options(ctx context.Context, name string, extra map[string]any, apiKey string) map[string]any {
	cfg := maps.Clone(o.providers[name])
	if cfg == nil {
		cfg = make(map[string]any, len(extra)+1)
	}
	maps.Copy(cfg, extra)
	if apiKey != "" {
		cfg["api_key"] = apiKey
		o.log.WithContext(ctx).Debug("using per-call credential", logger.Fields(
			logger.FieldProvider, name, "api_key", util.MaskSecret(apiKey, 4)))
	}
	return cfg
}

// retryPolicy builds the per-call retry config: the configured policy with
// logging and metric hooks chained in front of any caller hooks.
func (o *Orchestrator) retryPolicy(ctx context.Context, name string) resilience.RetryConfig {
	rc := o.retry
	log := o.log.WithContext(ctx)
	onRetry, onExhausted := rc.OnRetry, rc.OnExhausted

	rc.OnRetry = func(attempt int, err error, backoff time.Duration) {
		fields := logger.ErrorFields("retry", err)
		fields[logger.FieldProvider] = name
		fields[logger.FieldAttempt] = attempt
		fields["backoff"] = backoff.String()
		log.Warn("provider call failed, retrying", fields)
		o.metrics.RecordRetry(ctx, name, attempt)
		observability.Event(ctx, "retry",
			observability.AttemptKey.Int(attempt),
			observability.ErrorCodeKey.String(codeOf(err)),
		)
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
	}
	rc.OnExhausted = func(attempts int, err error) {
		fields := logger.ErrorFields("retry", err)
		fields[logger.FieldProvider] = name
		fields[logger.FieldAttempt] = attempts
		log.Error("provider call failed after all attempts", fields)
		if onExhausted != nil {
			onExhausted(attempts, err)
		}
	}
	return rc
}

// stack is the middleware every provider call runs under, outermost first.
func stack[I, O any](ctx context.Context, o *Orchestrator, name string) provider.Middleware[I, O] {
	return provider.Chain(
		provider.WithTracing[I, O](o.name),
		provider.WithLogging[I, O](o.log),
		provider.WithMetrics[I, O](o.metrics),
		provider.WithRetry[I, O](o.retryPolicy(ctx, name)),
	)
}

func (o *Orchestrator) startSpan(ctx context.Context, op, runID, name string) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, o.name+"."+op,
		observability.RunIDKey.String(runID),
		observability.ProviderKey.String(name),
	)
}

func codeOf(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "UNKNOWN"
}

// runContext attaches a run id to ctx, validating a caller-supplied one.
func runContext(ctx context.Context, runID string) (context.Context, string, error) {
	if runID == "" {
		runID = uuid.NewString()
	} else {
		id, err := util.ParseUUID("run_id", runID)
		if err != nil {
			return ctx, "", err
		}
		runID = id.String()
	}
	return logger.ContextWithRunID(ctx, runID), runID, nil
}
