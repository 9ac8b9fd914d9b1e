package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/version"
)

// Export defaults, aimed at a local collector.
const (
	DefaultEndpoint       = "localhost:4318"
	DefaultMetricInterval = 15 * time.Second
	DefaultSampleRate     = 1.0
)

// Config selects whether telemetry is exported and where.
type Config struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName    string `mapstructure:"service_name" yaml:"service_name"`
	ServiceVersion string `mapstructure:"service_version" yaml:"service_version"`
	Environment    string `mapstructure:"environment" yaml:"environment"`
	// Endpoint is the OTLP/HTTP collector as host:port.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
	// SampleRate is the fraction of traces kept, 0 to 1.
	SampleRate     float64       `mapstructure:"sample_rate" yaml:"sample_rate"`
	MetricInterval time.Duration `mapstructure:"metric_interval" yaml:"metric_interval"`
}

// ApplyDefaults fills the zero fields.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "shownotes"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = version.Short()
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = DefaultMetricInterval
	}
}

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(ctx context.Context) error

// Setup starts OTLP trace and metric export when cfg.Enabled and returns
// the instruments every provider call records into. With export disabled
// the instruments sit on the global meter, a no-op unless the embedding
// application installed one.
func Setup(ctx context.Context, cfg Config) (*Metrics, ShutdownFunc, error) {
	cfg.ApplyDefaults()
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled {
		m, err := NewMetrics(otel.Meter(cfg.ServiceName))
		return m, noop, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, noop, fmt.Errorf("observability: resource: %w", err)
	}

	tp, err := startTracing(ctx, cfg, res)
	if err != nil {
		return nil, noop, err
	}
	mp, err := startMetrics(ctx, cfg, res)
	if err != nil {
		return nil, noop, stderrors.Join(err, tp.Shutdown(ctx))
	}
	m, err := NewMetrics(mp.Meter(cfg.ServiceName))
	if err != nil {
		return nil, noop, stderrors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	logger.WithComponent("observability").Info("telemetry export started", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"metric_interval", cfg.MetricInterval.String(),
	))
	return m, func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func startTracing(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

func startMetrics(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}
