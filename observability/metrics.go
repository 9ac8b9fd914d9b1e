package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded around provider calls.
type Metrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	failures metric.Int64Counter
	retries  metric.Int64Counter
	polls    metric.Int64Counter
	spend    metric.Float64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		errs []error
	)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return c
	}
	m.calls = counter("provider.call.total", "Provider calls by outcome")
	m.failures = counter("provider.error.total", "Failed provider calls by error code")
	m.retries = counter("provider.retry.total", "Backoffs before a repeated provider call")
	m.polls = counter("provider.poll.total", "Status reads of asynchronous transcription jobs")

	var err error
	if m.latency, err = meter.Float64Histogram("provider.call.duration",
		metric.WithDescription("Provider call latency including retries"), metric.WithUnit("s")); err != nil {
		errs = append(errs, fmt.Errorf("provider.call.duration: %w", err))
	}
	if m.spend, err = meter.Float64Counter("provider.cost.total",
		metric.WithDescription("Estimated spend"), metric.WithUnit("USD")); err != nil {
		errs = append(errs, fmt.Errorf("provider.cost.total: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("observability: instruments: %w", err)
	}
	return &m, nil
}

// RecordOperation records one finished call; status is "ok" or "error".
func (m *Metrics) RecordOperation(ctx context.Context, provider, operation, status string, d time.Duration) {
	p, op := attribute.String("provider", provider), attribute.String("operation", operation)
	m.calls.Add(ctx, 1, metric.WithAttributes(p, op, attribute.String("status", status)))
	m.latency.Record(ctx, d.Seconds(), metric.WithAttributes(p, op))
}

// RecordError counts a failure under its error code.
func (m *Metrics) RecordError(ctx context.Context, code, provider string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code), attribute.String("provider", provider)))
}

// RecordRetry counts the backoff taken after attempt failed.
func (m *Metrics) RecordRetry(ctx context.Context, provider string, attempt int) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider), attribute.Int("attempt", attempt)))
}

// RecordPoll counts one job status read.
func (m *Metrics) RecordPoll(ctx context.Context, provider string) {
	m.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCost adds an estimate in dollars.
func (m *Metrics) RecordCost(ctx context.Context, provider, model string, dollars float64) {
	m.spend.Add(ctx, dollars, metric.WithAttributes(
		attribute.String("provider", provider), attribute.String("model", model)))
}

// Meter returns a meter from the global provider.
func Meter(name string) metric.Meter { return otel.Meter(name) }
