package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/shownotes"

// Span attribute keys.
const (
	ServiceKey   = attribute.Key("service.name")
	RunIDKey     = attribute.Key("run.id")
	ProviderKey  = attribute.Key("provider.name")
	ModelKey     = attribute.Key("provider.model")
	AttemptKey   = attribute.Key("retry.attempt")
	ErrorCodeKey = attribute.Key("error.code")
	CostKey      = attribute.Key("cost.usd")
)

// StartSpan opens a span on the global tracer provider.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Annotate sets attributes on the span in ctx, if it is recording.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// Event adds a named event to the span in ctx.
func Event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// Fail records err on the span in ctx and marks the span failed.
func Fail(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
