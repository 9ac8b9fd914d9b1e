package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type runIDKey struct{}

// ContextWithRunID stores the orchestration run id for WithContext.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id stored in ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// WithContext tags entries with the run id and the active trace and span.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id := RunIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRunID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return l.derive(zc)
}
