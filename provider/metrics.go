package provider

import (
	"context"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/observability"
)

// WithMetrics counts each call, its latency and its error code.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return Around(func(ctx context.Context, next RequestResponse[I, O], in I) (O, error) {
		start := time.Now()
		out, err := next.Execute(ctx, in)

		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(ctx, errorCode(err), next.Name())
		}
		metrics.RecordOperation(ctx, next.Name(), "execute", status, time.Since(start))
		return out, err
	})
}

func errorCode(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "UNKNOWN"
}
