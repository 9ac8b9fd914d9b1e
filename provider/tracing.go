package provider

import (
	"context"

	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/observability"
)

// WithTracing opens a span named "<service>.<provider>" around each call.
func WithTracing[I, O any](service string) Middleware[I, O] {
	return Around(func(ctx context.Context, next RequestResponse[I, O], in I) (O, error) {
		ctx, span := observability.StartSpan(ctx, service+"."+next.Name(),
			observability.ServiceKey.String(service),
			observability.ProviderKey.String(next.Name()),
		)
		defer span.End()
		if runID := logger.RunIDFromContext(ctx); runID != "" {
			observability.Annotate(ctx, observability.RunIDKey.String(runID))
		}

		out, err := next.Execute(ctx, in)
		if err != nil {
			observability.Annotate(ctx, observability.ErrorCodeKey.String(errorCode(err)))
			observability.Fail(ctx, err)
		}
		return out, err
	})
}
