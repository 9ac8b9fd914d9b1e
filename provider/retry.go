package provider

import (
	"context"

	"github.com/kbukum/shownotes/resilience"
)

// WithRetry repeats the whole call under cfg.
func WithRetry[I, O any](cfg resilience.RetryConfig) Middleware[I, O] {
	return Around(func(ctx context.Context, next RequestResponse[I, O], in I) (O, error) {
		return resilience.Retry(ctx, cfg, func() (O, error) {
			return next.Execute(ctx, in)
		})
	})
}
