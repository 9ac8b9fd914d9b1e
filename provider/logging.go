package provider

import (
	"context"
	"time"

	"github.com/kbukum/shownotes/logger"
)

// WithLogging logs every call: failures at error level, successes at debug.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return Around(func(ctx context.Context, next RequestResponse[I, O], in I) (O, error) {
		start := time.Now()
		out, err := next.Execute(ctx, in)

		l := log.WithContext(ctx)
		fields := logger.Fields(logger.FieldProvider, next.Name(), logger.FieldDuration, time.Since(start).String())
		if err == nil {
			l.Debug("provider execute ok", fields)
			return out, nil
		}
		fields[logger.FieldError] = err.Error()
		fields[logger.FieldErrorCode] = errorCode(err)
		l.Error("provider execute failed", fields)
		return out, err
	})
}
