package provider

import (
	"context"

	"github.com/kbukum/shownotes/logger"
)

// Closeable is implemented by providers holding idle connections, pulled
// models or temp files.
type Closeable interface {
	Close(ctx context.Context) error
}

// Release closes p if it is Closeable. A failure is logged, not returned.
func Release(ctx context.Context, p any) {
	c, ok := p.(Closeable)
	if !ok {
		return
	}
	if err := c.Close(ctx); err != nil {
		logger.WithComponent("provider").WithContext(ctx).
			Warn("provider close failed", logger.ErrorFields("release", err))
	}
}
