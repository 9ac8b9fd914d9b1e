// Package resilience provides the bounded-retry and job-polling loops used by
// every provider call.
//
//   - Retry: retries a failed operation with exponential backoff
//   - Poll: drives an asynchronous job until it reports a terminal state
//
// Both loops take an explicit policy value, honour context cancellation while
// waiting, and expose observer hooks instead of printing progress:
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.OnRetry = func(attempt int, err error, d time.Duration) {
//	    log.Warn("retrying", logger.Fields("attempt", attempt, "delay", d))
//	}
//	out, err := resilience.Retry(ctx, cfg, func() (Result, error) {
//	    return client.Call(ctx, req)
//	})
package resilience
