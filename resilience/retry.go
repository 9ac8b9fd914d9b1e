package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
)

// Default retry policy values.
const (
	DefaultMaxAttempts    = 7
	DefaultInitialBackoff = time.Second
	DefaultBackoffFactor  = 2.0
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int
	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps a single delay. Zero means uncapped.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool
	// OnAttempt is called before each attempt, starting at 1.
	OnAttempt func(attempt int)
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, backoff time.Duration)
	// OnExhausted is called once when the last allowed attempt fails.
	OnExhausted func(attempts int, err error)
	// Sleep replaces the context-aware timer, mainly for tests.
	Sleep SleepFunc
}

// DefaultRetryConfig returns the process-wide provider retry policy:
// 7 attempts, 1s initial delay doubling each time, no jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		BackoffFactor:  DefaultBackoffFactor,
		RetryIf:        DefaultRetryIf,
	}
}

// ExhaustedError is returned when every allowed attempt failed.
// It unwraps to the error from the final attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// DefaultRetryIf retries every error except those explicitly marked
// non-retryable (configuration, timeout, failed job). A deadline inside the
// error chain, such as a per-request client timeout, is retried; only the
// caller's own context stops Retry.
func DefaultRetryIf(err error) bool {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

// TransientOnly retries only failures that can plausibly succeed on a second
// try: 5xx, 429, transport errors and undecodable bodies. 4xx responses and
// empty results fail immediately.
func TransientOnly(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return true
	}
	switch appErr.Code {
	case apperrors.ErrCodeProvider:
		s := appErr.HTTPStatus
		return s == 0 || s == http.StatusTooManyRequests || s >= http.StatusInternalServerError
	case apperrors.ErrCodeParse:
		return true
	default:
		return false
	}
}

// Retry executes a function with retry logic.
// A non-retryable error is returned as is; once attempts run out the final
// error is returned wrapped in an *ExhaustedError. Use errors.As or errors.Is
// on the result to reach the provider's error. Cancelling ctx stops Retry
// with the error of the attempt in flight, or ctx.Err() between attempts.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = DefaultBackoffFactor
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil || !cfg.RetryIf(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := CalculateBackoff(attempt, cfg)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, backoff)
		}

		if err := cfg.Sleep(ctx, backoff); err != nil {
			return zero, err
		}
	}

	if cfg.OnExhausted != nil {
		cfg.OnExhausted(cfg.MaxAttempts, lastErr)
	}
	return zero, &ExhaustedError{Attempts: cfg.MaxAttempts, Err: lastErr}
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CalculateBackoff returns the delay after failed attempt n:
// InitialBackoff * BackoffFactor^(n-1), jittered and capped when configured.
func CalculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	backoffFloat := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))

	if cfg.Jitter > 0 {
		jitterRange := backoffFloat * cfg.Jitter
		backoffFloat += (rand.Float64()*2 - 1) * jitterRange
	}

	if cfg.MaxBackoff > 0 && backoffFloat > float64(cfg.MaxBackoff) {
		backoffFloat = float64(cfg.MaxBackoff)
	}

	if backoffFloat < 0 {
		backoffFloat = float64(cfg.InitialBackoff)
	}

	return time.Duration(backoffFloat)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
