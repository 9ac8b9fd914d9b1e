package resilience

import (
	"context"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
)

// Default polling policy values: 60 polls 3s apart, a 180s ceiling.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxPolls     = 60
)

// PollConfig configures an asynchronous job poll loop.
type PollConfig struct {
	// Interval is the wait before every poll, including the first.
	Interval time.Duration
	// MaxPolls bounds the number of status reads.
	MaxPolls int
	// Operation names the job in the timeout error.
	Operation string
	// OnPoll is called after each status read, starting at 1.
	OnPoll func(poll int, done bool)
	// Sleep replaces the context-aware timer, mainly for tests.
	Sleep SleepFunc
}

// DefaultPollConfig returns the 3s/60-poll policy.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval: DefaultPollInterval,
		MaxPolls: DefaultMaxPolls,
	}
}

// Poll calls check until it reports done, it fails, or MaxPolls reads elapse.
// check returning an error stops polling immediately with that error.
// Running out of polls yields a non-retryable TIMEOUT error.
func Poll[T any](ctx context.Context, cfg PollConfig, check func() (T, bool, error)) (T, error) {
	var zero T

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	if cfg.Operation == "" {
		cfg.Operation = "job"
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	for poll := 1; poll <= cfg.MaxPolls; poll++ {
		if err := cfg.Sleep(ctx, cfg.Interval); err != nil {
			return zero, err
		}

		value, done, err := check()
		if cfg.OnPoll != nil {
			cfg.OnPoll(poll, done || err != nil)
		}
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}
	}

	return zero, apperrors.Timeout(cfg.Operation).
		WithDetail("polls", cfg.MaxPolls).
		WithDetail("interval", cfg.Interval.String())
}
