package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
)

// recordingSleep captures requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	rec := &recordingSleep{}
	cfg := DefaultRetryConfig()
	cfg.Sleep = rec.sleep
	callCount := 0

	result, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected no sleeps, got %v", rec.delays)
	}
}

func TestRetry_FailsKTimesThenSucceeds(t *testing.T) {
	for k := 0; k < DefaultMaxAttempts; k++ {
		rec := &recordingSleep{}
		cfg := DefaultRetryConfig()
		cfg.Sleep = rec.sleep
		callCount := 0

		result, err := Retry(context.Background(), cfg, func() (int, error) {
			callCount++
			if callCount <= k {
				return 0, errors.New("temporary error")
			}
			return 42, nil
		})

		if err != nil {
			t.Fatalf("k=%d: expected no error, got %v", k, err)
		}
		if result != 42 {
			t.Errorf("k=%d: expected 42, got %d", k, result)
		}
		if callCount != k+1 {
			t.Errorf("k=%d: expected %d calls, got %d", k, k+1, callCount)
		}
		if len(rec.delays) != k {
			t.Fatalf("k=%d: expected %d sleeps, got %d", k, k, len(rec.delays))
		}
		for i, d := range rec.delays {
			want := time.Second << i
			if d != want {
				t.Errorf("k=%d: sleep %d expected %v, got %v", k, i, want, d)
			}
		}
	}
}

func TestRetry_AlwaysFailsReturnsLastError(t *testing.T) {
	rec := &recordingSleep{}
	cfg := DefaultRetryConfig()
	cfg.Sleep = rec.sleep
	callCount := 0
	var errs []error

	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		e := apperrors.Provider("deepgram", http.StatusBadGateway, nil).WithDetail("call", callCount)
		errs = append(errs, e)
		return "", e
	})

	if callCount != 7 {
		t.Errorf("expected 7 calls, got %d", callCount)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != 7 {
		t.Errorf("expected 7 attempts, got %d", exhausted.Attempts)
	}
	if exhausted.Err != errs[6] {
		t.Error("expected the error from the seventh call")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeProvider) {
		t.Error("expected provider code to survive wrapping")
	}
	want := []time.Duration{1, 2, 4, 8, 16, 32}
	for i, d := range rec.delays {
		if d != want[i]*time.Second {
			t.Errorf("sleep %d expected %v, got %v", i, want[i]*time.Second, d)
		}
	}
	if len(rec.delays) != 6 {
		t.Errorf("expected 6 sleeps, got %d", len(rec.delays))
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	rec := &recordingSleep{}
	cfg := DefaultRetryConfig()
	cfg.Sleep = rec.sleep
	callCount := 0
	cfgErr := apperrors.MissingCredential("claude")

	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", cfgErr
	})

	if err != cfgErr {
		t.Errorf("expected configuration error unchanged, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_EmptyResultRetriedByDefault(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.Sleep = (&recordingSleep{}).sleep
	callCount := 0

	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", apperrors.EmptyResult("gemini", "content")
	})

	if err == nil || callCount != 7 {
		t.Errorf("expected 7 calls and an error, got %d calls, err=%v", callCount, err)
	}
}

func TestRetry_TransientOnly(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		calls int
	}{
		{"server error", apperrors.Provider("groq", 503, nil), 3},
		{"rate limited", apperrors.Provider("groq", 429, nil), 3},
		{"network", apperrors.Provider("groq", 0, nil), 3},
		{"parse", apperrors.Parse("groq", nil), 3},
		{"plain error", errors.New("connection reset"), 3},
		{"client timeout", apperrors.Provider("groq", 0, nil).WithCause(fmt.Errorf("await headers: %w", context.DeadlineExceeded)), 3},
		{"client error", apperrors.Provider("groq", 400, nil), 1},
		{"empty result", apperrors.EmptyResult("groq", "content"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RetryConfig{MaxAttempts: 3, RetryIf: TransientOnly, Sleep: (&recordingSleep{}).sleep}
			callCount := 0
			_, _ = Retry(context.Background(), cfg, func() (string, error) {
				callCount++
				return "", tt.err
			})
			if callCount != tt.calls {
				t.Errorf("expected %d calls, got %d", tt.calls, callCount)
			}
		})
	}
}

func TestRetry_Hooks(t *testing.T) {
	var attempts []int
	var retried []int
	exhaustedCalls := 0
	cfg := RetryConfig{
		MaxAttempts: 3,
		Sleep:       (&recordingSleep{}).sleep,
		OnAttempt:   func(a int) { attempts = append(attempts, a) },
		OnRetry:     func(a int, _ error, _ time.Duration) { retried = append(retried, a) },
		OnExhausted: func(n int, _ error) {
			exhaustedCalls++
			if n != 3 {
				t.Errorf("expected 3 attempts, got %d", n)
			}
		},
	}

	_ = RetryFunc(context.Background(), cfg, func() error { return errors.New("boom") })

	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Errorf("unexpected attempts %v", attempts)
	}
	if len(retried) != 2 {
		t.Errorf("expected 2 retries, got %v", retried)
	}
	if exhaustedCalls != 1 {
		t.Errorf("expected OnExhausted once, got %d", exhaustedCalls)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour}
	callCount := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, cfg, func() (string, error) {
		callCount++
		return "", errors.New("error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

func TestDefaultRetryIf_Deadlines(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bare deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("read body: %w", context.DeadlineExceeded), true},
		{"canceled in chain", fmt.Errorf("dial: %w", context.Canceled), true},
		{"configuration", apperrors.Configuration("no key"), false},
		{"poll timeout", apperrors.Timeout("poll"), false},
	}
	for _, tt := range tests {
		if got := DefaultRetryIf(tt.err); got != tt.want {
			t.Errorf("%s: DefaultRetryIf = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRetry_StopsWhenCallerContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recordingSleep{}
	cfg := RetryConfig{MaxAttempts: 5, Sleep: rec.sleep}
	callCount := 0

	_, err := Retry(ctx, cfg, func() (string, error) {
		callCount++
		cancel()
		return "", fmt.Errorf("request: %w", context.Canceled)
	})

	if !errors.Is(err, context.Canceled) || callCount != 1 || len(rec.delays) != 0 {
		t.Errorf("err=%v calls=%d sleeps=%v, want one call and no sleep", err, callCount, rec.delays)
	}
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		t.Errorf("cancellation should not report exhaustion: %v", err)
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, BackoffFactor: 2, MaxBackoff: 5 * time.Second}
	if d := CalculateBackoff(4, cfg); d != 5*time.Second {
		t.Errorf("expected cap of 5s, got %v", d)
	}
	if d := CalculateBackoff(2, cfg); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
}
