package process_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/shownotes/process"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := string(result.Stdout); out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunExitCodeAndStderr(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo 'loading model' >&2; echo 'error: failed to open audio' >&2; exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	if tail := result.StderrTail(27); tail != "error: failed to open audio" {
		t.Fatalf("unexpected stderr tail %q", tail)
	}
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 42 || !strings.HasSuffix(exitErr.Stderr, "failed to open audio") {
		t.Fatalf("expected *ExitError with code 42, got %v", err)
	}
}

func TestRunStderrLimit(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary:      "sh",
		Args:        []string{"-c", "i=0; while [ $i -lt 200 ]; do echo progress $i >&2; i=$((i+1)); done; echo done >&2"},
		StderrLimit: 32,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stderr) != 32 {
		t.Fatalf("expected 32 retained bytes, got %d", len(result.Stderr))
	}
	if !strings.HasSuffix(string(result.Stderr), "progress 199\ndone\n") {
		t.Fatalf("expected the newest output, got %q", result.Stderr)
	}
}

func TestRunMissingBinary(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{Binary: "definitely-not-a-real-binary-xyz"})
	if err == nil || res != nil {
		t.Fatalf("expected start error and no result, got %v %v", res, err)
	}
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		t.Fatal("a process that never started has no exit code")
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the context error to be wrapped, got %v", err)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	if _, err := process.Run(context.Background(), process.Command{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $MY_TEST_VAR; pwd"},
		Env:    []string{"MY_TEST_VAR=hello123"},
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(result.Stdout)), "\n")
	if len(lines) != 2 || lines[0] != "hello123" || !strings.HasSuffix(lines[1], dir[strings.LastIndex(dir, "/"):]) {
		t.Fatalf("unexpected output %q", result.Stdout)
	}
}

func TestAdapter(t *testing.T) {
	a := process.NewAdapter(process.Config{Name: "whisper-cli", Binary: "sh", Timeout: 2 * time.Second})
	if a.Name() != "whisper-cli" {
		t.Errorf("unexpected name %q", a.Name())
	}
	if !a.IsAvailable(context.Background()) {
		t.Error("expected sh to be found on PATH")
	}

	res, err := a.Execute(context.Background(), process.Command{Args: []string{"-c", "echo ok"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "ok" {
		t.Errorf("unexpected stdout %q", res.Stdout)
	}

	missing := process.NewAdapter(process.Config{Binary: "definitely-not-a-real-binary-xyz"})
	if missing.IsAvailable(context.Background()) {
		t.Error("expected missing binary to be unavailable")
	}
}

func TestAdapterTimeout(t *testing.T) {
	a := process.NewAdapter(process.Config{Binary: "sleep", Timeout: 100 * time.Millisecond, GracePeriod: 200 * time.Millisecond})
	start := time.Now()
	if _, err := a.Run(context.Background(), process.Command{Args: []string{"10"}}); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("adapter timeout not applied")
	}
}

func TestAdapterDefaults(t *testing.T) {
	a := process.NewAdapter(process.Config{Binary: "sh", Env: []string{"WHISPER_THREADS=4"}, StderrLimit: 8})
	res, err := a.Run(context.Background(), process.Command{
		Args: []string{"-c", "echo $WHISPER_THREADS $EXTRA; echo 0123456789 >&2"},
		Env:  []string{"EXTRA=yes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "4 yes" {
		t.Errorf("unexpected stdout %q", res.Stdout)
	}
	if string(res.Stderr) != "3456789\n" {
		t.Errorf("expected stderr capped to 8 bytes, got %q", res.Stderr)
	}
}

func TestStderrTailNil(t *testing.T) {
	var r *process.Result
	if r.StderrTail(10) != "" {
		t.Error("expected empty tail for nil result")
	}
}
