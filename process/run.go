package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/shownotes/logger"
)

const (
	defaultGracePeriod = 5 * time.Second
	// DefaultStderrLimit is how much trailing stderr a Result keeps.
	DefaultStderrLimit = 64 << 10
)

// Command describes one subprocess invocation.
type Command struct {
	// Binary is resolved via PATH when it has no slash.
	Binary string
	Args   []string
	Dir    string
	// Env entries (key=value) are appended to the parent environment.
	Env   []string
	Stdin io.Reader
	// GracePeriod separates SIGTERM from SIGKILL on cancellation. Default 5s.
	GracePeriod time.Duration
	// StderrLimit caps the retained stderr to its last N bytes. Inference
	// tools stream progress there for the whole run. Default 64KiB.
	StderrLimit int
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Binary string
	Code   int
	// Stderr is the trimmed tail of standard error.
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("process: %s exited with code %d", e.Binary, e.Code)
	}
	return fmt.Sprintf("process: %s exited with code %d: %s", e.Binary, e.Code, e.Stderr)
}

// Run starts cmd and waits for it. Cancelling ctx sends SIGTERM to the
// process group, then SIGKILL after the grace period; the returned error
// then wraps ctx.Err(). A non-zero exit is an *ExitError. The Result is
// non-nil whenever the process was started.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace == 0 {
		grace = defaultGracePeriod
	}
	limit := cmd.StderrLimit
	if limit <= 0 {
		limit = DefaultStderrLimit
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running configured binaries is the point
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: limit}
	c.Stdout = &stdout
	c.Stderr = stderr
	c.Stdin = cmd.Stdin

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	log := logger.WithComponent("process").WithContext(ctx)
	log.Debug("process starting", logger.Fields("binary", cmd.Binary, "args", len(cmd.Args)))

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}

	fields := logger.DurationFields("process.run", res.Duration)
	fields["binary"] = cmd.Binary
	fields["exit_code"] = res.ExitCode
	switch {
	case err == nil:
		log.Debug("process finished", fields)
		return res, nil
	case ctx.Err() != nil:
		log.Warn("process killed", fields)
		return res, fmt.Errorf("process: killed: %w", ctx.Err())
	case c.ProcessState == nil:
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	default:
		log.Debug("process failed", fields)
		return res, &ExitError{Binary: cmd.Binary, Code: res.ExitCode, Stderr: res.StderrTail(512)}
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	if over := len(t.buf) + n - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
