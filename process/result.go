package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// StderrTail returns at most max trailing bytes of stderr, trimmed.
// Command-line tools tend to print the failure reason last.
func (r *Result) StderrTail(max int) string {
	if r == nil {
		return ""
	}
	s := strings.TrimSpace(string(r.Stderr))
	if max > 0 && len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}
