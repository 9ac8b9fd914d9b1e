package process

import (
	"context"
	"os/exec"
	"time"

	"github.com/kbukum/shownotes/provider"
)

var _ provider.RequestResponse[Command, *Result] = (*Adapter)(nil)

// Config holds the defaults an Adapter applies to every Command.
type Config struct {
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Binary runs when a Command leaves Binary empty.
	Binary      string        `yaml:"binary,omitempty" mapstructure:"binary"`
	Env         []string      `yaml:"env,omitempty" mapstructure:"env"`
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each run. Zero means only the caller's context applies.
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	StderrLimit int           `yaml:"stderr_limit,omitempty" mapstructure:"stderr_limit"`
}

// Adapter runs one configured binary as a provider.RequestResponse.
type Adapter struct {
	config Config
}

// NewAdapter creates an Adapter.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{config: cfg}
}

// Run fills unset Command fields from the adapter config and runs it under
// the adapter timeout.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		cmd.Binary = a.config.Binary
	}
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if cmd.StderrLimit == 0 {
		cmd.StderrLimit = a.config.StderrLimit
	}
	if len(a.config.Env) > 0 {
		cmd.Env = append(append([]string(nil), a.config.Env...), cmd.Env...)
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// Name returns the configured name.
func (a *Adapter) Name() string { return a.config.Name }

// IsAvailable reports whether the binary resolves on PATH. An adapter
// without a default binary is always available.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	if a.config.Binary == "" {
		return true
	}
	_, err := exec.LookPath(a.config.Binary)
	return err == nil
}

// Execute is Run.
func (a *Adapter) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return a.Run(ctx, cmd)
}
