package logger

import "github.com/kbukum/shownotes/validation"

// Levels and Formats list the accepted Config values.
var (
	Levels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	Formats = []string{"json", FormatConsole, FormatPretty}
)

// Config selects level, encoding and destination of log output.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is "stdout" or "stderr".
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults gives human-readable info-level output on stdout.
// Timestamps are always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate returns a CONFIGURATION_ERROR whose "fields" detail names the
// offending keys.
func (c *Config) Validate() error {
	if appErr := validation.New().
		In("level", c.Level, Levels...).
		In("format", c.Format, Formats...).
		In("output", c.Output, "stdout", "stderr").
		AsConfig(); appErr != nil {
		return appErr
	}
	return nil
}
