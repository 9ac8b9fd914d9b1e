package httpclient

import (
	"errors"
	"time"
)

// DefaultTimeout bounds a non-streaming exchange when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// Name labels the client, usually the provider id.
	Name string `yaml:"name" mapstructure:"name"`
	// BaseURL is joined with relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds Do. DoStream relies on the context alone.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Auth is applied unless a request carries its own.
	Auth *Auth `yaml:"-" mapstructure:"-"`
	// Headers are sent on every request; request headers win.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills the zero fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate rejects a negative timeout.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("httpclient: timeout must not be negative")
	}
	return nil
}
