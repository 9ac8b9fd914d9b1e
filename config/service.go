package config

import (
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/validation"
	"github.com/kbukum/shownotes/version"
)

// Environments lists the accepted ServiceConfig.Environment values.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every embedding application shares.
// Projects extend it by embedding:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Providers map[string]ProviderConfig `mapstructure:"providers"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "shownotes"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	c.Logging.ApplyDefaults()
}

// Validate reports every invalid field as one CONFIGURATION_ERROR.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Require("name", c.Name).
		Require("environment", c.Environment).
		In("environment", c.Environment, Environments...).
		Nest("logging", c.Logging.Validate())
	if appErr := v.AsConfig(); appErr != nil {
		return appErr
	}
	return nil
}
