package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/logger"
)

// FileSystem is what the loader needs from the disk; tests swap it out.
type FileSystem interface {
	Exists(path string) bool
	// LoadEnv copies a .env file into the process environment without
	// overriding variables that are already set.
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

// LoaderConfig collects the LoaderOptions.
type LoaderConfig struct {
	FileSystem FileSystem
	// ConfigFile and EnvFile skip the search when set.
	ConfigFile string
	EnvFile    string
	// EnvPrefix makes PREFIX_A_B override key a.b.
	EnvPrefix string
	// EnvKeys may be set from the environment even when no file or default
	// mentions them.
	EnvKeys  []string
	Defaults map[string]any
}

// LoaderOption adjusts a LoadConfig call.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the disk.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile reads path instead of searching for a YAML file.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile loads path instead of searching for a .env file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the environment prefix; a trailing underscore is optional.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// WithEnvKeys declares keys, such as provider API keys, that may come
// only from the environment.
func WithEnvKeys(keys ...string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvKeys = append(lc.EnvKeys, keys...) }
}

// WithDefault sets the value key takes when nothing else does. Defaulted
// keys can also be overridden from the environment.
func WithDefault(key string, value any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = map[string]any{}
		}
		lc.Defaults[key] = value
	}
}

// Files are the sources LoadConfig settled on; empty means none found.
type Files struct {
	Config string
	Env    string
}

// Locate picks the explicit paths from lc, or else the first existing
// candidate: <service>.yml, config/<service>.yml, config/config.yml,
// config.yml and .env.<service>, config/.env, .env.
func Locate(service string, lc LoaderConfig) Files {
	fs := lc.FileSystem
	if fs == nil {
		fs = osFS{}
	}
	first := func(explicit string, candidates ...string) string {
		if explicit != "" {
			return explicit
		}
		for _, p := range candidates {
			if fs.Exists(p) {
				return p
			}
		}
		return ""
	}
	return Files{
		Config: first(lc.ConfigFile, service+".yml", "config/"+service+".yml", "config/config.yml", "config.yml"),
		Env:    first(lc.EnvFile, ".env."+service, "config/.env", ".env"),
	}
}

// LoadConfig fills cfg, a pointer to a mapstructure-tagged struct, from
// defaults, the YAML file and the environment, later sources winning.
// Failures are CONFIGURATION_ERRORs.
func LoadConfig(service string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFS{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := Locate(service, lc)
	log := logger.Get("config")

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}
	if files.Config != "" && lc.FileSystem.Exists(files.Config) {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return apperrors.Configuration("read " + files.Config).WithCause(err)
		}
	}
	if files.Env != "" && lc.FileSystem.Exists(files.Env) {
		if err := lc.FileSystem.LoadEnv(files.Env); err != nil {
			log.Warn("skipping unreadable env file", logger.Fields("path", files.Env, logger.FieldError, err.Error()))
		}
	}

	v.SetEnvPrefix(lc.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range lc.EnvKeys {
		if err := v.BindEnv(key); err != nil {
			return apperrors.Configuration("bind env for " + key).WithCause(err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return apperrors.Configuration("decode " + service + " config").WithCause(err)
	}
	log.Debug("config loaded", logger.Fields("service", service, "file", files.Config, "env_file", files.Env))
	return nil
}
