package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats. Anything else is JSON.
const (
	FormatPretty  = "pretty"
	FormatConsole = "console"
)

// Logger is a zerolog logger carrying the service name it was built for.
type Logger struct {
	zl      zerolog.Logger
	service string
	// derived marks the component loggers Get caches.
	derived bool
}

// Init installs a logger built from cfg as the global logger.
func Init(cfg Config, service string) *Logger {
	cfg.ApplyDefaults()
	l := New(&cfg, service)
	SetGlobalLogger(l)
	return l
}

// New builds a logger from cfg writing to stdout or stderr.
func New(cfg *Config, service string) *Logger {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		out = consoleWriter(out, service, cfg.NoColor)
	}
	return build(zerolog.New(out), cfg, service)
}

// NewWriter builds a JSON logger writing to w.
func NewWriter(w io.Writer, level, service string) *Logger {
	return build(zerolog.New(w), &Config{Level: level}, service)
}

// NewDefault builds an info-level console logger with timestamps.
func NewDefault(service string) *Logger {
	return New(&Config{Level: "info", Format: FormatConsole, Timestamp: true}, service)
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{zl: zerolog.Nop()} }

func build(zl zerolog.Logger, cfg *Config, service string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zc := zl.Level(level).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger(), service: service}
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{zl: zc.Logger(), service: l.service}
}

// WithComponent tags every entry with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithError attaches err to every entry.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.zl.Debug(), msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...map[string]any) { emit(l.zl.Info(), msg, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...map[string]any) { emit(l.zl.Warn(), msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.zl.Error(), msg, fields) }

// WithComponent returns the component logger for name; see Get.
func WithComponent(name string) *Logger { return Get(name) }

func emit(e *zerolog.Event, msg string, fields []map[string]any) {
	for _, m := range fields {
		e.Fields(m)
	}
	e.Msg(msg)
}
