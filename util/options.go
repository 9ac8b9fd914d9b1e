package util

import (
	"strconv"
	"strings"
	"time"
)

// String reads a string option. Missing or non-string values yield "".
func String(cfg map[string]any, key string) string {
	switch v := cfg[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// Secret reads a credential option. Blanks and one pair of matching
// quotes, as left behind by hand-written .env files, are dropped.
func Secret(cfg map[string]any, key string) string {
	v := strings.TrimSpace(String(cfg, key))
	if n := len(v); n >= 2 && (v[0] == '"' || v[0] == '\'') && v[n-1] == v[0] {
		v = strings.TrimSpace(v[1 : n-1])
	}
	return v
}

// Bool reads a boolean option. Strings such as "true" or "1" are accepted.
func Bool(cfg map[string]any, key string) bool {
	switch v := cfg[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Int reads an integer option, falling back to def.
func Int(cfg map[string]any, key string, def int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Duration reads a duration option, falling back to def. Durations may be
// given as time.Duration, a Go duration string ("90s"), or a number of seconds.
func Duration(cfg map[string]any, key string, def time.Duration) time.Duration {
	switch v := cfg[key].(type) {
	case time.Duration:
		if v > 0 {
			return v
		}
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case float64:
		if v > 0 {
			return time.Duration(v * float64(time.Second))
		}
	}
	return def
}

// Size reads a byte size option ("500MB"), falling back to def.
func Size(cfg map[string]any, key string, def int64) int64 {
	switch v := cfg[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		return ParseSize(v, def)
	}
	return def
}

// Float reads a floating point option, falling back to def.
func Float(cfg map[string]any, key string, def float64) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Coalesce returns the first value that is not the zero value.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
