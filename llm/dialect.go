package llm

import (
	"errors"
	"maps"
	"slices"
	"sync"

	apperrors "github.com/kbukum/shownotes/errors"
)

// ErrNoContent is returned by ParseResponse for a reply that decodes but
// carries no generated text.
var ErrNoContent = errors.New("llm: response has no content")

// Dialect translates between the shared completion types and one
// provider's JSON chat API.
type Dialect interface {
	Name() string
	// ChatPath is the completion endpoint for model, relative to the base URL.
	ChatPath(model string) string
	// HealthPath is a GET that costs no credits; "" skips the probe.
	HealthPath() string
	BuildRequest(req CompletionRequest) (any, error)
	// ParseResponse returns ErrNoContent for a decodable reply without text
	// and any other error for a body it cannot read.
	ParseResponse(body []byte) (*CompletionResponse, error)
}

type dialectSet struct {
	mu sync.RWMutex
	m  map[string]Dialect
}

// registered holds the dialects sub-packages add from init.
var registered = &dialectSet{m: map[string]Dialect{}}

// RegisterDialect makes d selectable as Config.Dialect = name.
func RegisterDialect(name string, d Dialect) {
	registered.mu.Lock()
	registered.m[name] = d
	registered.mu.Unlock()
}

// GetDialect looks up a registered dialect. An unknown name is a
// CONFIGURATION_ERROR; the dialect's package is probably not imported.
func GetDialect(name string) (Dialect, error) {
	registered.mu.RLock()
	d, ok := registered.m[name]
	registered.mu.RUnlock()
	if !ok {
		return nil, apperrors.Configuration("llm: unknown dialect "+name).WithDetail("dialect", name)
	}
	return d, nil
}

// Dialects lists the registered dialect names in order.
func Dialects() []string {
	registered.mu.RLock()
	defer registered.mu.RUnlock()
	return slices.Sorted(maps.Keys(registered.m))
}
