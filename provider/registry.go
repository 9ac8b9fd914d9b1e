package provider

import (
	"maps"
	"slices"
	"sync"

	apperrors "github.com/kbukum/shownotes/errors"
)

// Registry maps provider ids to factories. Registration happens at setup;
// lookups may run concurrently afterwards.
type Registry[T Provider] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty registry. kind ("transcription", "llm")
// names the registry in unknown-provider errors.
func NewRegistry[T Provider](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: map[string]Factory[T]{}}
}

// RegisterFactory binds name to factory, replacing any earlier binding.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Create builds the provider registered as name. An unregistered name is a
// CONFIGURATION_ERROR.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	factory, ok := r.lookup(name)
	if !ok {
		var zero T
		return zero, apperrors.UnknownProvider(r.kind, name)
	}
	return factory(cfg)
}

// List returns the registered ids in order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

func (r *Registry[T]) lookup(name string) (Factory[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}
