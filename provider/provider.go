package provider

import "context"

// Provider is anything the orchestrator can look up by name and probe.
type Provider interface {
	Name() string
	// IsAvailable is a cheap reachability check used for health reporting.
	// It must not spend provider credits.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider with a single call shape. Transcription
// adapters, LLM adapters and the subprocess runner all implement it.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Factory builds a provider from an option map. It must fail fast, before
// any network call, when a required credential is missing.
type Factory[T Provider] func(cfg map[string]any) (T, error)
