// Package provider holds what the transcription and LLM backends share:
// the RequestResponse[I, O] call shape, named factory registries, credential
// reading and the middleware stack wrapped around every call.
//
// A backend registers a Factory that builds it from its options map:
//
//	reg := provider.NewRegistry[transcription.Provider]("transcription")
//	reg.RegisterFactory("deepgram", deepgram.NewFactory())
//	p, err := reg.Create("deepgram", map[string]any{"api_key": key})
//
// Unknown names fail with a CONFIGURATION_ERROR listing the kind.
//
// # Middleware
//
// Around builds a Middleware from a single function; Chain composes them,
// outermost first. The orchestrator wraps each call as
//
//	provider.Chain(
//	    provider.WithTracing[In, Out]("shownotes"),
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithRetry[In, Out](policy),
//	)(p)
//
// so one span and one log line cover all retry attempts. Backends that hold
// connections or files implement Closeable and are handed to Release when
// the call is done.
package provider
