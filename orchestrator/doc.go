// Package orchestrator runs show-notes provider calls end to end.
//
// An Orchestrator resolves a transcription or LLM provider by id, builds it
// from configured and per-call options, and executes it behind the tracing,
// logging, metrics and retry middleware. Transcription results are rendered
// as the canonical timestamped transcript; both paths are priced against the
// embedded rate tables.
//
//	o, err := orchestrator.New(
//	    orchestrator.WithProviderConfig("deepgram", map[string]any{"api_key": key}),
//	)
//	tr, err := o.Transcribe(ctx, orchestrator.TranscribeRequest{
//	    Provider:     "deepgram",
//	    Model:        "nova-2",
//	    Audio:        transcription.Audio{URL: episodeURL},
//	    DurationHint: 600,
//	})
//	notes, err := o.Generate(ctx, orchestrator.GenerateRequest{
//	    Provider:   "claude",
//	    Prompt:     prompt,
//	    Transcript: tr.Transcript,
//	})
package orchestrator
