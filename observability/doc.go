// Package observability exports OpenTelemetry traces and metrics for
// provider calls and aggregates provider health.
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg.Observability)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "shownotes.transcribe",
//	    observability.ProviderKey.String("deepgram"))
//	defer span.End()
//	metrics.RecordCost(ctx, "deepgram", "nova-2", 0.043)
//
// When export is disabled Setup still returns working instruments bound to
// the global meter provider.
package observability
