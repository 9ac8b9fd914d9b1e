// Package cost estimates provider charges from audio duration or token
// counts using static per-provider rate tables.
//
// The tables ship embedded in rates.yaml. Every table names the unit it is
// quoted in (cents per minute, dollars per minute, dollars per million
// tokens) and all figures are normalised to dollars when loaded. Lookups
// that miss return a zero Estimate together with ErrRateNotFound so callers
// can surface a warning without failing the run.
//
//	est := cost.Default()
//	e, err := est.Transcription("deepgram", "nova-2", 600)
//	// e.Cost == 0.043, e.Cents() == 4.3
package cost
