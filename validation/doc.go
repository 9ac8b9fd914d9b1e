// Package validation turns malformed requests and configuration into
// AppErrors that name every offending field.
//
// Requests are checked through `validate` struct tags:
//
//	type TranscribeRequest struct {
//	    Provider     string  `json:"provider" validate:"required"`
//	    DurationHint float64 `json:"duration_hint" validate:"gte=0"`
//	}
//	err := validation.Validate(req) // INVALID_INPUT
//
// Configuration is checked by hand with a Validator:
//
//	err := validation.New().
//	    Min("retry.max_attempts", cfg.Retry.MaxAttempts, 1).
//	    Nest("logging", cfg.Logging.Validate()).
//	    AsConfig() // CONFIGURATION_ERROR
package validation
