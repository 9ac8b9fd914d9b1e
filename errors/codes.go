package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (fatal, never retried)
const (
	// ErrCodeConfiguration indicates a missing or invalid credential, provider or model id.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates a malformed request.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Provider call errors
const (
	// ErrCodeProvider indicates a non-2xx response or a transport failure.
	ErrCodeProvider ErrorCode = "PROVIDER_ERROR"
	// ErrCodeParse indicates a response body that could not be decoded.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeEmptyResult indicates a well-formed response with no usable content.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"
)

// Asynchronous job errors (fatal)
const (
	// ErrCodeTimeout indicates polling exceeded its bound.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeTranscriptionFailed indicates the provider reported the job as failed.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
)

// EmptyResult is retried by default; resilience.TransientOnly opts out of it.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeProvider:            true,
	ErrCodeParse:               true,
	ErrCodeEmptyResult:         true,
	ErrCodeConfiguration:       false,
	ErrCodeInvalidInput:        false,
	ErrCodeTimeout:             false,
	ErrCodeTranscriptionFailed: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
