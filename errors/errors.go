package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the upstream HTTP status, 0 when no response was received.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Configuration creates an error for a missing or invalid credential, provider or model.
func Configuration(message string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingCredential creates a configuration error for an absent API key.
func MissingCredential(provider string) *AppError {
	return Configuration(fmt.Sprintf("missing API key for provider %q", provider)).
		WithDetail("provider", provider)
}

// UnknownProvider creates a configuration error for an unregistered provider id.
func UnknownProvider(kind, provider string) *AppError {
	return Configuration(fmt.Sprintf("unknown %s provider %q", kind, provider)).
		WithDetail("provider", provider)
}

// Validation creates an error for a malformed request.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Provider creates an error for a non-2xx provider response. A status of 0
// means the request never produced a response (DNS, refused, reset).
func Provider(provider string, status int, body []byte) *AppError {
	msg := fmt.Sprintf("%s returned HTTP %d", provider, status)
	if status == 0 {
		msg = fmt.Sprintf("%s request failed", provider)
	}
	e := &AppError{
		Code: ErrCodeProvider, Message: msg,
		HTTPStatus: status, Retryable: true,
		Details: map[string]any{"provider": provider, "status": status},
	}
	if len(body) > 0 {
		e.Details["body"] = string(body)
	}
	return e
}

// Parse creates an error for an undecodable provider response.
func Parse(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: fmt.Sprintf("could not decode %s response", provider),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"provider": provider}, Cause: cause,
	}
}

// EmptyResult creates an error for a well-formed response without content.
func EmptyResult(provider, what string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyResult, Message: fmt.Sprintf("%s response has no %s", provider, what),
		HTTPStatus: http.StatusBadGateway, Retryable: IsRetryableCode(ErrCodeEmptyResult),
		Details: map[string]any{"provider": provider},
	}
}

// Timeout creates an error for an operation that exceeded its polling bound.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s did not finish in time", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: false,
		Details: map[string]any{"operation": operation},
	}
}

// TranscriptionFailed creates an error for a job the provider reported as failed.
func TranscriptionFailed(provider, reason string) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: fmt.Sprintf("%s transcription failed: %s", provider, reason),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"provider": provider},
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err wraps an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err wraps a retryable AppError.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
