package logger

import "time"

// Field keys shared by every component.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRunID     = "run_id"
	FieldProvider  = "provider"
	FieldModel     = "model"
	FieldAttempt   = "attempt"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldErrorCode = "error_code"
	FieldDuration  = "duration_ms"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("polled", logger.Fields(logger.FieldProvider, "assembly", "poll", 3))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if k, ok := kvs[i].(string); ok {
			m[k] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{FieldOperation: op, FieldError: err.Error()}
}

// DurationFields describes a timed operation in milliseconds.
func DurationFields(op string, d time.Duration) map[string]any {
	return map[string]any{FieldOperation: op, FieldDuration: d.Milliseconds()}
}
