// Package errors provides the error taxonomy shared by every provider adapter.
// Each failure carries a machine-readable code and a retryable flag so callers
// can tell "retry later" apart from "fix your configuration".
package errors
