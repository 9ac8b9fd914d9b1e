package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/shownotes/errors"
)

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field problems so a caller can report all of them
// at once. Methods chain.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

// Add records a problem with field.
func (v *Validator) Add(field, message string) *Validator {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
	return v
}

// Require rejects a blank value.
func (v *Validator) Require(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
	return v
}

// Min rejects value below floor.
func (v *Validator) Min(field string, value, floor int) *Validator {
	if value < floor {
		v.Add(field, fmt.Sprintf("must be at least %d", floor))
	}
	return v
}

// In rejects a non-empty value outside allowed. Blank values are left to Require.
func (v *Validator) In(field, value string, allowed ...string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.Add(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Check records message against field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.Add(field, message)
	}
	return v
}

// Nest folds the result of a nested validation into v. Field errors keep
// their names under prefix; any other error is recorded against prefix.
func (v *Validator) Nest(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if fields, ok := appErr.Details["fields"].([]FieldError); ok {
			for _, f := range fields {
				v.Add(qualify(prefix, f.Field), f.Message)
			}
			return v
		}
	}
	v.Add(prefix, err.Error())
	return v
}

func qualify(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	}
	return prefix + "." + field
}

// Errors returns the recorded problems in order.
func (v *Validator) Errors() []FieldError { return v.fields }

// HasErrors reports whether anything was recorded.
func (v *Validator) HasErrors() bool { return len(v.fields) > 0 }

// AsInput reports the problems as an INVALID_INPUT error, or nil.
func (v *Validator) AsInput() *errors.AppError { return v.report(errors.Validation) }

// AsConfig reports the problems as a CONFIGURATION_ERROR, or nil.
func (v *Validator) AsConfig() *errors.AppError { return v.report(errors.Configuration) }

func (v *Validator) report(build func(string) *errors.AppError) *errors.AppError {
	if len(v.fields) == 0 {
		return nil
	}
	parts := make([]string, len(v.fields))
	for i, f := range v.fields {
		parts[i] = f.Field + ": " + f.Message
	}
	out := build(strings.Join(parts, "; "))
	out.Details = map[string]any{"fields": slices.Clone(v.fields)}
	return out
}
