package util

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/shownotes/errors"
)

// ParseUUID parses a caller-supplied identifier. Blank or malformed input
// is an INVALID_INPUT error carrying the field name.
func ParseUUID(field, value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, apperrors.Validation(field+" cannot be empty").WithDetail("field", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.Validation(field+": invalid UUID format").WithDetail("field", field).WithCause(err)
	}
	return id, nil
}
