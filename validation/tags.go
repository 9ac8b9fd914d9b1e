package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var structs = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return snake(f.Name)
		}
		return name
	})
	return v
})

// messages render a failed tag; %s is the tag parameter.
var messages = map[string]string{
	"required":         "is required",
	"required_without": "is required when %s is empty",
	"excluded_with":    "must be empty when %s is set",
	"url":              "must be a valid URL",
	"uuid":             "must be a valid UUID",
	"gte":              "must be at least %s",
	"gt":               "must be greater than %s",
	"min":              "must be at least %s",
	"max":              "must be at most %s",
	"oneof":            "must be one of: %s",
}

// Validate checks s against its `validate` struct tags. Field names in the
// error follow the json tags.
func Validate(s any) error {
	err := structs().Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !stderrors.As(err, &fields) {
		return New().Add("request", err.Error()).AsInput()
	}
	v := New()
	for _, f := range fields {
		v.Add(f.Field(), describe(f))
	}
	return v.AsInput()
}

func describe(f validator.FieldError) string {
	msg, ok := messages[f.Tag()]
	if !ok {
		return "is invalid"
	}
	if !strings.Contains(msg, "%s") {
		return msg
	}
	param := f.Param()
	if f.Tag() == "required_without" || f.Tag() == "excluded_with" {
		param = snake(param)
	}
	return strings.Replace(msg, "%s", param, 1)
}

// snake turns DurationHint into duration_hint and URL into url.
func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
