package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError describes a single failed validation rule, suitable for
// returning to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct validates a struct based on its validation tags. Returns
// nil when valid, a *ValidationErrors when any rule fails.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]FieldError, 0, len(validationErrors))
			for _, e := range validationErrors {
				fields = append(fields, FieldError{
					Field:   strings.ToLower(e.Field()),
					Message: formatFieldError(e),
				})
			}
			return &ValidationErrors{Fields: fields}
		}
		return err
	}
	return nil
}

// ValidationErrors aggregates the failed rules of one struct validation.
type ValidationErrors struct {
	Fields []FieldError `json:"errors"`
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	messages := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
