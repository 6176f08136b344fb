package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected field of a request or entity.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// NewValidationError builds a field error without a rule name.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + ve[0].Error()
	}
	parts := make([]string, 0, len(ve))
	for i := range ve {
		parts = append(parts, ve[i].Error())
	}
	return fmt.Sprintf("validation failed (%d errors): %s", len(ve), strings.Join(parts, "; "))
}

// Add appends a rule violation for field.
func (ve *ValidationErrors) Add(field, rule, message string, value interface{}) {
	*ve = append(*ve, ValidationError{Field: field, Rule: rule, Message: message, Value: value})
}

// Has reports whether field already has an error recorded.
func (ve ValidationErrors) Has(field string) bool {
	for i := range ve {
		if ve[i].Field == field {
			return true
		}
	}
	return false
}

// ErrOrNil returns nil for an empty collection so callers can return it directly.
func (ve ValidationErrors) ErrOrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// FromValidator converts go-playground field errors. Any other error yields nil.
func FromValidator(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), fe.Tag(), messageFor(fe), fe.Value())
	}
	return out
}

var fixedMessages = map[string]string{
	"required":         "is required",
	"email":            "must be a valid email address",
	"uuid":             "must be a valid UUID",
	"numeric":          "must be a number",
	"url":              "must be a valid URL",
	"unique":           "must not contain duplicates",
	"question_type":    "must be multiple_choice, true_false or short_answer",
	"difficulty_level": "must be easy, medium or hard",
	"user_role":        "must be student, teacher or admin",
	"quiz_status":      "must be draft, active or archived",
	"strong_password":  "needs 8+ characters with upper and lower case letters, a digit and a symbol",
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "gtefield":
		return "must not be before " + fe.Param()
	case "dive":
		return "contains an invalid item"
	}
	return fmt.Sprintf("failed the %q check", fe.Tag())
}
