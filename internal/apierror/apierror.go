package apierror

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one flattened field failure
type FieldError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Envelope is the uniform error payload returned for every validation
// failure: {status_code, errors:[{error, message}]}
type Envelope struct {
	StatusCode int          `json:"status_code"`
	Errors     []FieldError `json:"errors"`
}

// New creates an empty envelope for the given status
func New(statusCode int) *Envelope {
	return &Envelope{StatusCode: statusCode, Errors: []FieldError{}}
}

// Add appends a field failure. The error key is "<field>_<code>" so the
// frontend can match failures without parsing messages.
func (e *Envelope) Add(field, code, message string) *Envelope {
	key := field
	if code != "" {
		key = field + "_" + code
	}
	e.Errors = append(e.Errors, FieldError{Error: key, Message: message})
	return e
}

// FromValidation flattens a validator error into the envelope. Nested rows
// from composite inputs (slices, embedded structs) are flattened
// recursively into path-qualified field keys; errors are collected, never
// short-circuited.
func FromValidation(statusCode int, err error) *Envelope {
	env := New(statusCode)

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return env.Add("non_field", "invalid", err.Error())
	}

	for _, fe := range verrs {
		field := flattenNamespace(fe.Namespace())
		env.Add(field, fe.Tag(), messageFor(fe))
	}
	return env
}

// flattenNamespace turns "CreateReq.Items[2].Title" into "items_2_title"
func flattenNamespace(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		// Drop the request struct name
		parts = parts[1:]
	}

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('_')
		}
		part = strings.ReplaceAll(part, "[", "_")
		part = strings.ReplaceAll(part, "]", "")
		b.WriteString(part)
	}
	return strings.ToLower(b.String())
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s.", fe.Param())
	default:
		return fmt.Sprintf("Validation failed on the '%s' rule.", fe.Tag())
	}
}
