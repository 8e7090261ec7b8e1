package schema

import (
	"fmt"
	"strings"
)

// FieldError describes one failed check.
type FieldError struct {
	Field   string
	Rule    string
	Value   any
	Message string
}

// Error returns the field error message.
func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Result collects validation errors for one value.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// AddError records a failed check and marks the result invalid.
func (r *Result) AddError(field, rule string, value any, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, FieldError{
		Field:   field,
		Rule:    rule,
		Value:   value,
		Message: message,
	})
}

// Err returns nil for a valid result, or an error listing every failed
// check so the caller can identify the offending fields.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
