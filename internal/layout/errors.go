package layout

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError pins a validation failure to one batch entry.
type FieldError struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// ValidationError reports malformed or structurally invalid input. The
// engine never retries it and performs no partial writes; the HTTP layer
// maps it to a 4xx with the Fields list in the body.
type ValidationError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("[%d] %s: %s", f.Index, f.Field, f.Detail))
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError with optional field details.
func NewValidationError(msg string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
