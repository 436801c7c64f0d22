package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidLink        = errors.New("invalid_link")
	ErrInvalidBarcode     = errors.New("invalid_barcode")
)

// FieldError lists the messages for one request field.
type FieldError struct {
	Field    string
	Messages []string
}

// ValidationError carries per-field messages in the order the fields were
// checked. Handlers render it as a JSON object in that order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+strings.Join(f.Messages, " "))
	}
	return "validation failed: " + strings.Join(parts, " | ")
}

// Add appends msg to field, keeping the field's first position.
func (e *ValidationError) Add(field, msg string) {
	for i := range e.Fields {
		if e.Fields[i].Field == field {
			e.Fields[i].Messages = append(e.Fields[i].Messages, msg)
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Messages: []string{msg}})
}

// OrNil returns nil when nothing was added.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

const msgRequired = "This field is required."
