package ident

import (
	"errors"
	"fmt"
)

// MalformedError reports a string that does not parse as an absolute URL.
type MalformedError struct {
	// Input is the text that failed to parse.
	Input string

	// Reason is a short human-readable description.
	Reason string

	// Err is the underlying parser error, if any.
	Err error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed URL %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("malformed URL %q: %s", e.Input, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// FieldError reports a mutation rejected by a setter.
// The Identifier the setter was called on is unchanged.
type FieldError struct {
	// Field names the component: scheme, host, path, query, fragment,
	// username, password or zone.
	Field string

	// Value is the rejected input.
	Value string

	// Reason describes which rule was violated.
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsMalformed returns true if err is (or wraps) a MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// IsFieldError returns true if err is (or wraps) a FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

func fieldError(field, value, reason string) *FieldError {
	return &FieldError{Field: field, Value: value, Reason: reason}
}
