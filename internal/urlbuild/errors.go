package urlbuild

import (
	"errors"
	"fmt"
)

// BuildError represents a failed Build call. No partial result is ever
// returned alongside it.
//
// Build errors include:
//   - Invalid base: the base string does not parse
//   - Invalid field: an operation violates the URL grammar
//   - Unknown key: an operation key outside the vocabulary
//   - Arity: the flat key/value list has an odd length
type BuildError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the operation key being applied, if any.
	Key string

	// Index is the position of the failing operation, -1 when not tied to one.
	Index int

	// Err is the underlying error (ident.MalformedError or ident.FieldError).
	Err error
}

// ErrorCode categorizes build errors.
type ErrorCode string

const (
	// ErrCodeInvalidBase indicates the base identifier did not parse.
	ErrCodeInvalidBase ErrorCode = "INVALID_BASE"

	// ErrCodeInvalidField indicates a mutation was rejected by the identifier.
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"

	// ErrCodeUnknownKey indicates an operation key outside the vocabulary.
	ErrCodeUnknownKey ErrorCode = "UNKNOWN_KEY"

	// ErrCodeArity indicates a key without a value.
	ErrCodeArity ErrorCode = "ARITY"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsUnknownKey returns true if the error is an unknown key error.
// Uses errors.As to handle wrapped errors.
func IsUnknownKey(err error) bool {
	return hasCode(err, ErrCodeUnknownKey)
}

// IsArityError returns true if the error is an arity error.
func IsArityError(err error) bool {
	return hasCode(err, ErrCodeArity)
}

// IsInvalidField returns true if the error is an invalid field error.
func IsInvalidField(err error) bool {
	return hasCode(err, ErrCodeInvalidField)
}

// IsInvalidBase returns true if the error is an invalid base error.
func IsInvalidBase(err error) bool {
	return hasCode(err, ErrCodeInvalidBase)
}

func hasCode(err error, code ErrorCode) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// NewUnknownKeyError creates a BuildError for a key outside the vocabulary.
func NewUnknownKeyError(index int, key string) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnknownKey,
		Message: fmt.Sprintf("Unknown key: %s", key),
		Key:     key,
		Index:   index,
	}
}

// NewArityError creates a BuildError for an odd-length operation list.
func NewArityError(n int) *BuildError {
	return &BuildError{
		Code:    ErrCodeArity,
		Message: fmt.Sprintf("operations must be key/value pairs, got %d argument(s)", n),
		Index:   -1,
	}
}
