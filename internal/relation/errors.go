package relation

import (
	"errors"
	"fmt"
)

// Error represents a relation failure reported back to the host.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes relation errors.
type ErrorCode string

const (
	// ErrCodeMissingArgument indicates the hidden payload column was not
	// bound by the query.
	ErrCodeMissingArgument ErrorCode = "MISSING_ARGUMENT"

	// ErrCodeCursorNotPositioned indicates a row was read outside the
	// Filtered state. It signals a host defect, not bad input.
	ErrCodeCursorNotPositioned ErrorCode = "CURSOR_NOT_POSITIONED"

	// ErrCodeInvalidColumn indicates a column index outside the schema.
	ErrCodeInvalidColumn ErrorCode = "INVALID_COLUMN"

	// ErrCodeInvalidArgument indicates a payload of an unsupported type.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsMissingArgument returns true if the error is a missing argument error.
func IsMissingArgument(err error) bool {
	return hasCode(err, ErrCodeMissingArgument)
}

// IsCursorNotPositioned returns true if the error is a cursor state error.
func IsCursorNotPositioned(err error) bool {
	return hasCode(err, ErrCodeCursorNotPositioned)
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewMissingArgumentError creates an Error for an unbound payload column.
func NewMissingArgumentError(relation, column string) *Error {
	return &Error{
		Code:    ErrCodeMissingArgument,
		Message: fmt.Sprintf("%s: missing required %s argument", relation, column),
	}
}

func newNotPositionedError(op string, s state) *Error {
	return &Error{
		Code:    ErrCodeCursorNotPositioned,
		Message: fmt.Sprintf("%s called on %s cursor", op, s),
	}
}
