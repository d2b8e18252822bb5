// Package errors carries coded errors shared by the CLI and the HTTP API.
//
// Every [Error] has a [Code]; every code belongs to a [Class] that callers
// map to an exit message or an HTTP status:
//
//	err := errors.New(errors.ErrCodeTableNotFound, "no table %q", id)
//	errors.ClassOf(err) == errors.ClassNotFound // true
//
// Data-integrity problems inside otherwise valid metadata, such as an edge
// pointing at an unknown table, are not errors. The model builder drops them
// and counts them instead.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidMetadata Code = "INVALID_METADATA"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidAction   Code = "INVALID_ACTION"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeTableNotFound   Code = "TABLE_NOT_FOUND"
	ErrCodeColumnNotFound  Code = "COLUMN_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// ErrCodeLoadFailed means the metadata could not be read at all.
	ErrCodeLoadFailed Code = "LOAD_FAILED"

	ErrCodeBackend Code = "BACKEND_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Class groups codes by how a caller should react to them.
type Class int

const (
	ClassInternal Class = iota
	ClassInvalid
	ClassNotFound
	ClassUnavailable
	ClassUnsupported
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:    ClassInvalid,
	ErrCodeInvalidFormat:   ClassInvalid,
	ErrCodeInvalidMetadata: ClassInvalid,
	ErrCodeInvalidPath:     ClassInvalid,
	ErrCodeInvalidAction:   ClassInvalid,
	ErrCodeNotFound:        ClassNotFound,
	ErrCodeTableNotFound:   ClassNotFound,
	ErrCodeColumnNotFound:  ClassNotFound,
	ErrCodeFileNotFound:    ClassNotFound,
	ErrCodeSessionNotFound: ClassNotFound,
	ErrCodeBackend:         ClassUnavailable,
	ErrCodeTimeout:         ClassUnavailable,
	ErrCodeUnsupported:     ClassUnsupported,
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class {
	return classes[c]
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is like [New] but records cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of err, or "" for uncoded errors.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// ClassOf returns the class of err. Uncoded errors are internal.
func ClassOf(err error) Class {
	return GetCode(err).Class()
}

// UserMessage returns the message of a coded error without its code
// prefix and cause, or err.Error() otherwise.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool { return ClassOf(err) == ClassNotFound }

func IsInvalid(err error) bool { return ClassOf(err) == ClassInvalid }
