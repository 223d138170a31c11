// Package errors is the project error type: a machine code, a message, an
// optional offending field and operation, and the wrapped cause.
//
// Import it as perr.
package errors

import (
	"context"
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies an error for callers that branch on it
type ErrorCode uint16

const (
	ErrorCodeUnknown         ErrorCode = iota
	ErrorCodePanic                     // recovered inside a worker
	ErrorCodeUnavailable               // transient; a retry may succeed
	ErrorCodeConflict                  // illegal state transition
	ErrorCodeInvalidArgument           // bad call parameters
	ErrorCodeValidation                // bad input data
	ErrorCodeDecode                    // JSON or YAML that does not parse
	ErrorCodeNotFound
	ErrorCodeDuplicateKey // unique constraint or id collision
	ErrorCodeDB
	ErrorCodeKernel // raised by filter evaluation
	ErrorCodeCancelled
	ErrorCodePersistence // missing or corrupt saved state
)

var codeNames = [...]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodePanic:           "panic",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeConflict:        "conflict",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeValidation:      "validation",
	ErrorCodeDecode:          "decode",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDuplicateKey:    "duplicate_key",
	ErrorCodeDB:              "db",
	ErrorCodeKernel:          "kernel",
	ErrorCodeCancelled:       "cancelled",
	ErrorCodePersistence:     "persistence",
}

func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// ErrNotFound is returned by single-row lookups that find nothing
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code plus optional field and op labels around a cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig != nil:
		return e.msg + ": " + e.orig.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error { return e.orig }

// Code is the machine classification
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending input, if any
func (e *Error) Field() string { return e.field }

// Op names the operation that failed, if set
func (e *Error) Op() string { return e.op }

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf reports err's code. A bare context.Canceled counts as Cancelled;
// anything else foreign is Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	if stderrs.Is(err, context.Canceled) {
		return ErrorCodeCancelled
	}
	return ErrorCodeUnknown
}

// IsCode is false for nil
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

func IsCancelled(err error) bool { return IsCode(err, ErrorCodeCancelled) }

// WithField returns a copy of err labelled with field. Foreign errors pass
// through unchanged
func WithField(err error, field string) error {
	return relabel(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err labelled with op. Foreign errors pass through
// unchanged
func WithOp(err error, op string) error {
	return relabel(err, func(e *Error) { e.op = op })
}

func relabel(err error, set func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	set(&c)
	return &c
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap classifies orig under code
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Validationf(format string, a ...any) error   { return Newf(ErrorCodeValidation, format, a...) }
func DuplicateKeyf(format string, a ...any) error { return Newf(ErrorCodeDuplicateKey, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Conflictf(format string, a ...any) error     { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
func Persistencef(format string, a ...any) error  { return Newf(ErrorCodePersistence, format, a...) }
func Internalf(format string, a ...any) error     { return Newf(ErrorCodeUnknown, format, a...) }

// Retryable is true for Unavailable errors and for SQLite busy or locked
// failures
func Retryable(err error) bool { return IsRetryable(err) || IsCode(err, ErrorCodeUnavailable) }
