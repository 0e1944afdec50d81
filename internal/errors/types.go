package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure so callers can pick an exit path or an
// HTTP status without matching on messages.
type ErrorType string

const (
	// ErrorTypeValidation marks bad caller input: a missing URL, a malformed
	// -q pair or a request body that is not an object.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeCodec marks a query string a codec could not read or a value
	// it could not write.
	ErrorTypeCodec    ErrorType = "codec"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeMCP      ErrorType = "mcp"
	ErrorTypeGateway  ErrorType = "gateway"
)

// Error is the error type shared by the codecs, the CLI and the servers.
// Context carries the offending flag, field or query string for display.
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type, so
// errors.Is(err, &Error{Type: ErrorTypeCodec}) matches any codec failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Type == t.Type
}

// WithContext records key on e and returns e for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message, Context: make(map[string]any)}
}

func Newf(errType ErrorType, format string, args ...any) *Error {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap attaches errType and message to err. The original error stays
// reachable through errors.Unwrap.
func Wrap(err error, errType ErrorType, message string) *Error {
	e := New(errType, message)
	e.Cause = err
	return e
}

func Wrapf(err error, errType ErrorType, format string, args ...any) *Error {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

func as(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether the first *Error in err's chain has errType.
func IsType(err error, errType ErrorType) bool {
	e, ok := as(err)
	return ok && e.Type == errType
}

// GetType returns the type of the first *Error in err's chain, or
// ErrorTypeInternal for errors that never passed through this package.
func GetType(err error) ErrorType {
	if e, ok := as(err); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

// GetContext returns the context of the first *Error in err's chain.
func GetContext(err error) map[string]any {
	if e, ok := as(err); ok {
		return e.Context
	}
	return nil
}
