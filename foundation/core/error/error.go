// File: error.go
// Title: Core Error Implementation
// Description: Structured error carrying a code, a severity, the failed
//              operation and free-form details while staying compatible with
//              errors.Is / errors.As through Unwrap.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-12 v0.1.0: Initial implementation
// - 2026-10-15 v0.1.1: JSON rendering for server error responses

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Error represents a structured error with context, codes, and metadata
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	operation string
	timestamp time.Time
	details   map[string]interface{}
}

// New creates a new Error with the given message
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context. Code and severity
// are inherited when err already is an *Error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := New(message)
	wrapped.cause = err

	var inner *Error
	if errors.As(err, &inner) {
		wrapped.code = inner.code
		wrapped.severity = inner.severity
		wrapped.operation = inner.operation
		for k, v := range inner.details {
			wrapped.details[k] = v
		}
	}
	return wrapped
}

// Error implements the standard error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

// Unwrap returns the underlying cause for error unwrapping
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the error code
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	return e
}

// WithSeverity sets the severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithOperation records the operation that failed
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// WithDetail attaches a key/value detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Severity returns the severity level
func (e *Error) Severity() Severity { return e.severity }

// Operation returns the operation that failed
func (e *Error) Operation() string { return e.operation }

// Message returns the message without the cause
func (e *Error) Message() string { return e.message }

// Timestamp returns when the error was created
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Details returns a copy of the attached details
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the error for API responses
func (e *Error) MarshalJSON() ([]byte, error) {
	payload := map[string]interface{}{
		"code":     e.code,
		"severity": e.severity.String(),
		"message":  e.Error(),
	}
	if e.operation != "" {
		payload["operation"] = e.operation
	}
	if len(e.details) > 0 {
		payload["details"] = e.details
	}
	return json.Marshal(payload)
}

// GetCode returns the code of the first *Error in err's chain
func GetCode(err error) Code {
	var ssErr *Error
	if errors.As(err, &ssErr) {
		return ssErr.code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}
