// File: errors.go
// Title: SmartScript Execution Errors
// Description: Error kinds raised while executing a document tree. Every
//              failure is an *ExecutionError whose Kind is one of the
//              sentinels below, so callers can branch with errors.Is.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial error kinds

package executor

import (
	"errors"
	"fmt"

	"github.com/frle10/smartscript/foundation/smartscript/ast"
)

var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrStackUnderflow  = errors.New("evaluation stack underflow")
	ErrNonNumeric      = errors.New("non-numeric operand")
	ErrDivisionByZero  = errors.New("integer division by zero")
	ErrZeroStep        = errors.New("FOR step is zero")
	ErrUnsupportedSink = errors.New("sink does not support operation")
	ErrOutput          = errors.New("output write failed")
	ErrBadArgument     = errors.New("bad function argument")
	ErrUnknownOperator = errors.New("unknown operator")
)

// ExecutionError is a fatal error raised while executing a document. The
// tree is left untouched, so the document may be executed again.
type ExecutionError struct {
	Kind    error
	Pos     ast.Position
	Message string
}

func (e *ExecutionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("execution error at %s: %v", e.Pos, e.Kind)
	}
	return fmt.Sprintf("execution error at %s: %v: %s", e.Pos, e.Kind, e.Message)
}

// Unwrap exposes the kind for errors.Is
func (e *ExecutionError) Unwrap() error {
	return e.Kind
}

// Errorf creates an ExecutionError without position; the engine fills in
// the position of the tag being executed. Custom functions should report
// failures through it.
func Errorf(kind error, format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// at attaches pos to err, converting foreign errors into ErrBadArgument
func at(err error, pos ast.Position) error {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return &ExecutionError{Kind: ErrBadArgument, Pos: pos, Message: err.Error()}
	}
	if execErr.Pos == (ast.Position{}) {
		execErr.Pos = pos
	}
	return execErr
}
