// File: errors.go
// Title: SmartScript Lexer and Parser Errors
// Description: Error types for the lexing and parsing phases. Every failure
//              is fatal to the document being processed; the Kind sentinels
//              allow classification with errors.Is.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-12 v0.1.0: Lexer errors
// - 2026-10-13 v0.1.1: Parser errors

package parser

import (
	"errors"
	"fmt"
)

// Lexer error kinds
var (
	ErrAlreadyAtEnd         = errors.New("next token requested after end of input")
	ErrInvalidEscape        = errors.New("invalid escape sequence")
	ErrUnterminatedString   = errors.New("unterminated string")
	ErrMalformedNumber      = errors.New("malformed number")
	ErrUnsupportedCharacter = errors.New("unsupported character")
)

// Parser error kinds
var (
	ErrUnsupportedTag  = errors.New("unsupported tag")
	ErrForArguments    = errors.New("invalid FOR arguments")
	ErrUnbalancedEnd   = errors.New("END without open FOR")
	ErrUnclosedFor     = errors.New("FOR without matching END")
	ErrNestedTag       = errors.New("tag opened inside a tag")
	ErrUnexpectedEOF   = errors.New("end of input inside a tag")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrInvalidElement  = errors.New("invalid echo element")
	ErrInputTooLong    = errors.New("input exceeds maximum length")
)

// LexError is a fatal lexical error at a source position
type LexError struct {
	Kind    error
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lex error at %s: %v", e.Pos, e.Kind)
	}
	return fmt.Sprintf("lex error at %s: %v: %s", e.Pos, e.Kind, e.Message)
}

// Unwrap exposes the kind for errors.Is
func (e *LexError) Unwrap() error {
	return e.Kind
}

// ParseError is a fatal syntax error at a source position
type ParseError struct {
	Kind    error
	Pos     Position
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("parse error at %s: %v (near %s)", e.Pos, e.Kind, e.Token)
	}
	return fmt.Sprintf("parse error at %s: %v: %s (near %s)", e.Pos, e.Kind, e.Message, e.Token)
}

// Unwrap exposes the kind for errors.Is
func (e *ParseError) Unwrap() error {
	return e.Kind
}
