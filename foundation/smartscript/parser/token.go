// File: token.go
// Title: SmartScript Token Model
// Description: Token types and position information produced by the lexer
//              and consumed by the parser.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Initial token model

package parser

import (
	"fmt"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenInteger
	TokenDouble
	TokenIdentifier
	TokenFunction // @name, Value holds the name without '@'
	TokenSymbol   // any other single character inside a tag
	TokenTagOpen  // {$
	TokenTagClose // $}
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "END_OF_INPUT"
	case TokenText:
		return "TEXT"
	case TokenInteger:
		return "INTEGER"
	case TokenDouble:
		return "DOUBLE"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenFunction:
		return "FUNCTION"
	case TokenSymbol:
		return "SYMBOL"
	case TokenTagOpen:
		return "TAG_OPEN"
	case TokenTagClose:
		return "TAG_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Mode selects how the lexer interprets the input
type Mode int

const (
	// ModeText scans literal document text up to the next tag
	ModeText Mode = iota

	// ModeTag scans the operands of a tag
	ModeTag
)

// String returns a string representation of the mode
func (m Mode) String() string {
	if m == ModeTag {
		return "TAG"
	}
	return "TEXT"
}

// Position is a location in the document source
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based, in runes)
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexical token
type Token struct {
	Type   TokenType
	Value  string  // unescaped text, identifier or function name, symbol, number lexeme
	Int    int64   // set for TokenInteger
	Double float64 // set for TokenDouble
	Quoted bool    // TokenText produced from a "..." string inside a tag
	Pos    Position
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "END_OF_INPUT"
	case TokenText:
		if t.Quoted {
			return fmt.Sprintf("TEXT(%q)", t.Value)
		}
		return fmt.Sprintf("TEXT(%s)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
}
