// File: elements.go
// Title: SmartScript Echo Elements
// Description: Closed set of operand/operator variants that make up echo
//              tags and FOR-loop bounds. Elements are immutable values and
//              render back to their source form through String().
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Initial element variants

package ast

import (
	"strconv"
	"strings"
)

// Element is one operand or operator of an echo tag. The set of
// implementations is closed: ConstantInt, ConstantDouble, StringLiteral,
// Variable, Function and Operator.
type Element interface {
	// String returns the element in template syntax
	String() string

	element()
}

// ConstantInt is an integer literal
type ConstantInt struct {
	Value int64
}

// ConstantDouble is a floating point literal
type ConstantDouble struct {
	Value float64
}

// StringLiteral is a quoted string, stored unescaped
type StringLiteral struct {
	Value string
}

// Variable references a loop binding or a caller parameter
type Variable struct {
	Name string
}

// Function references a builtin by name (written @name)
type Function struct {
	Name string
}

// Operator is one of + - * / ^
type Operator struct {
	Symbol string
}

func (ConstantInt) element()    {}
func (ConstantDouble) element() {}
func (StringLiteral) element()  {}
func (Variable) element()       {}
func (Function) element()       {}
func (Operator) element()       {}

func (e ConstantInt) String() string {
	return strconv.FormatInt(e.Value, 10)
}

// String always keeps a fractional part so the literal lexes as a double again
func (e ConstantDouble) String() string {
	s := strconv.FormatFloat(e.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (e StringLiteral) String() string {
	return QuoteString(e.Value)
}

func (e Variable) String() string {
	return e.Name
}

func (e Function) String() string {
	return "@" + e.Name
}

func (e Operator) String() string {
	return e.Symbol
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
)

// QuoteString renders s as a quoted tag string with escapes applied
func QuoteString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// EscapeText escapes literal document text so it never opens a tag
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
