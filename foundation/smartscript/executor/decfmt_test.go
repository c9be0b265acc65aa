// File: decfmt_test.go
// Title: Decimal Pattern Formatting Unit Tests
// Description: Unit tests for pattern parsing, rounding, grouping and
//              affixes of the decfmt builtin.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-15
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-15 v0.1.0: Initial test suite

package executor

import (
	"errors"
	"math"
	"testing"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		pattern  string
		expected string
	}{
		{"Fixed fraction", Double(0.5), "0.000", "0.500"},
		{"Sine value", Double(0.7071067811865476), "0.000", "0.707"},
		{"Int operand", Int(3), "0.00", "3.00"},
		{"String operand", Str("2.5"), "0.0", "2.5"},
		{"Half even down", Double(0.125), "0.00", "0.12"},
		{"Half even up", Double(0.375), "0.00", "0.38"},
		{"Integer half even", Double(2.5), "0", "2"},
		{"Optional fraction", Double(1.5), "0.##", "1.5"},
		{"Optional fraction dropped", Double(2), "0.##", "2"},
		{"Optional integer", Double(0.5), "#.##", ".5"},
		{"Zero with hashes", Int(0), "#", "0"},
		{"Grouping", Double(1234567.891), "#,##0.00", "1,234,567.89"},
		{"Small grouped", Int(12), "#,##0", "12"},
		{"Minimum integer digits", Int(7), "000", "007"},
		{"Negative", Double(-1.5), "0.0", "-1.5"},
		{"Negative rounds to zero", Double(-0.001), "0.00", "0.00"},
		{"Percent", Double(0.256), "0.0%", "25.6%"},
		{"Prefix and suffix", Double(9.99), "$ 0.00 USD", "$ 9.99 USD"},
		{"Negative subpattern", Int(-5), "0;(0)", "(5)"},
		{"Infinity", Double(math.Inf(1)), "0.0", "∞"},
		{"NaN", Double(math.NaN()), "0.0", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDecimal(tt.value, tt.pattern)
			if err != nil {
				t.Fatalf("FormatDecimal() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("FormatDecimal(%#v, %q) = %q, want %q", tt.value, tt.pattern, got, tt.expected)
			}
		})
	}
}

func TestFormatDecimal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		pattern string
		kind    error
	}{
		{"No digits", Int(1), "abc", ErrBadArgument},
		{"Empty pattern", Int(1), "", ErrBadArgument},
		{"Two decimal points", Int(1), "0.0.0", ErrBadArgument},
		{"Zero after hash in fraction", Int(1), "0.#0", ErrBadArgument},
		{"Trailing grouping", Int(1), "#,", ErrBadArgument},
		{"Non-numeric value", Str("x"), "0.0", ErrNonNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FormatDecimal(tt.value, tt.pattern); !errors.Is(err, tt.kind) {
				t.Errorf("FormatDecimal() error = %v, want %v", err, tt.kind)
			}
		})
	}
}
