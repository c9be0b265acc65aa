// File: value.go
// Title: SmartScript Runtime Values
// Description: Dynamically typed runtime value (Null, Int, Double, Str) and
//              the numeric promotion rules shared by loop stepping and echo
//              operators. All arithmetic is total: failures are returned as
//              errors, never panics.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-14 v0.1.0: Initial value type and promotion
// - 2026-10-15 v0.1.1: Integer exponentiation

package executor

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindString:
		return "Str"
	default:
		return "Unknown"
	}
}

// Value is an immutable runtime value. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	d    float64
	s    string
}

// Int returns an integer value
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Double returns a floating point value
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }

// Str returns a string value
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Null returns the null value
func Null() Value { return Value{} }

// Kind returns the variant of v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the textual representation written to the output
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return formatDouble(v.d)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// GoString is used by %#v in test failures
func (v Value) GoString() string {
	if v.kind == KindString {
		return "Str(" + strconv.Quote(v.s) + ")"
	}
	return v.kind.String() + "(" + v.String() + ")"
}

// Numeric coerces v to Int or Double: Null becomes Int(0); a Str holding
// "." or "e"/"E" parses as Double, otherwise as Int.
func (v Value) Numeric() (Value, error) {
	switch v.kind {
	case KindInt, KindDouble:
		return v, nil
	case KindNull:
		return Int(0), nil
	}

	if strings.ContainsAny(v.s, ".eE") {
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return Value{}, Errorf(ErrNonNumeric, "%q is not a double", v.s)
		}
		return Double(f), nil
	}
	i, err := strconv.ParseInt(v.s, 10, 64)
	if err != nil {
		return Value{}, Errorf(ErrNonNumeric, "%q is not an integer", v.s)
	}
	return Int(i), nil
}

// Float returns the numeric value of v as float64
func (v Value) Float() (float64, error) {
	n, err := v.Numeric()
	if err != nil {
		return 0, err
	}
	if n.kind == KindInt {
		return float64(n.i), nil
	}
	return n.d, nil
}

// promote coerces both operands and reports whether the operation runs in
// floating point
func promote(a, b Value) (Value, Value, bool, error) {
	x, err := a.Numeric()
	if err != nil {
		return x, x, false, err
	}
	y, err := b.Numeric()
	if err != nil {
		return y, y, false, err
	}
	if x.kind == KindInt && y.kind == KindInt {
		return x, y, false, nil
	}
	return Double(x.asFloat()), Double(y.asFloat()), true, nil
}

// asFloat assumes v is numeric
func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.d
}

// Add returns a + b
func Add(a, b Value) (Value, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return Value{}, err
	}
	if double {
		return Double(x.d + y.d), nil
	}
	return Int(x.i + y.i), nil
}

// Sub returns a - b
func Sub(a, b Value) (Value, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return Value{}, err
	}
	if double {
		return Double(x.d - y.d), nil
	}
	return Int(x.i - y.i), nil
}

// Mul returns a * b
func Mul(a, b Value) (Value, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return Value{}, err
	}
	if double {
		return Double(x.d * y.d), nil
	}
	return Int(x.i * y.i), nil
}

// Div returns a / b. Integer division truncates toward zero and fails on
// a zero divisor; floating point division follows IEEE 754.
func Div(a, b Value) (Value, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return Value{}, err
	}
	if double {
		return Double(x.d / y.d), nil
	}
	if y.i == 0 {
		return Value{}, Errorf(ErrDivisionByZero, "%d / 0", x.i)
	}
	return Int(x.i / y.i), nil
}

// Pow returns a raised to b. An Int base with a non-negative Int exponent
// stays Int (wrapping on overflow); everything else is Double.
func Pow(a, b Value) (Value, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return Value{}, err
	}
	if double {
		return Double(math.Pow(x.d, y.d)), nil
	}
	if y.i < 0 {
		return Double(math.Pow(float64(x.i), float64(y.i))), nil
	}

	result, base, exp := int64(1), x.i, y.i
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return Int(result), nil
}

// Compare returns -1, 0 or +1 after promotion. Null equals Null. NaN
// orders before every other double and equals itself.
func Compare(a, b Value) (int, error) {
	x, y, double, err := promote(a, b)
	if err != nil {
		return 0, err
	}
	if double {
		return cmp.Compare(x.d, y.d), nil
	}
	return cmp.Compare(x.i, y.i), nil
}

// Apply runs the binary operator symbol on a and b
func Apply(symbol string, a, b Value) (Value, error) {
	switch symbol {
	case "+":
		return Add(a, b)
	case "-":
		return Sub(a, b)
	case "*":
		return Mul(a, b)
	case "/":
		return Div(a, b)
	case "^":
		return Pow(a, b)
	default:
		return Value{}, Errorf(ErrUnknownOperator, "%q", symbol)
	}
}

// formatDouble renders f with at least one fractional digit, switching to
// scientific notation ("1.0E7") outside [1e-3, 1e7).
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(e)
}
