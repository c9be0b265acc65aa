// Package executor runs SmartScript document trees.
//
// Values are dynamically typed (Null, Int, Double, Str). Operators and
// loop stepping promote both operands: Null counts as Int(0), strings are
// parsed as numbers, and a Double on either side makes the result Double.
// Builtin functions are looked up in an immutable FunctionTable that is
// injected through Options.
package executor
