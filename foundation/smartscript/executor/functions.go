// File: functions.go
// Title: SmartScript Builtin Functions
// Description: Immutable table of functions callable from echo tags as
//              @name. A function pops a fixed number of operands (in push
//              order) and returns the values to push back. Functions that
//              touch the output sink use optional capability interfaces.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-15
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-15 v0.1.0: Math, formatting and stack builtins
// - 2026-10-16 v0.1.1: Parameter builtins and sink capabilities

package executor

import (
	"math"
	"sort"
)

// Call carries the execution state visible to a function
type Call struct {
	Name   string
	Params Params
	Sink   Sink
}

// Builtin evaluates a function. args holds exactly Arity values, the
// earliest pushed first.
type Builtin func(call *Call, args []Value) ([]Value, error)

// Function describes one entry of a FunctionTable
type Function struct {
	Arity int
	Fn    Builtin
}

// MimeTypeSetter is implemented by sinks that accept a content type
type MimeTypeSetter interface {
	SetMimeType(mime string) error
}

// ParameterStore is implemented by sinks that keep persistent and
// temporary parameters
type ParameterStore interface {
	PersistentParameter(name string) (string, bool)
	SetPersistentParameter(name, value string) error
	RemovePersistentParameter(name string)

	TemporaryParameter(name string) (string, bool)
	SetTemporaryParameter(name, value string) error
	RemoveTemporaryParameter(name string)
}

// FunctionTable maps names to functions. It is never modified after
// construction and is safe for concurrent use.
type FunctionTable struct {
	funcs map[string]Function
}

var defaultFunctions = FunctionTable{funcs: map[string]Function{
	"sin":         {Arity: 1, Fn: unaryDouble(func(x float64) float64 { return math.Sin(x * math.Pi / 180) })},
	"cos":         {Arity: 1, Fn: unaryDouble(func(x float64) float64 { return math.Cos(x * math.Pi / 180) })},
	"sqrt":        {Arity: 1, Fn: unaryDouble(math.Sqrt)},
	"abs":         {Arity: 1, Fn: absFn},
	"decfmt":      {Arity: 2, Fn: decfmtFn},
	"dup":         {Arity: 1, Fn: dupFn},
	"swap":        {Arity: 2, Fn: swapFn},
	"setMimeType": {Arity: 1, Fn: setMimeTypeFn},
	"paramGet":    {Arity: 2, Fn: paramGetFn},
	"pparamGet":   {Arity: 2, Fn: storeGet(ParameterStore.PersistentParameter)},
	"pparamSet":   {Arity: 2, Fn: storeSet(ParameterStore.SetPersistentParameter)},
	"pparamDel":   {Arity: 1, Fn: storeDel(ParameterStore.RemovePersistentParameter)},
	"tparamGet":   {Arity: 2, Fn: storeGet(ParameterStore.TemporaryParameter)},
	"tparamSet":   {Arity: 2, Fn: storeSet(ParameterStore.SetTemporaryParameter)},
	"tparamDel":   {Arity: 1, Fn: storeDel(ParameterStore.RemoveTemporaryParameter)},
}}

// DefaultFunctions returns the builtin function table
func DefaultFunctions() FunctionTable {
	return defaultFunctions
}

// With returns a copy of t with name bound to fn
func (t FunctionTable) With(name string, fn Function) FunctionTable {
	funcs := make(map[string]Function, len(t.funcs)+1)
	for k, v := range t.funcs {
		funcs[k] = v
	}
	funcs[name] = fn
	return FunctionTable{funcs: funcs}
}

// Lookup returns the function registered under name
func (t FunctionTable) Lookup(name string) (Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Names returns the registered names in sorted order
func (t FunctionTable) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions
func (t FunctionTable) Len() int {
	return len(t.funcs)
}

func unaryDouble(fn func(float64) float64) Builtin {
	return func(_ *Call, args []Value) ([]Value, error) {
		x, err := args[0].Float()
		if err != nil {
			return nil, err
		}
		return []Value{Double(fn(x))}, nil
	}
}

func absFn(_ *Call, args []Value) ([]Value, error) {
	n, err := args[0].Numeric()
	if err != nil {
		return nil, err
	}
	if n.Kind() == KindDouble {
		return []Value{Double(math.Abs(n.d))}, nil
	}
	if n.i < 0 {
		return []Value{Int(-n.i)}, nil
	}
	return []Value{n}, nil
}

func decfmtFn(_ *Call, args []Value) ([]Value, error) {
	s, err := FormatDecimal(args[0], args[1].String())
	if err != nil {
		return nil, err
	}
	return []Value{Str(s)}, nil
}

func dupFn(_ *Call, args []Value) ([]Value, error) {
	return []Value{args[0], args[0]}, nil
}

func swapFn(_ *Call, args []Value) ([]Value, error) {
	return []Value{args[1], args[0]}, nil
}

func setMimeTypeFn(call *Call, args []Value) ([]Value, error) {
	setter, ok := call.Sink.(MimeTypeSetter)
	if !ok {
		return nil, Errorf(ErrUnsupportedSink, "@%s needs a sink with a mime type", call.Name)
	}
	if err := setter.SetMimeType(args[0].String()); err != nil {
		return nil, Errorf(ErrOutput, "@%s: %v", call.Name, err)
	}
	return nil, nil
}

func paramGetFn(call *Call, args []Value) ([]Value, error) {
	if call.Params != nil {
		if v, ok := call.Params.Parameter(args[0].String()); ok {
			return []Value{Str(v)}, nil
		}
	}
	return []Value{args[1]}, nil
}

func parameterStore(call *Call) (ParameterStore, error) {
	store, ok := call.Sink.(ParameterStore)
	if !ok {
		return nil, Errorf(ErrUnsupportedSink, "@%s needs a sink with parameter storage", call.Name)
	}
	return store, nil
}

// storeGet pops (name, default)
func storeGet(get func(ParameterStore, string) (string, bool)) Builtin {
	return func(call *Call, args []Value) ([]Value, error) {
		store, err := parameterStore(call)
		if err != nil {
			return nil, err
		}
		if v, ok := get(store, args[0].String()); ok {
			return []Value{Str(v)}, nil
		}
		return []Value{args[1]}, nil
	}
}

// storeSet pops (value, name)
func storeSet(set func(ParameterStore, string, string) error) Builtin {
	return func(call *Call, args []Value) ([]Value, error) {
		store, err := parameterStore(call)
		if err != nil {
			return nil, err
		}
		if err := set(store, args[1].String(), args[0].String()); err != nil {
			return nil, Errorf(ErrOutput, "@%s: %v", call.Name, err)
		}
		return nil, nil
	}
}

// storeDel pops (name)
func storeDel(del func(ParameterStore, string)) Builtin {
	return func(call *Call, args []Value) ([]Value, error) {
		store, err := parameterStore(call)
		if err != nil {
			return nil, err
		}
		del(store, args[0].String())
		return nil, nil
	}
}
