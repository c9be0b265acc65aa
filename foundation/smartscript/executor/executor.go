// File: executor.go
// Title: SmartScript Execution Engine
// Description: Walks a parsed document tree and writes the generated text
//              to a sink. Loop variables live on per-name binding stacks,
//              echo tags are evaluated as postfix programs on an explicit
//              value stack. All mutable state belongs to one Execute call,
//              so a tree may be executed concurrently.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-14 v0.1.0: Initial execution engine
// - 2026-10-16 v0.1.1: Function table injection

package executor

import (
	"fmt"
	"strings"

	"github.com/ahrtr/gocontainer/stack"
	"github.com/edwingeng/deque"

	"github.com/frle10/smartscript/foundation/smartscript/ast"
)

// Sink receives generated output in document order
type Sink interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
}

// Params supplies read-only caller parameters
type Params interface {
	Parameter(name string) (string, bool)
}

// MapParams adapts a plain map to Params
type MapParams map[string]string

// Parameter returns the value stored under name
func (m MapParams) Parameter(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Options configures the execution engine
type Options struct {
	// Functions available to echo tags; empty means DefaultFunctions()
	Functions FunctionTable
}

// Engine executes document trees. It holds no per-execution state.
type Engine struct {
	functions FunctionTable
}

// New creates an execution engine
func New(opts Options) *Engine {
	if opts.Functions.Len() == 0 {
		opts.Functions = DefaultFunctions()
	}
	return &Engine{functions: opts.Functions}
}

// Functions returns the function table used by the engine
func (e *Engine) Functions() FunctionTable {
	return e.functions
}

// Execute runs doc, writing output to sink. params may be nil.
func (e *Engine) Execute(doc *ast.DocumentNode, params Params, sink Sink) error {
	if doc == nil {
		return Errorf(ErrBadArgument, "nil document")
	}
	if sink == nil {
		return Errorf(ErrBadArgument, "nil sink")
	}

	run := &execution{
		functions: e.functions,
		params:    params,
		sink:      sink,
		bindings:  make(map[string]stack.Interface),
		values:    deque.NewDeque(),
	}
	return doc.Accept(run)
}

// ExecuteToString runs doc and returns the generated text
func (e *Engine) ExecuteToString(doc *ast.DocumentNode, params Params) (string, error) {
	var b strings.Builder
	if err := e.Execute(doc, params, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// execution is the state of a single Execute call
type execution struct {
	functions FunctionTable
	params    Params
	sink      Sink
	bindings  map[string]stack.Interface // loop variable name -> Value stack
	values    deque.Deque                // echo evaluation stack
}

func (x *execution) VisitDocument(doc *ast.DocumentNode) error {
	return ast.Walk(x, doc.Children)
}

func (x *execution) VisitText(text *ast.TextNode) error {
	if _, err := x.sink.WriteString(text.Text); err != nil {
		return &ExecutionError{Kind: ErrOutput, Pos: text.Pos, Message: err.Error()}
	}
	return nil
}

func (x *execution) VisitForLoop(loop *ast.ForLoopNode) error {
	current, err := x.bound(loop.Start)
	if err != nil {
		return at(err, loop.Pos)
	}
	end, err := x.bound(loop.End)
	if err != nil {
		return at(err, loop.Pos)
	}
	step := Int(1)
	if loop.Step != nil {
		if step, err = x.bound(loop.Step); err != nil {
			return at(err, loop.Pos)
		}
	}

	direction, err := Compare(step, Int(0))
	if err != nil {
		return at(err, loop.Pos)
	}
	if direction == 0 {
		return &ExecutionError{Kind: ErrZeroStep, Pos: loop.Pos, Message: loop.Variable.Name}
	}

	name := loop.Variable.Name
	bindings, ok := x.bindings[name]
	if !ok {
		bindings = stack.New()
		x.bindings[name] = bindings
	}
	bindings.Push(current)
	defer bindings.Pop()

	for {
		// bounds are numeric, so Compare cannot fail
		past, _ := Compare(current, end)
		if past == direction {
			return nil
		}

		if err := ast.Walk(x, loop.Children); err != nil {
			return err
		}

		next, err := Add(current, step)
		if err != nil {
			return at(err, loop.Pos)
		}
		// stop when the variable no longer moves (overflow, NaN, precision)
		if moved, _ := Compare(next, current); moved != direction {
			return nil
		}
		current = next
		bindings.Pop()
		bindings.Push(current)
	}
}

func (x *execution) VisitEcho(echo *ast.EchoNode) error {
	for _, el := range echo.Elements {
		if err := x.evaluate(el); err != nil {
			x.values = deque.NewDeque()
			return at(err, echo.Pos)
		}
	}

	for !x.values.Empty() {
		v := x.values.PopFront().(Value)
		if _, err := x.sink.WriteString(v.String()); err != nil {
			x.values = deque.NewDeque()
			return &ExecutionError{Kind: ErrOutput, Pos: echo.Pos, Message: err.Error()}
		}
	}
	return nil
}

// evaluate applies one element to the value stack
func (x *execution) evaluate(el ast.Element) error {
	switch el := el.(type) {
	case ast.Operator:
		if x.values.Len() < 2 {
			return Errorf(ErrStackUnderflow, "operator %s needs 2 operands, have %d", el.Symbol, x.values.Len())
		}
		b := x.values.PopBack().(Value)
		a := x.values.PopBack().(Value)
		result, err := Apply(el.Symbol, a, b)
		if err != nil {
			return err
		}
		x.values.PushBack(result)

	case ast.Function:
		fn, ok := x.functions.Lookup(el.Name)
		if !ok {
			return Errorf(ErrUnknownFunction, "@%s", el.Name)
		}
		if x.values.Len() < fn.Arity {
			return Errorf(ErrStackUnderflow, "@%s needs %d operand(s), have %d", el.Name, fn.Arity, x.values.Len())
		}
		args := make([]Value, fn.Arity)
		for i := fn.Arity - 1; i >= 0; i-- {
			args[i] = x.values.PopBack().(Value)
		}
		results, err := fn.Fn(&Call{Name: el.Name, Params: x.params, Sink: x.sink}, args)
		if err != nil {
			return err
		}
		for _, r := range results {
			x.values.PushBack(r)
		}

	default:
		v, err := x.operand(el)
		if err != nil {
			return err
		}
		x.values.PushBack(v)
	}
	return nil
}

// operand resolves a constant or variable element
func (x *execution) operand(el ast.Element) (Value, error) {
	switch el := el.(type) {
	case ast.ConstantInt:
		return Int(el.Value), nil
	case ast.ConstantDouble:
		return Double(el.Value), nil
	case ast.StringLiteral:
		return Str(el.Value), nil
	case ast.Variable:
		return x.lookup(el.Name), nil
	default:
		return Value{}, Errorf(ErrBadArgument, "unexpected element %s", describe(el))
	}
}

// bound resolves a FOR operand to a number
func (x *execution) bound(el ast.Element) (Value, error) {
	v, err := x.operand(el)
	if err != nil {
		return Value{}, err
	}
	return v.Numeric()
}

// lookup resolves a name: innermost loop binding, then caller parameter,
// then Null
func (x *execution) lookup(name string) Value {
	if bindings, ok := x.bindings[name]; ok && !bindings.IsEmpty() {
		return bindings.Peek().(Value)
	}
	if x.params != nil {
		if v, ok := x.params.Parameter(name); ok {
			return Str(v)
		}
	}
	return Null()
}

func describe(el ast.Element) string {
	if el == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T(%s)", el, el)
}
