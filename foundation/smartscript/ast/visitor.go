// File: visitor.go
// Title: SmartScript Tree Visitors
// Description: Visitor interface for document trees plus the visitors the
//              engine ships with: the source printer used by the formatter,
//              the indented dump used by the tree command, and a node
//              statistics collector.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-12 v0.1.0: Initial visitor pattern implementation
// - 2026-10-14 v0.1.1: Stats collector and structural equality

package ast

import (
	"fmt"
	"strings"
)

// Visitor receives one call per node. Container visits are responsible for
// descending into children, usually through Walk.
type Visitor interface {
	VisitDocument(doc *DocumentNode) error
	VisitText(text *TextNode) error
	VisitForLoop(loop *ForLoopNode) error
	VisitEcho(echo *EchoNode) error
}

// Walk visits nodes in order and stops at the first error
func Walk(v Visitor, nodes []Node) error {
	for _, n := range nodes {
		if err := n.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// Inspect traverses the tree depth-first. Children of a node are skipped
// when fn returns false for it.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	var children []Node
	switch n := node.(type) {
	case *DocumentNode:
		children = n.Children
	case *ForLoopNode:
		children = n.Children
	}
	for _, c := range children {
		Inspect(c, fn)
	}
}

// sourceVisitor renders a tree back into template syntax
type sourceVisitor struct {
	buffer strings.Builder
}

// Source renders node as template text. Parsing the result yields a tree
// equal to node.
func Source(node Node) string {
	sv := &sourceVisitor{}
	_ = node.Accept(sv)
	return sv.buffer.String()
}

func (sv *sourceVisitor) VisitDocument(doc *DocumentNode) error {
	return Walk(sv, doc.Children)
}

func (sv *sourceVisitor) VisitText(text *TextNode) error {
	sv.buffer.WriteString(EscapeText(text.Text))
	return nil
}

func (sv *sourceVisitor) VisitForLoop(loop *ForLoopNode) error {
	sv.buffer.WriteString("{$ FOR ")
	sv.buffer.WriteString(loop.Variable.String())
	for _, op := range loop.Operands() {
		sv.buffer.WriteByte(' ')
		sv.buffer.WriteString(op.String())
	}
	sv.buffer.WriteString(" $}")
	if err := Walk(sv, loop.Children); err != nil {
		return err
	}
	sv.buffer.WriteString("{$END$}")
	return nil
}

func (sv *sourceVisitor) VisitEcho(echo *EchoNode) error {
	sv.buffer.WriteString("{$=")
	for _, el := range echo.Elements {
		sv.buffer.WriteByte(' ')
		sv.buffer.WriteString(el.String())
	}
	sv.buffer.WriteString(" $}")
	return nil
}

// dumpVisitor writes one indented line per node
type dumpVisitor struct {
	buffer strings.Builder
	indent int
}

// Dump returns an indented, human readable outline of the tree
func Dump(node Node) string {
	dv := &dumpVisitor{}
	_ = node.Accept(dv)
	return dv.buffer.String()
}

func (dv *dumpVisitor) line(format string, args ...interface{}) {
	dv.buffer.WriteString(strings.Repeat("  ", dv.indent))
	dv.buffer.WriteString(fmt.Sprintf(format, args...))
	dv.buffer.WriteByte('\n')
}

func (dv *dumpVisitor) VisitDocument(doc *DocumentNode) error {
	dv.line("Document")
	dv.indent++
	defer func() { dv.indent-- }()
	return Walk(dv, doc.Children)
}

func (dv *dumpVisitor) VisitText(text *TextNode) error {
	dv.line("Text %q", text.Text)
	return nil
}

func (dv *dumpVisitor) VisitForLoop(loop *ForLoopNode) error {
	step := "-"
	if loop.Step != nil {
		step = loop.Step.String()
	}
	dv.line("For %s start=%s end=%s step=%s (%s)",
		loop.Variable.Name, loop.Start, loop.End, step, loop.Pos)
	dv.indent++
	defer func() { dv.indent-- }()
	return Walk(dv, loop.Children)
}

func (dv *dumpVisitor) VisitEcho(echo *EchoNode) error {
	parts := make([]string, len(echo.Elements))
	for i, el := range echo.Elements {
		parts[i] = el.String()
	}
	dv.line("Echo [%s] (%s)", strings.Join(parts, " "), echo.Pos)
	return nil
}

// Stats counts the nodes of a tree
type Stats struct {
	Text     int
	ForLoops int
	Echoes   int
	Elements int
	MaxDepth int
}

// Total returns the number of non-root nodes
func (s Stats) Total() int {
	return s.Text + s.ForLoops + s.Echoes
}

// Collect gathers statistics for the tree rooted at node
func Collect(node Node) Stats {
	var s Stats
	collect(node, 0, &s)
	return s
}

// depth is the FOR nesting level of node's parent
func collect(node Node, depth int, s *Stats) {
	switch n := node.(type) {
	case *DocumentNode:
		for _, c := range n.Children {
			collect(c, depth, s)
		}
	case *TextNode:
		s.Text++
	case *EchoNode:
		s.Echoes++
		s.Elements += len(n.Elements)
	case *ForLoopNode:
		s.ForLoops++
		if depth+1 > s.MaxDepth {
			s.MaxDepth = depth + 1
		}
		for _, c := range n.Children {
			collect(c, depth+1, s)
		}
	}
}

// Equal reports whether two trees have the same structure and content.
// Source positions are ignored.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *DocumentNode:
		y, ok := b.(*DocumentNode)
		return ok && equalNodes(x.Children, y.Children)
	case *TextNode:
		y, ok := b.(*TextNode)
		return ok && x.Text == y.Text
	case *EchoNode:
		y, ok := b.(*EchoNode)
		return ok && equalElements(x.Elements, y.Elements)
	case *ForLoopNode:
		y, ok := b.(*ForLoopNode)
		return ok &&
			x.Variable == y.Variable &&
			x.Start == y.Start &&
			x.End == y.End &&
			x.Step == y.Step &&
			equalNodes(x.Children, y.Children)
	}
	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalElements(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
