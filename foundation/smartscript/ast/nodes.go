// File: nodes.go
// Title: SmartScript Document Tree
// Description: Node types of the parsed document. The tree is built once by
//              the parser and is read-only afterwards, so one tree may be
//              executed concurrently; all runtime state lives in the
//              executor.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-12 v0.1.0: Initial node definitions
// - 2026-10-13 v0.1.1: Source positions on nodes

package ast

import (
	"fmt"
)

// Position represents a position in the document source
type Position struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
	Offset int // Byte offset (0-based)
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is a document tree node. Implementations: *DocumentNode, *TextNode,
// *ForLoopNode and *EchoNode.
type Node interface {
	// Accept dispatches to the matching Visitor method
	Accept(v Visitor) error

	// Position returns the source position of the node
	Position() Position

	node()
}

// Container is a node that owns child nodes
type Container interface {
	Node

	// AddChild appends a child; only the parser calls it
	AddChild(child Node)
}

// DocumentNode is the root of every parsed document
type DocumentNode struct {
	Children []Node
}

// TextNode is literal document text with escapes already resolved
type TextNode struct {
	Text string
	Pos  Position
}

// ForLoopNode repeats its children while Variable runs from Start to End
type ForLoopNode struct {
	Variable Variable
	Start    Element
	End      Element
	Step     Element // nil when the tag has no step operand
	Children []Node
	Pos      Position
}

// EchoNode evaluates its elements and writes the results
type EchoNode struct {
	Elements []Element
	Pos      Position
}

func (*DocumentNode) node() {}
func (*TextNode) node()     {}
func (*ForLoopNode) node()  {}
func (*EchoNode) node()     {}

func (n *DocumentNode) Accept(v Visitor) error { return v.VisitDocument(n) }
func (n *TextNode) Accept(v Visitor) error     { return v.VisitText(n) }
func (n *ForLoopNode) Accept(v Visitor) error  { return v.VisitForLoop(n) }
func (n *EchoNode) Accept(v Visitor) error     { return v.VisitEcho(n) }

func (n *DocumentNode) Position() Position { return Position{Line: 1, Column: 1} }
func (n *TextNode) Position() Position     { return n.Pos }
func (n *ForLoopNode) Position() Position  { return n.Pos }
func (n *EchoNode) Position() Position     { return n.Pos }

// AddChild appends a top-level node
func (n *DocumentNode) AddChild(child Node) {
	n.Children = append(n.Children, child)
}

// AddChild appends a node to the loop body
func (n *ForLoopNode) AddChild(child Node) {
	n.Children = append(n.Children, child)
}

// Operands returns start, end and, when present, step
func (n *ForLoopNode) Operands() []Element {
	if n.Step == nil {
		return []Element{n.Start, n.End}
	}
	return []Element{n.Start, n.End, n.Step}
}
