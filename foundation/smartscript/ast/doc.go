// File: doc.go
// Title: SmartScript Document Tree Package Documentation
// Description: Package overview for the document tree node types and the
//              visitors that traverse them.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Initial package documentation

/*
Package ast defines the document tree produced by the SmartScript parser.

A document is a DocumentNode whose children are TextNode, ForLoopNode and
EchoNode values. FOR loops nest; echo tags hold a flat list of Elements
that the executor evaluates as a postfix program.

Trees are immutable once parsed. Source renders a tree back to template
text, Dump produces a debugging outline, and Equal compares two trees
while ignoring source positions.
*/
package ast
