// File: doc.go
// Title: SmartScript Package Documentation
// Description: Package overview and usage examples for the SmartScript
//              templating engine.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial package documentation

/*
Package smartscript is a small templating engine for documents that mix
literal text with {$ ... $} tags.

Three tags exist:

	{$ FOR i 1 10 2 $} ... {$END$}   loop i from 1 to 10 with step 2
	{$= i i * "0.00" @decfmt $}      evaluate a postfix expression, write the results

Text outside tags is copied verbatim; "\{" and "\\" escape a brace and a
backslash. Inside echo tags values are pushed on a stack, operators (+ - *
/ ^) and @functions pop their operands, and whatever remains is written in
push order.

Basic usage:

	engine, err := smartscript.NewEngine()
	if err != nil {
		return err
	}

	doc, err := engine.Parse(src)
	if err != nil {
		return err // SCRIPT_LEX, SCRIPT_PARSE or SCRIPT_INPUT
	}

	var out strings.Builder
	err = engine.Execute(ctx, doc, executor.MapParams{"name": "World"}, &out)

A parsed document is immutable and can be executed concurrently with
different parameters and sinks. Sinks that also implement
executor.MimeTypeSetter or executor.ParameterStore, such as
request.RequestContext, unlock @setMimeType and the persistent and
temporary parameter builtins.
*/
package smartscript
