// File: smartscript.go
// Title: SmartScript Engine
// Description: High-level API that ties parser and executor together:
//              input validation, parsing, execution with timing and
//              structured logging, and translation of phase errors into
//              coded core errors.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-16 v0.1.0: Initial engine
// - 2026-10-17 v0.1.1: Execution IDs from context

package smartscript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	sserror "github.com/frle10/smartscript/foundation/core/error"
	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/frle10/smartscript/foundation/smartscript/executor"
	"github.com/frle10/smartscript/foundation/smartscript/parser"
)

// DefaultMaxDocumentLength is the input limit applied when none is configured
const DefaultMaxDocumentLength = 1 << 20

// Engine parses and executes SmartScript documents. It is safe for
// concurrent use.
type Engine struct {
	parser   *parser.Parser
	executor *executor.Engine
	logger   *sslog.Logger
	options  Options
}

// Options configures the engine
type Options struct {
	// Logger for engine operations (optional, defaults to default logger)
	Logger *sslog.Logger

	// MaxDocumentLength limits document size in bytes (default: 1 MiB)
	MaxDocumentLength int

	// Functions available to echo tags (default: executor.DefaultFunctions())
	Functions executor.FunctionTable
}

type executionIDKey struct{}

// WithExecutionID returns a context carrying id; Execute uses it instead
// of generating one
func WithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, executionIDKey{}, id)
}

// ExecutionIDFromContext returns the execution ID stored in ctx
func ExecutionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(executionIDKey{}).(string)
	return id, ok && id != ""
}

// NewEngine creates an engine with the specified options
func NewEngine(opts ...Options) (*Engine, error) {
	options := Options{
		Logger:            sslog.GetDefault(),
		MaxDocumentLength: DefaultMaxDocumentLength,
		Functions:         executor.DefaultFunctions(),
	}

	if len(opts) > 0 {
		provided := opts[0]
		if provided.Logger != nil {
			options.Logger = provided.Logger
		}
		if provided.MaxDocumentLength < 0 {
			return nil, fmt.Errorf("invalid max document length %d", provided.MaxDocumentLength)
		}
		if provided.MaxDocumentLength > 0 {
			options.MaxDocumentLength = provided.MaxDocumentLength
		}
		if provided.Functions.Len() > 0 {
			options.Functions = provided.Functions
		}
	}

	logger := options.Logger.WithField("component", "smartscript-engine")

	engine := &Engine{
		parser:   parser.New(parser.Options{MaxInputLength: options.MaxDocumentLength}),
		executor: executor.New(executor.Options{Functions: options.Functions}),
		logger:   logger,
		options:  options,
	}

	logger.Debug("SmartScript engine initialized", sslog.Fields{
		"maxDocumentLength": options.MaxDocumentLength,
		"functions":         options.Functions.Len(),
	})

	return engine, nil
}

// Parse validates and parses a document
func (e *Engine) Parse(src string) (*ast.DocumentNode, error) {
	if err := e.validateInput(src); err != nil {
		return nil, err
	}

	doc, err := e.parser.Parse(src)
	if err != nil {
		return nil, e.wrapParseError(err)
	}
	return doc, nil
}

// Validate reports whether src is a well-formed document
func (e *Engine) Validate(src string) error {
	_, err := e.Parse(src)
	return err
}

// Execute runs a parsed document against params, writing to sink. params
// may be nil.
func (e *Engine) Execute(ctx context.Context, doc *ast.DocumentNode, params executor.Params, sink executor.Sink) error {
	id, ok := ExecutionIDFromContext(ctx)
	if !ok {
		id = uuid.New().String()
	}
	logger := e.logger.WithExecutionID(id)

	timer := logger.StartTimer("smartscript_execution")
	defer timer.Stop()

	if err := ctx.Err(); err != nil {
		timer.StopWithError(err)
		return sserror.Wrap(err, "execution not started").
			WithCode(sserror.CodeScriptExecution).
			WithOperation("execute")
	}

	if logger.IsLevelEnabled(sslog.LevelDebug) && doc != nil {
		stats := ast.Collect(doc)
		logger.Debug("Executing SmartScript document", sslog.Fields{
			"nodes":    stats.Total(),
			"forLoops": stats.ForLoops,
			"maxDepth": stats.MaxDepth,
		})
	}

	if err := e.executor.Execute(doc, params, sink); err != nil {
		timer.StopWithError(err)
		logger.WarnWithErr("SmartScript execution failed", err)
		return e.wrapExecutionError(err, id)
	}
	return nil
}

// Render parses and executes src in one step
func (e *Engine) Render(ctx context.Context, src string, params executor.Params, sink executor.Sink) error {
	doc, err := e.Parse(src)
	if err != nil {
		e.logger.WarnWithErr("SmartScript parsing failed", err)
		return err
	}
	return e.Execute(ctx, doc, params, sink)
}

// RenderString renders src with params and returns the output
func (e *Engine) RenderString(ctx context.Context, src string, params map[string]string) (string, error) {
	var b strings.Builder
	if err := e.Render(ctx, src, executor.MapParams(params), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Functions returns the function table used by the engine
func (e *Engine) Functions() executor.FunctionTable {
	return e.options.Functions
}

// MaxDocumentLength returns the configured input limit
func (e *Engine) MaxDocumentLength() int {
	return e.options.MaxDocumentLength
}

// validateInput checks limits before the lexer sees the document
func (e *Engine) validateInput(src string) error {
	if len(src) > e.options.MaxDocumentLength {
		return sserror.New(fmt.Sprintf("document exceeds maximum length: %d > %d", len(src), e.options.MaxDocumentLength)).
			WithCode(sserror.CodeScriptInput).
			WithSeverity(sserror.SeverityLow).
			WithOperation("validate").
			WithDetail("length", len(src))
	}
	if !utf8.ValidString(src) {
		return sserror.New("document is not valid UTF-8").
			WithCode(sserror.CodeScriptInput).
			WithSeverity(sserror.SeverityLow).
			WithOperation("validate")
	}
	return nil
}

// wrapParseError keeps the phase error as cause so errors.Is still sees
// the parser sentinels
func (e *Engine) wrapParseError(err error) error {
	var lexErr *parser.LexError
	if errors.As(err, &lexErr) {
		return sserror.Wrap(err, "lexing failed").
			WithCode(sserror.CodeScriptLex).
			WithSeverity(sserror.SeverityLow).
			WithOperation("parse").
			WithDetail("line", lexErr.Pos.Line).
			WithDetail("column", lexErr.Pos.Column)
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		code := sserror.CodeScriptParse
		if errors.Is(err, parser.ErrInputTooLong) {
			code = sserror.CodeScriptInput
		}
		return sserror.Wrap(err, "parsing failed").
			WithCode(code).
			WithSeverity(sserror.SeverityLow).
			WithOperation("parse").
			WithDetail("line", parseErr.Pos.Line).
			WithDetail("column", parseErr.Pos.Column)
	}

	return sserror.Wrap(err, "parsing failed").
		WithCode(sserror.CodeInternal).
		WithSeverity(sserror.SeverityHigh).
		WithOperation("parse")
}

func (e *Engine) wrapExecutionError(err error, executionID string) error {
	wrapped := sserror.Wrap(err, "execution failed").
		WithCode(sserror.CodeScriptExecution).
		WithSeverity(sserror.SeverityMedium).
		WithOperation("execute").
		WithDetail("executionId", executionID)

	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		wrapped.WithDetail("line", execErr.Pos.Line).WithDetail("column", execErr.Pos.Column)
		if errors.Is(err, executor.ErrOutput) {
			wrapped.WithSeverity(sserror.SeverityHigh)
		}
	}
	return wrapped
}
