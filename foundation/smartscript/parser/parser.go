// File: parser.go
// Title: SmartScript Document Parser
// Description: Turns the token stream of a SmartScript document into a
//              document tree. Tags are parsed by recursive descent while FOR
//              nesting is tracked on an explicit stack of open containers,
//              so nesting depth costs heap, never call stack.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-12 v0.1.0: Initial parser implementation
// - 2026-10-14 v0.1.1: Input length limit

package parser

import (
	"fmt"
	"strings"

	"github.com/ahrtr/gocontainer/stack"

	"github.com/frle10/smartscript/foundation/smartscript/ast"
)

// Parser converts SmartScript source into a document tree. A Parser holds
// no per-document state and may be shared between goroutines.
type Parser struct {
	options Options
}

// Options configures parser behavior
type Options struct {
	// MaxInputLength limits the input size in bytes; 0 means unlimited
	MaxInputLength int
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	return &Parser{options: opts}
}

// Parse parses input with default options
func Parse(input string) (*ast.DocumentNode, error) {
	return New(Options{}).Parse(input)
}

// Parse parses a complete document. Parsing is all-or-nothing: on error
// no tree is returned.
func (p *Parser) Parse(input string) (*ast.DocumentNode, error) {
	if p.options.MaxInputLength > 0 && len(input) > p.options.MaxInputLength {
		return nil, &ParseError{
			Kind:    ErrInputTooLong,
			Pos:     Position{Line: 1, Column: 1},
			Message: fmt.Sprintf("%d > %d bytes", len(input), p.options.MaxInputLength),
		}
	}

	run := &parseRun{
		lexer: NewLexer(input),
		open:  stack.New(),
	}
	return run.parse()
}

// parseRun holds the state of a single Parse call
type parseRun struct {
	lexer *Lexer
	open  stack.Interface // open containers, document at the bottom
}

func (r *parseRun) parse() (*ast.DocumentNode, error) {
	doc := &ast.DocumentNode{}
	r.open.Push(doc)

	for {
		tok, err := r.lexer.NextToken()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case TokenEOF:
			if r.open.Size() != 1 {
				loop := r.top().(*ast.ForLoopNode)
				return nil, &ParseError{
					Kind:    ErrUnclosedFor,
					Pos:     tok.Pos,
					Message: fmt.Sprintf("%d open, innermost %q at %s", r.open.Size()-1, loop.Variable.Name, loop.Pos),
					Token:   tok,
				}
			}
			return doc, nil

		case TokenText:
			r.top().AddChild(&ast.TextNode{Text: tok.Value, Pos: toPos(tok.Pos)})

		case TokenTagOpen:
			r.lexer.SetMode(ModeTag)
			if err := r.parseTag(tok); err != nil {
				return nil, err
			}
			r.lexer.SetMode(ModeText)

		default:
			return nil, r.errorf(ErrUnsupportedTag, tok, "unexpected %s outside a tag", tok.Type)
		}
	}
}

// parseTag dispatches on the first token after "{$"
func (r *parseRun) parseTag(open Token) error {
	tok, err := r.next()
	if err != nil {
		return err
	}

	switch {
	case tok.Type == TokenIdentifier && strings.EqualFold(tok.Value, "FOR"):
		return r.parseFor(open)
	case tok.Type == TokenIdentifier && strings.EqualFold(tok.Value, "END"):
		return r.parseEnd(tok)
	case tok.Type == TokenSymbol && tok.Value == "=":
		return r.parseEcho(open)
	case tok.Type == TokenTagClose:
		return r.errorf(ErrUnsupportedTag, tok, "empty tag")
	default:
		return r.errorf(ErrUnsupportedTag, tok, "tag cannot start with %s", tok)
	}
}

// parseFor reads "FOR var start end [step] $}" and opens a new container
func (r *parseRun) parseFor(open Token) error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	if tok.Type != TokenIdentifier {
		return r.errorf(ErrForArguments, tok, "loop variable must be an identifier, got %s", tok.Type)
	}
	loop := &ast.ForLoopNode{
		Variable: ast.Variable{Name: tok.Value},
		Pos:      toPos(open.Pos),
	}

	var operands []ast.Element
	for {
		tok, err = r.next()
		if err != nil {
			return err
		}
		if tok.Type == TokenTagClose {
			break
		}
		el, ok := forOperand(tok)
		if !ok {
			return r.errorf(ErrForArguments, tok, "%s is not a valid FOR operand", tok.Type)
		}
		if len(operands) == 3 {
			return r.errorf(ErrForArguments, tok, "too many operands")
		}
		operands = append(operands, el)
	}
	if len(operands) < 2 {
		return r.errorf(ErrForArguments, tok, "expected start and end, got %d operand(s)", len(operands))
	}

	loop.Start, loop.End = operands[0], operands[1]
	if len(operands) == 3 {
		loop.Step = operands[2]
	}

	r.top().AddChild(loop)
	r.open.Push(loop)
	return nil
}

// parseEnd closes the innermost FOR
func (r *parseRun) parseEnd(end Token) error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	if tok.Type != TokenTagClose {
		return r.errorf(ErrUnsupportedTag, tok, "END takes no operands")
	}
	if r.open.Size() <= 1 {
		return r.errorf(ErrUnbalancedEnd, end, "no FOR to close")
	}
	r.open.Pop()
	return nil
}

// parseEcho collects elements up to "$}"
func (r *parseRun) parseEcho(open Token) error {
	echo := &ast.EchoNode{Pos: toPos(open.Pos)}

	for {
		tok, err := r.next()
		if err != nil {
			return err
		}

		switch tok.Type {
		case TokenTagClose:
			r.top().AddChild(echo)
			return nil
		case TokenInteger:
			echo.Elements = append(echo.Elements, ast.ConstantInt{Value: tok.Int})
		case TokenDouble:
			echo.Elements = append(echo.Elements, ast.ConstantDouble{Value: tok.Double})
		case TokenText:
			echo.Elements = append(echo.Elements, ast.StringLiteral{Value: tok.Value})
		case TokenIdentifier:
			echo.Elements = append(echo.Elements, ast.Variable{Name: tok.Value})
		case TokenFunction:
			echo.Elements = append(echo.Elements, ast.Function{Name: tok.Value})
		case TokenSymbol:
			if !isOperator(tok.Value) {
				return r.errorf(ErrInvalidOperator, tok, "%q", tok.Value)
			}
			echo.Elements = append(echo.Elements, ast.Operator{Symbol: tok.Value})
		default:
			return r.errorf(ErrInvalidElement, tok, "%s in echo tag", tok.Type)
		}
	}
}

// next reads a token inside a tag and rejects nested tags and end of input
func (r *parseRun) next() (Token, error) {
	tok, err := r.lexer.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Type {
	case TokenTagOpen:
		return Token{}, r.errorf(ErrNestedTag, tok, "")
	case TokenEOF:
		return Token{}, r.errorf(ErrUnexpectedEOF, tok, "")
	}
	return tok, nil
}

func (r *parseRun) top() ast.Container {
	return r.open.Peek().(ast.Container)
}

func (r *parseRun) errorf(kind error, tok Token, format string, args ...interface{}) *ParseError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ParseError{Kind: kind, Pos: tok.Pos, Message: msg, Token: tok}
}

func forOperand(tok Token) (ast.Element, bool) {
	switch tok.Type {
	case TokenInteger:
		return ast.ConstantInt{Value: tok.Int}, true
	case TokenDouble:
		return ast.ConstantDouble{Value: tok.Double}, true
	case TokenIdentifier:
		return ast.Variable{Name: tok.Value}, true
	case TokenText:
		if tok.Quoted {
			return ast.StringLiteral{Value: tok.Value}, true
		}
	}
	return nil, false
}

func isOperator(s string) bool {
	switch s {
	case "+", "-", "*", "/", "^":
		return true
	}
	return false
}

func toPos(p Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}
