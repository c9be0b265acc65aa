// File: lexer.go
// Title: SmartScript Lexical Analyzer
// Description: Two-mode tokenizer for SmartScript documents. In TEXT mode
//              it collects literal text up to the next "{$"; in TAG mode it
//              produces identifiers, functions, numbers, quoted strings and
//              symbols. The parser decides when to switch modes; the lexer
//              holds exactly one current token and never buffers lookahead.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-12 v0.1.0: Initial lexer
// - 2026-10-13 v0.1.1: Rune based position tracking

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	tagOpen  = "{$"
	tagClose = "$}"
)

// Lexer performs lexical analysis of a SmartScript document
type Lexer struct {
	input  string
	pos    int // byte offset of the next unread rune
	line   int
	column int

	mode    Mode
	current Token
	atEnd   bool // END_OF_INPUT has been produced
}

// NewLexer creates a lexer in TEXT mode for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
		mode:   ModeText,
	}
}

// SetMode switches the scanning mode for subsequent NextToken calls
func (l *Lexer) SetMode(mode Mode) {
	l.mode = mode
}

// Mode returns the active scanning mode
func (l *Lexer) Mode() Mode {
	return l.mode
}

// CurrentToken returns the last token produced by NextToken
func (l *Lexer) CurrentToken() Token {
	return l.current
}

// NextToken scans the next token with respect to the active mode
func (l *Lexer) NextToken() (Token, error) {
	if l.atEnd {
		return Token{}, &LexError{Kind: ErrAlreadyAtEnd, Pos: l.position()}
	}

	var (
		tok Token
		err error
	)
	if l.mode == ModeTag {
		tok, err = l.lexTag()
	} else {
		tok, err = l.lexText()
	}
	if err != nil {
		return Token{}, err
	}

	if tok.Type == TokenEOF {
		l.atEnd = true
	}
	l.current = tok
	return tok, nil
}

// lexText collects literal text until "{$" or the end of input
func (l *Lexer) lexText() (Token, error) {
	start := l.position()
	var b strings.Builder

	for !l.eof() {
		if strings.HasPrefix(l.input[l.pos:], tagOpen) {
			if b.Len() > 0 {
				// leave "{$" for the next call
				break
			}
			l.advance()
			l.advance()
			return Token{Type: TokenTagOpen, Value: tagOpen, Pos: start}, nil
		}

		r, width := l.peek()
		if r != '\\' {
			b.WriteString(l.input[l.pos : l.pos+width])
			l.advance()
			continue
		}

		escPos := l.position()
		l.advance()
		if l.eof() {
			return Token{}, &LexError{Kind: ErrInvalidEscape, Pos: escPos, Message: "backslash at end of input"}
		}
		next, _ := l.peek()
		if next != '{' && next != '\\' {
			return Token{}, &LexError{Kind: ErrInvalidEscape, Pos: escPos, Message: fmt.Sprintf(`"\%c" in text`, next)}
		}
		b.WriteRune(next)
		l.advance()
	}

	if b.Len() == 0 {
		return Token{Type: TokenEOF, Pos: start}, nil
	}
	return Token{Type: TokenText, Value: b.String(), Pos: start}, nil
}

// lexTag produces one operand, symbol or delimiter inside a tag
func (l *Lexer) lexTag() (Token, error) {
	l.skipWhitespace()
	start := l.position()

	if l.eof() {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	rest := l.input[l.pos:]
	if strings.HasPrefix(rest, tagClose) {
		l.advance()
		l.advance()
		return Token{Type: TokenTagClose, Value: tagClose, Pos: start}, nil
	}
	if strings.HasPrefix(rest, tagOpen) {
		l.advance()
		l.advance()
		return Token{Type: TokenTagOpen, Value: tagOpen, Pos: start}, nil
	}

	r, width := l.peek()
	next, _ := l.peekNext()

	switch {
	case isLetter(r):
		return Token{Type: TokenIdentifier, Value: l.readIdentifier(), Pos: start}, nil

	case r == '@' && isLetter(next):
		l.advance()
		return Token{Type: TokenFunction, Value: l.readIdentifier(), Pos: start}, nil

	case isDigit(r) || (r == '-' && isDigit(next)):
		return l.readNumber(start)

	case r == '"':
		return l.readString(start)

	case r == utf8.RuneError && width == 1:
		return Token{}, &LexError{Kind: ErrUnsupportedCharacter, Pos: start, Message: "invalid UTF-8"}

	case unicode.IsControl(r):
		return Token{}, &LexError{Kind: ErrUnsupportedCharacter, Pos: start, Message: fmt.Sprintf("%U", r)}

	default:
		l.advance()
		return Token{Type: TokenSymbol, Value: string(r), Pos: start}, nil
	}
}

// readIdentifier reads letters, digits and underscores
func (l *Lexer) readIdentifier() string {
	begin := l.pos
	for !l.eof() {
		r, _ := l.peek()
		if !isLetter(r) && !isDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	return l.input[begin:l.pos]
}

// readNumber reads -?digits with an optional single fractional part
func (l *Lexer) readNumber(start Position) (Token, error) {
	begin := l.pos
	if r, _ := l.peek(); r == '-' {
		l.advance()
	}
	l.skipDigits()

	isDouble := false
	if r, _ := l.peek(); r == '.' {
		if next, _ := l.peekNext(); isDigit(next) {
			isDouble = true
			l.advance()
			l.skipDigits()
		}
	}

	lexeme := l.input[begin:l.pos]
	if isDouble {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return Token{}, &LexError{Kind: ErrMalformedNumber, Pos: start, Message: lexeme}
		}
		return Token{Type: TokenDouble, Value: lexeme, Double: f, Pos: start}, nil
	}

	i, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return Token{}, &LexError{Kind: ErrMalformedNumber, Pos: start, Message: lexeme}
	}
	return Token{Type: TokenInteger, Value: lexeme, Int: i, Pos: start}, nil
}

// readString reads a double-quoted string, resolving its escapes
func (l *Lexer) readString(start Position) (Token, error) {
	l.advance() // opening quote
	var b strings.Builder

	for {
		if l.eof() {
			return Token{}, &LexError{Kind: ErrUnterminatedString, Pos: start}
		}

		r, width := l.peek()
		if r == '"' {
			l.advance()
			return Token{Type: TokenText, Value: b.String(), Quoted: true, Pos: start}, nil
		}
		if r != '\\' {
			b.WriteString(l.input[l.pos : l.pos+width])
			l.advance()
			continue
		}

		escPos := l.position()
		l.advance()
		if l.eof() {
			return Token{}, &LexError{Kind: ErrUnterminatedString, Pos: start}
		}
		esc, _ := l.peek()
		switch esc {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			return Token{}, &LexError{Kind: ErrInvalidEscape, Pos: escPos, Message: fmt.Sprintf(`"\%c" in string`, esc)}
		}
		l.advance()
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.eof() {
		r, _ := l.peek()
		if !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipDigits() {
	for !l.eof() {
		r, _ := l.peek()
		if !isDigit(r) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

// peek returns the rune at the cursor, or 0 at the end of input
func (l *Lexer) peek() (rune, int) {
	if l.eof() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

// peekNext returns the rune following the one at the cursor
func (l *Lexer) peekNext() (rune, int) {
	_, width := l.peek()
	if l.pos+width >= len(l.input) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos+width:])
}

// advance consumes one rune and updates line/column tracking
func (l *Lexer) advance() {
	r, width := l.peek()
	if width == 0 {
		return
	}
	l.pos += width
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// Tokenize lexes a whole document, switching modes on tag delimiters the
// same way the parser does. The returned slice ends with END_OF_INPUT.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token

	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)

		switch tok.Type {
		case TokenEOF:
			return tokens, nil
		case TokenTagOpen:
			l.SetMode(ModeTag)
		case TokenTagClose:
			l.SetMode(ModeText)
		}
	}
}
