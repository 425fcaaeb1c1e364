package proto3

import (
	"strconv"
	"strings"

	"github.com/lutaml/unibuf/internal/lexer/scanner"
	"github.com/lutaml/unibuf/internal/model"
)

// Lexer tokenizes proto3 schema source.
type Lexer struct {
	s      *scanner.Scanner
	tokens []Token
}

// New creates a Lexer over source, attributing diagnostics to file.
func New(source, file string) *Lexer {
	return &Lexer{s: scanner.New(source, file)}
}

// ScanTokens tokenizes the entire source, returning all tokens (including
// a trailing EOF) or the first lexical error encountered.
func (l *Lexer) ScanTokens() ([]Token, error) {
	for !l.s.IsAtEnd() {
		l.s.MarkStart()
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: l.s.CurrentLine(), Column: l.s.CurrentColumn(), File: l.s.File()})
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	r := l.s.Advance()
	switch {
	case r == ' ' || r == '\t' || r == '\r' || r == '\n':
		return nil
	case r == '/' && l.s.Peek() == '/':
		for !l.s.IsAtEnd() && l.s.Peek() != '\n' {
			l.s.Advance()
		}
		return nil
	case r == '/' && l.s.Peek() == '*':
		l.s.Advance()
		for !l.s.IsAtEnd() && !(l.s.Peek() == '*' && l.s.PeekNext() == '/') {
			l.s.Advance()
		}
		if l.s.IsAtEnd() {
			return l.err("unterminated block comment")
		}
		l.s.Advance()
		l.s.Advance()
		return nil
	case r == '{':
		l.add(TokenLBrace)
	case r == '}':
		l.add(TokenRBrace)
	case r == '<':
		l.add(TokenLAngle)
	case r == '>':
		l.add(TokenRAngle)
	case r == '=':
		l.add(TokenEquals)
	case r == ';':
		l.add(TokenSemicolon)
	case r == ',':
		l.add(TokenComma)
	case r == '.':
		l.add(TokenDot)
	case r == '"':
		return l.scanString()
	case r == '-' || scanner.IsDigit(r):
		return l.scanNumber()
	case scanner.IsAlpha(r):
		l.scanIdentifier()
	default:
		return l.err("unexpected character " + strconv.QuoteRune(r))
	}
	return nil
}

func (l *Lexer) scanString() error {
	var b strings.Builder
	for !l.s.IsAtEnd() && l.s.Peek() != '"' {
		if l.s.Peek() == '\\' {
			l.s.Advance()
			b.WriteRune(unescape(l.s.Advance()))
			continue
		}
		b.WriteRune(l.s.Advance())
	}
	if l.s.IsAtEnd() {
		return l.err("unterminated string literal")
	}
	l.s.Advance() // closing quote
	l.tokens = append(l.tokens, Token{Type: TokenString, Lexeme: b.String(), Line: l.s.Line(), Column: l.s.Column(), File: l.s.File()})
	return nil
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}

func (l *Lexer) scanNumber() error {
	for scanner.IsDigit(l.s.Peek()) {
		l.s.Advance()
	}
	isFloat := false
	if l.s.Peek() == '.' && scanner.IsDigit(l.s.PeekNext()) {
		isFloat = true
		l.s.Advance()
		for scanner.IsDigit(l.s.Peek()) {
			l.s.Advance()
		}
	}
	lexeme := l.s.Lexeme()
	if isFloat {
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return l.err("invalid float literal: " + err.Error())
		}
		l.tokens = append(l.tokens, Token{Type: TokenFloat, Lexeme: lexeme, FloatVal: v, Line: l.s.Line(), Column: l.s.Column(), File: l.s.File()})
		return nil
	}
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return l.err("invalid integer literal: " + err.Error())
	}
	l.tokens = append(l.tokens, Token{Type: TokenInt, Lexeme: lexeme, IntVal: v, Line: l.s.Line(), Column: l.s.Column(), File: l.s.File()})
	return nil
}

func (l *Lexer) scanIdentifier() {
	for scanner.IsAlphaNumeric(l.s.Peek()) {
		l.s.Advance()
	}
	l.add(TokenIdent)
}

func (l *Lexer) add(t TokenType) {
	l.tokens = append(l.tokens, Token{Type: t, Lexeme: l.s.Lexeme(), Line: l.s.Line(), Column: l.s.Column(), File: l.s.File()})
}

func (l *Lexer) err(msg string) error {
	loc := model.SourceLocation{File: l.s.File(), Line: l.s.CurrentLine(), Column: l.s.CurrentColumn()}
	return &model.ParseError{
		Phase:    "lexer",
		Message:  msg,
		Location: loc,
		Context:  model.ExtractSourceContext(loc, l.s.Source()),
	}
}
