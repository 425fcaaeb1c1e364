// Package scanner provides the rune-scanning mechanics shared by all four
// IDL lexers: position tracking, lookahead, and lexeme extraction.
package scanner

import "unicode"

// Scanner tracks a cursor over source runes plus the line/column needed
// for diagnostic source locations.
type Scanner struct {
	source      []rune
	start       int
	current     int
	line        int
	column      int
	startLine   int
	startColumn int
	file        string
}

// New creates a Scanner positioned at the start of source.
func New(source, file string) *Scanner {
	return &Scanner{
		source:      []rune(source),
		line:        1,
		column:      1,
		startLine:   1,
		startColumn: 1,
		file:        file,
	}
}

// MarkStart records the current position as the start of the next token.
func (s *Scanner) MarkStart() {
	s.start = s.current
	s.startLine = s.line
	s.startColumn = s.column
}

// IsAtEnd reports whether the cursor has consumed all source runes.
func (s *Scanner) IsAtEnd() bool { return s.current >= len(s.source) }

// Advance consumes and returns the current rune, tracking line/column.
func (s *Scanner) Advance() rune {
	if s.IsAtEnd() {
		return 0
	}
	r := s.source[s.current]
	s.current++
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

// Match consumes the current rune if it equals expected.
func (s *Scanner) Match(expected rune) bool {
	if s.IsAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.Advance()
	return true
}

// Peek returns the current rune without consuming it.
func (s *Scanner) Peek() rune { return s.PeekAt(0) }

// PeekNext returns the rune one past the current position.
func (s *Scanner) PeekNext() rune { return s.PeekAt(1) }

// PeekAt returns the rune offset positions ahead of the cursor, or 0 past
// end of input.
func (s *Scanner) PeekAt(offset int) rune {
	i := s.current + offset
	if i >= len(s.source) {
		return 0
	}
	return s.source[i]
}

// Lexeme returns the runes between the marked start and the current
// position, as a string.
func (s *Scanner) Lexeme() string { return string(s.source[s.start:s.current]) }

// Line returns the line the current token started on.
func (s *Scanner) Line() int { return s.startLine }

// Column returns the column the current token started on.
func (s *Scanner) Column() int { return s.startColumn }

// CurrentLine and CurrentColumn report the cursor's live position,
// independent of the last MarkStart call — used for error locations that
// don't correspond to a completed token (e.g. unterminated strings).
func (s *Scanner) CurrentLine() int   { return s.line }
func (s *Scanner) CurrentColumn() int { return s.column }

// File returns the source file path the scanner was constructed with.
func (s *Scanner) File() string { return s.file }

// Source returns the full source text, for building error context windows.
func (s *Scanner) Source() string { return string(s.source) }

func IsDigit(r rune) bool { return r >= '0' && r <= '9' }

func IsHexDigit(r rune) bool {
	return IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func IsAlpha(r rune) bool { return unicode.IsLetter(r) || r == '_' }

func IsAlphaNumeric(r rune) bool { return IsAlpha(r) || IsDigit(r) }
