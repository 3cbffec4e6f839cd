// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"fmt"
	"unicode"

	"pymon/internal/ast"
)

type Token struct {
	Type     TokenType
	Lexeme   string
	Position ast.Position
}

type ScanError struct {
	Message  string
	Position ast.Position
	Length   int
}

// Scanner tokenizes contract source. Unlike the brace languages this
// grammar is indentation-sensitive, so the scanner emits synthetic
// INDENT/DEDENT/NEWLINE tokens the way the CPython tokenizer does.
type Scanner struct {
	filename    string
	source      string
	tokens      []Token
	start       int
	current     int
	line        int
	startColumn int
	column      int
	atLineStart bool
	parenDepth  int
	indents     []int
	indentChar  byte
	errors      []ScanError
}

func NewScanner(filename, source string) *Scanner {
	return &Scanner{
		filename:    filename,
		source:      source,
		line:        1,
		column:      1,
		atLineStart: true,
		indents:     []int{0},
	}
}

func (s *Scanner) Errors() []ScanError { return s.errors }

func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() {
		if s.atLineStart && s.parenDepth == 0 {
			s.scanIndentation()
			continue
		}
		s.start = s.current
		s.startColumn = s.column
		s.scanToken()
	}

	// Close the final logical line and any open blocks.
	if !s.atLineStart {
		s.addSyntheticToken(NEWLINE)
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.addSyntheticToken(DEDENT)
	}
	s.addSyntheticToken(EOF)
	return s.tokens
}

// scanIndentation measures leading whitespace at a line start and emits
// INDENT/DEDENT tokens against the indentation stack. Blank lines and
// comment-only lines carry no layout meaning and are skipped whole. A
// file must indent with tabs or with spaces, not both: under any other
// rule the depth of a mixed line depends on an arbitrary tab width.
func (s *Scanner) scanIndentation() {
	s.start = s.current
	s.startColumn = s.column
	depth := 0
	var lineChar byte
	mixed := false
	for !s.isAtEnd() {
		c := s.peek()
		if c != ' ' && c != '\t' {
			break
		}
		if lineChar == 0 {
			lineChar = c
		} else if c != lineChar {
			mixed = true
		}
		if c == '\t' {
			depth += 4
		} else {
			depth++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return
	}
	if s.peek() == '\n' {
		s.advance()
		return
	}
	if s.peek() == '#' {
		s.skipToLineEnd()
		return
	}

	s.atLineStart = false
	if lineChar != 0 {
		if s.indentChar == 0 {
			s.indentChar = lineChar
		}
		if mixed || lineChar != s.indentChar {
			s.addError("inconsistent use of tabs and spaces in indentation", s.current-s.start)
		}
	}
	top := s.indents[len(s.indents)-1]
	switch {
	case depth > top:
		s.indents = append(s.indents, depth)
		s.addSyntheticToken(INDENT)
	case depth < top:
		for len(s.indents) > 1 && s.indents[len(s.indents)-1] > depth {
			s.indents = s.indents[:len(s.indents)-1]
			s.addSyntheticToken(DEDENT)
		}
		if s.indents[len(s.indents)-1] != depth {
			s.addError("inconsistent indentation", 1)
			// Recover by adopting the unexpected depth.
			s.indents = append(s.indents, depth)
		}
	}
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.parenDepth++
		s.addToken(LEFT_PAREN)
	case ')':
		s.parenDepth--
		s.addToken(RIGHT_PAREN)
	case '[':
		s.parenDepth++
		s.addToken(LEFT_BRACKET)
	case ']':
		s.parenDepth--
		s.addToken(RIGHT_BRACKET)
	case '{':
		s.parenDepth++
		s.addToken(LEFT_BRACE)
	case '}':
		s.parenDepth--
		s.addToken(RIGHT_BRACE)
	case ':':
		s.addToken(COLON)
	case ',':
		s.addToken(COMMA)
	case '.':
		s.addToken(DOT)
	case '@':
		s.addToken(AT)
	case '+':
		s.addToken(PLUS)
	case '-':
		if s.matchNext('>') {
			s.addToken(ARROW)
		} else {
			s.addToken(MINUS)
		}
	case '*':
		if s.matchNext('*') {
			s.addToken(STAR_STAR)
		} else {
			s.addToken(STAR)
		}
	case '/':
		if s.matchNext('/') {
			s.addToken(SLASH_SLASH)
		} else {
			s.addToken(SLASH)
		}
	case '%':
		s.addToken(PERCENT)
	case '=':
		if s.matchNext('=') {
			s.addToken(EQUAL_EQUAL)
		} else {
			s.addToken(EQUAL)
		}
	case '!':
		if s.matchNext('=') {
			s.addToken(BANG_EQUAL)
		} else {
			s.addError("unexpected character '!'", 1)
		}
	case '<':
		if s.matchNext('=') {
			s.addToken(LESS_EQUAL)
		} else {
			s.addToken(LESS)
		}
	case '>':
		if s.matchNext('=') {
			s.addToken(GREATER_EQUAL)
		} else {
			s.addToken(GREATER)
		}
	case ' ', '\r', '\t':
		// Interior whitespace is insignificant.
	case '\\':
		// Explicit line continuation: swallow the newline.
		if s.peek() == '\n' {
			s.advance()
		}
	case '\n':
		if s.parenDepth == 0 {
			s.addSyntheticToken(NEWLINE)
			s.atLineStart = true
		}
	case '#':
		for !s.isAtEnd() && s.peek() != '\n' {
			s.advance()
		}
	case '"', '\'':
		s.scanString(c)
	default:
		s.scanDefault(c)
	}
}

func (s *Scanner) scanDefault(c byte) {
	switch {
	case isDigit(c):
		s.scanNumber()
	case isIdentStart(c):
		s.scanIdentifier()
	default:
		s.addError(fmt.Sprintf("unexpected character %q", c), 1)
	}
}

func (s *Scanner) scanNumber() {
	if s.source[s.start] == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		for isHexDigit(s.peek()) || s.peek() == '_' {
			s.advance()
		}
		s.addToken(NUMBER)
		return
	}
	for isDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}
	s.addToken(NUMBER)
}

func (s *Scanner) scanIdentifier() {
	for isIdentPart(s.peek()) {
		s.advance()
	}
	lexeme := s.source[s.start:s.current]
	if keyword, ok := keywords[lexeme]; ok {
		s.addToken(keyword)
		return
	}
	s.addToken(IDENT)
}

// scanString handles both plain and triple-quoted string literals.
// The token lexeme is the unquoted content.
func (s *Scanner) scanString(quote byte) {
	triple := false
	if s.peek() == quote && s.peekNext() == quote {
		s.advance()
		s.advance()
		triple = true
	}

	contentStart := s.current
	for !s.isAtEnd() {
		if triple {
			if s.peek() == quote && s.peekNext() == quote && s.peekAt(2) == quote {
				content := s.source[contentStart:s.current]
				s.advance()
				s.advance()
				s.advance()
				s.addTokenLexeme(STRING, content)
				return
			}
		} else {
			if s.peek() == quote {
				content := s.source[contentStart:s.current]
				s.advance()
				s.addTokenLexeme(STRING, content)
				return
			}
			if s.peek() == '\n' {
				break
			}
		}
		if s.peek() == '\\' && !s.isAtEnd() {
			s.advance()
		}
		s.advance()
	}
	s.addError("unterminated string literal", s.current-s.start)
}

func (s *Scanner) skipToLineEnd() {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.advance()
	}
	if !s.isAtEnd() {
		s.advance()
	}
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *Scanner) matchNext(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte { return s.peekAt(1) }

func (s *Scanner) peekAt(n int) byte {
	if s.current+n >= len(s.source) {
		return 0
	}
	return s.source[s.current+n]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) addToken(t TokenType) {
	s.addTokenLexeme(t, s.source[s.start:s.current])
}

func (s *Scanner) addTokenLexeme(t TokenType, lexeme string) {
	s.tokens = append(s.tokens, Token{
		Type:   t,
		Lexeme: lexeme,
		Position: ast.Position{
			Filename: s.filename,
			Offset:   s.start,
			Line:     s.line,
			Column:   s.startColumn,
		},
	})
}

func (s *Scanner) addSyntheticToken(t TokenType) {
	s.tokens = append(s.tokens, Token{
		Type: t,
		Position: ast.Position{
			Filename: s.filename,
			Offset:   s.current,
			Line:     s.line,
			Column:   s.column,
		},
	})
}

func (s *Scanner) addError(message string, length int) {
	s.errors = append(s.errors, ScanError{
		Message: message,
		Position: ast.Position{
			Filename: s.filename,
			Offset:   s.start,
			Line:     s.line,
			Column:   s.startColumn,
		},
		Length: length,
	})
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
