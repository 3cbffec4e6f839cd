// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanTypes(t *testing.T, source string) []TokenType {
	t.Helper()
	scanner := NewScanner("test.py", source)
	tokens := scanner.ScanTokens()
	require.Empty(t, scanner.Errors(), "should scan without errors")
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestScanSimpleStatement(t *testing.T) {
	types := scanTypes(t, "self.count = 0\n")
	assert.Equal(t, []TokenType{IDENT, DOT, IDENT, EQUAL, NUMBER, NEWLINE, EOF}, types)
}

func TestScanIndentDedent(t *testing.T) {
	source := "if x:\n    return 1\nreturn 2\n"
	types := scanTypes(t, source)
	assert.Equal(t, []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, RETURN, NUMBER, NEWLINE,
		DEDENT, RETURN, NUMBER, NEWLINE,
		EOF,
	}, types)
}

func TestScanNestedBlocksCloseAtEOF(t *testing.T) {
	source := "class C(B):\n    def f(self):\n        pass"
	types := scanTypes(t, source)
	assert.Equal(t, []TokenType{
		CLASS, IDENT, LEFT_PAREN, IDENT, RIGHT_PAREN, COLON, NEWLINE,
		INDENT, DEF, IDENT, LEFT_PAREN, IDENT, RIGHT_PAREN, COLON, NEWLINE,
		INDENT, PASS, NEWLINE,
		DEDENT, DEDENT, EOF,
	}, types)
}

func TestScanBlankAndCommentLinesCarryNoLayout(t *testing.T) {
	source := "if x:\n    a = 1\n\n    # a comment\n    b = 2\n"
	types := scanTypes(t, source)
	assert.Equal(t, []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IDENT, EQUAL, NUMBER, NEWLINE,
		IDENT, EQUAL, NUMBER, NEWLINE,
		DEDENT, EOF,
	}, types)
}

func TestScanParenthesesSuppressLayout(t *testing.T) {
	source := "f(a,\n    b)\n"
	types := scanTypes(t, source)
	assert.Equal(t, []TokenType{
		IDENT, LEFT_PAREN, IDENT, COMMA, IDENT, RIGHT_PAREN, NEWLINE, EOF,
	}, types)
}

func TestScanOperators(t *testing.T) {
	types := scanTypes(t, "a ** b // c <= d >= e == f != g -> h\n")
	assert.Equal(t, []TokenType{
		IDENT, STAR_STAR, IDENT, SLASH_SLASH, IDENT, LESS_EQUAL, IDENT,
		GREATER_EQUAL, IDENT, EQUAL_EQUAL, IDENT, BANG_EQUAL, IDENT,
		ARROW, IDENT, NEWLINE, EOF,
	}, types)
}

func TestScanNumberForms(t *testing.T) {
	scanner := NewScanner("test.py", "1_000_000 0xDEAD 42\n")
	tokens := scanner.ScanTokens()
	require.Empty(t, scanner.Errors())

	assert.Equal(t, "1_000_000", tokens[0].Lexeme)
	assert.Equal(t, "0xDEAD", tokens[1].Lexeme)
	assert.Equal(t, "42", tokens[2].Lexeme)
}

func TestScanStringLexemeIsUnquoted(t *testing.T) {
	scanner := NewScanner("test.py", `x = "Transfer"` + "\n")
	tokens := scanner.ScanTokens()
	require.Empty(t, scanner.Errors())

	assert.Equal(t, STRING, tokens[2].Type)
	assert.Equal(t, "Transfer", tokens[2].Lexeme)
}

func TestScanTripleQuotedString(t *testing.T) {
	source := "\"\"\"module\ndocstring\"\"\"\nx = 1\n"
	scanner := NewScanner("test.py", source)
	tokens := scanner.ScanTokens()
	require.Empty(t, scanner.Errors())

	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, "module\ndocstring", tokens[0].Lexeme)
}

func TestScanPositions(t *testing.T) {
	scanner := NewScanner("test.py", "a = 1\nbb = 2\n")
	tokens := scanner.ScanTokens()
	require.Empty(t, scanner.Errors())

	assert.Equal(t, 1, tokens[0].Position.Line)
	assert.Equal(t, 1, tokens[0].Position.Column)
	assert.Equal(t, 2, tokens[4].Position.Line, "second line starts a new position")
	assert.Equal(t, "test.py", tokens[0].Position.Filename)
}

func TestScanUnterminatedString(t *testing.T) {
	scanner := NewScanner("test.py", `x = "oops` + "\n")
	scanner.ScanTokens()
	errs := scanner.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unterminated string")
}

func TestScanUnexpectedCharacter(t *testing.T) {
	scanner := NewScanner("test.py", "x = 1 ; y = 2\n")
	scanner.ScanTokens()
	errs := scanner.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unexpected character")
}

func TestScanInconsistentIndentation(t *testing.T) {
	source := "if x:\n        a = 1\n    b = 2\n"
	scanner := NewScanner("test.py", source)
	scanner.ScanTokens()
	errs := scanner.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "indentation")
}

func TestScanMixedTabAndSpaceIndentRejected(t *testing.T) {
	source := "if x:\n\t a = 1\n"
	scanner := NewScanner("test.py", source)
	scanner.ScanTokens()
	errs := scanner.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "tabs and spaces")
}

func TestScanIndentCharacterIsFixedPerFile(t *testing.T) {
	source := "if x:\n\ta = 1\nif y:\n    b = 2\n"
	scanner := NewScanner("test.py", source)
	scanner.ScanTokens()
	errs := scanner.Errors()
	require.Len(t, errs, 1, "a space-indented line in a tab-indented file is rejected")
	assert.Contains(t, errs[0].Message, "tabs and spaces")
	assert.Equal(t, 4, errs[0].Position.Line)
}

func TestScanLineContinuation(t *testing.T) {
	types := scanTypes(t, "a = 1 + \\\n    2\n")
	assert.Equal(t, []TokenType{
		IDENT, EQUAL, NUMBER, PLUS, NUMBER, NEWLINE, EOF,
	}, types)
}
