// SPDX-License-Identifier: Apache-2.0
package parser

type TokenType int

const (
	// Single-character tokens
	LEFT_PAREN TokenType = iota
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
	LEFT_BRACE
	RIGHT_BRACE
	COLON
	COMMA
	DOT
	AT

	// Operators
	PLUS
	MINUS
	STAR
	STAR_STAR
	SLASH
	SLASH_SLASH
	PERCENT
	EQUAL
	EQUAL_EQUAL
	BANG_EQUAL
	LESS
	GREATER
	LESS_EQUAL
	GREATER_EQUAL
	ARROW

	// Literals
	IDENT
	NUMBER
	STRING

	// Keywords
	CLASS
	DEF
	RETURN
	IF
	ELSE
	PASS
	FROM
	IMPORT

	// Layout
	NEWLINE
	INDENT
	DEDENT
	EOF
)

var keywords = map[string]TokenType{
	"class":  CLASS,
	"def":    DEF,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"pass":   PASS,
	"from":   FROM,
	"import": IMPORT,
}

var tokenNames = map[TokenType]string{
	LEFT_PAREN:    "'('",
	RIGHT_PAREN:   "')'",
	LEFT_BRACKET:  "'['",
	RIGHT_BRACKET: "']'",
	LEFT_BRACE:    "'{'",
	RIGHT_BRACE:   "'}'",
	COLON:         "':'",
	COMMA:         "','",
	DOT:           "'.'",
	AT:            "'@'",
	PLUS:          "'+'",
	MINUS:         "'-'",
	STAR:          "'*'",
	STAR_STAR:     "'**'",
	SLASH:         "'/'",
	SLASH_SLASH:   "'//'",
	PERCENT:       "'%'",
	EQUAL:         "'='",
	EQUAL_EQUAL:   "'=='",
	BANG_EQUAL:    "'!='",
	LESS:          "'<'",
	GREATER:       "'>'",
	LESS_EQUAL:    "'<='",
	GREATER_EQUAL: "'>='",
	ARROW:         "'->'",
	IDENT:         "identifier",
	NUMBER:        "number",
	STRING:        "string",
	CLASS:         "'class'",
	DEF:           "'def'",
	RETURN:        "'return'",
	IF:            "'if'",
	ELSE:          "'else'",
	PASS:          "'pass'",
	FROM:          "'from'",
	IMPORT:        "'import'",
	NEWLINE:       "end of line",
	INDENT:        "indent",
	DEDENT:        "dedent",
	EOF:           "end of file",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown token"
}
