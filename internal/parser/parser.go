// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"fmt"
	"math/big"

	"pymon/internal/ast"
)

type ParseError struct {
	Message  string
	Position ast.Position
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// Parser builds the contract model from the token stream. It enforces
// the restricted grammar: anything it cannot express in the model is a
// ParseError, so downstream code generation only ever sees supported
// constructs.
type Parser struct {
	tokens  []Token
	current int
	errors  []ParseError

	contract   *ast.Contract
	stateIndex map[string]*ast.StateVar
	eventIndex map[string]*ast.Event

	// Parameters of the function currently being parsed.
	params map[string]*ast.Param

	// strictFold rejects folded constants the emitted code would wrap
	// or zero out. Set while parsing state variable defaults.
	strictFold bool
}

// ParseSource scans and parses a contract source file. The returned
// contract is nil when no contract class was found. Any scan or parse
// error makes the whole compilation fail; partial models are only
// returned for tooling that wants to report several errors at once.
func ParseSource(filename, source string) (*ast.Contract, []ParseError, []ScanError) {
	scanner := NewScanner(filename, source)
	tokens := scanner.ScanTokens()

	p := &Parser{
		tokens:     tokens,
		stateIndex: make(map[string]*ast.StateVar),
		eventIndex: make(map[string]*ast.Event),
	}
	p.parseModule()
	return p.contract, p.errors, scanner.Errors()
}

func (p *Parser) parseModule() {
	for !p.check(EOF) {
		switch {
		case p.match(NEWLINE):
			// blank
		case p.check(FROM) || p.check(IMPORT):
			p.skipLogicalLine()
		case p.check(STRING):
			// Module docstring.
			p.advance()
			p.match(NEWLINE)
		case p.check(CLASS):
			if p.contract != nil {
				p.errorAt(p.peek().Position, "only one contract class is supported per file")
				p.skipBlock()
				continue
			}
			p.parseClass()
		default:
			tok := p.peek()
			p.errorAt(tok.Position, fmt.Sprintf("unsupported top-level construct: %s", tok.Type))
			if tok.Type == DEDENT {
				// Layout token left over from recovery inside a suite.
				// skipLogicalLine stops on DEDENT, so consume it here or
				// the loop never advances.
				p.advance()
			} else {
				p.skipBlock()
			}
		}
	}
	if p.contract == nil && len(p.errors) == 0 {
		pos := ast.Position{Line: 1, Column: 1}
		if len(p.tokens) > 0 {
			pos = p.tokens[0].Position
		}
		p.errorAt(pos, "no contract class found (expected 'class Name(PySmartContract):')")
	}
}

func (p *Parser) parseClass() {
	classTok := p.advance() // CLASS
	name, ok := p.expect(IDENT, "expected contract class name")
	if !ok {
		p.skipBlock()
		return
	}

	if !p.expectOk(LEFT_PAREN, "contract class must extend PySmartContract") {
		p.skipBlock()
		return
	}
	base, ok := p.expect(IDENT, "contract class must extend PySmartContract")
	if !ok || base.Lexeme != "PySmartContract" {
		pos := classTok.Position
		if ok {
			pos = base.Position
		}
		p.errorAt(pos, "contract class must extend PySmartContract")
		p.skipBlock()
		return
	}
	if !p.expectOk(RIGHT_PAREN, "expected ')' after base class") ||
		!p.expectOk(COLON, "expected ':' after class header") {
		p.skipBlock()
		return
	}
	p.match(NEWLINE)
	if !p.expectOk(INDENT, "expected an indented class body") {
		return
	}

	p.contract = &ast.Contract{
		Pos:  classTok.Position,
		Name: name.Lexeme,
	}

	for !p.check(DEDENT) && !p.check(EOF) {
		switch {
		case p.match(NEWLINE):
		case p.check(STRING):
			p.advance()
			p.match(NEWLINE)
		case p.match(PASS):
			p.match(NEWLINE)
		case p.check(AT):
			p.parseDecoratedFunction()
		case p.check(DEF):
			p.parseDef(ast.Internal)
		default:
			p.errorAt(p.peek().Position, fmt.Sprintf("unsupported class-level construct: %s", p.peek().Type))
			p.skipBlock()
		}
	}
	p.match(DEDENT)
}

func (p *Parser) parseDecoratedFunction() {
	p.advance() // AT
	decorator, ok := p.expect(IDENT, "expected decorator name after '@'")
	if !ok {
		p.skipLogicalLine()
		return
	}
	p.match(NEWLINE)

	var mutability ast.Mutability
	switch decorator.Lexeme {
	case "public_function":
		mutability = ast.Mutating
	case "view_function":
		mutability = ast.View
	default:
		p.errorAt(decorator.Position,
			fmt.Sprintf("unknown decorator '@%s' (expected @public_function or @view_function)", decorator.Lexeme))
		mutability = ast.Internal
	}

	if !p.check(DEF) {
		p.errorAt(p.peek().Position, "expected a function definition after decorator")
		p.skipLogicalLine()
		return
	}
	p.parseDef(mutability)
}

func (p *Parser) parseDef(mutability ast.Mutability) {
	defTok := p.advance() // DEF
	name, ok := p.expect(IDENT, "expected function name")
	if !ok {
		p.skipBlock()
		return
	}

	if name.Lexeme == "__init__" {
		p.parseConstructor()
		return
	}

	fn := &ast.Function{
		Pos:        defTok.Position,
		Name:       name.Lexeme,
		Mutability: mutability,
	}

	if !p.parseSignature(fn) {
		p.skipBlock()
		return
	}

	p.params = make(map[string]*ast.Param)
	for _, param := range fn.Params {
		p.params[param.Name] = param
	}
	fn.Body = p.parseSuite(fn)
	p.params = nil

	p.contract.Functions = append(p.contract.Functions, fn)
}

// parseSignature parses "(self, a: int, b: str) -> int :" up to but not
// including the suite.
func (p *Parser) parseSignature(fn *ast.Function) bool {
	if !p.expectOk(LEFT_PAREN, "expected '(' after function name") {
		return false
	}
	self, ok := p.expect(IDENT, "expected 'self' as the first parameter")
	if !ok {
		return false
	}
	if self.Lexeme != "self" {
		p.errorAt(self.Position, "expected 'self' as the first parameter")
		return false
	}

	index := 0
	for p.match(COMMA) {
		name, ok := p.expect(IDENT, "expected parameter name")
		if !ok {
			return false
		}
		paramType := ast.TypeUint256
		if p.match(COLON) {
			annotation, ok := p.expect(IDENT, "expected parameter type annotation")
			if !ok {
				return false
			}
			paramType, ok = annotationType(annotation.Lexeme)
			if !ok {
				p.errorAt(annotation.Position,
					fmt.Sprintf("unsupported parameter type '%s'", annotation.Lexeme))
				return false
			}
		}
		fn.Params = append(fn.Params, &ast.Param{
			Pos:   name.Position,
			Name:  name.Lexeme,
			Index: index,
			Type:  paramType,
		})
		index++
	}
	if !p.expectOk(RIGHT_PAREN, "expected ')' after parameters") {
		return false
	}

	if p.match(ARROW) {
		annotation, ok := p.expect(IDENT, "expected return type annotation")
		if !ok {
			return false
		}
		if annotation.Lexeme != "None" {
			returnType, ok := annotationType(annotation.Lexeme)
			if !ok {
				p.errorAt(annotation.Position,
					fmt.Sprintf("unsupported return type '%s'", annotation.Lexeme))
				return false
			}
			fn.Return = returnType
		}
	}

	return p.expectOk(COLON, "expected ':' after function signature")
}

// annotationType maps Python annotations onto the fixed type vocabulary.
func annotationType(name string) (ast.Type, bool) {
	switch name {
	case "int", "bool":
		return ast.TypeUint256, true
	case "str", "address":
		return ast.TypeAddress, true
	case "bytes":
		return ast.TypeBytes32, true
	default:
		return "", false
	}
}

// parseConstructor processes __init__: every "self.x = ..." there is a
// state variable declaration. Slots are handed out in first-declaration
// order; re-assigning a declared name only replaces its initial value.
func (p *Parser) parseConstructor() {
	if !p.expectOk(LEFT_PAREN, "expected '(' after '__init__'") {
		p.skipBlock()
		return
	}
	self, ok := p.expect(IDENT, "expected 'self' parameter in '__init__'")
	if !ok {
		p.skipBlock()
		return
	}
	if self.Lexeme != "self" {
		p.errorAt(self.Position, "expected 'self' parameter in '__init__'")
		p.skipBlock()
		return
	}
	if !p.expectOk(RIGHT_PAREN, "'__init__' takes no parameters besides self") ||
		!p.expectOk(COLON, "expected ':' after '__init__' signature") {
		p.skipBlock()
		return
	}
	p.match(NEWLINE)
	if !p.expectOk(INDENT, "expected an indented constructor body") {
		return
	}

	for !p.check(DEDENT) && !p.check(EOF) {
		switch {
		case p.match(NEWLINE):
		case p.check(STRING):
			p.advance()
			p.match(NEWLINE)
		case p.match(PASS):
			p.match(NEWLINE)
		case p.check(IDENT) && p.peek().Lexeme == "super":
			p.skipLogicalLine()
		case p.check(IDENT) && p.peek().Lexeme == "self":
			p.parseStateVarDecl()
		default:
			p.errorAt(p.peek().Position,
				"unsupported constructor statement (only state variable declarations are allowed)")
			p.skipBlock()
		}
	}
	p.match(DEDENT)
}

func (p *Parser) parseStateVarDecl() {
	p.advance() // self
	if !p.expectOk(DOT, "expected '.' after 'self'") {
		p.skipLogicalLine()
		return
	}
	name, ok := p.expect(IDENT, "expected state variable name")
	if !ok {
		p.skipLogicalLine()
		return
	}
	if !p.expectOk(EQUAL, "expected '=' in state variable declaration") {
		p.skipLogicalLine()
		return
	}

	varType, initial, ok := p.parseStateVarDefault(name)
	if !ok {
		p.skipLogicalLine()
		return
	}
	p.match(NEWLINE)

	if existing := p.stateIndex[name.Lexeme]; existing != nil {
		// Slot stays with the first declaration.
		existing.Type = varType
		existing.Initial = initial
		return
	}
	sv := &ast.StateVar{
		Pos:     name.Position,
		Name:    name.Lexeme,
		Slot:    len(p.contract.StateVars),
		Type:    varType,
		Initial: initial,
	}
	p.stateIndex[sv.Name] = sv
	p.contract.StateVars = append(p.contract.StateVars, sv)
}

// parseStateVarDefault parses the right-hand side of a declaration,
// either the explicit form self.state_var("name", default) or a bare
// constant default. The default must be a compile-time constant.
func (p *Parser) parseStateVarDefault(name Token) (ast.Type, *big.Int, bool) {
	// Explicit declaration call.
	if p.check(IDENT) && p.peek().Lexeme == "self" && p.peekNext().Type == DOT {
		p.advance()
		p.advance()
		call, ok := p.expect(IDENT, "expected 'state_var' declaration call")
		if !ok {
			return "", nil, false
		}
		if call.Lexeme != "state_var" {
			p.errorAt(call.Position, "state variable defaults must be compile-time constants")
			return "", nil, false
		}
		if !p.expectOk(LEFT_PAREN, "expected '(' after 'state_var'") {
			return "", nil, false
		}
		label, ok := p.expect(STRING, "expected the state variable name as a string literal")
		if !ok {
			return "", nil, false
		}
		if label.Lexeme != name.Lexeme {
			p.errorAt(label.Position,
				fmt.Sprintf("state_var name %q does not match attribute name %q", label.Lexeme, name.Lexeme))
			return "", nil, false
		}
		if !p.expectOk(COMMA, "expected a default value in 'state_var'") {
			return "", nil, false
		}
		varType, initial, ok := p.parseConstDefault()
		if !ok {
			return "", nil, false
		}
		if !p.expectOk(RIGHT_PAREN, "expected ')' after 'state_var' arguments") {
			return "", nil, false
		}
		return varType, initial, true
	}
	return p.parseConstDefault()
}

func (p *Parser) parseConstDefault() (ast.Type, *big.Int, bool) {
	switch {
	case p.check(LEFT_BRACE):
		p.advance()
		if !p.expectOk(RIGHT_BRACE, "mapping defaults must be the empty dict '{}'") {
			return "", nil, false
		}
		return ast.TypeMapping, nil, true

	case p.check(STRING):
		tok := p.advance()
		if len(tok.Lexeme) > 32 {
			p.errorAt(tok.Position, "string defaults are limited to 32 bytes")
			return "", nil, false
		}
		padded := make([]byte, 32)
		copy(padded, tok.Lexeme)
		return ast.TypeBytes32, new(big.Int).SetBytes(padded), true

	case p.check(IDENT) && (p.peek().Lexeme == "True" || p.peek().Lexeme == "False"):
		tok := p.advance()
		value := big.NewInt(0)
		if tok.Lexeme == "True" {
			value = big.NewInt(1)
		}
		return ast.TypeUint256, value, true

	case p.check(IDENT) && p.peek().Lexeme == "address":
		p.advance()
		if !p.expectOk(LEFT_PAREN, "expected '(' after 'address'") {
			return "", nil, false
		}
		value, ok := p.parseConstExpr()
		if !ok {
			return "", nil, false
		}
		if !p.expectOk(RIGHT_PAREN, "expected ')' after address value") {
			return "", nil, false
		}
		return ast.TypeAddress, value, true

	case p.check(IDENT) && p.peek().Lexeme == "msg":
		p.errorAt(p.peek().Position,
			"state variable defaults must be compile-time constants ('msg.sender' is only known at call time)")
		return "", nil, false

	default:
		value, ok := p.parseConstExpr()
		if !ok {
			return "", nil, false
		}
		return ast.TypeUint256, value, true
	}
}

// Token stream helpers.

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) peekNext() Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != EOF {
		p.current++
	}
	return tok
}

func (p *Parser) check(t TokenType) bool { return p.peek().Type == t }

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType, message string) (Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	tok := p.peek()
	p.errorAt(tok.Position, fmt.Sprintf("%s, found %s", message, tok.Type))
	return tok, false
}

func (p *Parser) expectOk(t TokenType, message string) bool {
	_, ok := p.expect(t, message)
	return ok
}

func (p *Parser) errorAt(pos ast.Position, message string) {
	p.errors = append(p.errors, ParseError{Message: message, Position: pos})
}

// skipLogicalLine drops tokens through the next NEWLINE. Used for error
// recovery and for boundary constructs we deliberately ignore (imports,
// super().__init__()).
func (p *Parser) skipLogicalLine() {
	for !p.check(NEWLINE) && !p.check(EOF) && !p.check(DEDENT) {
		p.advance()
	}
	p.match(NEWLINE)
}

// skipBlock drops a malformed statement or definition including the
// indented suite that follows it, if any. Dropping the suite here keeps
// its INDENT/DEDENT pair balanced, so recovery never leaks layout
// tokens into an enclosing block.
func (p *Parser) skipBlock() {
	p.skipLogicalLine()
	if !p.match(INDENT) {
		return
	}
	depth := 1
	for depth > 0 && !p.check(EOF) {
		switch p.advance().Type {
		case INDENT:
			depth++
		case DEDENT:
			depth--
		}
	}
}
