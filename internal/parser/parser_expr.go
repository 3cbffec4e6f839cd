// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"fmt"
	"math/big"
	"strings"

	"pymon/internal/ast"
)

var (
	// maxWord is the largest value a 256-bit stack word can carry.
	maxWord = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	// wordModulus reduces folded results the way the stack machine does.
	wordModulus = new(big.Int).Lsh(big.NewInt(1), 256)
)

// parseExpression parses the fixed expression grammar:
//
//	comparison := additive (('==' | '<' | '>' | '<=' | '>=') additive)?
//	additive   := multiplicative (('+' | '-') multiplicative)*
//	multiplicative := power (('*' | '/' | '//' | '%') power)*
//	power      := primary ('**' power)?          // constants only
//	primary    := NUMBER | '(' expr ')' | param | self.var
//	            | self.map[key] | self.map.get(key, 0)
//	            | msg.sender | block.timestamp
func (p *Parser) parseExpression() (ast.Expr, bool) {
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expr, bool) {
	left, ok := p.parseAdditive()
	if !ok {
		return nil, false
	}

	var op string
	tok := p.peek()
	switch tok.Type {
	case EQUAL_EQUAL:
		op = "=="
	case LESS:
		op = "<"
	case GREATER:
		op = ">"
	case LESS_EQUAL:
		op = "<="
	case GREATER_EQUAL:
		op = ">="
	case BANG_EQUAL:
		p.errorAt(tok.Position, "comparison '!=' is not supported")
		return nil, false
	default:
		return left, true
	}
	p.advance()

	right, ok := p.parseAdditive()
	if !ok {
		return nil, false
	}
	return &ast.CompareExpr{Pos: tok.Position, Op: op, Left: left, Right: right}, true
}

func (p *Parser) parseAdditive() (ast.Expr, bool) {
	left, ok := p.parseMultiplicative()
	if !ok {
		return nil, false
	}
	for p.check(PLUS) || p.check(MINUS) {
		tok := p.advance()
		op := "+"
		if tok.Type == MINUS {
			op = "-"
		}
		right, ok := p.parseMultiplicative()
		if !ok {
			return nil, false
		}
		left, ok = p.makeBinary(tok.Position, op, left, right)
		if !ok {
			return nil, false
		}
	}
	return left, true
}

func (p *Parser) parseMultiplicative() (ast.Expr, bool) {
	left, ok := p.parsePower()
	if !ok {
		return nil, false
	}
	for p.check(STAR) || p.check(SLASH) || p.check(SLASH_SLASH) || p.check(PERCENT) {
		tok := p.advance()
		var op string
		switch tok.Type {
		case STAR:
			op = "*"
		case SLASH, SLASH_SLASH:
			// Integer words only, so true and floor division coincide.
			op = "/"
		case PERCENT:
			op = "%"
		}
		right, ok := p.parsePower()
		if !ok {
			return nil, false
		}
		left, ok = p.makeBinary(tok.Position, op, left, right)
		if !ok {
			return nil, false
		}
	}
	return left, true
}

// parsePower handles '**', which only exists for constant expressions
// like "10**18"; there is no exponentiation at runtime.
func (p *Parser) parsePower() (ast.Expr, bool) {
	base, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	if !p.check(STAR_STAR) {
		return base, true
	}
	tok := p.advance()
	exponent, ok := p.parsePower()
	if !ok {
		return nil, false
	}

	baseConst, baseOk := base.(*ast.ConstantExpr)
	expConst, expOk := exponent.(*ast.ConstantExpr)
	if !baseOk || !expOk {
		p.errorAt(tok.Position, "exponentiation requires constant operands")
		return nil, false
	}
	if !expConst.Value.IsInt64() || expConst.Value.Int64() > 512 {
		p.errorAt(tok.Position, "exponent is too large")
		return nil, false
	}
	value := new(big.Int).Exp(baseConst.Value, expConst.Value, nil)
	if value.Cmp(maxWord) > 0 {
		p.errorAt(tok.Position, "constant exceeds 256 bits")
		return nil, false
	}
	return &ast.ConstantExpr{Pos: baseConst.Pos, Value: value}, true
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		value, err := parseNumber(tok.Lexeme)
		if err != nil {
			p.errorAt(tok.Position, err.Error())
			return nil, false
		}
		return &ast.ConstantExpr{Pos: tok.Position, Value: value}, true

	case LEFT_PAREN:
		p.advance()
		inner, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if !p.expectOk(RIGHT_PAREN, "expected ')'") {
			return nil, false
		}
		return inner, true

	case IDENT:
		return p.parseNameExpr()
	}

	p.errorAt(tok.Position, fmt.Sprintf("unsupported expression: %s", tok.Type))
	return nil, false
}

func (p *Parser) parseNameExpr() (ast.Expr, bool) {
	tok := p.advance()
	switch tok.Lexeme {
	case "msg":
		if !p.expectOk(DOT, "expected '.' after 'msg'") {
			return nil, false
		}
		attr, ok := p.expect(IDENT, "expected an attribute after 'msg.'")
		if !ok {
			return nil, false
		}
		if attr.Lexeme != "sender" {
			p.errorAt(attr.Position, fmt.Sprintf("unsupported reference 'msg.%s'", attr.Lexeme))
			return nil, false
		}
		return &ast.CallerExpr{Pos: tok.Position}, true

	case "block":
		if !p.expectOk(DOT, "expected '.' after 'block'") {
			return nil, false
		}
		attr, ok := p.expect(IDENT, "expected an attribute after 'block.'")
		if !ok {
			return nil, false
		}
		if attr.Lexeme != "timestamp" {
			p.errorAt(attr.Position, fmt.Sprintf("unsupported reference 'block.%s'", attr.Lexeme))
			return nil, false
		}
		return &ast.TimestampExpr{Pos: tok.Position}, true

	case "self":
		return p.parseSelfExpr(tok)

	default:
		if param := p.params[tok.Lexeme]; param != nil {
			return &ast.ParamExpr{Pos: tok.Position, Name: param.Name, Index: param.Index}, true
		}
		p.errorAt(tok.Position, fmt.Sprintf("undefined name '%s' (only parameters, state and constants are supported)", tok.Lexeme))
		return nil, false
	}
}

// parseSelfExpr parses the value forms of self.<attr>: a plain state
// read, an indexed mapping read, or the dict-style .get(key, 0).
func (p *Parser) parseSelfExpr(selfTok Token) (ast.Expr, bool) {
	if !p.expectOk(DOT, "expected '.' after 'self'") {
		return nil, false
	}
	attr, ok := p.expect(IDENT, "expected an attribute name after 'self.'")
	if !ok {
		return nil, false
	}
	sv := p.contract.StateVar(attr.Lexeme)
	if sv == nil {
		p.errorAt(attr.Position, fmt.Sprintf("unknown state variable 'self.%s'", attr.Lexeme))
		return nil, false
	}

	switch {
	case p.match(LEFT_BRACKET):
		if sv.Type != ast.TypeMapping {
			p.errorAt(attr.Position, fmt.Sprintf("'self.%s' is not a mapping", attr.Lexeme))
			return nil, false
		}
		key, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if !p.expectOk(RIGHT_BRACKET, "expected ']' after mapping key") {
			return nil, false
		}
		return &ast.MappingExpr{Pos: selfTok.Position, Name: sv.Name, Key: key}, true

	case p.check(DOT) && p.peekNext().Lexeme == "get":
		if sv.Type != ast.TypeMapping {
			p.errorAt(attr.Position, fmt.Sprintf("'self.%s' is not a mapping", attr.Lexeme))
			return nil, false
		}
		p.advance() // DOT
		p.advance() // get
		if !p.expectOk(LEFT_PAREN, "expected '(' after '.get'") {
			return nil, false
		}
		key, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if !p.expectOk(COMMA, "expected a default value in '.get'") {
			return nil, false
		}
		dflt, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		constDflt, isConst := dflt.(*ast.ConstantExpr)
		if !isConst || constDflt.Value.Sign() != 0 {
			p.errorAt(selfTok.Position, "mapping '.get' default must be the literal 0 (unset storage reads as zero)")
			return nil, false
		}
		if !p.expectOk(RIGHT_PAREN, "expected ')' after '.get' arguments") {
			return nil, false
		}
		return &ast.MappingExpr{Pos: selfTok.Position, Name: sv.Name, Key: key}, true

	default:
		if sv.Type == ast.TypeMapping {
			p.errorAt(attr.Position, fmt.Sprintf("mapping 'self.%s' requires a key", attr.Lexeme))
			return nil, false
		}
		return &ast.StateExpr{Pos: selfTok.Position, Name: sv.Name}, true
	}
}

// makeBinary folds constant operands and otherwise builds a BinaryExpr.
// Folding mirrors what the emitted code computes, so a literal operand
// pair behaves exactly like the same values arriving in parameters:
// words wrap mod 2^256 and a zero divisor yields zero. State variable
// defaults fold strictly instead, since a wrapped or zeroed default is
// a mistake the author should hear about.
func (p *Parser) makeBinary(pos ast.Position, op string, left, right ast.Expr) (ast.Expr, bool) {
	leftConst, leftOk := left.(*ast.ConstantExpr)
	rightConst, rightOk := right.(*ast.ConstantExpr)
	if !leftOk || !rightOk {
		return &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}, true
	}
	if p.strictFold {
		value, err := foldStrict(op, leftConst.Value, rightConst.Value)
		if err != nil {
			p.errorAt(pos, err.Error())
			return nil, false
		}
		return &ast.ConstantExpr{Pos: leftConst.Pos, Value: value}, true
	}
	return &ast.ConstantExpr{Pos: leftConst.Pos, Value: foldWord(op, leftConst.Value, rightConst.Value)}, true
}

// foldWord applies op with stack-word semantics: the result the ADD,
// SUB, MUL, DIV or MOD instruction would leave for the same operands.
func foldWord(op string, left, right *big.Int) *big.Int {
	result := new(big.Int)
	switch op {
	case "+":
		result.Add(left, right)
	case "-":
		result.Sub(left, right)
	case "*":
		result.Mul(left, right)
	case "/":
		if right.Sign() == 0 {
			return result
		}
		result.Div(left, right)
	case "%":
		if right.Sign() == 0 {
			return result
		}
		result.Mod(left, right)
	}
	return result.Mod(result, wordModulus)
}

func foldStrict(op string, left, right *big.Int) (*big.Int, error) {
	result := new(big.Int)
	switch op {
	case "+":
		result.Add(left, right)
	case "-":
		result.Sub(left, right)
		if result.Sign() < 0 {
			return nil, fmt.Errorf("constant expression is negative")
		}
	case "*":
		result.Mul(left, right)
	case "/":
		if right.Sign() == 0 {
			return nil, fmt.Errorf("constant division by zero")
		}
		result.Div(left, right)
	case "%":
		if right.Sign() == 0 {
			return nil, fmt.Errorf("constant modulo by zero")
		}
		result.Mod(left, right)
	default:
		return nil, fmt.Errorf("cannot fold operator %q", op)
	}
	if result.Cmp(maxWord) > 0 {
		return nil, fmt.Errorf("constant exceeds 256 bits")
	}
	return result, nil
}

// parseConstExpr parses an expression that must fold to a constant,
// used for state variable defaults.
func (p *Parser) parseConstExpr() (*big.Int, bool) {
	tok := p.peek()
	p.strictFold = true
	expr, ok := p.parseExpression()
	p.strictFold = false
	if !ok {
		return nil, false
	}
	constant, isConst := expr.(*ast.ConstantExpr)
	if !isConst {
		p.errorAt(tok.Position, "state variable defaults must be compile-time constants")
		return nil, false
	}
	return constant.Value, true
}

func parseNumber(lexeme string) (*big.Int, error) {
	cleaned := strings.ReplaceAll(lexeme, "_", "")
	value, ok := new(big.Int).SetString(cleaned, 0)
	if !ok {
		return nil, fmt.Errorf("malformed number literal %q", lexeme)
	}
	if value.Cmp(maxWord) > 0 {
		return nil, fmt.Errorf("constant exceeds 256 bits")
	}
	return value, nil
}
