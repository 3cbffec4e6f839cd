// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"fmt"

	"pymon/internal/ast"
)

// parseSuite parses an indented statement block after a ':' header.
func (p *Parser) parseSuite(fn *ast.Function) []ast.Stmt {
	p.match(NEWLINE)
	if !p.expectOk(INDENT, "expected an indented block") {
		return nil
	}

	var stmts []ast.Stmt
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.match(NEWLINE) {
			continue
		}
		if stmt := p.parseStatement(fn); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.match(DEDENT)
	return stmts
}

// parseStatement parses one statement of the supported grammar, or
// records a ParseError and resynchronizes at the next line. A nil
// result with no error means the statement carries no code (docstring,
// pass).
func (p *Parser) parseStatement(fn *ast.Function) ast.Stmt {
	tok := p.peek()
	switch tok.Type {
	case STRING:
		// Docstring.
		p.advance()
		p.match(NEWLINE)
		return nil

	case PASS:
		p.advance()
		p.match(NEWLINE)
		return nil

	case RETURN:
		return p.parseReturn()

	case IF:
		return p.parseIf(fn)

	case IDENT:
		switch tok.Lexeme {
		case "require":
			return p.parseRequire()
		case "self":
			return p.parseSelfStatement()
		}
	}

	p.errorAt(tok.Position, fmt.Sprintf("unsupported statement: %s", tok.Type))
	p.skipBlock()
	return nil
}

func (p *Parser) parseReturn() ast.Stmt {
	tok := p.advance() // RETURN
	stmt := &ast.ReturnStmt{Pos: tok.Position}
	if !p.check(NEWLINE) && !p.check(DEDENT) && !p.check(EOF) {
		value, ok := p.parseExpression()
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		stmt.Value = value
	}
	p.match(NEWLINE)
	return stmt
}

func (p *Parser) parseIf(fn *ast.Function) ast.Stmt {
	tok := p.advance() // IF
	cond, ok := p.parseExpression()
	if !ok {
		// A rejected header still owns its suite.
		p.skipBlock()
		return nil
	}
	if !p.expectOk(COLON, "expected ':' after if condition") {
		p.skipBlock()
		return nil
	}
	stmt := &ast.IfStmt{Pos: tok.Position, Cond: cond}
	stmt.Then = p.parseSuite(fn)

	if p.check(ELSE) {
		p.advance()
		if !p.expectOk(COLON, "expected ':' after 'else'") {
			p.skipBlock()
			return stmt
		}
		stmt.Else = p.parseSuite(fn)
	} else if p.check(IDENT) && p.peek().Lexeme == "elif" {
		p.errorAt(p.peek().Position, "'elif' is not supported; nest an if statement inside else")
		p.skipBlock()
	}
	return stmt
}

// parseRequire parses "require(cond)" or "require(cond, \"message\")".
// Assertions are recorded in the model but generate no code.
func (p *Parser) parseRequire() ast.Stmt {
	tok := p.advance() // require
	if !p.expectOk(LEFT_PAREN, "expected '(' after 'require'") {
		p.skipLogicalLine()
		return nil
	}
	cond, ok := p.parseExpression()
	if !ok {
		p.skipLogicalLine()
		return nil
	}
	expr := &ast.RequireExpr{Pos: tok.Position, Cond: cond}
	if p.match(COMMA) {
		message, ok := p.expect(STRING, "expected a string message in 'require'")
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		expr.Message = message.Lexeme
	}
	if !p.expectOk(RIGHT_PAREN, "expected ')' after 'require' arguments") {
		p.skipLogicalLine()
		return nil
	}
	p.match(NEWLINE)
	return &ast.ExprStmt{Pos: tok.Position, X: expr}
}

// parseSelfStatement parses the statements that start with "self.":
// state assignment, mapping assignment, and event emission.
func (p *Parser) parseSelfStatement() ast.Stmt {
	selfTok := p.advance() // self
	if !p.expectOk(DOT, "expected '.' after 'self'") {
		p.skipLogicalLine()
		return nil
	}
	attr, ok := p.expect(IDENT, "expected an attribute name after 'self.'")
	if !ok {
		p.skipLogicalLine()
		return nil
	}

	if attr.Lexeme == "event" {
		return p.parseEmit(selfTok)
	}

	sv := p.contract.StateVar(attr.Lexeme)
	if sv == nil {
		p.errorAt(attr.Position, fmt.Sprintf("unknown state variable 'self.%s'", attr.Lexeme))
		p.skipLogicalLine()
		return nil
	}

	switch {
	case p.match(LEFT_BRACKET):
		if sv.Type != ast.TypeMapping {
			p.errorAt(attr.Position, fmt.Sprintf("'self.%s' is not a mapping", attr.Lexeme))
			p.skipLogicalLine()
			return nil
		}
		key, ok := p.parseExpression()
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		if !p.expectOk(RIGHT_BRACKET, "expected ']' after mapping key") ||
			!p.expectOk(EQUAL, "expected '=' in mapping assignment") {
			p.skipLogicalLine()
			return nil
		}
		value, ok := p.parseExpression()
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		p.match(NEWLINE)
		return &ast.MappingAssignStmt{Pos: selfTok.Position, Target: sv.Name, Key: key, Value: value}

	case p.match(EQUAL):
		if sv.Type == ast.TypeMapping {
			p.errorAt(attr.Position, fmt.Sprintf("cannot assign to mapping 'self.%s' without a key", attr.Lexeme))
			p.skipLogicalLine()
			return nil
		}
		value, ok := p.parseExpression()
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		p.match(NEWLINE)
		return &ast.AssignStmt{Pos: selfTok.Position, Target: sv.Name, Value: value}

	default:
		p.errorAt(p.peek().Position, "expected '=' or '[' after state variable reference")
		p.skipLogicalLine()
		return nil
	}
}

// parseEmit parses self.event("Name", args...) and registers the event
// with its parameter type list in the model.
func (p *Parser) parseEmit(selfTok Token) ast.Stmt {
	if !p.expectOk(LEFT_PAREN, "expected '(' after 'self.event'") {
		p.skipLogicalLine()
		return nil
	}
	name, ok := p.expect(STRING, "expected the event name as a string literal")
	if !ok {
		p.skipLogicalLine()
		return nil
	}

	emit := &ast.EmitExpr{Pos: selfTok.Position, Event: name.Lexeme}
	for p.match(COMMA) {
		arg, ok := p.parseExpression()
		if !ok {
			p.skipLogicalLine()
			return nil
		}
		emit.Args = append(emit.Args, arg)
	}
	if !p.expectOk(RIGHT_PAREN, "expected ')' after event arguments") {
		p.skipLogicalLine()
		return nil
	}
	p.match(NEWLINE)

	p.registerEvent(name.Position, emit)
	return &ast.ExprStmt{Pos: selfTok.Position, X: emit}
}

func (p *Parser) registerEvent(pos ast.Position, emit *ast.EmitExpr) {
	paramTypes := make([]ast.Type, len(emit.Args))
	for i, arg := range emit.Args {
		paramTypes[i] = p.eventParamType(arg)
	}

	if existing := p.eventIndex[emit.Event]; existing != nil {
		if len(existing.ParamTypes) != len(paramTypes) {
			p.errorAt(pos, fmt.Sprintf("event '%s' emitted with %d argument(s), previously %d",
				emit.Event, len(paramTypes), len(existing.ParamTypes)))
		}
		return
	}
	event := &ast.Event{Pos: pos, Name: emit.Event, ParamTypes: paramTypes}
	p.eventIndex[event.Name] = event
	p.contract.Events = append(p.contract.Events, event)
}

func (p *Parser) eventParamType(arg ast.Expr) ast.Type {
	switch e := arg.(type) {
	case *ast.CallerExpr:
		return ast.TypeAddress
	case *ast.ParamExpr:
		if param := p.params[e.Name]; param != nil {
			return param.Type
		}
	case *ast.StateExpr:
		if sv := p.stateIndex[e.Name]; sv != nil && sv.Type != ast.TypeMapping {
			return sv.Type
		}
	}
	return ast.TypeUint256
}
