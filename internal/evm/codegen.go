// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"fmt"

	"pymon/internal/ast"
)

// Generator compiles contract model nodes into the shared Buffer.
// Every expression leaves exactly one word on the stack; every
// statement leaves the stack as it found it.
type Generator struct {
	buf      *Buffer
	contract *ast.Contract
}

func NewGenerator(buf *Buffer, contract *ast.Contract) *Generator {
	return &Generator{buf: buf, contract: contract}
}

// emitBody compiles a function body. Control that falls off the end of
// a body halts; an executed return statement never reaches the STOP.
func (g *Generator) emitBody(fn *ast.Function) error {
	for _, stmt := range fn.Body {
		if err := g.stmt(stmt); err != nil {
			return err
		}
	}
	g.buf.EmitOp(STOP)
	return nil
}

func (g *Generator) stmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		sv := g.contract.StateVar(s.Target)
		if sv == nil {
			return fmt.Errorf("assignment to undeclared state variable %q", s.Target)
		}
		if err := g.expr(s.Value); err != nil {
			return err
		}
		g.buf.EmitPushInt(int64(sv.Slot))
		g.buf.EmitOp(SSTORE)
		return nil

	case *ast.MappingAssignStmt:
		sv := g.contract.StateVar(s.Target)
		if sv == nil {
			return fmt.Errorf("assignment to undeclared mapping %q", s.Target)
		}
		if err := g.expr(s.Value); err != nil {
			return err
		}
		if err := g.emitMappingSlot(s.Key, sv.Slot); err != nil {
			return err
		}
		g.buf.EmitOp(SSTORE)
		return nil

	case *ast.IfStmt:
		return g.ifStmt(s)

	case *ast.ReturnStmt:
		if s.Value == nil {
			g.buf.EmitPushInt(0)
			g.buf.EmitPushInt(0)
			g.buf.EmitOp(RETURN)
			return nil
		}
		if err := g.expr(s.Value); err != nil {
			return err
		}
		g.buf.EmitPushInt(0)
		g.buf.EmitOp(MSTORE)
		g.buf.EmitPushInt(32)
		g.buf.EmitPushInt(0)
		g.buf.EmitOp(RETURN)
		return nil

	case *ast.ExprStmt:
		switch s.X.(type) {
		case *ast.RequireExpr, *ast.EmitExpr:
			// Recorded in the model, no runtime footprint.
			return nil
		}
		return unsupported(s.X)
	}
	return unsupported(stmt)
}

// ifStmt inverts the test and jumps over the then block:
//
//	<cond> ISZERO JUMPI else
//	<then> JUMP end
//	else: JUMPDEST <else>
//	end:  JUMPDEST
func (g *Generator) ifStmt(s *ast.IfStmt) error {
	if err := g.expr(s.Cond); err != nil {
		return err
	}
	g.buf.EmitOp(ISZERO)
	elseRef := g.buf.ReserveJumpTarget()
	g.buf.EmitOp(JUMPI)

	for _, stmt := range s.Then {
		if err := g.stmt(stmt); err != nil {
			return err
		}
	}
	endRef := g.buf.ReserveJumpTarget()
	g.buf.EmitOp(JUMP)

	if err := g.buf.Patch(elseRef, g.buf.Offset()); err != nil {
		return err
	}
	g.buf.EmitOp(JUMPDEST)
	for _, stmt := range s.Else {
		if err := g.stmt(stmt); err != nil {
			return err
		}
	}

	if err := g.buf.Patch(endRef, g.buf.Offset()); err != nil {
		return err
	}
	g.buf.EmitOp(JUMPDEST)
	return nil
}

func (g *Generator) expr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.ConstantExpr:
		return g.buf.EmitPush(e.Value)

	case *ast.ParamExpr:
		// Word i of the argument block, after the 4-byte selector.
		g.buf.EmitPushInt(int64(4 + 32*e.Index))
		g.buf.EmitOp(CALLDATALOAD)
		return nil

	case *ast.StateExpr:
		sv := g.contract.StateVar(e.Name)
		if sv == nil {
			return fmt.Errorf("read of undeclared state variable %q", e.Name)
		}
		g.buf.EmitPushInt(int64(sv.Slot))
		g.buf.EmitOp(SLOAD)
		return nil

	case *ast.MappingExpr:
		sv := g.contract.StateVar(e.Name)
		if sv == nil {
			return fmt.Errorf("read of undeclared mapping %q", e.Name)
		}
		if err := g.emitMappingSlot(e.Key, sv.Slot); err != nil {
			return err
		}
		g.buf.EmitOp(SLOAD)
		return nil

	case *ast.BinaryExpr:
		return g.binary(e)

	case *ast.CompareExpr:
		return g.compare(e)

	case *ast.CallerExpr:
		g.buf.EmitOp(CALLER)
		return nil

	case *ast.TimestampExpr:
		g.buf.EmitOp(TIMESTAMP)
		return nil
	}
	return unsupported(expr)
}

// binary evaluates left then right, so the right operand ends up on
// top. SUB, DIV and MOD consume the top operand as the left-hand side,
// which is backwards for that layout; SWAP1 restores source order.
func (g *Generator) binary(e *ast.BinaryExpr) error {
	if err := g.expr(e.Left); err != nil {
		return err
	}
	if err := g.expr(e.Right); err != nil {
		return err
	}
	switch e.Op {
	case "+":
		g.buf.EmitOp(ADD)
	case "*":
		g.buf.EmitOp(MUL)
	case "-":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(SUB)
	case "/":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(DIV)
	case "%":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(MOD)
	default:
		return fmt.Errorf("unknown arithmetic operator %q", e.Op)
	}
	return nil
}

// compare produces 1 or 0. LT and GT read the top of the stack as their
// left operand, so SWAP1 puts the source-order left operand there; the
// non-strict forms negate their strict complement.
func (g *Generator) compare(e *ast.CompareExpr) error {
	if err := g.expr(e.Left); err != nil {
		return err
	}
	if err := g.expr(e.Right); err != nil {
		return err
	}
	switch e.Op {
	case "==":
		g.buf.EmitOp(EQ)
	case "<":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(LT)
	case ">":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(GT)
	case "<=":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(GT)
		g.buf.EmitOp(ISZERO)
	case ">=":
		g.buf.EmitOp(SWAP1)
		g.buf.EmitOp(LT)
		g.buf.EmitOp(ISZERO)
	default:
		return fmt.Errorf("unknown comparison operator %q", e.Op)
	}
	return nil
}
