// SPDX-License-Identifier: Apache-2.0
package ast

import "math/big"

// Expr is the closed set of expression forms the backend compiles.
// Every compiled expression leaves exactly one 32-byte word on the stack.
type Expr interface {
	Node
	exprNode()
}

// ConstantExpr is an integer literal, constant-folded where the source
// allowed folding (e.g. "2000 * 10**18").
type ConstantExpr struct {
	Pos   Position
	Value *big.Int
}

// ParamExpr reads a function parameter from calldata.
// Index fixes the word offset: 4 + Index*32.
type ParamExpr struct {
	Pos   Position
	Name  string
	Index int
}

// StateExpr reads a plain state variable from its storage slot.
// Example: "self.count"
type StateExpr struct {
	Pos  Position
	Name string
}

// MappingExpr reads a mapping entry through the hash-derived slot.
// Example: "self.balances[account]" or "self.balances.get(account, 0)"
type MappingExpr struct {
	Pos  Position
	Name string
	Key  Expr
}

// BinaryExpr is integer arithmetic. Op is one of + - * / %.
type BinaryExpr struct {
	Pos   Position
	Op    string
	Left  Expr
	Right Expr
}

// CompareExpr is an integer comparison. Op is one of == < > <= >=.
type CompareExpr struct {
	Pos   Position
	Op    string
	Left  Expr
	Right Expr
}

// CallerExpr reads the calling address. Example: "msg.sender"
type CallerExpr struct {
	Pos Position
}

// TimestampExpr reads the current block timestamp. Example: "block.timestamp"
type TimestampExpr struct {
	Pos Position
}

// EmitExpr is an event emission call. It only appears in statement
// position and compiles to nothing; it exists so the model records the
// event vocabulary for the ABI.
// Example: "self.event(\"Transfer\", sender, recipient, amount)"
type EmitExpr struct {
	Pos   Position
	Event string
	Args  []Expr
}

// RequireExpr is a require-style assertion call in statement position.
// Example: "require(self.count > 0, \"underflow\")"
type RequireExpr struct {
	Pos     Position
	Cond    Expr
	Message string
}

func (e *ConstantExpr) NodePos() Position  { return e.Pos }
func (e *ParamExpr) NodePos() Position     { return e.Pos }
func (e *StateExpr) NodePos() Position     { return e.Pos }
func (e *MappingExpr) NodePos() Position   { return e.Pos }
func (e *BinaryExpr) NodePos() Position    { return e.Pos }
func (e *CompareExpr) NodePos() Position   { return e.Pos }
func (e *CallerExpr) NodePos() Position    { return e.Pos }
func (e *TimestampExpr) NodePos() Position { return e.Pos }
func (e *EmitExpr) NodePos() Position      { return e.Pos }
func (e *RequireExpr) NodePos() Position   { return e.Pos }

func (e *ConstantExpr) exprNode()  {}
func (e *ParamExpr) exprNode()     {}
func (e *StateExpr) exprNode()     {}
func (e *MappingExpr) exprNode()   {}
func (e *BinaryExpr) exprNode()    {}
func (e *CompareExpr) exprNode()   {}
func (e *CallerExpr) exprNode()    {}
func (e *TimestampExpr) exprNode() {}
func (e *EmitExpr) exprNode()      {}
func (e *RequireExpr) exprNode()   {}

// Describe names a node kind for diagnostics.
func Describe(n Node) string {
	switch n.(type) {
	case *AssignStmt:
		return "state assignment"
	case *MappingAssignStmt:
		return "mapping assignment"
	case *IfStmt:
		return "if statement"
	case *ReturnStmt:
		return "return statement"
	case *ExprStmt:
		return "expression statement"
	case *ConstantExpr:
		return "integer constant"
	case *ParamExpr:
		return "parameter reference"
	case *StateExpr:
		return "state variable read"
	case *MappingExpr:
		return "mapping read"
	case *BinaryExpr:
		return "arithmetic expression"
	case *CompareExpr:
		return "comparison"
	case *CallerExpr:
		return "caller address"
	case *TimestampExpr:
		return "block timestamp"
	case *EmitExpr:
		return "event emission"
	case *RequireExpr:
		return "require assertion"
	default:
		return "unknown construct"
	}
}
