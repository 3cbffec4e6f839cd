// SPDX-License-Identifier: Apache-2.0
package ast

// Stmt is the closed set of statement forms the backend compiles.
// Anything outside this set is rejected at model-build time.
type Stmt interface {
	Node
	stmtNode()
}

// Node is implemented by every model node and carries its source position.
type Node interface {
	NodePos() Position
}

// AssignStmt stores a value into a plain state variable.
// Example: "self.count = self.count + 1"
type AssignStmt struct {
	Pos    Position
	Target string // state variable name
	Value  Expr
}

// MappingAssignStmt stores a value under a key of a mapping state variable.
// Example: "self.balances[account] = amount"
type MappingAssignStmt struct {
	Pos    Position
	Target string // mapping state variable name
	Key    Expr
	Value  Expr
}

// IfStmt is a two-way conditional. Else may be empty.
type IfStmt struct {
	Pos  Position
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// ReturnStmt returns a single 32-byte word, or nothing when Value is nil.
type ReturnStmt struct {
	Pos   Position
	Value Expr
}

// ExprStmt is an expression in statement position. Event emissions and
// require assertions land here and generate no code.
type ExprStmt struct {
	Pos Position
	X   Expr
}

func (s *AssignStmt) NodePos() Position        { return s.Pos }
func (s *MappingAssignStmt) NodePos() Position { return s.Pos }
func (s *IfStmt) NodePos() Position            { return s.Pos }
func (s *ReturnStmt) NodePos() Position        { return s.Pos }
func (s *ExprStmt) NodePos() Position          { return s.Pos }

func (s *AssignStmt) stmtNode()        {}
func (s *MappingAssignStmt) stmtNode() {}
func (s *IfStmt) stmtNode()            {}
func (s *ReturnStmt) stmtNode()        {}
func (s *ExprStmt) stmtNode()          {}
