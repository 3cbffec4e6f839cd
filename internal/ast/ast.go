// SPDX-License-Identifier: Apache-2.0
package ast

import "math/big"

// Contract is the immutable model a single compilation works from.
// It is built once by the parser, consumed read-only by code generation
// and ABI generation, and discarded with the artifact.
type Contract struct {
	Pos       Position
	Name      string
	StateVars []*StateVar // declaration order; index == storage slot
	Functions []*Function // declaration order
	Events    []*Event    // first-emission order
}

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Type is the semantic type tag carried by state variables, parameters
// and return values. The tags are the canonical ABI spellings.
type Type string

const (
	TypeUint256 Type = "uint256"
	TypeAddress Type = "address"
	TypeBytes32 Type = "bytes32"
	TypeMapping Type = "mapping"
)

// Mutability classifies how a function is exposed.
type Mutability int

const (
	// Internal functions are not reachable through the dispatcher.
	Internal Mutability = iota
	// Mutating functions may write storage ("nonpayable" in ABI terms).
	Mutating
	// View functions only read state.
	View
)

func (m Mutability) String() string {
	switch m {
	case Mutating:
		return "mutating"
	case View:
		return "view"
	default:
		return "internal"
	}
}

// StateVar is a declared state variable bound to a fixed storage slot.
// The slot is assigned at first declaration and never reused.
type StateVar struct {
	Pos     Position
	Name    string
	Slot    int
	Type    Type
	Initial *big.Int // nil for mappings; zero value is stored explicitly
}

// Param is a function parameter. Index is the calldata word position.
type Param struct {
	Pos   Position
	Name  string
	Index int
	Type  Type
}

// Function is one contract method.
// Example: "@view_function def balanceOf(self, account: str) -> int"
type Function struct {
	Pos        Position
	Name       string
	Mutability Mutability
	Params     []*Param
	Return     Type // "" when the function returns nothing
	Body       []Stmt
}

// Exposed reports whether the dispatcher routes calls to this function.
func (f *Function) Exposed() bool {
	return f.Mutability == Mutating || f.Mutability == View
}

// Event is a declared event with its ordered parameter type list.
// Events are registered at the first emission site.
type Event struct {
	Pos        Position
	Name       string
	ParamTypes []Type
}

// StateVar looks a state variable up by name.
func (c *Contract) StateVar(name string) *StateVar {
	for _, sv := range c.StateVars {
		if sv.Name == name {
			return sv
		}
	}
	return nil
}

// Function looks a function up by name.
func (c *Contract) Function(name string) *Function {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Exposed returns the dispatcher-visible functions in declaration order.
func (c *Contract) Exposed() []*Function {
	var out []*Function
	for _, fn := range c.Functions {
		if fn.Exposed() {
			out = append(out, fn)
		}
	}
	return out
}
