// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"fmt"

	"pymon/internal/ast"
)

// LinkError reports a jump target that does not fit the 2-byte
// placeholder a reservation carved out. Contracts this backend emits
// stay far below 64 KiB, so hitting it means a generator bug, but the
// alternative is a jump into garbage.
type LinkError struct {
	Target int
	Region Region
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("jump target %d exceeds the 16-bit placeholder in the %s region", e.Target, e.Region)
}

// UnsupportedConstructError reports a model node the generator has no
// translation for. The parser only builds supported nodes, so this
// guards against the two packages drifting apart.
type UnsupportedConstructError struct {
	Construct string
	Pos       ast.Position
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("%s:%d: cannot generate code for %s", e.Pos.Filename, e.Pos.Line, e.Construct)
}

func unsupported(n ast.Node) error {
	return &UnsupportedConstructError{Construct: ast.Describe(n), Pos: n.NodePos()}
}
