// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"math/big"

	"pymon/internal/abi"
	"pymon/internal/ast"
)

// Memory layout used for mapping slot derivation. The generator never
// allocates memory anywhere else, so the scratch words are always free.
const (
	scratchKey  = 0x00
	scratchSlot = 0x20
)

// emitMappingSlot compiles the key expression and derives the storage
// slot of a mapping entry, leaving the slot word on the stack:
//
//	mem[0x00] = key
//	mem[0x20] = base slot
//	keccak256(mem[0x00:0x40])
//
// The concatenation order (key first, then slot) is the standard layout
// solidity-compatible tooling expects, so external indexers can locate
// entries written by these contracts.
func (g *Generator) emitMappingSlot(key ast.Expr, baseSlot int) error {
	if err := g.expr(key); err != nil {
		return err
	}
	g.buf.EmitPushInt(scratchKey)
	g.buf.EmitOp(MSTORE)

	g.buf.EmitPush(big.NewInt(int64(baseSlot)))
	g.buf.EmitPushInt(scratchSlot)
	g.buf.EmitOp(MSTORE)

	g.buf.EmitPushInt(0x40)
	g.buf.EmitPushInt(scratchKey)
	g.buf.EmitOp(KECCAK256)
	return nil
}

// DeriveMappingSlot computes, offline, the storage slot the emitted
// bytecode will address for a given key and mapping base slot. Test and
// inspection code uses it to predict where entries land.
func DeriveMappingSlot(key *big.Int, baseSlot int) *big.Int {
	buf := make([]byte, 64)
	key.FillBytes(buf[:32])
	big.NewInt(int64(baseSlot)).FillBytes(buf[32:])
	return new(big.Int).SetBytes(abi.Keccak256(buf))
}
