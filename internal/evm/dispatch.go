// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"math/big"

	"pymon/internal/abi"
)

// emitRuntime lays out the runtime region: the calldata guard, the
// selector comparison chain over the exposed functions in declaration
// order, the reverting fallback, and then one body per function. The
// chain's jump operands are reserved forward and patched once each
// body's entry offset is known.
func (g *Generator) emitRuntime() error {
	g.buf.SetRegion(RegionRuntime)

	// Calls shorter than a selector fall through to the revert.
	g.buf.EmitPushInt(4)
	g.buf.EmitOp(CALLDATASIZE)
	g.buf.EmitOp(LT)
	fallback := g.buf.ReserveJumpTarget()
	g.buf.EmitOp(JUMPI)

	// selector = calldata[0:4], left-aligned in the loaded word.
	g.buf.EmitPushInt(0)
	g.buf.EmitOp(CALLDATALOAD)
	g.buf.EmitPushInt(0xe0)
	g.buf.EmitOp(SHR)

	exposed := g.contract.Exposed()
	entries := make([]Ref, len(exposed))
	for i, fn := range exposed {
		selector := abi.Selector(abi.Signature(fn))
		g.buf.EmitOp(DUP1)
		if err := g.buf.EmitPushWidth(new(big.Int).SetBytes(selector[:]), 4); err != nil {
			return err
		}
		g.buf.EmitOp(EQ)
		entries[i] = g.buf.ReserveJumpTarget()
		g.buf.EmitOp(JUMPI)
	}

	// No selector matched, or the calldata guard tripped.
	if err := g.buf.Patch(fallback, g.buf.Offset()); err != nil {
		return err
	}
	g.buf.EmitOp(JUMPDEST)
	g.buf.EmitPushInt(0)
	g.buf.EmitPushInt(0)
	g.buf.EmitOp(REVERT)

	for i, fn := range exposed {
		if err := g.buf.Patch(entries[i], g.buf.Offset()); err != nil {
			return err
		}
		g.buf.EmitOp(JUMPDEST)
		g.buf.EmitOp(POP) // the duplicated selector
		if err := g.emitBody(fn); err != nil {
			return err
		}
	}
	return nil
}
