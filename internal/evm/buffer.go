// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"fmt"
	"math/big"
)

// Region selects which of the two bytecode regions a Buffer appends to.
type Region int

const (
	RegionInit Region = iota
	RegionRuntime
)

func (r Region) String() string {
	if r == RegionInit {
		return "init"
	}
	return "runtime"
}

// Ref identifies a reserved 2-byte jump placeholder awaiting backpatch.
type Ref struct {
	Region Region
	Offset int // operand offset within the region, not the push opcode
}

// placeholderByte fills reserved jump operands until they are patched.
// 0xDEAD stands out in hex dumps when a patch is missing.
const placeholderByte = 0xde

// Buffer is the low-level bytecode appender. It owns the init and
// runtime regions, tracks the active one, and keeps the table of
// pending forward references so an artifact with unresolved jumps can
// be refused.
type Buffer struct {
	init    []byte
	runtime []byte
	active  Region
	pending map[Ref]bool
}

func NewBuffer() *Buffer {
	return &Buffer{pending: make(map[Ref]bool)}
}

// SetRegion switches the active region.
func (b *Buffer) SetRegion(r Region) { b.active = r }

// ActiveRegion returns the region appends currently go to.
func (b *Buffer) ActiveRegion() Region { return b.active }

// Offset returns the length of the active region.
func (b *Buffer) Offset() int { return len(*b.region(b.active)) }

// EmitOp appends a single opcode to the active region.
func (b *Buffer) EmitOp(op byte) {
	region := b.region(b.active)
	*region = append(*region, op)
}

// EmitPush appends the shortest push that round-trips the value: the
// operand, decoded as an unsigned big-endian integer, reproduces it
// exactly. Zero still takes one operand byte (PUSH1 0x00).
func (b *Buffer) EmitPush(value *big.Int) error {
	width := (value.BitLen() + 7) / 8
	if width == 0 {
		width = 1
	}
	return b.EmitPushWidth(value, width)
}

// EmitPushInt is EmitPush for small host integers.
func (b *Buffer) EmitPushInt(value int64) error {
	return b.EmitPush(big.NewInt(value))
}

// EmitPushWidth appends a push with an explicit operand width of 1-32
// bytes, big-endian, left-padded.
func (b *Buffer) EmitPushWidth(value *big.Int, width int) error {
	if width < 1 || width > 32 {
		return fmt.Errorf("push width %d out of range 1-32", width)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("cannot push negative value %s", value)
	}
	if (value.BitLen()+7)/8 > width {
		return fmt.Errorf("value %s does not fit in %d byte(s)", value, width)
	}

	operand := make([]byte, width)
	value.FillBytes(operand)

	region := b.region(b.active)
	*region = append(*region, PUSH1+byte(width-1))
	*region = append(*region, operand...)
	return nil
}

// ReserveJumpTarget emits a PUSH2 with a 2-byte placeholder operand and
// registers it in the pending table. The returned Ref must later be
// passed to Patch; Assemble refuses to produce an artifact while any
// reservation is outstanding.
func (b *Buffer) ReserveJumpTarget() Ref {
	region := b.region(b.active)
	*region = append(*region, PUSH2)
	ref := Ref{Region: b.active, Offset: len(*region)}
	*region = append(*region, placeholderByte, placeholderByte)
	b.pending[ref] = true
	return ref
}

// Patch overwrites a reserved placeholder with the big-endian 16-bit
// encoding of target, in the region the reservation was made in.
func (b *Buffer) Patch(ref Ref, target int) error {
	if !b.pending[ref] {
		return fmt.Errorf("no pending reservation at %s offset %d", ref.Region, ref.Offset)
	}
	if target < 0 || target > 0xffff {
		return &LinkError{Target: target, Region: ref.Region}
	}
	region := b.region(ref.Region)
	(*region)[ref.Offset] = byte(target >> 8)
	(*region)[ref.Offset+1] = byte(target)
	delete(b.pending, ref)
	return nil
}

// PendingRefs returns how many reservations have not been patched.
func (b *Buffer) PendingRefs() int { return len(b.pending) }

// Init returns the initialization region bytes.
func (b *Buffer) Init() []byte { return b.init }

// Runtime returns the runtime region bytes.
func (b *Buffer) Runtime() []byte { return b.runtime }

func (b *Buffer) region(r Region) *[]byte {
	if r == RegionInit {
		return &b.init
	}
	return &b.runtime
}
