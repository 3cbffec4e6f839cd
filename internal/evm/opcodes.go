// SPDX-License-Identifier: Apache-2.0

// Package evm generates deployable EVM bytecode from the contract
// model: a selector dispatcher, compiled function bodies, hash-derived
// mapping addressing, and an initialization region that stores defaults
// and returns the runtime code.
package evm

// The opcode subset the generator emits.
const (
	STOP         byte = 0x00
	ADD          byte = 0x01
	MUL          byte = 0x02
	SUB          byte = 0x03
	DIV          byte = 0x04
	MOD          byte = 0x06
	LT           byte = 0x10
	GT           byte = 0x11
	EQ           byte = 0x14
	ISZERO       byte = 0x15
	SHR          byte = 0x1c
	KECCAK256    byte = 0x20
	CALLER       byte = 0x33
	CALLDATALOAD byte = 0x35
	CALLDATASIZE byte = 0x36
	CODECOPY     byte = 0x39
	TIMESTAMP    byte = 0x42
	POP          byte = 0x50
	MSTORE       byte = 0x52
	SLOAD        byte = 0x54
	SSTORE       byte = 0x55
	JUMP         byte = 0x56
	JUMPI        byte = 0x57
	JUMPDEST     byte = 0x5b
	PUSH1        byte = 0x60
	PUSH2        byte = 0x61
	PUSH4        byte = 0x63
	PUSH32       byte = 0x7f
	DUP1         byte = 0x80
	DUP2         byte = 0x81
	SWAP1        byte = 0x90
	RETURN       byte = 0xf3
	REVERT       byte = 0xfd
)
