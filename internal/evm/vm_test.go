// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"fmt"
	"math/big"

	"pymon/internal/abi"
)

// testVM is a minimal word-machine interpreter covering exactly the
// opcode subset the generator emits. It executes real bytecode, so the
// tests validate stack discipline and jump wiring rather than byte
// patterns.
type testVM struct {
	storage   map[string]*big.Int
	memory    []byte
	caller    *big.Int
	timestamp *big.Int
}

// execResult is what one execution produced.
type execResult struct {
	returned []byte
	reverted bool
}

var wordModulus = new(big.Int).Lsh(big.NewInt(1), 256)

func newTestVM() *testVM {
	return &testVM{
		storage:   make(map[string]*big.Int),
		caller:    big.NewInt(0xCAFE),
		timestamp: big.NewInt(1_700_000_000),
	}
}

func (vm *testVM) sload(slot *big.Int) *big.Int {
	if v, ok := vm.storage[slotKey(slot)]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func slotKey(slot *big.Int) string {
	buf := make([]byte, 32)
	slot.FillBytes(buf)
	return string(buf)
}

// run executes code against the VM until STOP, RETURN, REVERT or the
// end of code. Storage writes persist across runs, like consecutive
// transactions against one contract.
func (vm *testVM) run(code, calldata []byte) (*execResult, error) {
	var stack []*big.Int
	vm.memory = nil

	push := func(v *big.Int) {
		stack = append(stack, new(big.Int).Mod(v, wordModulus))
	}
	pop := func() (*big.Int, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	pop2 := func() (*big.Int, *big.Int, error) {
		a, err := pop()
		if err != nil {
			return nil, nil, err
		}
		b, err := pop()
		return a, b, err
	}

	pc := 0
	for steps := 0; pc < len(code); steps++ {
		if steps > 100_000 {
			return nil, fmt.Errorf("execution did not halt")
		}
		op := code[pc]

		switch {
		case op == STOP:
			return &execResult{}, nil

		case op == ADD:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(new(big.Int).Add(a, b))

		case op == MUL:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(new(big.Int).Mul(a, b))

		case op == SUB:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(new(big.Int).Sub(a, b))

		case op == DIV:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			if b.Sign() == 0 {
				push(new(big.Int))
			} else {
				push(new(big.Int).Div(a, b))
			}

		case op == MOD:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			if b.Sign() == 0 {
				push(new(big.Int))
			} else {
				push(new(big.Int).Mod(a, b))
			}

		case op == LT:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(boolWord(a.Cmp(b) < 0))

		case op == GT:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(boolWord(a.Cmp(b) > 0))

		case op == EQ:
			a, b, err := pop2()
			if err != nil {
				return nil, err
			}
			push(boolWord(a.Cmp(b) == 0))

		case op == ISZERO:
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(boolWord(a.Sign() == 0))

		case op == SHR:
			shift, value, err := pop2()
			if err != nil {
				return nil, err
			}
			if !shift.IsUint64() || shift.Uint64() > 255 {
				push(new(big.Int))
			} else {
				push(new(big.Int).Rsh(value, uint(shift.Uint64())))
			}

		case op == KECCAK256:
			offset, size, err := pop2()
			if err != nil {
				return nil, err
			}
			data := vm.readMemory(int(offset.Int64()), int(size.Int64()))
			push(new(big.Int).SetBytes(abi.Keccak256(data)))

		case op == CALLER:
			push(new(big.Int).Set(vm.caller))

		case op == CALLDATALOAD:
			offset, err := pop()
			if err != nil {
				return nil, err
			}
			word := make([]byte, 32)
			start := int(offset.Int64())
			for i := 0; i < 32; i++ {
				if start+i < len(calldata) {
					word[i] = calldata[start+i]
				}
			}
			push(new(big.Int).SetBytes(word))

		case op == CALLDATASIZE:
			push(big.NewInt(int64(len(calldata))))

		case op == CODECOPY:
			dest, err := pop()
			if err != nil {
				return nil, err
			}
			offset, size, err := pop2()
			if err != nil {
				return nil, err
			}
			n := int(size.Int64())
			chunk := make([]byte, n)
			start := int(offset.Int64())
			for i := 0; i < n; i++ {
				if start+i < len(code) {
					chunk[i] = code[start+i]
				}
			}
			vm.writeMemory(int(dest.Int64()), chunk)

		case op == TIMESTAMP:
			push(new(big.Int).Set(vm.timestamp))

		case op == POP:
			if _, err := pop(); err != nil {
				return nil, err
			}

		case op == MSTORE:
			offset, value, err := pop2()
			if err != nil {
				return nil, err
			}
			word := make([]byte, 32)
			value.FillBytes(word)
			vm.writeMemory(int(offset.Int64()), word)

		case op == SLOAD:
			slot, err := pop()
			if err != nil {
				return nil, err
			}
			push(vm.sload(slot))

		case op == SSTORE:
			slot, value, err := pop2()
			if err != nil {
				return nil, err
			}
			vm.storage[slotKey(slot)] = new(big.Int).Set(value)

		case op == JUMP:
			dest, err := pop()
			if err != nil {
				return nil, err
			}
			pc = int(dest.Int64())
			if pc >= len(code) || code[pc] != JUMPDEST {
				return nil, fmt.Errorf("jump to non-JUMPDEST offset %d", pc)
			}
			continue

		case op == JUMPI:
			dest, cond, err := pop2()
			if err != nil {
				return nil, err
			}
			if cond.Sign() != 0 {
				pc = int(dest.Int64())
				if pc >= len(code) || code[pc] != JUMPDEST {
					return nil, fmt.Errorf("jump to non-JUMPDEST offset %d", pc)
				}
				continue
			}

		case op == JUMPDEST:
			// no effect

		case op >= PUSH1 && op <= PUSH32:
			width := int(op-PUSH1) + 1
			if pc+width >= len(code) {
				return nil, fmt.Errorf("push runs past end of code at %d", pc)
			}
			push(new(big.Int).SetBytes(code[pc+1 : pc+1+width]))
			pc += width

		case op == DUP1 || op == DUP2:
			depth := int(op-DUP1) + 1
			if len(stack) < depth {
				return nil, fmt.Errorf("stack underflow on DUP%d", depth)
			}
			push(new(big.Int).Set(stack[len(stack)-depth]))

		case op == SWAP1:
			if len(stack) < 2 {
				return nil, fmt.Errorf("stack underflow on SWAP1")
			}
			last := len(stack) - 1
			stack[last], stack[last-1] = stack[last-1], stack[last]

		case op == RETURN:
			offset, size, err := pop2()
			if err != nil {
				return nil, err
			}
			return &execResult{returned: vm.readMemory(int(offset.Int64()), int(size.Int64()))}, nil

		case op == REVERT:
			offset, size, err := pop2()
			if err != nil {
				return nil, err
			}
			return &execResult{returned: vm.readMemory(int(offset.Int64()), int(size.Int64())), reverted: true}, nil

		default:
			return nil, fmt.Errorf("unknown opcode 0x%02x at offset %d", op, pc)
		}
		pc++
	}
	return &execResult{}, nil
}

func (vm *testVM) writeMemory(offset int, data []byte) {
	if need := offset + len(data); need > len(vm.memory) {
		vm.memory = append(vm.memory, make([]byte, need-len(vm.memory))...)
	}
	copy(vm.memory[offset:], data)
}

func (vm *testVM) readMemory(offset, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		if offset+i < len(vm.memory) {
			out[i] = vm.memory[offset+i]
		}
	}
	return out
}

func boolWord(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}
