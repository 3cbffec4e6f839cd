// SPDX-License-Identifier: Apache-2.0
package evm

import (
	"fmt"
	"math/big"

	"pymon/internal/ast"
)

// Program is the assembled output of one compilation: the deployment
// bytecode a creation transaction carries, and the runtime code it
// installs. Deploy is the initialization region followed by Runtime,
// so Runtime is always a suffix of Deploy.
type Program struct {
	Deploy  []byte
	Runtime []byte
}

// deployTail is the fixed instruction sequence that copies the runtime
// code to memory and returns it to the creation transaction:
//
//	PUSH2 len DUP1 PUSH2 offset PUSH1 0 CODECOPY PUSH1 0 RETURN
const deployTailLen = 13

// Assemble compiles a contract model into a Program. The runtime region
// is generated first so the initialization tail can embed its length
// and its offset within the deployment bytecode.
func Assemble(contract *ast.Contract) (*Program, error) {
	buf := NewBuffer()
	gen := NewGenerator(buf, contract)

	if err := gen.emitRuntime(); err != nil {
		return nil, err
	}

	buf.SetRegion(RegionInit)
	if err := emitConstructor(buf, contract); err != nil {
		return nil, err
	}

	runtime := buf.Runtime()
	runtimeLen := len(runtime)
	runtimeOffset := buf.Offset() + deployTailLen
	if runtimeLen > 0xffff || runtimeOffset > 0xffff {
		return nil, &LinkError{Target: runtimeOffset + runtimeLen, Region: RegionInit}
	}

	buf.EmitPushWidth(big.NewInt(int64(runtimeLen)), 2)
	buf.EmitOp(DUP1) // second length copy, consumed by RETURN
	buf.EmitPushWidth(big.NewInt(int64(runtimeOffset)), 2)
	buf.EmitPushInt(0)
	buf.EmitOp(CODECOPY)
	buf.EmitPushInt(0)
	buf.EmitOp(RETURN)

	if n := buf.PendingRefs(); n != 0 {
		return nil, fmt.Errorf("assembly finished with %d unresolved jump placeholder(s)", n)
	}

	deploy := make([]byte, 0, runtimeOffset+runtimeLen)
	deploy = append(deploy, buf.Init()...)
	deploy = append(deploy, runtime...)
	return &Program{Deploy: deploy, Runtime: runtime}, nil
}

// emitConstructor stores every non-mapping state variable's initial
// value, in slot order. Zero defaults are stored explicitly: the cost
// is trivial at deployment and the write makes the declared layout
// visible in the creation trace. Mappings have no initial contents and
// occupy their slot by reservation only.
func emitConstructor(buf *Buffer, contract *ast.Contract) error {
	for _, sv := range contract.StateVars {
		if sv.Type == ast.TypeMapping {
			continue
		}
		initial := sv.Initial
		if initial == nil {
			initial = new(big.Int)
		}
		if err := buf.EmitPush(initial); err != nil {
			return fmt.Errorf("state variable %q: %w", sv.Name, err)
		}
		buf.EmitPushInt(int64(sv.Slot))
		buf.EmitOp(SSTORE)
	}
	return nil
}
