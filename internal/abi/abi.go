// SPDX-License-Identifier: Apache-2.0

// Package abi derives the published contract interface from the
// contract model. The canonical signature string built here is the same
// one the dispatcher hashes for selector routing; the two must never
// diverge or callers and the dispatcher stop agreeing on selectors.
package abi

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"pymon/internal/ast"
)

// Entry is one descriptor in the standard contract-interface JSON shape.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`
}

// Param describes one input or output of a function or event.
type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// Build produces one descriptor per exposed function, in declaration
// order, followed by one per declared event.
func Build(contract *ast.Contract) []Entry {
	entries := []Entry{}

	for _, fn := range contract.Exposed() {
		entry := Entry{
			Type:            "function",
			Name:            fn.Name,
			Inputs:          []Param{},
			StateMutability: "nonpayable",
		}
		if fn.Mutability == ast.View {
			entry.StateMutability = "view"
		}
		for _, param := range fn.Params {
			entry.Inputs = append(entry.Inputs, Param{Name: param.Name, Type: string(param.Type)})
		}
		if fn.Return != "" {
			entry.Outputs = []Param{{Name: "", Type: string(fn.Return)}}
		}
		entries = append(entries, entry)
	}

	for _, event := range contract.Events {
		entry := Entry{
			Type:   "event",
			Name:   event.Name,
			Inputs: []Param{},
		}
		for i, paramType := range event.ParamTypes {
			entry.Inputs = append(entry.Inputs, Param{
				Name: fmt.Sprintf("arg%d", i),
				Type: string(paramType),
			})
		}
		entries = append(entries, entry)
	}

	return entries
}

// Signature returns the canonical signature "name(type1,type2,...)".
func Signature(fn *ast.Function) string {
	types := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		types[i] = string(param.Type)
	}
	return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(types, ","))
}

// Selector returns the 4-byte function selector: the leading bytes of
// the Keccak-256 hash of the canonical signature.
func Selector(signature string) [4]byte {
	digest := Keccak256([]byte(signature))
	var selector [4]byte
	copy(selector[:], digest[:4])
	return selector
}

// Keccak256 is the 256-bit hash used throughout the toolchain, for
// selectors and for mapping slot derivation. This is the legacy Keccak
// padding, not the finalized SHA-3.
func Keccak256(data []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	return hash.Sum(nil)
}

// CheckSelectors verifies that the exposed functions of a contract have
// pairwise distinct selectors. Collisions are astronomically unlikely
// but would silently misroute calls, so they are rejected at build time.
func CheckSelectors(contract *ast.Contract) error {
	seen := make(map[[4]byte]string)
	for _, fn := range contract.Exposed() {
		signature := Signature(fn)
		selector := Selector(signature)
		if other, dup := seen[selector]; dup {
			return fmt.Errorf("selector collision between %q and %q (0x%x)", other, signature, selector)
		}
		seen[selector] = signature
	}
	return nil
}
