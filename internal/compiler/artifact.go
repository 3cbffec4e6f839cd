// SPDX-License-Identifier: Apache-2.0
package compiler

import (
	"encoding/json"

	"pymon/internal/abi"
)

// Artifact is the persisted result of one successful compilation.
// The JSON field names are fixed: deployment tooling and block
// explorers consume this shape.
type Artifact struct {
	ContractName string       `json:"contractName"`
	SourceName   string       `json:"sourceName"`
	ABI          []abi.Entry  `json:"abi"`
	Bytecode     string       `json:"bytecode"` // 0x-prefixed deployment bytecode
	Metadata     Metadata     `json:"metadata"`
	Compiler     CompilerInfo `json:"compiler"`
}

// Metadata carries the planning figures alongside the artifact.
type Metadata struct {
	GasEstimate    int      `json:"gasEstimate"`
	Functions      []string `json:"functions"`
	StateVariables []string `json:"stateVariables"`
}

// CompilerInfo identifies the toolchain that produced an artifact.
type CompilerInfo struct {
	Type     string `json:"type"`
	Version  string `json:"version"`
	Language string `json:"language"`
}

// MarshalIndent renders the artifact the way it is written to disk.
func (a *Artifact) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// MarshalABI renders just the interface descriptors, for the
// stand-alone ABI file that wallet and frontend tooling loads.
func (a *Artifact) MarshalABI() ([]byte, error) {
	return json.MarshalIndent(a.ABI, "", "  ")
}
