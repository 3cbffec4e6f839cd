// SPDX-License-Identifier: Apache-2.0

// Package compiler ties the pipeline together: source text in, artifact
// out. Compilation is all-or-nothing; a contract with any diagnostic
// produces no artifact.
package compiler

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"pymon/internal/abi"
	"pymon/internal/errors"
	"pymon/internal/evm"
	"pymon/internal/gas"
	"pymon/internal/parser"
)

// Version is the toolchain version stamped into every artifact.
const Version = "2.0.0"

// BuildError aggregates the diagnostics of a failed compilation,
// already rendered against the source.
type BuildError struct {
	Diagnostics []errors.CompilerError
	rendered    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%d error(s):\n%s", len(e.Diagnostics), e.rendered)
}

// Compile builds the full artifact for one source file: contract model,
// selector check, bytecode, interface descriptors and metadata.
func Compile(filename, source string) (*Artifact, error) {
	contract, parseErrs, scanErrs := parser.ParseSource(filename, source)

	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		return nil, diagnose(filename, source, parseErrs, scanErrs)
	}

	if err := abi.CheckSelectors(contract); err != nil {
		return nil, fmt.Errorf("[%s] %w", errors.ErrorSelectorCollision, err)
	}

	program, err := evm.Assemble(contract)
	if err != nil {
		code := errors.ErrorCodegen
		if _, isLink := err.(*evm.LinkError); isLink {
			code = errors.ErrorLink
		}
		return nil, fmt.Errorf("[%s] %s: %w", code, contract.Name, err)
	}

	functions := []string{}
	for _, fn := range contract.Exposed() {
		functions = append(functions, fn.Name)
	}
	stateVars := []string{}
	for _, sv := range contract.StateVars {
		stateVars = append(stateVars, sv.Name)
	}

	return &Artifact{
		ContractName: contract.Name,
		SourceName:   filepath.Base(filename),
		ABI:          abi.Build(contract),
		Bytecode:     "0x" + hex.EncodeToString(program.Deploy),
		Metadata: Metadata{
			GasEstimate:    gas.EstimateDeployment(len(program.Deploy)),
			Functions:      functions,
			StateVariables: stateVars,
		},
		Compiler: CompilerInfo{
			Type:     "pymon",
			Version:  Version,
			Language: "Python",
		},
	}, nil
}

// diagnose converts scanner and parser errors into rendered diagnostics,
// in source order.
func diagnose(filename, source string, parseErrs []parser.ParseError, scanErrs []parser.ScanError) error {
	var diags []errors.CompilerError
	for _, e := range scanErrs {
		diags = append(diags, errors.CompilerError{
			Level:    errors.Error,
			Code:     scanCode(e.Message),
			Message:  e.Message,
			Position: e.Position,
			Length:   e.Length,
		})
	}
	for _, e := range parseErrs {
		diags = append(diags, errors.CompilerError{
			Level:    errors.Error,
			Code:     parseCode(e.Message),
			Message:  e.Message,
			Position: e.Position,
		})
	}

	reporter := errors.NewErrorReporter(filename, source)
	return &BuildError{Diagnostics: diags, rendered: reporter.FormatAll(diags)}
}

func scanCode(message string) string {
	if strings.Contains(message, "indent") {
		return errors.ErrorIndentation
	}
	return errors.ErrorMalformedToken
}

func parseCode(message string) string {
	switch {
	case strings.Contains(message, "undefined") || strings.Contains(message, "unknown"):
		return errors.ErrorUndefinedName
	case strings.Contains(message, "contract") || strings.Contains(message, "class") ||
		strings.Contains(message, "decorator") || strings.Contains(message, "PySmartContract"):
		return errors.ErrorContractStructure
	case strings.Contains(message, "constant") || strings.Contains(message, "256 bits") ||
		strings.Contains(message, "zero"):
		return errors.ErrorConstantEval
	default:
		return errors.ErrorUnsupportedConstruct
	}
}
