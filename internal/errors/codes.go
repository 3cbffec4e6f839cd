// SPDX-License-Identifier: Apache-2.0

// Package errors formats compiler diagnostics. Every diagnostic carries
// a stable code so error messages can be grepped for and documented
// independently of their wording.
package errors

// Error code ranges:
// E0100-E0199: scanning errors
// E0200-E0299: parsing and contract model errors
// E0300-E0399: code generation errors
// E0400-E0499: interface and artifact errors
const (
	// E0101: malformed token (bad number, unterminated string, stray byte)
	ErrorMalformedToken = "E0101"

	// E0102: inconsistent indentation
	ErrorIndentation = "E0102"

	// E0201: unsupported or malformed statement/expression
	ErrorUnsupportedConstruct = "E0201"

	// E0202: unknown name (parameter, state variable, attribute)
	ErrorUndefinedName = "E0202"

	// E0203: contract structure errors (missing class, bad base, bad decorator)
	ErrorContractStructure = "E0203"

	// E0204: constant evaluation errors (overflow, negative, division by zero)
	ErrorConstantEval = "E0204"

	// E0301: code generation failed for a model node
	ErrorCodegen = "E0301"

	// E0302: jump target exceeds the linkable range
	ErrorLink = "E0302"

	// E0401: function selector collision
	ErrorSelectorCollision = "E0401"
)
