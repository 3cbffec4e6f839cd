// SPDX-License-Identifier: Apache-2.0

// Package gas estimates deployment cost from bytecode size alone. The
// toolchain never talks to a node, so the estimate is a planning figure
// recorded in the artifact, not a transaction gas limit negotiated with
// the network.
package gas

const (
	// BaseTx is the flat cost of any transaction.
	BaseTx = 21_000
	// Creation is the contract creation surcharge.
	Creation = 32_000
	// CodeDepositPerByte is charged per byte of runtime code deposited.
	CodeDepositPerByte = 200
	// constructorHeuristic approximates initialization execution.
	constructorHeuristic = 100_000

	// largeContractThreshold marks deployments whose initialization
	// costs grow beyond the linear model.
	largeContractThreshold = 10_000
	largeContractFactor    = 1.2

	// standardBuffer is the headroom applied on top of the raw model.
	standardBuffer = 1.3

	// SafeMax keeps estimates clear of typical block gas limits.
	SafeMax = 25_000_000
)

// EstimateDeployment returns the buffered gas estimate for deploying
// bytecode of the given size.
func EstimateDeployment(bytecodeSize int) int {
	raw := BaseTx + Creation + bytecodeSize*CodeDepositPerByte + constructorHeuristic
	if bytecodeSize > largeContractThreshold {
		raw = int(float64(raw) * largeContractFactor)
	}
	estimate := int(float64(raw) * standardBuffer)
	if estimate > SafeMax {
		estimate = SafeMax
	}
	return estimate
}
