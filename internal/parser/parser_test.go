// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pymon/internal/ast"
)

func parseOK(t *testing.T, source string) *ast.Contract {
	t.Helper()
	contract, parseErrs, scanErrs := ParseSource("test.py", source)
	require.Empty(t, scanErrs, "should scan cleanly")
	require.Empty(t, parseErrs, "should parse cleanly")
	require.NotNil(t, contract)
	return contract
}

func parseErrors(t *testing.T, source string) []ParseError {
	t.Helper()
	_, parseErrs, scanErrs := ParseSource("test.py", source)
	require.Empty(t, scanErrs, "should scan cleanly")
	require.NotEmpty(t, parseErrs, "should report parse errors")
	return parseErrs
}

func TestParseCounterContract(t *testing.T) {
	source := `from pymon import PySmartContract

class Counter(PySmartContract):
    """A simple counter."""

    def __init__(self):
        super().__init__()
        self.count = 0

    @public_function
    def increment(self) -> int:
        self.count = self.count + 1
        return self.count

    @view_function
    def get(self) -> int:
        return self.count
`
	contract := parseOK(t, source)
	assert.Equal(t, "Counter", contract.Name)

	require.Len(t, contract.StateVars, 1)
	count := contract.StateVars[0]
	assert.Equal(t, "count", count.Name)
	assert.Equal(t, 0, count.Slot)
	assert.Equal(t, ast.TypeUint256, count.Type)
	assert.Equal(t, int64(0), count.Initial.Int64())

	require.Len(t, contract.Functions, 2)
	assert.Equal(t, ast.Mutating, contract.Functions[0].Mutability)
	assert.Equal(t, ast.View, contract.Functions[1].Mutability)
	assert.Equal(t, ast.TypeUint256, contract.Functions[0].Return)
	require.Len(t, contract.Functions[0].Body, 2)
}

func TestStateVarSlotsFollowDeclarationOrder(t *testing.T) {
	source := `class Layout(PySmartContract):
    def __init__(self):
        super().__init__()
        self.first = 1
        self.second = {}
        self.third = 3
`
	contract := parseOK(t, source)
	require.Len(t, contract.StateVars, 3)
	assert.Equal(t, 0, contract.StateVars[0].Slot)
	assert.Equal(t, 1, contract.StateVars[1].Slot)
	assert.Equal(t, ast.TypeMapping, contract.StateVars[1].Type)
	assert.Nil(t, contract.StateVars[1].Initial)
	assert.Equal(t, 2, contract.StateVars[2].Slot)
}

func TestRedeclarationKeepsFirstSlot(t *testing.T) {
	source := `class Re(PySmartContract):
    def __init__(self):
        super().__init__()
        self.a = 1
        self.b = 2
        self.a = 9
`
	contract := parseOK(t, source)
	require.Len(t, contract.StateVars, 2)
	assert.Equal(t, 0, contract.StateVars[0].Slot)
	assert.Equal(t, int64(9), contract.StateVars[0].Initial.Int64(), "later assignment replaces the default")
	assert.Equal(t, 1, contract.StateVars[1].Slot)
}

func TestStateVarDefaultForms(t *testing.T) {
	source := `class Defaults(PySmartContract):
    def __init__(self):
        super().__init__()
        self.flag = True
        self.label = "pymon"
        self.admin = address(0xABCD)
        self.supply = self.state_var("supply", 1000)
        self.holders = {}
`
	contract := parseOK(t, source)
	require.Len(t, contract.StateVars, 5)

	assert.Equal(t, int64(1), contract.StateVars[0].Initial.Int64())
	assert.Equal(t, ast.TypeUint256, contract.StateVars[0].Type)

	label := contract.StateVars[1]
	assert.Equal(t, ast.TypeBytes32, label.Type)
	padded := make([]byte, 32)
	copy(padded, "pymon")
	assert.Equal(t, 0, label.Initial.Cmp(new(big.Int).SetBytes(padded)),
		"string defaults are right-padded to 32 bytes")

	assert.Equal(t, ast.TypeAddress, contract.StateVars[2].Type)
	assert.Equal(t, int64(0xABCD), contract.StateVars[2].Initial.Int64())

	assert.Equal(t, int64(1000), contract.StateVars[3].Initial.Int64())
	assert.Equal(t, ast.TypeMapping, contract.StateVars[4].Type)
}

func TestParamTypeMapping(t *testing.T) {
	source := `class Types(PySmartContract):
    def __init__(self):
        super().__init__()
        self.scratch = 0

    @public_function
    def f(self, a: int, b: str, c: bool, d: address, e: bytes) -> None:
        self.scratch = a
`
	contract := parseOK(t, source)
	fn := contract.Functions[0]
	require.Len(t, fn.Params, 5)
	assert.Equal(t, ast.TypeUint256, fn.Params[0].Type)
	assert.Equal(t, ast.TypeAddress, fn.Params[1].Type)
	assert.Equal(t, ast.TypeUint256, fn.Params[2].Type)
	assert.Equal(t, ast.TypeAddress, fn.Params[3].Type)
	assert.Equal(t, ast.TypeBytes32, fn.Params[4].Type)
	assert.Equal(t, ast.Type(""), fn.Return, "-> None means no return value")

	for i, param := range fn.Params {
		assert.Equal(t, i, param.Index)
	}
}

func TestEventRegistration(t *testing.T) {
	source := `class Bank(PySmartContract):
    def __init__(self):
        super().__init__()
        self.balances = {}

    @public_function
    def deposit(self, amount: int):
        self.balances[msg.sender] = self.balances.get(msg.sender, 0) + amount
        self.event("Deposit", msg.sender, amount)
        self.event("Deposit", msg.sender, amount)
`
	contract := parseOK(t, source)
	require.Len(t, contract.Events, 1, "repeat emissions register one event")

	event := contract.Events[0]
	assert.Equal(t, "Deposit", event.Name)
	require.Len(t, event.ParamTypes, 2)
	assert.Equal(t, ast.TypeAddress, event.ParamTypes[0], "msg.sender argument types as address")
	assert.Equal(t, ast.TypeUint256, event.ParamTypes[1])
}

func TestEventArityMismatch(t *testing.T) {
	source := `class Bad(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @public_function
    def f(self):
        self.event("E", self.x)
        self.event("E", self.x, self.x)
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "argument(s)")
}

func TestRequireStatement(t *testing.T) {
	source := `class Guarded(PySmartContract):
    def __init__(self):
        super().__init__()
        self.count = 0

    @public_function
    def bump(self):
        require(self.count < 10, "too many")
        self.count = self.count + 1
`
	contract := parseOK(t, source)
	body := contract.Functions[0].Body
	require.Len(t, body, 2)

	exprStmt, ok := body[0].(*ast.ExprStmt)
	require.True(t, ok)
	req, ok := exprStmt.X.(*ast.RequireExpr)
	require.True(t, ok)
	assert.Equal(t, "too many", req.Message)
	_, ok = req.Cond.(*ast.CompareExpr)
	assert.True(t, ok)
}

func TestMappingGetRequiresZeroDefault(t *testing.T) {
	source := `class M(PySmartContract):
    def __init__(self):
        super().__init__()
        self.m = {}

    @view_function
    def f(self, k: int) -> int:
        return self.m.get(k, 7)
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "literal 0")
}

func TestMappingRequiresKey(t *testing.T) {
	source := `class M(PySmartContract):
    def __init__(self):
        super().__init__()
        self.m = {}

    @view_function
    def f(self) -> int:
        return self.m
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "requires a key")
}

func TestConstantFolding(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.supply = 2000 * 10**18
        self.big = 1_000_000
        self.hex_val = 0xFF
`
	contract := parseOK(t, source)

	want := new(big.Int).Mul(big.NewInt(2000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	assert.Equal(t, 0, want.Cmp(contract.StateVars[0].Initial))
	assert.Equal(t, int64(1_000_000), contract.StateVars[1].Initial.Int64())
	assert.Equal(t, int64(255), contract.StateVars[2].Initial.Int64())
}

func TestConstantOverflowRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.too_big = 2**256
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "256 bits")
}

func TestNegativeConstantRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.neg = 1 - 2
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "negative")
}

func TestLiteralDivisionByZeroFoldsToZero(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self) -> int:
        return 7 / 0
`
	contract := parseOK(t, source)
	ret := contract.Functions[0].Body[0].(*ast.ReturnStmt)
	constant, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok)
	assert.Equal(t, int64(0), constant.Value.Int64(), "a zero divisor yields zero, as DIV does")
}

func TestLiteralModuloByZeroFoldsToZero(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self) -> int:
        return 7 % 0
`
	contract := parseOK(t, source)
	ret := contract.Functions[0].Body[0].(*ast.ReturnStmt)
	constant, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok)
	assert.Equal(t, int64(0), constant.Value.Int64(), "a zero modulus yields zero, as MOD does")
}

func TestLiteralSubtractionWrapsInFunctionBody(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self) -> int:
        return 1 - 2
`
	contract := parseOK(t, source)
	ret := contract.Functions[0].Body[0].(*ast.ReturnStmt)
	constant, ok := ret.Value.(*ast.ConstantExpr)
	require.True(t, ok)
	assert.Equal(t, 0, maxWord.Cmp(constant.Value), "subtraction wraps mod 2^256, as SUB does")
}

func TestCallerDefaultRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.owner = msg.sender
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "compile-time constants")
}

func TestMissingContractClass(t *testing.T) {
	_, errs, _ := ParseSource("test.py", "x = 1\n")
	require.NotEmpty(t, errs)
}

func TestWrongBaseClassRejected(t *testing.T) {
	errs := parseErrors(t, "class C(object):\n    pass\n")
	assert.Contains(t, errs[0].Message, "PySmartContract")
}

func TestSecondContractClassRejected(t *testing.T) {
	source := `class A(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

class B(PySmartContract):
    def __init__(self):
        super().__init__()
        self.y = 0
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "only one contract class")
}

func TestUnknownDecoratorRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @payable
    def f(self):
        pass
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "decorator")
}

func TestElifRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @public_function
    def f(self, v: int):
        if v > 2:
            self.x = 2
        elif v > 1:
            self.x = 1
`
	errs := parseErrors(t, source)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "elif")
}

func TestNotEqualRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @public_function
    def f(self, v: int):
        if v != 0:
            self.x = v
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "'!='")
}

func TestRecoverySkipsRejectedIfBody(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @public_function
    def f(self, v: int):
        if v != 0:
            self.x = v
        self.x = 1

    @view_function
    def g(self) -> int:
        return self.x
`
	contract, errs, scanErrs := ParseSource("test.py", source)
	require.Empty(t, scanErrs)
	require.Len(t, errs, 1, "the rejected if and its suite produce a single error")
	assert.Contains(t, errs[0].Message, "'!='")

	require.NotNil(t, contract)
	require.Len(t, contract.Functions, 2, "parsing resumes after the rejected statement")
	assert.Len(t, contract.Functions[0].Body, 1)
}

func TestStrayTopLevelDefinitionRecovers(t *testing.T) {
	source := `def orphan():
    pass

class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0
`
	contract, errs, scanErrs := ParseSource("test.py", source)
	require.Empty(t, scanErrs)
	require.Len(t, errs, 1, "the orphan definition and its suite produce a single error")
	assert.Contains(t, errs[0].Message, "unsupported top-level construct")

	require.NotNil(t, contract, "the contract class after the orphan still parses")
	assert.Equal(t, "C", contract.Name)
}

func TestUndefinedNameRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self) -> int:
        return amount
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "undefined name 'amount'")
}

func TestUnknownStateVariableRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @public_function
    def f(self):
        self.y = 1
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "unknown state variable 'self.y'")
}

func TestRuntimeExponentiationRejected(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self, v: int) -> int:
        return v ** 2
`
	errs := parseErrors(t, source)
	assert.Contains(t, errs[0].Message, "constant operands")
}

func TestFloorDivisionAccepted(t *testing.T) {
	source := `class C(PySmartContract):
    def __init__(self):
        super().__init__()
        self.x = 0

    @view_function
    def f(self, a: int, b: int) -> int:
        return a // b
`
	contract := parseOK(t, source)
	ret := contract.Functions[0].Body[0].(*ast.ReturnStmt)
	binary, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "/", binary.Op, "floor and true division coincide on integer words")
}
