// Copyright 2024 The minievm Authors
//
// This file is part of minievm.
//
// Minievm is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Minievm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with minievm.  If not, see <https://www.gnu.org/licenses/>.

package vm

// ChainRules is the per-fork feature selection. The operation table is built
// from it once per interpreter; every opcode is unique within the active set.
type ChainRules struct {
	// HasAuthOps enables delegated authorization (AUTH/AUTHCALL).
	HasAuthOps bool
	// HasPay enables the direct value-transfer operation.
	HasPay bool
}

// AllRules enables every operation this implementation knows.
var AllRules = ChainRules{HasAuthOps: true, HasPay: true}

// JumpTable contains the operations supported at a given fork.
type JumpTable [256]Operation

// NewInstructionSet builds the operation table for the given rules.
func NewInstructionSet(rules ChainRules) *JumpTable {
	jt := newBaseInstructionSet()
	if rules.HasAuthOps {
		enableAuthOps(&jt)
	}
	if rules.HasPay {
		enablePay(&jt)
	}
	return &jt
}

// enableAuthOps wires AUTH and AUTHCALL (EIP-3074 pattern).
func enableAuthOps(jt *JumpTable) {
	jt[AUTH] = Operation{
		Execute:  opAuth,
		MinStack: minStack(0, 0),
		MaxStack: maxStack(0, 0),
		Valid:    true,
	}
	jt[AUTHCALL] = Operation{
		Execute:  opAuthCall,
		MinStack: minStack(7, 1),
		MaxStack: maxStack(7, 1),
		Valid:    true,
		returns:  true,
	}
}

// enablePay wires the direct value-transfer operation (EIP-5920).
func enablePay(jt *JumpTable) {
	jt[PAY] = Operation{
		Execute:  opPay,
		MinStack: minStack(2, 0),
		MaxStack: maxStack(2, 0),
		Valid:    true,
		writes:   true,
	}
}

// newBaseInstructionSet returns the always-available operations.
func newBaseInstructionSet() JumpTable {
	instructionSet := JumpTable{
		STOP: {
			Execute:     opStop,
			constantGas: 0,
			MinStack:    minStack(0, 0),
			MaxStack:    maxStack(0, 0),
			halts:       true,
			Valid:       true,
		},
		ADD: {
			Execute:     opAdd,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		MUL: {
			Execute:     opMul,
			constantGas: GasFastStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SUB: {
			Execute:     opSub,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		DIV: {
			Execute:     opDiv,
			constantGas: GasFastStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SDIV: {
			Execute:     opSdiv,
			constantGas: GasFastStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		MOD: {
			Execute:     opMod,
			constantGas: GasFastStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		LT: {
			Execute:     opLt,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		GT: {
			Execute:     opGt,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SLT: {
			Execute:     opSlt,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SGT: {
			Execute:     opSgt,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		EQ: {
			Execute:     opEq,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		ISZERO: {
			Execute:     opIszero,
			constantGas: GasFastestStep,
			MinStack:    minStack(1, 1),
			MaxStack:    maxStack(1, 1),
			Valid:       true,
		},
		AND: {
			Execute:     opAnd,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		OR: {
			Execute:     opOr,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		XOR: {
			Execute:     opXor,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		NOT: {
			Execute:     opNot,
			constantGas: GasFastestStep,
			MinStack:    minStack(1, 1),
			MaxStack:    maxStack(1, 1),
			Valid:       true,
		},
		BYTE: {
			Execute:     opByte,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SHL: {
			Execute:     opSHL,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		SHR: {
			Execute:     opSHR,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		KECCAK256: {
			Execute:     opKeccak256,
			constantGas: gasKeccak256,
			dynamicGas:  gasKeccak256Words,
			MinStack:    minStack(2, 1),
			MaxStack:    maxStack(2, 1),
			Valid:       true,
		},
		ADDRESS: {
			Execute:     opAddress,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		BALANCE: {
			Execute:  opBalance,
			MinStack: minStack(1, 1),
			MaxStack: maxStack(1, 1),
			Valid:    true,
		},
		ORIGIN: {
			Execute:     opOrigin,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		CALLER: {
			Execute:     opCaller,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		CALLVALUE: {
			Execute:     opCallValue,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		CALLDATALOAD: {
			Execute:     opCallDataLoad,
			constantGas: GasFastestStep,
			MinStack:    minStack(1, 1),
			MaxStack:    maxStack(1, 1),
			Valid:       true,
		},
		CALLDATASIZE: {
			Execute:     opCallDataSize,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		CALLDATACOPY: {
			Execute:     opCallDataCopy,
			constantGas: GasFastestStep,
			dynamicGas:  gasCallDataCopy,
			MinStack:    minStack(3, 0),
			MaxStack:    maxStack(3, 0),
			Valid:       true,
		},
		POP: {
			Execute:     opPop,
			constantGas: GasQuickStep,
			MinStack:    minStack(1, 0),
			MaxStack:    maxStack(1, 0),
			Valid:       true,
		},
		MLOAD: {
			Execute:     opMload,
			constantGas: GasFastestStep,
			MinStack:    minStack(1, 1),
			MaxStack:    maxStack(1, 1),
			Valid:       true,
		},
		MSTORE: {
			Execute:     opMstore,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 0),
			MaxStack:    maxStack(2, 0),
			Valid:       true,
		},
		MSTORE8: {
			Execute:     opMstore8,
			constantGas: GasFastestStep,
			MinStack:    minStack(2, 0),
			MaxStack:    maxStack(2, 0),
			Valid:       true,
		},
		JUMP: {
			Execute:     opJump,
			constantGas: GasMidStep,
			MinStack:    minStack(1, 0),
			MaxStack:    maxStack(1, 0),
			jumps:       true,
			Valid:       true,
		},
		JUMPI: {
			Execute:     opJumpi,
			constantGas: GasMidStep + 2,
			MinStack:    minStack(2, 0),
			MaxStack:    maxStack(2, 0),
			jumps:       true,
			Valid:       true,
		},
		PC: {
			Execute:     opPc,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		MSIZE: {
			Execute:     opMsize,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		GAS: {
			Execute:     opGas,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		JUMPDEST: {
			Execute:     opJumpdest,
			constantGas: gasJumpdest,
			MinStack:    minStack(0, 0),
			MaxStack:    maxStack(0, 0),
			Valid:       true,
		},
		PUSH0: {
			Execute:     opPush0,
			constantGas: GasQuickStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		},
		CALL: {
			Execute:  opCall,
			MinStack: minStack(7, 1),
			MaxStack: maxStack(7, 1),
			Valid:    true,
			returns:  true,
		},
		STATICCALL: {
			Execute:  opStaticCall,
			MinStack: minStack(6, 1),
			MaxStack: maxStack(6, 1),
			Valid:    true,
			returns:  true,
		},
		RETURN: {
			Execute:  opReturn,
			MinStack: minStack(2, 0),
			MaxStack: maxStack(2, 0),
			halts:    true,
			Valid:    true,
			returns:  true,
		},
		REVERT: {
			Execute:  opRevert,
			MinStack: minStack(2, 0),
			MaxStack: maxStack(2, 0),
			Valid:    true,
			reverts:  true,
			returns:  true,
		},
		INVALID: {
			Execute:  opInvalid,
			MinStack: minStack(0, 0),
			MaxStack: maxStack(0, 0),
			Valid:    true,
		},
	}

	for i := 0; i < 32; i++ {
		instructionSet[PUSH1+OpCode(i)] = Operation{
			Execute:     makePush(uint64(i + 1)),
			constantGas: GasFastestStep,
			MinStack:    minStack(0, 1),
			MaxStack:    maxStack(0, 1),
			Valid:       true,
		}
	}
	for i := 1; i <= 16; i++ {
		instructionSet[DUP1+OpCode(i-1)] = Operation{
			Execute:     makeDup(i),
			constantGas: GasFastestStep,
			MinStack:    minStack(i, i+1),
			MaxStack:    maxStack(i, i+1),
			Valid:       true,
		}
		instructionSet[SWAP1+OpCode(i-1)] = Operation{
			Execute:     makeSwap(i),
			constantGas: GasFastestStep,
			MinStack:    minStack(i+1, i+1),
			MaxStack:    maxStack(i+1, i+1),
			Valid:       true,
		}
	}
	return instructionSet
}
