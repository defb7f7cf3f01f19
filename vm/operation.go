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

type (
	// ExecutionFunc applies one operation to a frame. It may pop and push
	// exactly the operation's declared arity on every success path, mutate
	// memory, mutate balances through the frame's account view, and (for the
	// call family) spawn one child frame through the interpreter.
	ExecutionFunc func(pc *uint64, in *Interpreter, frame *Frame) OperationResult

	// gasFunc computes an operation's dynamic cost from the current stack and
	// context. It must not mutate any state and is safe to call before
	// Execute. ok=false signals a cost overflow, treated as gas exhaustion.
	gasFunc func(gc GasCalculator, frame *Frame) (cost uint64, ok bool)
)

// OperationResult reports one execution step: the gas the operation charged
// itself beyond the declared cost (always reported, even on halt) and an
// optional halt reason. Exactly one of normal continuation (HaltNone) or halt
// holds per result.
type OperationResult struct {
	GasCost uint64
	Output  []byte
	Halt    HaltReason
}

// haltResult is shorthand for a halting step that charged cost gas.
func haltResult(cost uint64, reason HaltReason) OperationResult {
	return OperationResult{GasCost: cost, Halt: reason}
}

// Operation is an immutable descriptor of one opcode's behavior.
type Operation struct {
	// Execute is the operation function.
	Execute     ExecutionFunc
	constantGas uint64
	dynamicGas  gasFunc
	// MinStack tells how many stack items are required.
	MinStack int
	// MaxStack specifies the max length the stack can have for this operation
	// to not overflow the stack.
	MaxStack int

	halts   bool // indicates whether the operation ends execution successfully
	jumps   bool // indicates whether the program counter should not increment
	writes  bool // determines whether this is a state modifying operation
	Valid   bool // indication whether the retrieved operation is valid and known
	reverts bool // determines whether the operation reverts state (implicitly halts)
	returns bool // determines whether the operation sets the return data content
}

func minStack(pops, push int) int {
	return pops
}

func maxStack(pops, push int) int {
	return StackLimit + pops - push
}
