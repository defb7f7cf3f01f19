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

// HaltReason is the enumerated cause terminating a frame's execution
// abnormally. Expected halts are plain values, never Go errors: every
// operation reports its halt reason explicitly so the interpreter loop can
// charge partial gas and terminate cleanly.
type HaltReason byte

const (
	// HaltNone indicates normal continuation.
	HaltNone HaltReason = iota
	// HaltInsufficientGas indicates the operation cost exceeds the remaining gas.
	HaltInsufficientGas
	// HaltInsufficientStackItems indicates fewer stack items than the operation pops.
	HaltInsufficientStackItems
	// HaltStackOverflow indicates the operation would push past the stack bound.
	HaltStackOverflow
	// HaltInvalidOperation indicates an unknown opcode or malformed operand encoding.
	HaltInvalidOperation
	// HaltIllegalStateChange indicates a state mutation that is not permitted:
	// a write in a static context, an unfunded transfer, a failed authorization,
	// or a recovered internal fault.
	HaltIllegalStateChange
	// HaltPrecompileNotDefined indicates an operation requires a precompile that
	// the active configuration does not register.
	HaltPrecompileNotDefined
	// HaltInvalidJumpDestination indicates a jump to a position that is not a
	// JUMPDEST instruction.
	HaltInvalidJumpDestination
	// HaltCallDepthExceeded indicates the call stack reached its depth bound.
	HaltCallDepthExceeded
)

func (h HaltReason) String() string {
	switch h {
	case HaltNone:
		return "none"
	case HaltInsufficientGas:
		return "insufficient-gas"
	case HaltInsufficientStackItems:
		return "insufficient-stack-items"
	case HaltStackOverflow:
		return "stack-overflow"
	case HaltInvalidOperation:
		return "invalid-operation"
	case HaltIllegalStateChange:
		return "illegal-state-change"
	case HaltPrecompileNotDefined:
		return "precompile-not-defined"
	case HaltInvalidJumpDestination:
		return "invalid-jump-destination"
	case HaltCallDepthExceeded:
		return "call-depth-exceeded"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of an execution frame. All states other than
// Running are terminal; once a frame leaves Running it performs no further
// state mutation.
type Status byte

const (
	// Running means the interpreter loop still owns the frame.
	Running Status = iota
	// CompletedSuccess means the frame stopped or returned normally.
	CompletedSuccess
	// CompletedFailed means the code requested an explicit revert.
	CompletedFailed
	// ExceptionalHalt means the frame terminated with a HaltReason.
	ExceptionalHalt
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case CompletedSuccess:
		return "completed-success"
	case CompletedFailed:
		return "completed-failed"
	case ExceptionalHalt:
		return "exceptional-halt"
	default:
		return "unknown"
	}
}
