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

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Config tunes one interpreter instance.
type Config struct {
	// Rules select the operation table for the active protocol upgrade.
	Rules ChainRules
	// Logger is the injected diagnostics sink, scoped to this interpreter.
	// Nil defaults to the root logger.
	Logger log.Logger
	// Precompiles overrides the default registry; nil keeps the default.
	Precompiles *PrecompileRegistry
}

// Interpreter executes bytecode deterministically, one transaction at a time.
// It owns its frame stack and warm-set for the duration of a transaction and
// assumes exclusive write access to the worldstate view. Independent
// interpreter instances may run in parallel only on independent worldstate
// snapshots.
type Interpreter struct {
	world       WorldState
	precompiles *PrecompileRegistry
	gc          GasCalculator
	jt          *JumpTable
	logger      log.Logger

	// per-transaction state
	txCtx  *TxContext
	origin common.Address
}

// NewInterpreter wires an interpreter to a worldstate view.
func NewInterpreter(world WorldState, cfg Config) *Interpreter {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	precompiles := cfg.Precompiles
	if precompiles == nil {
		precompiles = DefaultPrecompiles()
	}
	return &Interpreter{
		world:       world,
		precompiles: precompiles,
		jt:          NewInstructionSet(cfg.Rules),
		logger:      logger,
	}
}

// World returns the account view this interpreter mutates.
func (in *Interpreter) World() WorldState { return in.world }

// BeginTransaction resets the transaction-scoped state (warm sets, context
// variables) and records the originating address. It returns the fresh
// context so callers constructing frames directly can share it.
func (in *Interpreter) BeginTransaction(origin common.Address) *TxContext {
	in.txCtx = NewTxContext()
	in.origin = origin
	return in.txCtx
}

// TransactionParams describes one top-level execution request.
type TransactionParams struct {
	Sender common.Address
	Target common.Address
	Input  []byte
	Gas    uint64
	Value  *uint256.Int
}

// TransactionResult reports the terminal state of a top-level frame: total
// gas consumed and, on any halt, the reason. There are no retries.
type TransactionResult struct {
	Output  []byte
	GasUsed uint64
	Status  Status
	Halt    HaltReason
}

// ExecuteTransaction runs one transaction to its terminal state.
func (in *Interpreter) ExecuteTransaction(p TransactionParams) TransactionResult {
	in.BeginTransaction(p.Sender)
	// The sender and the target are warm from the start.
	in.txCtx.WarmUpAddress(p.Sender)
	in.txCtx.WarmUpAddress(p.Target)

	res := in.Call(CallParams{
		Caller: p.Sender,
		Target: p.Target,
		Value:  p.Value,
		Input:  p.Input,
		Gas:    p.Gas,
		Depth:  0,
	})
	gasUsed := p.Gas - res.GasRemaining
	in.logger.Debug("transaction executed",
		"sender", p.Sender, "target", p.Target,
		"status", res.Status, "halt", res.Halt, "gasUsed", gasUsed)
	return TransactionResult{
		Output:  res.Output,
		GasUsed: gasUsed,
		Status:  res.Status,
		Halt:    res.Halt,
	}
}

// Run drives a frame until it reaches a terminal state. Execution is a
// cooperative, synchronous recursion: call-family operations run their child
// frame to full completion before the parent operation returns.
func (in *Interpreter) Run(frame *Frame) {
	for frame.status == Running {
		in.step(frame)
	}
}

// step reads the current program counter, fetches the opcode, dispatches to
// the matching operation, applies its declared cost, checks gas sufficiency,
// and executes it.
func (in *Interpreter) step(frame *Frame) {
	if frame.pc >= uint64(len(frame.code)) {
		// Running off the end of the code is an implicit stop.
		frame.setSuccess(nil)
		return
	}
	op := OpCode(frame.code[frame.pc])
	operation := &in.jt[op]
	if !operation.Valid {
		frame.setHalt(HaltInvalidOperation)
		return
	}
	if sLen := frame.stack.Len(); sLen < operation.MinStack {
		frame.setHalt(HaltInsufficientStackItems)
		return
	} else if sLen > operation.MaxStack {
		frame.setHalt(HaltStackOverflow)
		return
	}
	if frame.static && operation.writes {
		frame.setHalt(HaltIllegalStateChange)
		return
	}

	// The declared cost is checked before execute is invoked; operations with
	// access-dependent costs do their own ordered check inside execute.
	cost := operation.constantGas
	if operation.dynamicGas != nil {
		dynamic, ok := operation.dynamicGas(in.gc, frame)
		if !ok {
			frame.setHalt(HaltInsufficientGas)
			return
		}
		cost += dynamic
	}
	if cost > frame.gas {
		frame.setHalt(HaltInsufficientGas)
		return
	}
	frame.DecrementGas(cost)

	pc := frame.pc
	res := in.execute(op, operation, &pc, frame)
	if res.Halt != HaltNone {
		frame.setHalt(res.Halt)
		return
	}
	if !operation.jumps {
		pc++
	}
	frame.pc = pc

	switch {
	case operation.reverts:
		frame.setRevert(res.Output)
	case operation.halts:
		frame.setSuccess(res.Output)
	}
}

// execute applies one operation, containing any internal fault at the
// operation boundary: a panic is converted to a generic illegal-state halt
// and never unwinds past this point.
func (in *Interpreter) execute(op OpCode, operation *Operation, pc *uint64, frame *Frame) (res OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Debug("operation fault contained",
				"op", op, "pc", *pc, "depth", frame.depth, "panic", r)
			res = OperationResult{Halt: HaltIllegalStateChange}
		}
	}()
	return operation.Execute(pc, in, frame)
}
