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
	"github.com/holiman/uint256"
)

// CallDepthLimit bounds the nesting of execution frames.
const CallDepthLimit = 1024

// FrameParams collects everything needed to construct one execution frame.
type FrameParams struct {
	TxContext *TxContext
	Code      []byte
	Input     []byte
	Gas       uint64
	Address   common.Address // the account executing this frame
	Caller    common.Address
	Origin    common.Address
	Value     *uint256.Int
	Depth     int
	Static    bool
}

// Frame is one level of call-stack execution context. It is mutable and
// exclusively owned by the interpreter loop for its lifetime; child frames are
// distinct values merged back into the parent at completion, never aliased.
type Frame struct {
	txCtx *TxContext

	code  []byte
	input []byte

	pc     uint64
	stack  *Stack
	memory *Memory
	gas    uint64

	address common.Address
	caller  common.Address
	origin  common.Address
	value   uint256.Int

	depth  int
	static bool

	status     Status
	halt       HaltReason
	output     []byte
	returnData []byte

	jumpdests map[uint64]struct{}

	gc GasCalculator
}

// NewFrame builds a frame in the Running state.
func NewFrame(p FrameParams) *Frame {
	f := &Frame{
		txCtx:   p.TxContext,
		code:    p.Code,
		input:   p.Input,
		stack:   NewStack(),
		memory:  NewMemory(),
		gas:     p.Gas,
		address: p.Address,
		caller:  p.Caller,
		origin:  p.Origin,
		depth:   p.Depth,
		static:  p.Static,
		status:  Running,
	}
	if p.Value != nil {
		f.value.Set(p.Value)
	}
	f.jumpdests = analyzeJumpdests(p.Code)
	return f
}

// analyzeJumpdests records the positions of JUMPDEST instructions, skipping
// push immediates so that operand bytes are never treated as destinations.
func analyzeJumpdests(code []byte) map[uint64]struct{} {
	dests := make(map[uint64]struct{})
	for pc := uint64(0); pc < uint64(len(code)); pc++ {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			dests[pc] = struct{}{}
		}
		pc += op.pushDataSize()
	}
	return dests
}

// validJumpdest reports whether dest is a JUMPDEST outside any push immediate.
func (f *Frame) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	_, ok := f.jumpdests[dest.Uint64()]
	return ok
}

func (f *Frame) Address() common.Address { return f.address }
func (f *Frame) Caller() common.Address  { return f.caller }
func (f *Frame) Origin() common.Address  { return f.origin }
func (f *Frame) Value() *uint256.Int     { return &f.value }
func (f *Frame) Input() []byte           { return f.input }
func (f *Frame) Code() []byte            { return f.code }
func (f *Frame) Gas() uint64             { return f.gas }
func (f *Frame) Depth() int              { return f.depth }
func (f *Frame) IsStatic() bool          { return f.static }
func (f *Frame) Status() Status          { return f.status }
func (f *Frame) Halt() HaltReason        { return f.halt }
func (f *Frame) Output() []byte          { return f.output }
func (f *Frame) ReturnData() []byte      { return f.returnData }
func (f *Frame) Stack() *Stack           { return f.stack }
func (f *Frame) Memory() *Memory         { return f.memory }
func (f *Frame) TxContext() *TxContext   { return f.txCtx }

// Push appends a word, failing with StackOverflow at the depth bound.
func (f *Frame) Push(d *uint256.Int) HaltReason {
	if f.stack.Len() >= StackLimit {
		return HaltStackOverflow
	}
	f.stack.Push(d)
	return HaltNone
}

// Pop removes and returns the top word, failing when the stack is empty.
func (f *Frame) Pop() (uint256.Int, HaltReason) {
	if f.stack.Len() == 0 {
		return uint256.Int{}, HaltInsufficientStackItems
	}
	return f.stack.Pop(), HaltNone
}

// Peek returns the index'th word from the top without removing it.
func (f *Frame) Peek(index int) (*uint256.Int, HaltReason) {
	if f.stack.Len() <= index {
		return nil, HaltInsufficientStackItems
	}
	return f.stack.Back(index), HaltNone
}

// DecrementGas charges amount, saturating at zero. Within a frame's active
// execution the remaining gas is monotonically non-increasing.
func (f *Frame) DecrementGas(amount uint64) {
	if amount > f.gas {
		f.gas = 0
		return
	}
	f.gas -= amount
}

// RefundGas returns unused gas merged back from a completed child frame.
func (f *Frame) RefundGas(amount uint64) {
	f.gas += amount
}

// WarmUpAddress marks addr warm in the transaction-scoped set and returns
// whether it already was.
func (f *Frame) WarmUpAddress(addr common.Address) bool {
	return f.txCtx.WarmUpAddress(addr)
}

// WarmUpSlot marks a storage slot of this frame's account warm and returns
// whether it already was.
func (f *Frame) WarmUpSlot(key common.Hash) bool {
	return f.txCtx.WarmUpSlot(f.address, key)
}

// expandMemory grows memory to cover [offset, offset+size), charging the
// expansion fee against the remaining gas.
func (f *Frame) expandMemory(offset, size uint64) HaltReason {
	end, ok := memEnd(offset, size)
	if !ok {
		return HaltInsufficientGas
	}
	cost, ok := f.gc.MemoryExpansionCost(f.memory, end)
	if !ok {
		return HaltInsufficientGas
	}
	if cost > f.gas {
		return HaltInsufficientGas
	}
	f.DecrementGas(cost)
	f.memory.Resize(toWordSize(end) * 32)
	return HaltNone
}

// ReadMemory returns size bytes at offset, growing (and charging for) the
// memory as needed. The returned slice is a copy.
func (f *Frame) ReadMemory(offset, size uint64) ([]byte, HaltReason) {
	if size == 0 {
		return nil, HaltNone
	}
	if halt := f.expandMemory(offset, size); halt != HaltNone {
		return nil, halt
	}
	return f.memory.GetCopy(offset, size), HaltNone
}

// WriteMemory writes data at offset, growing (and charging for) the memory as
// needed.
func (f *Frame) WriteMemory(offset uint64, data []byte) HaltReason {
	if len(data) == 0 {
		return HaltNone
	}
	if halt := f.expandMemory(offset, uint64(len(data))); halt != HaltNone {
		return halt
	}
	f.memory.Set(offset, uint64(len(data)), data)
	return HaltNone
}

// setHalt moves the frame into its terminal exceptional state.
func (f *Frame) setHalt(reason HaltReason) {
	f.status = ExceptionalHalt
	f.halt = reason
}

// setSuccess completes the frame normally with the given output.
func (f *Frame) setSuccess(output []byte) {
	f.status = CompletedSuccess
	f.output = output
}

// setRevert completes the frame with an explicit revert and its payload.
func (f *Frame) setRevert(output []byte) {
	f.status = CompletedFailed
	f.output = output
}
