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

// CallParams describes the construction of one child call.
type CallParams struct {
	Caller common.Address
	Target common.Address
	Value  *uint256.Int
	Input  []byte
	Gas    uint64
	Static bool
	Depth  int
}

// CallResult is a child frame's terminal state as observed by its parent. A
// child halt never raises a fault in the parent; the parent decides locally
// whether to propagate the failure.
type CallResult struct {
	Output       []byte
	GasRemaining uint64
	Status       Status
	Halt         HaltReason
}

// Call constructs a child execution frame, runs it to completion through the
// interpreter loop, and merges its terminal state. Any state written by the
// child is discarded unless it completes successfully; gas consumed up to the
// halt point stays consumed. Unused gas is returned only for a successful or
// explicitly reverted child.
func (in *Interpreter) Call(p CallParams) CallResult {
	if p.Depth > CallDepthLimit {
		return CallResult{Status: ExceptionalHalt, Halt: HaltCallDepthExceeded, GasRemaining: p.Gas}
	}

	snapshot := in.world.Snapshot()

	value := new(uint256.Int)
	if p.Value != nil {
		value.Set(p.Value)
	}
	if !value.IsZero() {
		sender := in.world.GetOrCreate(p.Caller)
		if sender.Balance().Lt(value) {
			in.world.RevertToSnapshot(snapshot)
			return CallResult{Status: ExceptionalHalt, Halt: HaltIllegalStateChange, GasRemaining: p.Gas}
		}
		recipient := in.world.GetOrCreate(p.Target)
		sender.DecrementBalance(value)
		recipient.IncrementBalance(value)
	}

	if precompile, ok := in.precompiles.Get(p.Target); ok {
		return in.runPrecompile(precompile, p, snapshot)
	}

	frame := NewFrame(FrameParams{
		TxContext: in.txCtx,
		Code:      in.world.GetCode(p.Target),
		Input:     p.Input,
		Gas:       p.Gas,
		Address:   p.Target,
		Caller:    p.Caller,
		Origin:    in.origin,
		Value:     value,
		Depth:     p.Depth,
		Static:    p.Static,
	})
	in.Run(frame)

	res := CallResult{
		Output: frame.output,
		Status: frame.status,
		Halt:   frame.halt,
	}
	switch frame.status {
	case CompletedSuccess, CompletedFailed:
		res.GasRemaining = frame.gas
	default:
		// Exceptional halts consume everything handed to the child.
		res.GasRemaining = 0
	}
	if frame.status != CompletedSuccess {
		in.world.RevertToSnapshot(snapshot)
	}
	return res
}

// runPrecompile short-circuits a call to a registered native computation.
func (in *Interpreter) runPrecompile(c PrecompiledContract, p CallParams, snapshot int) CallResult {
	required := c.RequiredGas(p.Input)
	if required > p.Gas {
		in.world.RevertToSnapshot(snapshot)
		return CallResult{Status: ExceptionalHalt, Halt: HaltInsufficientGas}
	}
	out, err := c.Run(p.Input)
	if err != nil {
		in.world.RevertToSnapshot(snapshot)
		return CallResult{Status: ExceptionalHalt, Halt: HaltIllegalStateChange}
	}
	return CallResult{Output: out, GasRemaining: p.Gas - required, Status: CompletedSuccess}
}

// opCall spawns a plain child call. Unlike AUTHCALL it does not propagate the
// child's failure as a halt: it pushes a success indicator on the stack and
// lets the code decide.
func opCall(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	var (
		gasReq  = frame.stack.Pop()
		target  = frame.stack.Pop()
		value   = frame.stack.Pop()
		argsOff = frame.stack.Pop()
		argsLen = frame.stack.Pop()
		retOff  = frame.stack.Pop()
		retLen  = frame.stack.Pop()
	)
	if frame.static && !value.IsZero() {
		return haltResult(0, HaltIllegalStateChange)
	}
	toAddr := common.Address(target.Bytes20())
	return callCommon(pc, in, frame, callArgs{
		caller:    frame.address,
		target:    toAddr,
		value:     &value,
		gasReq:    &gasReq,
		argsOff:   &argsOff,
		argsLen:   &argsLen,
		retOff:    &retOff,
		retLen:    &retLen,
		forceStat: frame.static,
	})
}

// opStaticCall spawns a child call in a forced read-only context.
func opStaticCall(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	var (
		gasReq  = frame.stack.Pop()
		target  = frame.stack.Pop()
		argsOff = frame.stack.Pop()
		argsLen = frame.stack.Pop()
		retOff  = frame.stack.Pop()
		retLen  = frame.stack.Pop()
	)
	toAddr := common.Address(target.Bytes20())
	return callCommon(pc, in, frame, callArgs{
		caller:    frame.address,
		target:    toAddr,
		value:     new(uint256.Int),
		gasReq:    &gasReq,
		argsOff:   &argsOff,
		argsLen:   &argsLen,
		retOff:    &retOff,
		retLen:    &retLen,
		forceStat: true,
	})
}

type callArgs struct {
	caller    common.Address
	target    common.Address
	value     *uint256.Int
	gasReq    *uint256.Int
	argsOff   *uint256.Int
	argsLen   *uint256.Int
	retOff    *uint256.Int
	retLen    *uint256.Int
	forceStat bool
}

// callCommon charges the call surcharges, spawns the child frame, and merges
// its result into the parent as a stack indicator.
func callCommon(pc *uint64, in *Interpreter, frame *Frame, a callArgs) OperationResult {
	argsOffset, argsLength, halt := memorySpan(a.argsOff, a.argsLen)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	retOffset, retLength, halt := memorySpan(a.retOff, a.retLen)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	args, halt := frame.ReadMemory(argsOffset, argsLength)
	if halt != HaltNone {
		return haltResult(0, halt)
	}

	warm := frame.WarmUpAddress(a.target)
	dynamic := in.gc.AccountAccessCost(warm) +
		in.gc.ValueTransferCost(a.value) +
		in.gc.NewAccountCost(in.world.Exists(a.target), a.value)
	if frame.gas < dynamic {
		return haltResult(dynamic, HaltInsufficientGas)
	}
	frame.DecrementGas(dynamic)

	childGas := in.gc.AvailableCallGas(frame.gas, a.gasReq)
	frame.DecrementGas(childGas)
	if !a.value.IsZero() {
		childGas += in.gc.CallStipend()
	}

	res := in.Call(CallParams{
		Caller: a.caller,
		Target: a.target,
		Value:  a.value,
		Input:  args,
		Gas:    childGas,
		Static: a.forceStat,
		Depth:  frame.depth + 1,
	})
	frame.RefundGas(res.GasRemaining)
	frame.returnData = res.Output

	if res.Status == CompletedSuccess || res.Status == CompletedFailed {
		out := res.Output
		if uint64(len(out)) > retLength {
			out = out[:retLength]
		}
		if halt := frame.WriteMemory(retOffset, out); halt != HaltNone {
			return haltResult(dynamic, halt)
		}
	}
	if res.Status == CompletedSuccess {
		frame.stack.Push(uint256.NewInt(1))
	} else {
		frame.stack.Push(new(uint256.Int))
	}
	return OperationResult{GasCost: dynamic, Output: res.Output}
}
