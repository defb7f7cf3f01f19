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
	"golang.org/x/crypto/sha3"
)

// getData returns a zero-padded slice of data from start with the given size.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

func opStop(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	return OperationResult{}
}

func opAdd(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Add(&x, y)
	return OperationResult{}
}

func opMul(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Mul(&x, y)
	return OperationResult{}
}

func opSub(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Sub(&x, y)
	return OperationResult{}
}

func opDiv(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Div(&x, y)
	return OperationResult{}
}

func opSdiv(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.SDiv(&x, y)
	return OperationResult{}
}

func opMod(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Mod(&x, y)
	return OperationResult{}
}

func opLt(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return OperationResult{}
}

func opGt(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return OperationResult{}
}

func opSlt(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return OperationResult{}
}

func opSgt(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return OperationResult{}
}

func opEq(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return OperationResult{}
}

func opIszero(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x := frame.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return OperationResult{}
}

func opAnd(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.And(&x, y)
	return OperationResult{}
}

func opOr(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Or(&x, y)
	return OperationResult{}
}

func opXor(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x, y := frame.stack.Pop(), frame.stack.peek()
	y.Xor(&x, y)
	return OperationResult{}
}

func opNot(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x := frame.stack.peek()
	x.Not(x)
	return OperationResult{}
}

func opByte(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	th, val := frame.stack.Pop(), frame.stack.peek()
	val.Byte(&th)
	return OperationResult{}
}

func opSHL(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	shift, value := frame.stack.Pop(), frame.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return OperationResult{}
}

func opSHR(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	shift, value := frame.stack.Pop(), frame.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return OperationResult{}
}

// gasKeccak256Words charges the per-word hashing cost from the size operand;
// the base cost is the operation's declared constant.
func gasKeccak256Words(gc GasCalculator, frame *Frame) (uint64, bool) {
	size, overflow := frame.stack.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, false
	}
	return gc.Keccak256WordCost(size), true
}

func opKeccak256(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	offset, size := frame.stack.Pop(), frame.stack.peek()
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	length, overflow := size.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	data, halt := frame.ReadMemory(off, length)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	size.SetBytes(hasher.Sum(nil))
	return OperationResult{}
}

func opAddress(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetBytes(frame.address.Bytes()))
	return OperationResult{}
}

// opBalance charges its own warm/cold access cost: peeking the warm set is
// part of the cost, marking it warm is part of the execution.
func opBalance(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	slot := frame.stack.peek()
	addr := common.Address(slot.Bytes20())
	warm := frame.WarmUpAddress(addr)
	cost := in.gc.AccountAccessCost(warm)
	if cost > frame.gas {
		return haltResult(cost, HaltInsufficientGas)
	}
	frame.DecrementGas(cost)
	if acct := in.world.GetAccount(addr); acct != nil {
		slot.Set(acct.Balance())
	} else {
		slot.Clear()
	}
	return OperationResult{GasCost: cost}
}

func opOrigin(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetBytes(frame.origin.Bytes()))
	return OperationResult{}
}

func opCaller(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetBytes(frame.caller.Bytes()))
	return OperationResult{}
}

func opCallValue(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).Set(&frame.value))
	return OperationResult{}
}

func opCallDataLoad(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	x := frame.stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		x.SetBytes(getData(frame.input, offset, 32))
	} else {
		x.Clear()
	}
	return OperationResult{}
}

func opCallDataSize(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetUint64(uint64(len(frame.input))))
	return OperationResult{}
}

// gasCallDataCopy charges the per-word copy cost from the length operand.
func gasCallDataCopy(gc GasCalculator, frame *Frame) (uint64, bool) {
	length, overflow := frame.stack.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, false
	}
	return gc.CopyCost(length), true
}

func opCallDataCopy(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	var (
		memOffset  = frame.stack.Pop()
		dataOffset = frame.stack.Pop()
		length     = frame.stack.Pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = uint64(len(frame.input))
	}
	memOffset64, overflow := memOffset.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	if halt := frame.WriteMemory(memOffset64, getData(frame.input, dataOffset64, length64)); halt != HaltNone {
		return haltResult(0, halt)
	}
	return OperationResult{}
}

func opPop(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Pop()
	return OperationResult{}
}

func opMload(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	v := frame.stack.peek()
	offset, overflow := v.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	data, halt := frame.ReadMemory(offset, 32)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	v.SetBytes(data)
	return OperationResult{}
}

func opMstore(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	mStart, val := frame.stack.Pop(), frame.stack.Pop()
	offset, overflow := mStart.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	if halt := frame.expandMemory(offset, 32); halt != HaltNone {
		return haltResult(0, halt)
	}
	frame.memory.Set32(offset, &val)
	return OperationResult{}
}

func opMstore8(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	off, val := frame.stack.Pop(), frame.stack.Pop()
	offset, overflow := off.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	if halt := frame.expandMemory(offset, 1); halt != HaltNone {
		return haltResult(0, halt)
	}
	frame.memory.Set(offset, 1, []byte{byte(val.Uint64())})
	return OperationResult{}
}

func opJump(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	dest := frame.stack.Pop()
	if !frame.validJumpdest(&dest) {
		return haltResult(0, HaltInvalidJumpDestination)
	}
	*pc = dest.Uint64()
	return OperationResult{}
}

func opJumpi(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	dest, cond := frame.stack.Pop(), frame.stack.Pop()
	if !cond.IsZero() {
		if !frame.validJumpdest(&dest) {
			return haltResult(0, HaltInvalidJumpDestination)
		}
		*pc = dest.Uint64()
	} else {
		*pc++
	}
	return OperationResult{}
}

func opJumpdest(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	return OperationResult{}
}

func opPc(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetUint64(*pc))
	return OperationResult{}
}

func opMsize(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetUint64(uint64(frame.memory.Len())))
	return OperationResult{}
}

func opGas(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int).SetUint64(frame.gas))
	return OperationResult{}
}

func opPush0(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	frame.stack.Push(new(uint256.Int))
	return OperationResult{}
}

// makePush builds the PUSH1..PUSH32 operation for the given immediate size.
// The immediate bytes belong to the instruction and advance the program
// counter; they are never independently dispatched.
func makePush(size uint64) ExecutionFunc {
	return func(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
		codeLen := uint64(len(frame.code))
		start := *pc + 1
		if start > codeLen {
			start = codeLen
		}
		end := start + size
		if end > codeLen {
			end = codeLen
		}
		frame.stack.Push(new(uint256.Int).SetBytes(
			common.RightPadBytes(frame.code[start:end], int(size))))
		*pc += size
		return OperationResult{}
	}
}

// makeDup builds the DUP1..DUP16 operation.
func makeDup(size int) ExecutionFunc {
	return func(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
		frame.stack.dup(size)
		return OperationResult{}
	}
}

// makeSwap builds the SWAP1..SWAP16 operation.
func makeSwap(size int) ExecutionFunc {
	return func(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
		frame.stack.swap(size)
		return OperationResult{}
	}
}

func opReturn(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	offset, size := frame.stack.Pop(), frame.stack.Pop()
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	length, overflow := size.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	data, halt := frame.ReadMemory(off, length)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	return OperationResult{Output: data}
}

func opRevert(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	offset, size := frame.stack.Pop(), frame.stack.Pop()
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	length, overflow := size.Uint64WithOverflow()
	if overflow {
		return haltResult(0, HaltInsufficientGas)
	}
	data, halt := frame.ReadMemory(off, length)
	if halt != HaltNone {
		return haltResult(0, halt)
	}
	return OperationResult{Output: data}
}

func opInvalid(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	return haltResult(0, HaltInvalidOperation)
}
