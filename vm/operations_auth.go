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

// authSignatureLength is the r || s || yParity trailer AUTH expects at the end
// of the frame's input data.
const authSignatureLength = 65

// opAuth verifies a delegated authorization (EIP-3074 pattern). The signature
// is the last 65 bytes of the call input, the signed message is everything
// before it. Verification is delegated to the registered signature-recovery
// precompile; on success the recovered address becomes the transaction-scoped
// authorized address consumed by AUTHCALL. The expensive cryptographic step
// happens once here, so one authorization can drive many calls.
func opAuth(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	precompile, ok := in.precompiles.Get(EcrecoverAddress)
	if !ok {
		// Configuration-level failure, distinct from a verification failure.
		return haltResult(0, HaltPrecompileNotDefined)
	}

	cost := in.gc.AuthCost()
	if frame.gas < cost {
		return haltResult(cost, HaltInsufficientGas)
	}
	frame.DecrementGas(cost)

	input := frame.input
	if len(input) < authSignatureLength {
		return haltResult(cost, HaltIllegalStateChange)
	}
	message := input[:len(input)-authSignatureLength]
	sig := input[len(input)-authSignatureLength:]

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(message)
	commit := hasher.Sum(nil)

	// Recovery input layout: hash(32) || v(32) || r(32) || s(32), with the
	// signature trailer carrying r(32) || s(32) || yParity(1).
	recoverInput := make([]byte, 128)
	copy(recoverInput[0:32], commit)
	recoverInput[63] = sig[64] + 27
	copy(recoverInput[64:128], sig[:64])

	out, err := precompile.Run(recoverInput)
	if err != nil || len(out) != 32 {
		return haltResult(cost, HaltIllegalStateChange)
	}
	frame.txCtx.SetAuthorizedAddress(common.BytesToAddress(out[12:]))
	return OperationResult{GasCost: cost}
}

// opAuthCall calls the currently authorized address. The target popped from
// the stack must equal the address set by a prior AUTH in the same
// transaction; a mismatch halts before any child frame is constructed. The
// child frame runs with the authorized address as caller. Cold-access,
// value-transfer and new-account surcharges are evaluated against the
// warm-set state at call time.
func opAuthCall(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	var (
		gasReq  = frame.stack.Pop()
		target  = frame.stack.Pop()
		value   = frame.stack.Pop()
		argsOff = frame.stack.Pop()
		argsLen = frame.stack.Pop()
		retOff  = frame.stack.Pop()
		retLen  = frame.stack.Pop()
	)
	base := in.gc.BaseTierCost()
	if frame.gas < base {
		return haltResult(base, HaltInsufficientGas)
	}
	frame.DecrementGas(base)

	toAddr := common.Address(target.Bytes20())
	authorized, ok := frame.txCtx.AuthorizedAddress()
	if !ok || toAddr != authorized {
		return haltResult(base, HaltIllegalStateChange)
	}
	if frame.static && !value.IsZero() {
		return haltResult(base, HaltIllegalStateChange)
	}

	argsOffset, argsLength, halt := memorySpan(&argsOff, &argsLen)
	if halt != HaltNone {
		return haltResult(base, halt)
	}
	retOffset, retLength, halt := memorySpan(&retOff, &retLen)
	if halt != HaltNone {
		return haltResult(base, halt)
	}
	args, halt := frame.ReadMemory(argsOffset, argsLength)
	if halt != HaltNone {
		return haltResult(base, halt)
	}

	warm := frame.WarmUpAddress(toAddr)
	dynamic := in.gc.AccountAccessCost(warm) +
		in.gc.ValueTransferCost(&value) +
		in.gc.NewAccountCost(in.world.Exists(toAddr), &value)
	if frame.gas < dynamic {
		return haltResult(base+dynamic, HaltInsufficientGas)
	}
	frame.DecrementGas(dynamic)

	childGas := in.gc.AvailableCallGas(frame.gas, &gasReq)
	frame.DecrementGas(childGas)
	if !value.IsZero() {
		childGas += in.gc.CallStipend()
	}

	res := in.Call(CallParams{
		Caller: authorized,
		Target: toAddr,
		Value:  &value,
		Input:  args,
		Gas:    childGas,
		Static: frame.static,
		Depth:  frame.depth + 1,
	})
	frame.RefundGas(res.GasRemaining)
	frame.returnData = res.Output

	if res.Status != CompletedSuccess {
		return haltResult(base+dynamic, HaltIllegalStateChange)
	}
	out := res.Output
	if uint64(len(out)) > retLength {
		out = out[:retLength]
	}
	if halt := frame.WriteMemory(retOffset, out); halt != HaltNone {
		return haltResult(base+dynamic, halt)
	}
	frame.stack.Push(uint256.NewInt(1))
	return OperationResult{GasCost: base + dynamic, Output: res.Output}
}

// memorySpan converts an offset/length operand pair to uint64, treating an
// overflowing operand as gas exhaustion.
func memorySpan(offset, length *uint256.Int) (uint64, uint64, HaltReason) {
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return 0, 0, HaltInsufficientGas
	}
	size, overflow := length.Uint64WithOverflow()
	if overflow {
		return 0, 0, HaltInsufficientGas
	}
	return off, size, HaltNone
}
