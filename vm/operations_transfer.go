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

import "github.com/ethereum/go-ethereum/common"

// opPay transfers value from the executing account to a target account
// without invoking any code (EIP-5920).
//
// Stack ordering: top of stack is the 32-byte-encoded target address, the
// next item is the value. The address word must have its high 12 bytes zero;
// anything else is an invalid encoding, distinct from a numeric error. The
// access cost is charged regardless of whether the transfer itself succeeds:
// the address is marked warm even when the balance check fails afterwards.
func opPay(pc *uint64, in *Interpreter, frame *Frame) OperationResult {
	addrWord := frame.stack.Pop()
	value := frame.stack.Pop()

	if addrWord.BitLen() > 160 {
		return haltResult(0, HaltInvalidOperation)
	}
	recipient := common.Address(addrWord.Bytes20())

	warm := frame.WarmUpAddress(recipient)
	cost := in.gc.AccountAccessCost(warm)
	if frame.gas < cost {
		return haltResult(cost, HaltInsufficientGas)
	}
	frame.DecrementGas(cost)

	sender := in.world.GetOrCreate(frame.address)
	if sender.Balance().Lt(&value) {
		return haltResult(cost, HaltIllegalStateChange)
	}

	// Created on demand; for a self-transfer this is the same account object
	// and the two mutations net to zero.
	recipientAccount := in.world.GetOrCreate(recipient)
	sender.DecrementBalance(&value)
	recipientAccount.IncrementBalance(&value)

	return OperationResult{GasCost: cost}
}
