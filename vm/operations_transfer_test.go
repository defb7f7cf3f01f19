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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPayColdTransfer(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH20, otherAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(990), w.balanceOf(contractAddr))
	require.Equal(t, uint64(10), w.balanceOf(otherAddr))
	// Two pushes plus the cold account access.
	require.Equal(t, uint64(3+3+2600), res.GasUsed)
}

func TestPayWarmTransfer(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	// The second transfer to the same recipient pays the warm cost.
	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH20, otherAddr,
		PAY,
		PUSH1, byte(10),
		PUSH20, otherAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(20), w.balanceOf(otherAddr))
	require.Equal(t, uint64(3+3+2600+3+3+100), res.GasUsed)
}

func TestPayInsufficientBalance(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 5)

	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH20, otherAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, ExceptionalHalt, res.Status)
	require.Equal(t, HaltIllegalStateChange, res.Halt)
	require.Equal(t, uint64(5), w.balanceOf(contractAddr))
	require.False(t, w.Exists(otherAddr))
}

func TestPayMarksRecipientWarmEvenOnFailure(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 5)
	in := NewInterpreter(w, Config{Rules: AllRules})
	ctx := in.BeginTransaction(senderAddr)

	frame := NewFrame(FrameParams{
		TxContext: ctx,
		Gas:       10_000,
		Address:   contractAddr,
	})
	frame.stack.Push(uint256.NewInt(10))
	frame.stack.Push(new(uint256.Int).SetBytes(otherAddr.Bytes()))

	res := opPay(new(uint64), in, frame)

	require.Equal(t, HaltIllegalStateChange, res.Halt)
	// The access was still charged and the recipient stays warm.
	require.Equal(t, uint64(2600), res.GasCost)
	require.Equal(t, uint64(10_000-2600), frame.Gas())
	require.True(t, ctx.IsWarmAddress(otherAddr))
}

func TestPayStackUnderflow(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	res := runCode(w, code(PUSH1, byte(10), PAY), 10_000)

	require.Equal(t, ExceptionalHalt, res.Status)
	require.Equal(t, HaltInsufficientStackItems, res.Halt)
	require.Equal(t, uint64(1000), w.balanceOf(contractAddr))
}

func TestPaySelfTransfer(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH20, contractAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(1000), w.balanceOf(contractAddr))
	// The executing account is warm from transaction start.
	require.Equal(t, uint64(3+3+100), res.GasUsed)
}

func TestPayZeroValueCreatesRecipient(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	res := runCode(w, code(
		PUSH1, byte(0),
		PUSH20, otherAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.True(t, w.Exists(otherAddr))
	require.Equal(t, uint64(0), w.balanceOf(otherAddr))
}

func TestPayRejectsWideAddressWord(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	// A 21-byte operand is an encoding error, not a truncatable number.
	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH21, byte(0x01), otherAddr,
		PAY,
		STOP,
	), 10_000)

	require.Equal(t, ExceptionalHalt, res.Status)
	require.Equal(t, HaltInvalidOperation, res.Halt)
	require.Equal(t, uint64(1000), w.balanceOf(contractAddr))
}

func TestPayInsufficientGasForAccess(t *testing.T) {
	w := newTestWorld()
	w.create(contractAddr, 1000)

	// Enough for the pushes, not for the cold access.
	res := runCode(w, code(
		PUSH1, byte(10),
		PUSH20, otherAddr,
		PAY,
		STOP,
	), 100)

	require.Equal(t, ExceptionalHalt, res.Status)
	require.Equal(t, HaltInsufficientGas, res.Halt)
	require.Equal(t, uint64(1000), w.balanceOf(contractAddr))
}
