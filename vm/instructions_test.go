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

func neg(v uint64) *uint256.Int {
	x := uint256.NewInt(v)
	return x.Neg(x)
}

func TestBinaryOps(t *testing.T) {
	maxWord := new(uint256.Int).Not(new(uint256.Int))

	tests := []struct {
		name string
		op   ExecutionFunc
		top  *uint256.Int // first operand, popped
		next *uint256.Int // second operand, replaced in place
		want *uint256.Int
	}{
		{"add", opAdd, uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(3)},
		{"add wraps", opAdd, maxWord, uint256.NewInt(1), uint256.NewInt(0)},
		{"sub", opSub, uint256.NewInt(5), uint256.NewInt(3), uint256.NewInt(2)},
		{"sub wraps", opSub, uint256.NewInt(0), uint256.NewInt(1), maxWord},
		{"mul", opMul, uint256.NewInt(6), uint256.NewInt(7), uint256.NewInt(42)},
		{"div", opDiv, uint256.NewInt(7), uint256.NewInt(2), uint256.NewInt(3)},
		{"div by zero", opDiv, uint256.NewInt(7), uint256.NewInt(0), uint256.NewInt(0)},
		{"sdiv", opSdiv, neg(6), uint256.NewInt(2), neg(3)},
		{"mod", opMod, uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(1)},
		{"mod by zero", opMod, uint256.NewInt(7), uint256.NewInt(0), uint256.NewInt(0)},
		{"lt true", opLt, uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(1)},
		{"lt false", opLt, uint256.NewInt(2), uint256.NewInt(1), uint256.NewInt(0)},
		{"gt", opGt, uint256.NewInt(2), uint256.NewInt(1), uint256.NewInt(1)},
		{"slt signed", opSlt, neg(1), uint256.NewInt(0), uint256.NewInt(1)},
		{"sgt signed", opSgt, uint256.NewInt(0), neg(1), uint256.NewInt(1)},
		{"eq", opEq, uint256.NewInt(5), uint256.NewInt(5), uint256.NewInt(1)},
		{"and", opAnd, uint256.NewInt(0b1100), uint256.NewInt(0b1010), uint256.NewInt(0b1000)},
		{"or", opOr, uint256.NewInt(0b1100), uint256.NewInt(0b1010), uint256.NewInt(0b1110)},
		{"xor", opXor, uint256.NewInt(0b1100), uint256.NewInt(0b1010), uint256.NewInt(0b0110)},
		{"byte", opByte, uint256.NewInt(31), uint256.NewInt(0xabcd), uint256.NewInt(0xcd)},
		{"byte out of range", opByte, uint256.NewInt(32), uint256.NewInt(0xabcd), uint256.NewInt(0)},
		{"shl", opSHL, uint256.NewInt(4), uint256.NewInt(1), uint256.NewInt(16)},
		{"shl overflow", opSHL, uint256.NewInt(256), uint256.NewInt(1), uint256.NewInt(0)},
		{"shr", opSHR, uint256.NewInt(4), uint256.NewInt(16), uint256.NewInt(1)},
		{"shr overflow", opSHR, uint256.NewInt(256), maxWord, uint256.NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBareFrame(0)
			f.stack.Push(tt.next)
			f.stack.Push(tt.top)

			res := tt.op(new(uint64), nil, f)

			require.Equal(t, HaltNone, res.Halt)
			require.Equal(t, 1, f.stack.Len())
			require.Equal(t, tt.want, f.stack.peek())
		})
	}
}

func TestUnaryOps(t *testing.T) {
	f := newBareFrame(0)
	f.stack.Push(uint256.NewInt(0))
	opIszero(new(uint64), nil, f)
	require.Equal(t, uint64(1), f.stack.peek().Uint64())

	opIszero(new(uint64), nil, f)
	require.True(t, f.stack.peek().IsZero())

	f.stack.Push(new(uint256.Int))
	opNot(new(uint64), nil, f)
	require.Equal(t, new(uint256.Int).Not(new(uint256.Int)), f.stack.peek())
}

func TestCallDataLoadPadsShortInput(t *testing.T) {
	f := NewFrame(FrameParams{
		TxContext: NewTxContext(),
		Input:     []byte{0x01, 0x02},
	})

	f.stack.Push(uint256.NewInt(0))
	opCallDataLoad(new(uint64), nil, f)
	word := f.stack.Pop()
	b := word.Bytes32()
	require.Equal(t, byte(0x01), b[0])
	require.Equal(t, byte(0x02), b[1])
	require.Equal(t, byte(0x00), b[2])

	// Fully past the input: all zero.
	f.stack.Push(uint256.NewInt(100))
	opCallDataLoad(new(uint64), nil, f)
	word = f.stack.Pop()
	require.True(t, word.IsZero())
}

func TestBalanceWarmAndCold(t *testing.T) {
	w := newTestWorld()
	w.create(otherAddr, 1234)

	// Two reads of the same balance: cold then warm.
	res := runCode(w, code(
		PUSH20, otherAddr,
		BALANCE,
		POP,
		PUSH20, otherAddr,
		BALANCE,
		PUSH1, byte(0),
		MSTORE,
		PUSH1, byte(32),
		PUSH1, byte(0),
		RETURN,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(1234), new(uint256.Int).SetBytes(res.Output).Uint64())
	// 3+2600, 2, 3+100, then 3+3+3 for the store and 3+3 for the return.
	require.Equal(t, uint64(3+2600+2+3+100+3+3+3+3+3), res.GasUsed)
}

func TestBalanceOfAbsentAccountIsZero(t *testing.T) {
	w := newTestWorld()
	res := runCode(w, code(
		PUSH20, otherAddr,
		BALANCE,
		PUSH1, byte(0),
		MSTORE,
		PUSH1, byte(32),
		PUSH1, byte(0),
		RETURN,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.True(t, new(uint256.Int).SetBytes(res.Output).IsZero())
	require.False(t, w.Exists(otherAddr), "a balance read must not create the account")
}

func TestDupAndSwapOps(t *testing.T) {
	w := newTestWorld()
	// [1 2] -> dup2 -> [1 2 1] -> swap1 -> [1 1 2] -> return top.
	res := runCode(w, code(
		PUSH1, byte(1),
		PUSH1, byte(2),
		DUP2,
		SWAP1,
		PUSH1, byte(0),
		MSTORE,
		PUSH1, byte(32),
		PUSH1, byte(0),
		RETURN,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(2), new(uint256.Int).SetBytes(res.Output).Uint64())
}

func TestPushTruncatedImmediate(t *testing.T) {
	w := newTestWorld()
	// PUSH2 with only one immediate byte left is right-padded with zeros.
	res := runCode(w, code(PUSH2, byte(0x01)), 100)

	require.Equal(t, CompletedSuccess, res.Status)
}

func TestPush0AndPc(t *testing.T) {
	w := newTestWorld()
	res := runCode(w, code(
		PUSH0,
		PC, // pc of this instruction is 1
		ADD,
		PUSH1, byte(0),
		MSTORE,
		PUSH1, byte(32),
		PUSH1, byte(0),
		RETURN,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(1), new(uint256.Int).SetBytes(res.Output).Uint64())
}

func TestMsizeAfterExpansion(t *testing.T) {
	w := newTestWorld()
	res := runCode(w, code(
		PUSH1, byte(0),
		MLOAD,
		POP,
		MSIZE,
		PUSH1, byte(0),
		MSTORE,
		PUSH1, byte(32),
		PUSH1, byte(0),
		RETURN,
	), 10_000)

	require.Equal(t, CompletedSuccess, res.Status)
	require.Equal(t, uint64(32), new(uint256.Int).SetBytes(res.Output).Uint64())
}
