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

import "github.com/holiman/uint256"

// StackLimit is the maximum number of operand stack items.
const StackLimit = 1024

// Stack is the LIFO operand stack of 256-bit words. Bounds are validated by
// the interpreter loop (against the operation's declared arity) or by the
// owning frame, so the raw accessors here never fail.
type Stack struct {
	data []uint256.Int
}

// NewStack returns an empty operand stack.
func NewStack() *Stack {
	return &Stack{data: make([]uint256.Int, 0, 16)}
}

// Data returns the backing slice, bottom first.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

func (st *Stack) Push(d *uint256.Int) {
	st.data = append(st.data, *d)
}

func (st *Stack) Pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) Len() int {
	return len(st.data)
}

// Back returns the n'th item from the top of the stack without removing it.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.Len()-n-1]
}

// peek returns the top of the stack without removing it.
func (st *Stack) peek() *uint256.Int {
	return &st.data[st.Len()-1]
}

func (st *Stack) swap(n int) {
	st.data[st.Len()-n-1], st.data[st.Len()-1] = st.data[st.Len()-1], st.data[st.Len()-n-1]
}

func (st *Stack) dup(n int) {
	st.Push(st.Back(n - 1))
}

// Clone does a deep copy of the stack.
func (st *Stack) Clone() *Stack {
	cpy := &Stack{data: make([]uint256.Int, len(st.data))}
	copy(cpy.data, st.data)
	return cpy
}
