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

// Account is a mutable view of one ledger account. Balance mutations through
// it are the only channel by which the interpreter changes ledger state.
// DecrementBalance assumes the caller has checked the balance; the interpreter
// never relies on it to fail.
type Account interface {
	Address() common.Address
	Balance() *uint256.Int
	IncrementBalance(value *uint256.Int)
	DecrementBalance(value *uint256.Int)
}

// WorldState is the account view supplied by the surrounding node. The
// interpreter assumes exclusive write access to it for the duration of one
// transaction. Snapshot and RevertToSnapshot give the call orchestrator its
// all-or-nothing apply semantics for child frames.
type WorldState interface {
	// GetAccount returns the account at addr, or nil if it does not exist.
	GetAccount(addr common.Address) Account
	// GetOrCreate returns the account at addr, creating it if absent.
	GetOrCreate(addr common.Address) Account
	// Exists reports whether an account is present at addr.
	Exists(addr common.Address) bool
	// GetCode returns the contract code bound to addr.
	GetCode(addr common.Address) []byte

	Snapshot() int
	RevertToSnapshot(id int)
}
