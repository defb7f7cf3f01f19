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

// Package state provides an in-memory WorldState used by the scenario runner
// and the test suites. It supports journaled snapshots with O(accounts) revert,
// which is enough for the single-transaction scopes the interpreter runs in.
package state

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/practical-formal-methods/minievm/vm"
)

// account is one ledger entry. Code is immutable after SetCode.
type account struct {
	address common.Address
	balance uint256.Int
	code    []byte
}

func (a *account) Address() common.Address { return a.address }

func (a *account) Balance() *uint256.Int {
	return new(uint256.Int).Set(&a.balance)
}

func (a *account) IncrementBalance(value *uint256.Int) {
	a.balance.Add(&a.balance, value)
}

func (a *account) DecrementBalance(value *uint256.Int) {
	a.balance.Sub(&a.balance, value)
}

// MemoryWorld is a map-backed vm.WorldState. Snapshots copy the full account
// set, so it is meant for tests and small scenarios, not production ledgers.
// It is not safe for concurrent use.
type MemoryWorld struct {
	accounts  map[common.Address]*account
	snapshots []map[common.Address]*account
}

// NewMemoryWorld returns an empty world.
func NewMemoryWorld() *MemoryWorld {
	return &MemoryWorld{accounts: make(map[common.Address]*account)}
}

// CreateAccount installs an account with the given balance, replacing any
// existing entry at addr.
func (w *MemoryWorld) CreateAccount(addr common.Address, balance *uint256.Int) {
	acct := &account{address: addr}
	if balance != nil {
		acct.balance.Set(balance)
	}
	w.accounts[addr] = acct
}

// SetCode binds contract code to addr, creating the account if absent.
func (w *MemoryWorld) SetCode(addr common.Address, code []byte) {
	acct, ok := w.accounts[addr]
	if !ok {
		acct = &account{address: addr}
		w.accounts[addr] = acct
	}
	acct.code = append([]byte(nil), code...)
}

func (w *MemoryWorld) GetAccount(addr common.Address) vm.Account {
	acct, ok := w.accounts[addr]
	if !ok {
		return nil
	}
	return acct
}

func (w *MemoryWorld) GetOrCreate(addr common.Address) vm.Account {
	acct, ok := w.accounts[addr]
	if !ok {
		acct = &account{address: addr}
		w.accounts[addr] = acct
	}
	return acct
}

func (w *MemoryWorld) Exists(addr common.Address) bool {
	_, ok := w.accounts[addr]
	return ok
}

func (w *MemoryWorld) GetCode(addr common.Address) []byte {
	acct, ok := w.accounts[addr]
	if !ok {
		return nil
	}
	return acct.code
}

// Snapshot records the current account set and returns its identifier.
func (w *MemoryWorld) Snapshot() int {
	copied := make(map[common.Address]*account, len(w.accounts))
	for addr, acct := range w.accounts {
		dup := &account{address: acct.address, code: acct.code}
		dup.balance.Set(&acct.balance)
		copied[addr] = dup
	}
	w.snapshots = append(w.snapshots, copied)
	return len(w.snapshots) - 1
}

// RevertToSnapshot restores the account set recorded at id and discards it
// together with every later snapshot. Unknown ids are ignored.
func (w *MemoryWorld) RevertToSnapshot(id int) {
	if id < 0 || id >= len(w.snapshots) {
		return
	}
	w.accounts = w.snapshots[id]
	w.snapshots = w.snapshots[:id]
}

// Addresses returns every known account address in stable order.
func (w *MemoryWorld) Addresses() []common.Address {
	addrs := make([]common.Address, 0, len(w.accounts))
	for addr := range w.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Hex() < addrs[j].Hex()
	})
	return addrs
}
