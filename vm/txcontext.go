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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

// AuthorizedAddressVar is the context-variable key under which AUTH stores the
// recovered address consumed by AUTHCALL.
const AuthorizedAddressVar = "AUTHORIZED_ADDRESS"

// slotKey identifies one storage slot of one account.
type slotKey struct {
	addr common.Address
	key  common.Hash
}

// TxContext carries the state shared by every frame of one transaction: the
// warm address and warm slot sets (EIP-2929) and a small table of context
// variables visible to descendant operations. Warm-set membership is
// monotonic; nothing ever un-warms, regardless of intervening failures.
type TxContext struct {
	warmAddrs mapset.Set[common.Address]
	warmSlots mapset.Set[slotKey]
	vars      map[string]interface{}
}

// NewTxContext returns an empty transaction context.
func NewTxContext() *TxContext {
	return &TxContext{
		warmAddrs: mapset.NewThreadUnsafeSet[common.Address](),
		warmSlots: mapset.NewThreadUnsafeSet[slotKey](),
		vars:      make(map[string]interface{}),
	}
}

// WarmUpAddress marks addr warm for the remainder of the transaction and
// reports whether it already was.
func (c *TxContext) WarmUpAddress(addr common.Address) bool {
	return !c.warmAddrs.Add(addr)
}

// IsWarmAddress reports whether addr has been touched in this transaction.
func (c *TxContext) IsWarmAddress(addr common.Address) bool {
	return c.warmAddrs.Contains(addr)
}

// WarmUpSlot marks the storage slot warm and reports whether it already was.
func (c *TxContext) WarmUpSlot(addr common.Address, key common.Hash) bool {
	return !c.warmSlots.Add(slotKey{addr: addr, key: key})
}

// SetVar stores a transaction-scoped context variable.
func (c *TxContext) SetVar(name string, value interface{}) {
	c.vars[name] = value
}

// Var returns a transaction-scoped context variable.
func (c *TxContext) Var(name string) (interface{}, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// SetAuthorizedAddress records the address recovered by AUTH.
func (c *TxContext) SetAuthorizedAddress(addr common.Address) {
	c.SetVar(AuthorizedAddressVar, addr)
}

// AuthorizedAddress returns the address set by a prior AUTH, if any.
func (c *TxContext) AuthorizedAddress() (common.Address, bool) {
	v, ok := c.Var(AuthorizedAddressVar)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}
