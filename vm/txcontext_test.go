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

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestTxContextWarmAddresses(t *testing.T) {
	ctx := NewTxContext()
	addr := common.HexToAddress("0x01")

	require.False(t, ctx.IsWarmAddress(addr))
	require.False(t, ctx.WarmUpAddress(addr), "first touch must report cold")
	require.True(t, ctx.WarmUpAddress(addr), "second touch must report warm")
	require.True(t, ctx.IsWarmAddress(addr))
}

func TestTxContextWarmSlots(t *testing.T) {
	ctx := NewTxContext()
	addr := common.HexToAddress("0x01")
	key := common.HexToHash("0x02")

	require.False(t, ctx.WarmUpSlot(addr, key))
	require.True(t, ctx.WarmUpSlot(addr, key))
	// The same key under another account is a distinct slot.
	require.False(t, ctx.WarmUpSlot(common.HexToAddress("0x03"), key))
}

func TestTxContextAuthorizedAddress(t *testing.T) {
	ctx := NewTxContext()

	_, ok := ctx.AuthorizedAddress()
	require.False(t, ok)

	addr := common.HexToAddress("0xab")
	ctx.SetAuthorizedAddress(addr)
	got, ok := ctx.AuthorizedAddress()
	require.True(t, ok)
	require.Equal(t, addr, got)

	// A later authorization replaces the earlier one.
	next := common.HexToAddress("0xcd")
	ctx.SetAuthorizedAddress(next)
	got, _ = ctx.AuthorizedAddress()
	require.Equal(t, next, got)
}

func TestTxContextVars(t *testing.T) {
	ctx := NewTxContext()

	_, ok := ctx.Var("missing")
	require.False(t, ok)

	ctx.SetVar("k", 42)
	v, ok := ctx.Var("k")
	require.True(t, ok)
	require.Equal(t, 42, v)
}
