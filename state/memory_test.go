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

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/practical-formal-methods/minievm/vm"
)

var _ vm.WorldState = (*MemoryWorld)(nil)

func TestMemoryWorldAccounts(t *testing.T) {
	w := NewMemoryWorld()
	addr := common.HexToAddress("0x01")

	require.False(t, w.Exists(addr))
	require.Nil(t, w.GetAccount(addr))

	w.CreateAccount(addr, uint256.NewInt(100))
	require.True(t, w.Exists(addr))
	require.Equal(t, uint64(100), w.GetAccount(addr).Balance().Uint64())

	acct := w.GetOrCreate(common.HexToAddress("0x02"))
	require.True(t, w.Exists(common.HexToAddress("0x02")))
	require.True(t, acct.Balance().IsZero())
}

func TestMemoryWorldBalanceMutation(t *testing.T) {
	w := NewMemoryWorld()
	addr := common.HexToAddress("0x01")
	w.CreateAccount(addr, uint256.NewInt(100))

	acct := w.GetAccount(addr)
	acct.DecrementBalance(uint256.NewInt(40))
	acct.IncrementBalance(uint256.NewInt(10))

	require.Equal(t, uint64(70), w.GetAccount(addr).Balance().Uint64())
	// Balance() hands out a copy, not the live value.
	w.GetAccount(addr).Balance().SetUint64(0)
	require.Equal(t, uint64(70), w.GetAccount(addr).Balance().Uint64())
}

func TestMemoryWorldCode(t *testing.T) {
	w := NewMemoryWorld()
	addr := common.HexToAddress("0x01")

	require.Nil(t, w.GetCode(addr))
	w.SetCode(addr, []byte{0x60, 0x01})
	require.True(t, w.Exists(addr))
	require.Equal(t, []byte{0x60, 0x01}, w.GetCode(addr))
}

func TestMemoryWorldSnapshotRevert(t *testing.T) {
	w := NewMemoryWorld()
	addr := common.HexToAddress("0x01")
	w.CreateAccount(addr, uint256.NewInt(100))

	id := w.Snapshot()
	w.GetAccount(addr).DecrementBalance(uint256.NewInt(60))
	w.CreateAccount(common.HexToAddress("0x02"), uint256.NewInt(5))

	w.RevertToSnapshot(id)
	require.Equal(t, uint64(100), w.GetAccount(addr).Balance().Uint64())
	require.False(t, w.Exists(common.HexToAddress("0x02")))
}

func TestMemoryWorldNestedSnapshots(t *testing.T) {
	w := NewMemoryWorld()
	addr := common.HexToAddress("0x01")
	w.CreateAccount(addr, uint256.NewInt(100))

	outer := w.Snapshot()
	w.GetAccount(addr).DecrementBalance(uint256.NewInt(10))

	inner := w.Snapshot()
	w.GetAccount(addr).DecrementBalance(uint256.NewInt(10))

	// Reverting the inner layer keeps the outer mutation.
	w.RevertToSnapshot(inner)
	require.Equal(t, uint64(90), w.GetAccount(addr).Balance().Uint64())

	// Reverting the outer layer undoes everything, and the inner snapshot id
	// is no longer valid.
	w.RevertToSnapshot(outer)
	require.Equal(t, uint64(100), w.GetAccount(addr).Balance().Uint64())
	w.RevertToSnapshot(inner)
	require.Equal(t, uint64(100), w.GetAccount(addr).Balance().Uint64())
}

func TestMemoryWorldAddresses(t *testing.T) {
	w := NewMemoryWorld()
	w.CreateAccount(common.HexToAddress("0x02"), nil)
	w.CreateAccount(common.HexToAddress("0x01"), nil)

	addrs := w.Addresses()
	require.Len(t, addrs, 2)
	require.Equal(t, common.HexToAddress("0x01"), addrs[0])
	require.Equal(t, common.HexToAddress("0x02"), addrs[1])
}
