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

func TestGasAccountAccessCost(t *testing.T) {
	var gc GasCalculator
	require.Equal(t, uint64(100), gc.AccountAccessCost(true))
	require.Equal(t, uint64(2600), gc.AccountAccessCost(false))
}

func TestGasValueTransferCost(t *testing.T) {
	var gc GasCalculator
	require.Equal(t, uint64(0), gc.ValueTransferCost(new(uint256.Int)))
	require.Equal(t, uint64(9000), gc.ValueTransferCost(uint256.NewInt(1)))
}

func TestGasNewAccountCost(t *testing.T) {
	var gc GasCalculator
	one := uint256.NewInt(1)
	require.Equal(t, uint64(0), gc.NewAccountCost(true, one))
	require.Equal(t, uint64(0), gc.NewAccountCost(false, new(uint256.Int)))
	require.Equal(t, uint64(25000), gc.NewAccountCost(false, one))
}

func TestGasMemoryExpansionChargesDelta(t *testing.T) {
	var gc GasCalculator
	m := NewMemory()

	// First word: 3 linear, no quadratic part yet.
	fee, ok := gc.MemoryExpansionCost(m, 32)
	require.True(t, ok)
	require.Equal(t, uint64(3), fee)
	m.Resize(32)

	// Second word pays only the difference.
	fee, ok = gc.MemoryExpansionCost(m, 64)
	require.True(t, ok)
	require.Equal(t, uint64(3), fee)
	m.Resize(64)

	// 32 words total: 96 linear + 1024/512 quadratic, minus the 6 paid.
	fee, ok = gc.MemoryExpansionCost(m, 1024)
	require.True(t, ok)
	require.Equal(t, uint64(96+2-6), fee)
	m.Resize(1024)

	// No growth, no fee.
	fee, ok = gc.MemoryExpansionCost(m, 512)
	require.True(t, ok)
	require.Equal(t, uint64(0), fee)
}

func TestGasMemoryExpansionOverflow(t *testing.T) {
	var gc GasCalculator
	_, ok := gc.MemoryExpansionCost(NewMemory(), memorySizeCeiling+1)
	require.False(t, ok)
}

func TestGasAvailableCallGas(t *testing.T) {
	var gc GasCalculator
	// 63/64 of 6400 remains available to the child.
	require.Equal(t, uint64(6300), gc.AvailableCallGas(6400, new(uint256.Int)))
	require.Equal(t, uint64(1000), gc.AvailableCallGas(6400, uint256.NewInt(1000)))
	require.Equal(t, uint64(6300), gc.AvailableCallGas(6400, uint256.NewInt(100_000)))
}

func TestGasCopyCost(t *testing.T) {
	var gc GasCalculator
	require.Equal(t, uint64(0), gc.CopyCost(0))
	require.Equal(t, uint64(3), gc.CopyCost(1))
	require.Equal(t, uint64(3), gc.CopyCost(32))
	require.Equal(t, uint64(6), gc.CopyCost(33))
}

func TestGasKeccakCost(t *testing.T) {
	var gc GasCalculator
	require.Equal(t, uint64(30), gc.Keccak256BaseCost())
	require.Equal(t, uint64(0), gc.Keccak256WordCost(0))
	require.Equal(t, uint64(12), gc.Keccak256WordCost(64))
}
