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
	"math"

	"github.com/holiman/uint256"
)

// Gas cost tiers shared by the simple operations.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
)

// Schedule constants. Every cost an operation charges is composed from these
// through the GasCalculator; no operation carries its own constant.
const (
	gasWarmStorageRead    uint64 = 100   // EIP-2929 warm access
	gasColdAccountAccess  uint64 = 2600  // EIP-2929 cold account access
	gasCallValueTransfer  uint64 = 9000  // surcharge for a nonzero value transfer
	gasCallNewAccount     uint64 = 25000 // surcharge for touching a nonexistent account
	gasCallStipend        uint64 = 2300  // free gas given to a value-receiving child
	gasAuth               uint64 = 3000  // EIP-3074 AUTH fixed cost
	gasKeccak256          uint64 = 30
	gasKeccak256Word      uint64 = 6
	gasCopyWord           uint64 = 3
	gasMemoryLinear       uint64 = 3
	gasMemoryQuadCoeffDiv uint64 = 512
	gasJumpdest           uint64 = 1
)

// memorySizeCeiling is the largest memory size whose expansion fee still fits
// a uint64; anything above saturates the cost computation.
const memorySizeCeiling = 0x1FFFFFFFE0

// GasCalculator exposes the pure cost primitives of the active gas schedule.
// It holds no mutable state and is safe to share between frames.
type GasCalculator struct{}

// WarmStorageReadCost is the cheap fixed cost of touching a warm address or slot.
func (GasCalculator) WarmStorageReadCost() uint64 { return gasWarmStorageRead }

// ColdAccountAccessCost is the expensive fixed cost of the first touch of an
// account within a transaction.
func (GasCalculator) ColdAccountAccessCost() uint64 { return gasColdAccountAccess }

// BaseTierCost is the cost of the cheapest non-free operations.
func (GasCalculator) BaseTierCost() uint64 { return GasQuickStep }

// AuthCost is the fixed cost of the AUTH operation.
func (GasCalculator) AuthCost() uint64 { return gasAuth }

// CallStipend is the gas added to a child frame that receives value.
func (GasCalculator) CallStipend() uint64 { return gasCallStipend }

// AccountAccessCost returns the warm or cold account access cost.
func (g GasCalculator) AccountAccessCost(warm bool) uint64 {
	if warm {
		return g.WarmStorageReadCost()
	}
	return g.ColdAccountAccessCost()
}

// ValueTransferCost is the surcharge for transferring value, charged only when
// the transferred value is nonzero.
func (GasCalculator) ValueTransferCost(value *uint256.Int) uint64 {
	if value.IsZero() {
		return 0
	}
	return gasCallValueTransfer
}

// NewAccountCost is the surcharge for sending value to an account that does
// not exist yet, charged only when the transfer would create it.
func (GasCalculator) NewAccountCost(exists bool, value *uint256.Int) uint64 {
	if exists || value.IsZero() {
		return 0
	}
	return gasCallNewAccount
}

// Keccak256BaseCost is the fixed cost of a hashing operation.
func (GasCalculator) Keccak256BaseCost() uint64 { return gasKeccak256 }

// Keccak256WordCost is the per-word cost of hashing size bytes, excluding the
// base cost.
func (GasCalculator) Keccak256WordCost(size uint64) uint64 {
	return toWordSize(size) * gasKeccak256Word
}

// CopyCost is the per-word cost of copying size bytes.
func (GasCalculator) CopyCost(size uint64) uint64 {
	return toWordSize(size) * gasCopyWord
}

// MemoryExpansionCost computes the fee for growing mem to newSize bytes:
// the quadratic-plus-linear total fee over 32-byte words, minus the fee
// already charged for the current size. It returns ok=false when the size
// would overflow the fee computation.
func (GasCalculator) MemoryExpansionCost(mem *Memory, newSize uint64) (uint64, bool) {
	if newSize == 0 {
		return 0, true
	}
	if newSize > memorySizeCeiling {
		return 0, false
	}
	words := toWordSize(newSize)
	rounded := words * 32
	if rounded <= uint64(mem.Len()) {
		return 0, true
	}
	linCoef := words * gasMemoryLinear
	quadCoef := words * words / gasMemoryQuadCoeffDiv
	newTotalFee := linCoef + quadCoef

	fee := newTotalFee - mem.lastGasCost
	mem.lastGasCost = newTotalFee
	return fee, true
}

// AvailableCallGas returns the gas to hand a child frame: the requested amount
// capped at 63/64 of what remains after base costs (EIP-150). A request of
// zero, or one exceeding the cap, takes the cap.
func (GasCalculator) AvailableCallGas(availableGas uint64, requested *uint256.Int) uint64 {
	cap := availableGas - availableGas/64
	if requested.IsZero() || !requested.IsUint64() || requested.Uint64() > cap {
		return cap
	}
	return requested.Uint64()
}

// toWordSize returns the number of 32-byte words required to hold size bytes.
func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// memEnd returns offset+size, with ok=false on uint64 overflow.
func memEnd(offset, size uint64) (uint64, bool) {
	if size == 0 {
		return 0, true
	}
	end := offset + size
	if end < offset {
		return 0, false
	}
	return end, true
}
