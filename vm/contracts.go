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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

// PrecompiledContract is a native computation bound to a fixed address and
// invoked instead of interpreted bytecode. A nil error with empty output is a
// soft failure (e.g. an unrecoverable signature); a non-nil error consumes
// all gas passed to the call.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// Well-known precompile addresses.
var (
	EcrecoverAddress = common.BytesToAddress([]byte{1})
	IdentityAddress  = common.BytesToAddress([]byte{4})
)

// PrecompileRegistry maps fixed addresses to built-in native computations.
type PrecompileRegistry struct {
	contracts map[common.Address]PrecompiledContract
}

// NewPrecompileRegistry returns an empty registry.
func NewPrecompileRegistry() *PrecompileRegistry {
	return &PrecompileRegistry{contracts: make(map[common.Address]PrecompiledContract)}
}

// DefaultPrecompiles returns the registry shipped with this configuration.
func DefaultPrecompiles() *PrecompileRegistry {
	r := NewPrecompileRegistry()
	r.Register(EcrecoverAddress, &ecrecover{})
	r.Register(IdentityAddress, &dataCopy{})
	return r
}

// Register binds a precompile to an address.
func (r *PrecompileRegistry) Register(addr common.Address, c PrecompiledContract) {
	r.contracts[addr] = c
}

// Get returns the precompile bound to addr, if any. A nil registry has no
// precompiles.
func (r *PrecompileRegistry) Get(addr common.Address) (PrecompiledContract, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.contracts[addr]
	return c, ok
}

// ecrecover implements the ECDSA public key recovery precompile.
type ecrecover struct{}

func (c *ecrecover) RequiredGas(input []byte) uint64 {
	return params.EcrecoverGas
}

func (c *ecrecover) Run(input []byte) ([]byte, error) {
	const ecRecoverInputLength = 128

	input = common.RightPadBytes(input, ecRecoverInputLength)
	// "input" is (hash, v, r, s), each 32 bytes, but for ecrecover we want
	// (r, s, v).
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])
	v := input[63] - 27

	// Tighter sig s values input homestead only apply to tx sigs.
	if !allZero(input[32:63]) || !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, nil
	}
	// We must make sure not to modify the 'input', so placing the 'v' along
	// with the signature needs to be done on a new allocation.
	sig := make([]byte, 65)
	copy(sig, input[64:128])
	sig[64] = v
	// v needs to be at the end for libsecp256k1.
	pubKey, err := crypto.Ecrecover(input[:32], sig)
	// Make sure the public key is a valid one; the error is a soft failure.
	if err != nil {
		return nil, nil
	}
	// The first byte of pubkey is bitcoin heritage.
	return common.LeftPadBytes(crypto.Keccak256(pubKey[1:])[12:], 32), nil
}

// dataCopy implements the IDENTITY precompile.
type dataCopy struct{}

func (c *dataCopy) RequiredGas(input []byte) uint64 {
	return uint64(len(input)+31)/32*params.IdentityPerWordGas + params.IdentityBaseGas
}

func (c *dataCopy) Run(input []byte) ([]byte, error) {
	return common.CopyBytes(input), nil
}

func allZero(b []byte) bool {
	for _, byt := range b {
		if byt != 0 {
			return false
		}
	}
	return true
}
