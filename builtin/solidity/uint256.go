// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/custodian/custodian"
)

// Uint256 is a uint256 held in one storage slot. Arithmetic wraps modulo 2^256
// like unchecked contract arithmetic.
type Uint256 struct {
	context *Context
	pos     custodian.Bytes32
}

func NewUint256(context *Context, slot custodian.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) load() (*uint256.Int, error) {
	word, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(word[:]), nil
}

func (u *Uint256) store(v *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, custodian.Bytes32(v.Bytes32()))
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.load()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// Set stores value, keeping its low 256 bits.
func (u *Uint256) Set(value *big.Int) {
	v, _ := uint256.FromBig(value)
	u.store(v)
}

func (u *Uint256) Add(delta *big.Int) error {
	return u.apply(delta, (*uint256.Int).Add)
}

func (u *Uint256) Sub(delta *big.Int) error {
	return u.apply(delta, (*uint256.Int).Sub)
}

func (u *Uint256) apply(delta *big.Int, op func(z, x, y *uint256.Int) *uint256.Int) error {
	v, err := u.load()
	if err != nil {
		return err
	}
	d, _ := uint256.FromBig(delta)
	u.store(op(v, v, d))
	return nil
}
