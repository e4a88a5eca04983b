// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/custodian/custodian"
)

// Raw is a wrapper for storage and retrieval of one rlp encoded value at a fixed slot.
type Raw[V any] struct {
	context *Context
	pos     custodian.Bytes32
}

func NewRaw[V any](context *Context, pos custodian.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	if isZero(value) {
		r.context.state.SetRawStorage(r.context.address, r.pos, nil)
		return nil
	}
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
