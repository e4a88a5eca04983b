// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/binary"

	"github.com/vechain/custodian/custodian"
)

type contract struct {
	name    string
	Address custodian.Address
}

func newContract(name string) *contract {
	return &contract{
		name,
		custodian.BytesToAddress([]byte(name)),
	}
}

// Name returns the contract name the address was derived from.
func (c *contract) Name() string {
	return c.name
}

// CollectionAddress returns the address of the in-state collection at index,
// the low 20 bytes of keccak256("collection" ++ uint32 index) as for EVM contracts.
func CollectionAddress(index uint32) custodian.Address {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], index)
	h := custodian.Keccak256([]byte("collection"), b[:])
	return custodian.BytesToAddress(h[12:])
}
