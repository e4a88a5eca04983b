// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/vechain/custodian/custodian"
)

func RandomHash() custodian.Bytes32 {
	var b32 custodian.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr custodian.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []custodian.Address {
	addrs := make([]custodian.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}
