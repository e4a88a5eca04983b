// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custodian

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// NewBlake2b returns a blake2b-256 hasher. State roots and storage slot keys use it.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

var blake2bPool = sync.Pool{
	New: func() any { return NewBlake2b() },
}

// Blake2b hashes the concatenation of data.
func Blake2b(data ...[]byte) (h Bytes32) {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	hasher := blake2bPool.Get().(hash.Hash)
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(h[:0])
	hasher.Reset()
	blake2bPool.Put(hasher)
	return
}

// Keccak256 hashes the concatenation of data with legacy keccak, for EVM style addresses.
func Keccak256(data ...[]byte) (h Bytes32) {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(h[:0])
	return
}
