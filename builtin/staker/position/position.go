// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vechain/custodian/custodian"
)

// Key identifies a deposited token by collection index and token id.
type Key struct {
	Collection uint32
	TokenID    *big.Int
}

func NewKey(collection uint32, tokenID *big.Int) Key {
	return Key{Collection: collection, TokenID: new(big.Int).Set(tokenID)}
}

// Bytes returns 4 bytes of collection index followed by the 32 byte token id.
func (k Key) Bytes() []byte {
	b := make([]byte, 4, 36)
	binary.BigEndian.PutUint32(b, k.Collection)
	id := custodian.BytesToBytes32(k.TokenID.Bytes())
	return append(b, id[:]...)
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Collection, k.TokenID)
}

// Equal reports whether both keys point to the same token.
func (k Key) Equal(other Key) bool {
	return k.Collection == other.Collection && k.TokenID.Cmp(other.TokenID) == 0
}

// Position is the custody record of one deposited token.
type Position struct {
	ReceiptID *big.Int
	EndTime   uint64
	Staker    custodian.Address
	Claimed   bool
	Active    bool
}

// Empty returns the record reported for keys never staked.
func Empty() *Position {
	return &Position{ReceiptID: new(big.Int)}
}

// Elapsed reports whether the staking period is over at now.
func (p *Position) Elapsed(now uint64) bool {
	return now >= p.EndTime
}
