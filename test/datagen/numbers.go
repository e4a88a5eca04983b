// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"
)

// RandTokenID returns a random token id below 2^64.
func RandTokenID() *big.Int {
	return new(big.Int).SetUint64(mathrand.Uint64()) //#nosec G404
}
