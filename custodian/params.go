// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custodian

import "math/big"

// Constants of the custody registry. They are fixed at build time.
const (
	// StakingPeriod is the holding period of a position, in seconds (30 days).
	StakingPeriod uint64 = 30 * 24 * 60 * 60

	// MaxUserPositions is the number of user index slots per depositor.
	MaxUserPositions uint64 = 10
)

// IsTokenID reports whether id fits a uint256 token id. Storage keys use the
// unsigned big endian bytes of an id, so anything else would alias another token.
func IsTokenID(id *big.Int) bool {
	return id != nil && id.Sign() >= 0 && id.BitLen() <= 256
}
