// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipt

import (
	"github.com/vechain/custodian/custodian"
)

// Kind tells position receipts from reward items.
type Kind uint8

const (
	KindPosition Kind = iota + 1
	KindReward
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindReward:
		return "reward"
	default:
		return "unknown"
	}
}

type body struct {
	Owner custodian.Address
	Kind  Kind
}
