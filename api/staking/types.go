// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/custodian/builtin/staker/position"
	"github.com/vechain/custodian/custodian"
)

type Collection struct {
	Index   uint32            `json:"index"`
	Address custodian.Address `json:"address"`
	Name    string            `json:"name"`
	Symbol  string            `json:"symbol"`
}

type Registry struct {
	Initialized      bool              `json:"initialized"`
	Name             string            `json:"name"`
	Symbol           string            `json:"symbol"`
	Address          custodian.Address `json:"address"`
	Collections      []*Collection     `json:"collections"`
	StakingPeriod    uint64            `json:"stakingPeriod"`
	MaxUserPositions uint64            `json:"maxUserPositions"`
	TotalReceipts    string            `json:"totalReceipts"`
	ActivePositions  uint64            `json:"activePositions"`
	Time             uint64            `json:"time"`
}

// CallRequest is the body of stake, unstake and claim.
// Token ids are decimal or 0x-hex strings.
type CallRequest struct {
	Caller     string `json:"caller"`
	Collection uint32 `json:"collection"`
	TokenID    string `json:"tokenId"`
}

type StakeResult struct {
	ReceiptID string `json:"receiptId"`
}

type ClaimResult struct {
	RewardID string `json:"rewardId"`
}

type Position struct {
	Collection uint32            `json:"collection"`
	TokenID    string            `json:"tokenId"`
	ReceiptID  string            `json:"receiptId"`
	EndTime    uint64            `json:"endTime"`
	Staker     custodian.Address `json:"staker"`
	Claimed    bool              `json:"claimed"`
	Active     bool              `json:"active"`
}

func convertPosition(collection uint32, tokenID *big.Int, p *position.Position) *Position {
	return &Position{
		Collection: collection,
		TokenID:    tokenID.String(),
		ReceiptID:  p.ReceiptID.String(),
		EndTime:    p.EndTime,
		Staker:     p.Staker,
		Claimed:    p.Claimed,
		Active:     p.Active,
	}
}

// UserPositions lists token ids per collection index.
type UserPositions struct {
	Collections [][]string `json:"collections"`
}

type IndexEntry struct {
	Index      uint64 `json:"index"`
	Collection uint32 `json:"collection"`
	TokenID    string `json:"tokenId"`
}

type Count struct {
	Count uint64 `json:"count"`
}

type Receipt struct {
	ID    string            `json:"id"`
	Owner custodian.Address `json:"owner"`
	Kind  string            `json:"kind"`
}

type Balance struct {
	Balance uint64 `json:"balance"`
}
