// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collections

import (
	"github.com/vechain/custodian/custodian"
)

type Token struct {
	Collection uint32            `json:"collection"`
	TokenID    string            `json:"tokenId"`
	Owner      custodian.Address `json:"owner"`
	Approved   custodian.Address `json:"approved"`
}

type Balance struct {
	Balance uint64 `json:"balance"`
}

type ApproveRequest struct {
	Caller  string `json:"caller"`
	To      string `json:"to"`
	TokenID string `json:"tokenId"`
}

type ApproveAllRequest struct {
	Caller   string `json:"caller"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type TransferRequest struct {
	Caller  string `json:"caller"`
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID string `json:"tokenId"`
}

type MintRequest struct {
	To      string `json:"to"`
	TokenID string `json:"tokenId"`
}
