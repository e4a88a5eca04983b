// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/custodian/builtin/nft"
	"github.com/vechain/custodian/builtin/staker"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/state"
)

// Builtin contracts binding.
var (
	Staker = &stakerContract{newContract("Staker")}
)

type (
	stakerContract     struct{ *contract }
	collectionContract struct{ *contract }
)

// Collection binds the in-state collection at addr.
func Collection(addr custodian.Address) *collectionContract {
	return &collectionContract{&contract{"Collection", addr}}
}

func (c *collectionContract) WithState(state *state.State) *nft.NFT {
	return nft.New(c.Address, state)
}

// WithState returns the registry over state. Every collection resolves to an in-state
// token registry, so custody transfers share the registry's checkpoints.
func (s *stakerContract) WithState(state *state.State) *staker.Staker {
	return staker.New(s.Address, state, func(addr custodian.Address) staker.TokenRegistry {
		return nft.New(addr, state)
	})
}
