// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/state"
)

// DevAccount account for development.
type DevAccount struct {
	Address    custodian.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{custodian.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevTokensPerAccount is the number of tokens each dev account holds in every dev collection.
const DevTokensPerAccount = 12

// DevTokenID returns the j-th token id minted to dev account i.
func DevTokenID(account, j int) *big.Int {
	return big.NewInt(int64(account*100 + j + 1))
}

var devCollections = []Collection{
	{Name: "DevPunks", Symbol: "DPK"},
	{Name: "DevApes", Symbol: "DAP"},
}

// NewDevnet create genesis for solo mode. Every dev account owns DevTokensPerAccount tokens
// in each collection and has approved the registry for all of them.
func NewDevnet() *Genesis {
	launchTime := uint64(1526400000) // Default launch time 'Wed May 16 2018 00:00:00 GMT+0800'

	addrs := make([]custodian.Address, len(devCollections))
	for i := range devCollections {
		addrs[i] = builtin.CollectionAddress(uint32(i))
	}

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(st *state.State) error {
			for i, c := range devCollections {
				col := builtin.Collection(addrs[i]).WithState(st)
				if err := col.SetMeta(c.Name, c.Symbol); err != nil {
					return err
				}
				for a, acc := range DevAccounts() {
					for j := range DevTokensPerAccount {
						if err := col.Mint(acc.Address, DevTokenID(a, j)); err != nil {
							return err
						}
					}
					if err := col.SetApprovalForAll(acc.Address, builtin.Staker.Address, true); err != nil {
						return err
					}
				}
			}
			return builtin.Staker.WithState(st).Initialize("NFTStaking", "NSC", addrs)
		})

	gen, err := newGenesis("devnet", launchTime, builder)
	if err != nil {
		panic(err)
	}
	return gen
}
