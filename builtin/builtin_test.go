// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/state"
	"github.com/vechain/custodian/test/datagen"
)

func TestAddresses(t *testing.T) {
	assert.Equal(t, custodian.BytesToAddress([]byte("Staker")), Staker.Address)
	assert.Equal(t, "Staker", Staker.Name())

	assert.Equal(t, CollectionAddress(0), CollectionAddress(0))
	assert.NotEqual(t, CollectionAddress(0), CollectionAddress(1))
	assert.False(t, CollectionAddress(0).IsZero())
}

func TestStakeThroughBindings(t *testing.T) {
	st := state.New(lvldb.NewMem(), 0)
	user := datagen.RandAddress()
	id := big.NewInt(7)

	col := Collection(CollectionAddress(0)).WithState(st)
	require.NoError(t, col.Mint(user, id))
	require.NoError(t, col.SetApprovalForAll(user, Staker.Address, true))

	s := Staker.WithState(st)
	require.NoError(t, s.Initialize("NFTStaking", "NSC", []custodian.Address{CollectionAddress(0)}))

	receiptID, err := s.Stake(user, id, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), receiptID.Int64())

	owner, err := col.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, Staker.Address, owner)
}
