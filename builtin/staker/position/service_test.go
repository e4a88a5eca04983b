// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/state"
	"github.com/vechain/custodian/test/datagen"
)

func newSvc() (*Service, custodian.Address, *state.State) {
	st := state.New(lvldb.NewMem(), 0)
	addr := custodian.BytesToAddress([]byte("pos"))
	return New(solidity.NewContext(addr, st)), addr, st
}

func TestKey(t *testing.T) {
	k1 := NewKey(0, big.NewInt(5))
	k2 := NewKey(1, big.NewInt(5))
	k3 := NewKey(0, big.NewInt(5))

	assert.Len(t, k1.Bytes(), 36)
	assert.NotEqual(t, k1.Bytes(), k2.Bytes())
	assert.Equal(t, k1.Bytes(), k3.Bytes())
	assert.True(t, k1.Equal(k3))
	assert.False(t, k1.Equal(k2))
	assert.Equal(t, "1/5", k2.String())

	// key owns a copy of the token id
	id := big.NewInt(9)
	k := NewKey(0, id)
	id.SetInt64(10)
	assert.Equal(t, int64(9), k.TokenID.Int64())
}

func TestService_Lifecycle(t *testing.T) {
	svc, _, _ := newSvc()
	key := NewKey(0, big.NewInt(34567))
	staker := datagen.RandAddress()

	pos, err := svc.Get(key)
	require.NoError(t, err)
	assert.Nil(t, pos)

	require.NoError(t, svc.Open(key, &Position{ReceiptID: big.NewInt(1), EndTime: 100, Staker: staker}))

	active, err := svc.GetActive(key)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, staker, active.Staker)
	assert.True(t, active.Active)
	assert.False(t, active.Claimed)
	assert.False(t, active.Elapsed(99))
	assert.True(t, active.Elapsed(100))

	n, err := svc.ActiveCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	active.Claimed = true
	require.NoError(t, svc.Update(key, active))

	require.NoError(t, svc.Close(key, active))
	active, err = svc.GetActive(key)
	require.NoError(t, err)
	assert.Nil(t, active)

	// closed record persists
	pos, err = svc.Get(key)
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.False(t, pos.Active)
	assert.True(t, pos.Claimed)
	assert.Equal(t, big.NewInt(1), pos.ReceiptID)

	n, err = svc.ActiveCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	// restake overwrites with a fresh record
	require.NoError(t, svc.Open(key, &Position{ReceiptID: big.NewInt(3), EndTime: 200, Staker: staker}))
	pos, err = svc.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), pos.ReceiptID)
	assert.False(t, pos.Claimed)
	assert.True(t, pos.Active)
}

func TestService_Corrupt(t *testing.T) {
	svc, addr, st := newSvc()
	st.SetRawStorage(addr, slotActiveCount, rlp.RawValue{0xFF})

	err := svc.Open(NewKey(0, big.NewInt(1)), &Position{ReceiptID: big.NewInt(1)})
	assert.ErrorContains(t, err, "failed to get active count")
}
