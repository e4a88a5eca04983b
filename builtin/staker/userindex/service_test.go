// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package userindex

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/position"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/state"
	"github.com/vechain/custodian/test/datagen"
)

func newSvc() *Service {
	st := state.New(lvldb.NewMem(), 0)
	return New(solidity.NewContext(custodian.BytesToAddress([]byte("idx")), st))
}

func key(collection uint32, id int64) position.Key {
	return position.NewKey(collection, big.NewInt(id))
}

func TestService_AppendRemove(t *testing.T) {
	svc := newSvc()
	user := datagen.RandAddress()

	a, b, c, d := key(0, 1), key(1, 2), key(0, 3), key(1, 4)
	for _, k := range []position.Key{a, b, c, d} {
		require.NoError(t, svc.Append(user, k))
	}

	list, err := svc.List(user)
	require.NoError(t, err)
	assert.Equal(t, []position.Key{a, b, c, d}, list)

	// removing the first entry moves the last one into its slot
	require.NoError(t, svc.Remove(user, a))
	list, err = svc.List(user)
	require.NoError(t, err)
	assert.Equal(t, []position.Key{d, b, c}, list)

	// removing the last entry just truncates
	require.NoError(t, svc.Remove(user, c))
	list, err = svc.List(user)
	require.NoError(t, err)
	assert.Equal(t, []position.Key{d, b}, list)

	ok, err := svc.Contains(user, a)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Contains(user, d)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorContains(t, svc.Remove(user, a), "not found")

	// other users are not affected
	n, err := svc.Len(datagen.RandAddress())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestService_At(t *testing.T) {
	svc := newSvc()
	user := datagen.RandAddress()

	_, err := svc.At(user, 0)
	assert.ErrorIs(t, err, reverts.ErrIndexOutOfRange)

	require.NoError(t, svc.Append(user, key(2, 77)))
	got, err := svc.At(user, 0)
	require.NoError(t, err)
	assert.True(t, key(2, 77).Equal(got))

	_, err = svc.At(user, 1)
	assert.ErrorIs(t, err, reverts.ErrIndexOutOfRange)
}

type op struct {
	Remove     bool
	Collection uint8
	Token      uint8
}

func TestService_RemoveMismatchedSlot(t *testing.T) {
	svc := newSvc()
	user := datagen.RandAddress()

	a, b := key(0, 1), key(0, 2)
	require.NoError(t, svc.Append(user, a))
	require.NoError(t, svc.Append(user, b))

	// point b at the slot of a
	require.NoError(t, svc.slots.Set(slotKey(user, b), 1))
	assert.ErrorContains(t, svc.Remove(user, b), "holds")

	list, err := svc.List(user)
	require.NoError(t, err)
	assert.Equal(t, []position.Key{a, b}, list)
}

// TestService_RandomOps compares the index against a swap-remove slice model.
func TestService_RandomOps(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(200, 400)

	for round := range 5 {
		var ops []op
		f.Fuzz(&ops)

		svc := newSvc()
		user := datagen.RandAddress()
		var model []position.Key

		find := func(k position.Key) int {
			for i, m := range model {
				if m.Equal(k) {
					return i
				}
			}
			return -1
		}

		for _, o := range ops {
			k := key(uint32(o.Collection%3), int64(o.Token%16))
			i := find(k)
			switch {
			case o.Remove && i >= 0:
				require.NoError(t, svc.Remove(user, k))
				last := len(model) - 1
				model[i] = model[last]
				model = model[:last]
			case !o.Remove && i < 0:
				require.NoError(t, svc.Append(user, k))
				model = append(model, k)
			}

			ok, err := svc.Contains(user, k)
			require.NoError(t, err)
			require.Equal(t, find(k) >= 0, ok, "round %d", round)
		}

		n, err := svc.Len(user)
		require.NoError(t, err)
		require.Equal(t, uint64(len(model)), n)

		list, err := svc.List(user)
		require.NoError(t, err)
		require.Len(t, list, len(model))
		for i := range model {
			assert.True(t, model[i].Equal(list[i]), "round %d entry %d", round, i)
		}
	}
}
