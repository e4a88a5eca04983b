// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
)

func M(a ...any) []any {
	return a
}

func TestStateReadWrite(t *testing.T) {
	db := lvldb.NewMem()
	st := New(db, 0)

	addr := custodian.BytesToAddress([]byte("account1"))
	storageKey := custodian.BytesToBytes32([]byte("storageKey"))

	assert.Equal(t, M(custodian.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))

	st.SetStorage(addr, storageKey, custodian.BytesToBytes32([]byte("value")))
	assert.Equal(t, M(custodian.BytesToBytes32([]byte("value")), nil), M(st.GetStorage(addr, storageKey)))

	st.SetStorage(addr, storageKey, custodian.Bytes32{})
	assert.Equal(t, M(custodian.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))
}

func TestStateRevert(t *testing.T) {
	db := lvldb.NewMem()
	st := New(db, 0)

	addr := custodian.BytesToAddress([]byte("a1"))
	key := custodian.BytesToBytes32([]byte("k"))

	values := []custodian.Bytes32{
		custodian.BytesToBytes32([]byte("v1")),
		custodian.BytesToBytes32([]byte("v2")),
		custodian.BytesToBytes32([]byte("v3")),
	}

	var revisions []int
	for _, v := range values {
		revisions = append(revisions, st.NewCheckpoint())
		st.SetStorage(addr, key, v)
	}

	for i := len(revisions) - 1; i >= 0; i-- {
		st.RevertTo(revisions[i])
		v, err := st.GetStorage(addr, key)
		require.NoError(t, err)
		if i == 0 {
			assert.True(t, v.IsZero())
		} else {
			assert.Equal(t, values[i-1], v)
		}
	}

	// revert everything leaves a usable state
	st.RevertTo(0)
	st.SetStorage(addr, key, values[0])
	v, _ := st.GetStorage(addr, key)
	assert.Equal(t, values[0], v)
}

func TestStateCommit(t *testing.T) {
	db := lvldb.NewMem()
	st := New(db, 16)

	addr := custodian.BytesToAddress([]byte("a1"))
	k1 := custodian.BytesToBytes32([]byte("k1"))
	k2 := custodian.BytesToBytes32([]byte("k2"))

	emptyRoot, err := st.Root()
	require.NoError(t, err)

	st.SetStorage(addr, k1, custodian.BytesToBytes32([]byte("v1")))
	st.SetStorage(addr, k2, custodian.BytesToBytes32([]byte("v2")))
	st.SetStorage(addr, k2, custodian.Bytes32{})
	assert.Equal(t, 3, st.Changes())

	// uncommitted changes are invisible to a fresh state
	v, err := New(db, 0).GetStorage(addr, k1)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, st.Commit())
	assert.Equal(t, 0, st.Changes())

	root, err := st.Root()
	require.NoError(t, err)
	assert.NotEqual(t, emptyRoot, root)

	other := New(db, 0)
	v, err = other.GetStorage(addr, k1)
	require.NoError(t, err)
	assert.Equal(t, custodian.BytesToBytes32([]byte("v1")), v)

	v, err = other.GetStorage(addr, k2)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	otherRoot, err := other.Root()
	require.NoError(t, err)
	assert.Equal(t, root, otherRoot)

	// commit with nothing pending is a no-op
	require.NoError(t, st.Commit())
}

func TestEncodeDecodeStorage(t *testing.T) {
	db := lvldb.NewMem()
	st := New(db, 0)

	addr := custodian.BytesToAddress([]byte("a1"))
	key := custodian.BytesToBytes32([]byte("key"))

	type item struct {
		A uint64
		B []byte
	}
	want := item{A: 7, B: []byte("b")}

	err := st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&want)
	})
	require.NoError(t, err)

	var got item
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// list value reads back as its hash
	raw, _ := st.GetRawStorage(addr, key)
	h, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, custodian.Blake2b(raw), h)

	encErr := errors.New("enc failure")
	err = st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, encErr })
	assert.ErrorIs(t, err, encErr)
	assert.IsType(t, &Error{}, err)

	err = st.DecodeStorage(addr, key, func([]byte) error { return encErr })
	assert.ErrorIs(t, err, encErr)
	assert.Contains(t, err.Error(), "state: ")
}
