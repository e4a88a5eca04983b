// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

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

type TestStruct struct {
	Field1 uint64
	Field2 *big.Int
	Addr1  custodian.Address
	Flag   bool
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext() *Context {
	st := state.New(lvldb.NewMem(), 0)
	return NewContext(custodian.Address{1}, st)
}

func newRandomStruct() *TestStruct {
	return &TestStruct{
		Field1: 100,
		Field2: big.NewInt(200),
		Addr1:  datagen.RandAddress(),
		Flag:   true,
	}
}

func TestMapping_StructPointer(t *testing.T) {
	mapping := NewMapping[custodian.Bytes32, *TestStruct](newTestContext(), custodian.Bytes32{1})
	key := datagen.RandomHash()
	value := newRandomStruct()

	t.Run("get empty key returns nil", func(t *testing.T) {
		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err := mapping.Exists(key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get returns value", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, value))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		ok, err := mapping.Exists(key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("set nil clears storage", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, nil))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete clears storage", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, value))
		mapping.Delete(key)

		ok, err := mapping.Exists(key)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMapping_AddressValue(t *testing.T) {
	mapping := NewMapping[custodian.Bytes32, custodian.Address](newTestContext(), custodian.Bytes32{2})
	key := datagen.RandomHash()
	addr := datagen.RandAddress()

	got, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, custodian.Address{}, got)

	require.NoError(t, mapping.Set(key, addr))
	got, err = mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	require.NoError(t, mapping.Set(key, custodian.Address{}))
	ok, err := mapping.Exists(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapping_SeparatedByPosition(t *testing.T) {
	ctx := newTestContext()
	m1 := NewMapping[custodian.Bytes32, uint64](ctx, custodian.Bytes32{1})
	m2 := NewMapping[custodian.Bytes32, uint64](ctx, custodian.Bytes32{2})
	key := datagen.RandomHash()

	require.NoError(t, m1.Set(key, 1))
	require.NoError(t, m2.Set(key, 2))

	v1, err := m1.Get(key)
	require.NoError(t, err)
	v2, err := m2.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1)
	assert.Equal(t, uint64(2), v2)
}

func TestMapping_Revert(t *testing.T) {
	ctx := newTestContext()
	mapping := NewMapping[custodian.Bytes32, uint64](ctx, custodian.Bytes32{1})
	key := datagen.RandomHash()

	require.NoError(t, mapping.Set(key, 10))
	cp := ctx.State().NewCheckpoint()
	require.NoError(t, mapping.Set(key, 20))
	ctx.State().RevertTo(cp)

	v, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext()
	raw := NewRaw[string](ctx, custodian.BytesToBytes32([]byte("name")))

	v, err := raw.Get()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, raw.Set("Custodian"))
	v, err = raw.Get()
	require.NoError(t, err)
	assert.Equal(t, "Custodian", v)

	require.NoError(t, raw.Set(""))
	ok, err := ctx.State().GetRawStorage(ctx.Address(), custodian.BytesToBytes32([]byte("name")))
	require.NoError(t, err)
	assert.Empty(t, ok)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, custodian.BytesToBytes32([]byte("counter")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(5)))
	require.NoError(t, u.Add(big.NewInt(7)))
	require.NoError(t, u.Sub(big.NewInt(2)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), v)

	// shares the slot with plain storage access
	raw, err := ctx.State().GetStorage(ctx.Address(), custodian.BytesToBytes32([]byte("counter")))
	require.NoError(t, err)
	assert.Equal(t, custodian.Uint64ToBytes32(10), raw)
}
