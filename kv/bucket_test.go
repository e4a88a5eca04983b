// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/kv"
	"github.com/vechain/custodian/lvldb"
)

func TestBucket(t *testing.T) {
	db := lvldb.NewMem()
	defer db.Close()

	b1 := kv.Bucket("b1")
	b2 := kv.Bucket("b2")

	require.NoError(t, b1.NewPutter(db).Put([]byte("k"), []byte("v1")))
	require.NoError(t, b2.NewPutter(db).Put([]byte("k"), []byte("v2")))

	v, err := b1.NewGetter(db).Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = db.Get([]byte("b2k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, b1.NewPutter(db).Delete([]byte("k")))
	_, err = b1.NewGetter(db).Get([]byte("k"))
	assert.True(t, b1.NewGetter(db).IsNotFound(err))

	has, err := b2.NewGetter(db).Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestBucketPrefix(t *testing.T) {
	db := lvldb.NewMem()
	defer db.Close()

	b := kv.Bucket("s")
	for _, k := range []string{"1", "2", "3"} {
		require.NoError(t, b.NewPutter(db).Put([]byte(k), []byte(k)))
	}
	require.NoError(t, db.Put([]byte("t1"), []byte("other")))

	it := db.Iterate(b.Prefix())
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"s1", "s2", "s3"}, keys)
	assert.Equal(t, kv.Range{Start: []byte("s"), Limit: []byte("t")}, b.Prefix())
}
