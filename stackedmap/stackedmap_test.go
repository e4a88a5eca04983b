// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/custodian/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},
		{func() {}, 1, "", "", "none", M("", false, nil)},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
		v, b, err := sm.Get(kv.k)
		assert.NoError(err)
		assert.True(b)
		assert.Equal(kv.v, v)
	}

	for i, e := range sm.Journal() {
		assert.Equal(kvs[i].k, e.Key)
		assert.Equal(kvs[i].v, e.Value)
	}

	sm.PopTo(1)
	assert.Empty(sm.Journal())
	_, b, _ := sm.Get("a")
	assert.False(b)
}

func TestStackedMapOverwriteSameLevel(t *testing.T) {
	sm := stackedmap.New(func(string) (int, bool, error) {
		return 0, false, nil
	})

	sm.Put("k", 1)
	rev := sm.Push()
	sm.Put("k", 2)
	sm.Put("k", 3)

	v, _, _ := sm.Get("k")
	assert.Equal(t, 3, v)
	assert.Len(t, sm.Journal(), 3)

	sm.PopTo(rev)
	v, _, _ = sm.Get("k")
	assert.Equal(t, 1, v)
	assert.Len(t, sm.Journal(), 1)
}

func TestStackedMapSourceError(t *testing.T) {
	errSrc := errors.New("source failure")
	sm := stackedmap.New(func(string) (int, bool, error) {
		return 0, false, errSrc
	})

	_, _, err := sm.Get("k")
	assert.Equal(t, errSrc, err)

	sm.Put("k", 1)
	v, ok, err := sm.Get("k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
