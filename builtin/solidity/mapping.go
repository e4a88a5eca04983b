// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/custodian/custodian"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded, one storage slot per key.
type Mapping[K Key, V any] struct {
	context *Context
	basePos custodian.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos custodian.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) custodian.Bytes32 {
	return custodian.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key.
// Absent keys yield the zero value, which is nil for pointer types.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
			return rlp.DecodeBytes(raw, value)
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Exists reports whether a value is stored for key.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores the value of key. Setting the zero value clears the slot.
func (m *Mapping[K, V]) Set(key K, value V) error {
	if isZero(value) {
		m.Delete(key)
		return nil
	}
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the slot of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func isZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}
