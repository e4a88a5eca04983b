// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/custodian/cache"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/kv"
	"github.com/vechain/custodian/stackedmap"
)

const (
	// StorageBucket is the kv bucket holding contract storage.
	StorageBucket kv.Bucket = "s"

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr custodian.Address
	key  custodian.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, custodian.AddressLength+32)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages contract storage.
type State struct {
	store  kv.Store
	getter kv.Getter
	cache  *cache.LRU
	sm     *stackedmap.StackedMap[storageKey, rlp.RawValue] // keeps revisions of storage
}

// New create state object over the given store.
// cacheSize <= 0 selects the default size.
func New(store kv.Store, cacheSize int) *State {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, _ := cache.NewLRU(cacheSize)
	s := &State{
		store:  store,
		getter: StorageBucket.NewGetter(store),
		cache:  c,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.cacheGetter)
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		raw, err := s.getter.Get(key.bytes())
		if err != nil {
			if s.getter.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(raw), nil
	})
	if err != nil {
		return nil, false, err
	}
	raw := v.(rlp.RawValue)
	return raw, len(raw) > 0, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr custodian.Address, key custodian.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
// Empty raw value deletes the slot.
func (s *State) SetRawStorage(addr custodian.Address, key custodian.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr custodian.Address, key custodian.Bytes32) (custodian.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return custodian.Bytes32{}, err
	}
	if len(raw) == 0 {
		return custodian.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return custodian.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return custodian.Blake2b(raw), nil
	}
	return custodian.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr custodian.Address, key, value custodian.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr custodian.Address, key custodian.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr custodian.Address, key custodian.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Changes returns the number of pending storage writes.
func (s *State) Changes() int {
	return len(s.sm.Journal())
}

// Commit flushes all pending changes into the store in one batch.
// The state keeps serving reads afterwards with no revisions left.
func (s *State) Commit() error {
	journal := s.sm.Journal()
	if len(journal) == 0 {
		return nil
	}

	latest := make(map[storageKey]rlp.RawValue, len(journal))
	order := make([]storageKey, 0, len(journal))
	for _, entry := range journal {
		if _, ok := latest[entry.Key]; !ok {
			order = append(order, entry.Key)
		}
		latest[entry.Key] = entry.Value
	}

	batch := s.store.NewBatch()
	putter := StorageBucket.NewPutter(batch)
	for _, k := range order {
		if v := latest[k]; len(v) > 0 {
			if err := putter.Put(k.bytes(), v); err != nil {
				return &Error{err}
			}
		} else if err := putter.Delete(k.bytes()); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for _, k := range order {
		s.cache.Add(k, latest[k])
	}
	s.reset()
	return nil
}

// Root returns the digest over all committed storage slots.
// Pending changes are not included.
func (s *State) Root() (custodian.Bytes32, error) {
	it := s.store.Iterate(StorageBucket.Prefix())
	defer it.Release()

	hasher := custodian.NewBlake2b()
	for it.Next() {
		hasher.Write(it.Key())
		hasher.Write(it.Value())
	}
	if err := it.Error(); err != nil {
		return custodian.Bytes32{}, &Error{err}
	}
	var root custodian.Bytes32
	hasher.Sum(root[:0])
	return root, nil
}
