// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package userindex

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/position"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
)

var (
	slotLengths = custodian.BytesToBytes32([]byte(("user-index-length")))
	slotEntries = custodian.BytesToBytes32([]byte(("user-index-entries")))
	slotSlots   = custodian.BytesToBytes32([]byte(("user-index-slots")))
)

// entry is stored at (user, i).
type entry struct {
	Collection uint32
	TokenID    []byte
}

// Service keeps, per user, an array of position keys with a reverse lookup
// from key to array slot. Removal swaps the last entry into the freed slot,
// so order is only preserved between removals.
type Service struct {
	lengths *solidity.Mapping[custodian.Address, uint64]
	entries *solidity.Mapping[custodian.Bytes32, *entry]
	slots   *solidity.Mapping[custodian.Bytes32, uint64] // slot index + 1
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		lengths: solidity.NewMapping[custodian.Address, uint64](sctx, slotLengths),
		entries: solidity.NewMapping[custodian.Bytes32, *entry](sctx, slotEntries),
		slots:   solidity.NewMapping[custodian.Bytes32, uint64](sctx, slotSlots),
	}
}

func entryKey(user custodian.Address, i uint64) custodian.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return custodian.Blake2b(user.Bytes(), b[:])
}

func slotKey(user custodian.Address, key position.Key) custodian.Bytes32 {
	return custodian.Blake2b(user.Bytes(), key.Bytes())
}

// Len returns the number of entries of user.
func (s *Service) Len(user custodian.Address) (uint64, error) {
	n, err := s.lengths.Get(user)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get index length")
	}
	return n, nil
}

// At returns the entry at index i.
func (s *Service) At(user custodian.Address, i uint64) (position.Key, error) {
	n, err := s.Len(user)
	if err != nil {
		return position.Key{}, err
	}
	if i >= n {
		return position.Key{}, reverts.ErrIndexOutOfRange
	}
	return s.at(user, i)
}

func (s *Service) at(user custodian.Address, i uint64) (position.Key, error) {
	e, err := s.entries.Get(entryKey(user, i))
	if err != nil {
		return position.Key{}, errors.Wrap(err, "failed to get index entry")
	}
	if e == nil {
		return position.Key{}, errors.Errorf("missing index entry %d", i)
	}
	return position.Key{Collection: e.Collection, TokenID: new(big.Int).SetBytes(e.TokenID)}, nil
}

// Contains reports whether key is in the index of user.
func (s *Service) Contains(user custodian.Address, key position.Key) (bool, error) {
	slot, err := s.slots.Get(slotKey(user, key))
	if err != nil {
		return false, errors.Wrap(err, "failed to get index slot")
	}
	return slot != 0, nil
}

// Append adds key at the end of the index of user.
func (s *Service) Append(user custodian.Address, key position.Key) error {
	n, err := s.Len(user)
	if err != nil {
		return err
	}
	if err := s.put(user, n, key); err != nil {
		return err
	}
	return errors.Wrap(s.lengths.Set(user, n+1), "failed to set index length")
}

func (s *Service) put(user custodian.Address, i uint64, key position.Key) error {
	e := &entry{Collection: key.Collection, TokenID: key.TokenID.Bytes()}
	if err := s.entries.Set(entryKey(user, i), e); err != nil {
		return errors.Wrap(err, "failed to set index entry")
	}
	return errors.Wrap(s.slots.Set(slotKey(user, key), i+1), "failed to set index slot")
}

// Remove deletes key from the index of user by moving the last entry into its slot.
func (s *Service) Remove(user custodian.Address, key position.Key) error {
	slot, err := s.slots.Get(slotKey(user, key))
	if err != nil {
		return errors.Wrap(err, "failed to get index slot")
	}
	if slot == 0 {
		return errors.Errorf("index entry %v not found", key)
	}
	n, err := s.Len(user)
	if err != nil {
		return err
	}

	i, last := slot-1, n-1
	cur, err := s.at(user, i)
	if err != nil {
		return err
	}
	if !cur.Equal(key) {
		return errors.Errorf("index slot of %v holds %v", key, cur)
	}
	if i != last {
		moved, err := s.at(user, last)
		if err != nil {
			return err
		}
		if err := s.put(user, i, moved); err != nil {
			return err
		}
	}
	s.entries.Delete(entryKey(user, last))
	s.slots.Delete(slotKey(user, key))
	return errors.Wrap(s.lengths.Set(user, last), "failed to set index length")
}

// List returns all entries of user in index order.
func (s *Service) List(user custodian.Address) ([]position.Key, error) {
	n, err := s.Len(user)
	if err != nil {
		return nil, err
	}
	keys := make([]position.Key, 0, n)
	for i := range n {
		k, err := s.at(user, i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
