// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/custodian"
)

var (
	slotPositions   = custodian.BytesToBytes32([]byte(("positions")))
	slotActiveCount = custodian.BytesToBytes32([]byte(("positions-active")))
)

// Service stores one position per key, overwritten on every new stake.
type Service struct {
	positions   *solidity.Mapping[Key, *Position]
	activeCount *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		positions:   solidity.NewMapping[Key, *Position](sctx, slotPositions),
		activeCount: solidity.NewRaw[uint64](sctx, slotActiveCount),
	}
}

// Get returns the position of key, nil if the key was never staked.
func (s *Service) Get(key Key) (*Position, error) {
	pos, err := s.positions.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos, nil
}

// GetActive returns the position of key if it is active, otherwise nil.
func (s *Service) GetActive(key Key) (*Position, error) {
	pos, err := s.Get(key)
	if err != nil || pos == nil || !pos.Active {
		return nil, err
	}
	return pos, nil
}

// Open writes a brand-new active position for key.
func (s *Service) Open(key Key, pos *Position) error {
	pos.Active = true
	if err := s.positions.Set(key, pos); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return s.addActive(1)
}

// Update rewrites a position without touching its active state.
func (s *Service) Update(key Key, pos *Position) error {
	return errors.Wrap(s.positions.Set(key, pos), "failed to update position")
}

// Close marks the position inactive. The record is kept.
func (s *Service) Close(key Key, pos *Position) error {
	pos.Active = false
	if err := s.positions.Set(key, pos); err != nil {
		return errors.Wrap(err, "failed to close position")
	}
	return s.addActive(-1)
}

// ActiveCount returns the number of active positions.
func (s *Service) ActiveCount() (uint64, error) {
	n, err := s.activeCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get active count")
	}
	return n, nil
}

func (s *Service) addActive(delta int64) error {
	n, err := s.ActiveCount()
	if err != nil {
		return err
	}
	return errors.Wrap(s.activeCount.Set(uint64(int64(n)+delta)), "failed to set active count")
}
