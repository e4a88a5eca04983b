// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collection

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
)

var (
	slotCollections     = custodian.BytesToBytes32([]byte(("collections")))
	slotCollectionCount = custodian.BytesToBytes32([]byte(("collections-count")))
)

// Service keeps the immutable, dense list of collection registries.
type Service struct {
	collections *solidity.Mapping[*big.Int, custodian.Address]
	count       *solidity.Raw[uint32]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		collections: solidity.NewMapping[*big.Int, custodian.Address](sctx, slotCollections),
		count:       solidity.NewRaw[uint32](sctx, slotCollectionCount),
	}
}

// Init stores the registries at indices 0..N-1.
func (s *Service) Init(registries []custodian.Address) error {
	if len(registries) == 0 {
		return reverts.ErrInvalidConfiguration
	}
	for i, addr := range registries {
		if addr.IsZero() {
			return reverts.ErrInvalidConfiguration
		}
		if err := s.collections.Set(big.NewInt(int64(i)), addr); err != nil {
			return errors.Wrap(err, "failed to set collection")
		}
	}
	return errors.Wrap(s.count.Set(uint32(len(registries))), "failed to set collection count")
}

// Count returns the number of collections.
func (s *Service) Count() (uint32, error) {
	n, err := s.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get collection count")
	}
	return n, nil
}

// Get returns the registry address of the collection at index.
func (s *Service) Get(index uint32) (custodian.Address, error) {
	n, err := s.Count()
	if err != nil {
		return custodian.Address{}, err
	}
	if index >= n {
		return custodian.Address{}, reverts.ErrUnknownCollection
	}
	addr, err := s.collections.Get(big.NewInt(int64(index)))
	if err != nil {
		return custodian.Address{}, errors.Wrap(err, "failed to get collection")
	}
	return addr, nil
}

// All returns the registry addresses in index order.
func (s *Service) All() ([]custodian.Address, error) {
	n, err := s.Count()
	if err != nil {
		return nil, err
	}
	all := make([]custodian.Address, 0, n)
	for i := range n {
		addr, err := s.Get(i)
		if err != nil {
			return nil, err
		}
		all = append(all, addr)
	}
	return all, nil
}
