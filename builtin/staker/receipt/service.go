// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipt

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
)

var (
	slotReceipts        = custodian.BytesToBytes32([]byte(("receipts")))
	slotReceiptBalances = custodian.BytesToBytes32([]byte(("receipt-balances")))
	slotReceiptsCounter = custodian.BytesToBytes32([]byte(("receipts-counter")))

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Service is the ledger of items issued by the registry.
// Position receipts and rewards share one id counter.
type Service struct {
	receipts  *solidity.Mapping[*big.Int, *body]
	balances  *solidity.Mapping[custodian.Address, uint64]
	idCounter *solidity.Raw[*big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		receipts:  solidity.NewMapping[*big.Int, *body](sctx, slotReceipts),
		balances:  solidity.NewMapping[custodian.Address, uint64](sctx, slotReceiptBalances),
		idCounter: solidity.NewRaw[*big.Int](sctx, slotReceiptsCounter),
	}
}

// Total returns the number of ids ever minted, which is also the latest id.
func (s *Service) Total() (*big.Int, error) {
	id, err := s.idCounter.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get receipt counter")
	}
	if id == nil {
		id = big.NewInt(0)
	}
	return id, nil
}

// Mint assigns the next id to owner. Ids start at 1.
func (s *Service) Mint(owner custodian.Address, kind Kind) (*big.Int, error) {
	id, err := s.newReceiptID()
	if err != nil {
		return nil, err
	}
	if err := s.receipts.Set(id, &body{Owner: owner, Kind: kind}); err != nil {
		return nil, errors.Wrap(err, "failed to set receipt")
	}
	if err := s.addBalance(owner, 1); err != nil {
		return nil, err
	}
	return new(big.Int).Set(id), nil
}

// Transfer reassigns id from from to to.
func (s *Service) Transfer(id *big.Int, from, to custodian.Address) error {
	b, err := s.get(id)
	if err != nil {
		return err
	}
	if b.Owner != from {
		return errors.Errorf("receipt %v is not held by %v", id, from)
	}
	b.Owner = to
	if err := s.receipts.Set(id, b); err != nil {
		return errors.Wrap(err, "failed to set receipt")
	}
	if err := s.addBalance(from, -1); err != nil {
		return err
	}
	return s.addBalance(to, 1)
}

// OwnerOf returns the holder of id.
func (s *Service) OwnerOf(id *big.Int) (custodian.Address, error) {
	b, err := s.get(id)
	if err != nil {
		return custodian.Address{}, err
	}
	return b.Owner, nil
}

// KindOf returns whether id is a position receipt or a reward.
func (s *Service) KindOf(id *big.Int) (Kind, error) {
	b, err := s.get(id)
	if err != nil {
		return 0, err
	}
	return b.Kind, nil
}

// BalanceOf returns the number of ids held by owner.
func (s *Service) BalanceOf(owner custodian.Address) (uint64, error) {
	n, err := s.balances.Get(owner)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get receipt balance")
	}
	return n, nil
}

func (s *Service) get(id *big.Int) (*body, error) {
	if id == nil || id.Sign() <= 0 {
		return nil, reverts.ErrReceiptNotFound
	}
	b, err := s.receipts.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get receipt")
	}
	if b == nil {
		return nil, reverts.ErrReceiptNotFound
	}
	return b, nil
}

func (s *Service) addBalance(owner custodian.Address, delta int64) error {
	n, err := s.BalanceOf(owner)
	if err != nil {
		return err
	}
	return errors.Wrap(s.balances.Set(owner, uint64(int64(n)+delta)), "failed to set receipt balance")
}

func (s *Service) newReceiptID() (*big.Int, error) {
	// update the global receipt counter
	id, err := s.Total()
	if err != nil {
		return nil, err
	}

	id.Add(id, big.NewInt(1))
	if id.Cmp(maxUint256) >= 0 {
		return nil, errors.New("receipt ID counter overflow: maximum receipts reached")
	}
	if err := s.idCounter.Set(id); err != nil {
		return nil, errors.Wrap(err, "failed to set receipt counter")
	}
	return id, nil
}
