// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nft implements an in-state non-fungible token collection with
// ERC-721 style ownership, approval and transfer rules.
package nft

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/state"
)

var (
	ErrTokenNotFound = reverts.New("token not found")
	ErrNotAuthorized = reverts.New("caller is not owner nor approved")
	ErrWrongOwner    = reverts.New("transfer from incorrect owner")
	ErrTokenExists   = reverts.New("token already minted")
	ErrZeroAddress   = reverts.New("zero address")
)

var (
	slotName      = custodian.BytesToBytes32([]byte("name"))
	slotSymbol    = custodian.BytesToBytes32([]byte("symbol"))
	slotOwners    = custodian.BytesToBytes32([]byte("owners"))
	slotBalances  = custodian.BytesToBytes32([]byte("balances"))
	slotApprovals = custodian.BytesToBytes32([]byte("token-approvals"))
	slotOperators = custodian.BytesToBytes32([]byte("operator-approvals"))
	slotSupply    = custodian.BytesToBytes32([]byte("total-supply"))

	logger = log.WithContext("pkg", "nft")
)

// NFT is one collection bound to its contract address.
type NFT struct {
	addr      custodian.Address
	name      *solidity.Raw[string]
	symbol    *solidity.Raw[string]
	owners    *solidity.Mapping[*big.Int, custodian.Address]
	balances  *solidity.Mapping[custodian.Address, uint64]
	approvals *solidity.Mapping[*big.Int, custodian.Address]
	operators *solidity.Mapping[custodian.Bytes32, bool]
	supply    *solidity.Uint256
}

// New create a new instance.
func New(addr custodian.Address, state *state.State) *NFT {
	sctx := solidity.NewContext(addr, state)
	return &NFT{
		addr:      addr,
		name:      solidity.NewRaw[string](sctx, slotName),
		symbol:    solidity.NewRaw[string](sctx, slotSymbol),
		owners:    solidity.NewMapping[*big.Int, custodian.Address](sctx, slotOwners),
		balances:  solidity.NewMapping[custodian.Address, uint64](sctx, slotBalances),
		approvals: solidity.NewMapping[*big.Int, custodian.Address](sctx, slotApprovals),
		operators: solidity.NewMapping[custodian.Bytes32, bool](sctx, slotOperators),
		supply:    solidity.NewUint256(sctx, slotSupply),
	}
}

func operatorKey(owner, operator custodian.Address) custodian.Bytes32 {
	return custodian.Blake2b(owner.Bytes(), operator.Bytes())
}

func (n *NFT) Address() custodian.Address {
	return n.addr
}

// SetMeta stores name and symbol of the collection.
func (n *NFT) SetMeta(name, symbol string) error {
	if err := n.name.Set(name); err != nil {
		return errors.Wrap(err, "failed to set name")
	}
	return errors.Wrap(n.symbol.Set(symbol), "failed to set symbol")
}

func (n *NFT) Name() (string, error) {
	return n.name.Get()
}

func (n *NFT) Symbol() (string, error) {
	return n.symbol.Get()
}

// TotalSupply returns the number of tokens currently minted.
func (n *NFT) TotalSupply() (*big.Int, error) {
	return n.supply.Get()
}

// OwnerOf returns the owner of the token, the zero address if it was never minted or got burnt.
func (n *NFT) OwnerOf(tokenID *big.Int) (custodian.Address, error) {
	if !custodian.IsTokenID(tokenID) {
		return custodian.Address{}, reverts.ErrInvalidTokenID
	}
	owner, err := n.owners.Get(tokenID)
	if err != nil {
		return custodian.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return owner, nil
}

func (n *NFT) mustOwnerOf(tokenID *big.Int) (custodian.Address, error) {
	owner, err := n.OwnerOf(tokenID)
	if err != nil {
		return custodian.Address{}, err
	}
	if owner.IsZero() {
		return custodian.Address{}, ErrTokenNotFound
	}
	return owner, nil
}

func (n *NFT) BalanceOf(owner custodian.Address) (uint64, error) {
	if owner.IsZero() {
		return 0, ErrZeroAddress
	}
	return n.balances.Get(owner)
}

func (n *NFT) addBalance(owner custodian.Address, delta int64) error {
	bal, err := n.balances.Get(owner)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	return n.balances.Set(owner, uint64(int64(bal)+delta))
}

// Mint creates tokenID owned by to.
func (n *NFT) Mint(to custodian.Address, tokenID *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	owner, err := n.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrTokenExists
	}

	logger.Debug("minting token", "collection", n.addr, "tokenID", tokenID, "to", to)
	if err := n.owners.Set(tokenID, to); err != nil {
		return errors.Wrap(err, "failed to set owner")
	}
	if err := n.addBalance(to, 1); err != nil {
		return err
	}
	return n.supply.Add(big.NewInt(1))
}

// Burn destroys tokenID.
func (n *NFT) Burn(tokenID *big.Int) error {
	owner, err := n.mustOwnerOf(tokenID)
	if err != nil {
		return err
	}

	logger.Debug("burning token", "collection", n.addr, "tokenID", tokenID, "owner", owner)
	n.approvals.Delete(tokenID)
	n.owners.Delete(tokenID)
	if err := n.addBalance(owner, -1); err != nil {
		return err
	}
	return n.supply.Sub(big.NewInt(1))
}

// Approve lets to transfer tokenID on behalf of its owner.
// The caller must be the owner or an operator of the owner.
func (n *NFT) Approve(caller, to custodian.Address, tokenID *big.Int) error {
	owner, err := n.mustOwnerOf(tokenID)
	if err != nil {
		return err
	}
	if caller != owner {
		approved, err := n.IsApprovedForAll(owner, caller)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotAuthorized
		}
	}
	return errors.Wrap(n.approvals.Set(tokenID, to), "failed to set approval")
}

// GetApproved returns the address approved for tokenID.
func (n *NFT) GetApproved(tokenID *big.Int) (custodian.Address, error) {
	if _, err := n.mustOwnerOf(tokenID); err != nil {
		return custodian.Address{}, err
	}
	return n.approvals.Get(tokenID)
}

// SetApprovalForAll grants or revokes operator the right to transfer all tokens of owner.
func (n *NFT) SetApprovalForAll(owner, operator custodian.Address, approved bool) error {
	if operator.IsZero() {
		return ErrZeroAddress
	}
	return errors.Wrap(n.operators.Set(operatorKey(owner, operator), approved), "failed to set operator")
}

func (n *NFT) IsApprovedForAll(owner, operator custodian.Address) (bool, error) {
	return n.operators.Get(operatorKey(owner, operator))
}

// TransferFrom moves tokenID from from to to on behalf of operator.
func (n *NFT) TransferFrom(operator, from, to custodian.Address, tokenID *big.Int) error {
	owner, err := n.mustOwnerOf(tokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrWrongOwner
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	if operator != owner {
		approved, err := n.approvals.Get(tokenID)
		if err != nil {
			return errors.Wrap(err, "failed to get approval")
		}
		if approved.IsZero() || approved != operator {
			ok, err := n.IsApprovedForAll(owner, operator)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotAuthorized
			}
		}
	}

	logger.Debug("transferring token", "collection", n.addr, "tokenID", tokenID, "from", from, "to", to)
	n.approvals.Delete(tokenID)
	if err := n.owners.Set(tokenID, to); err != nil {
		return errors.Wrap(err, "failed to set owner")
	}
	if err := n.addBalance(from, -1); err != nil {
		return err
	}
	return n.addBalance(to, 1)
}
