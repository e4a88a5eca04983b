// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/solidity"
	"github.com/vechain/custodian/builtin/staker/collection"
	"github.com/vechain/custodian/builtin/staker/position"
	"github.com/vechain/custodian/builtin/staker/receipt"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/builtin/staker/userindex"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/state"
)

var (
	logger = log.WithContext("pkg", "staker")

	slotInitialized = custodian.BytesToBytes32([]byte(("initialized")))
	slotName        = custodian.BytesToBytes32([]byte(("name")))
	slotSymbol      = custodian.BytesToBytes32([]byte(("symbol")))
)

func SetLogger(l log.Logger) {
	logger = l
}

// TokenRegistry is the external registry of one collection.
type TokenRegistry interface {
	// OwnerOf returns the current owner, the zero address if the token does not exist.
	OwnerOf(tokenID *big.Int) (custodian.Address, error)
	// TransferFrom moves the token from from to to on behalf of operator.
	TransferFrom(operator, from, to custodian.Address, tokenID *big.Int) error
}

// RegistryResolver returns the registry bound to a collection address.
type RegistryResolver func(addr custodian.Address) TokenRegistry

// Staker implements native methods of the staking registry.
type Staker struct {
	addr     custodian.Address
	state    *state.State
	resolver RegistryResolver

	initialized *solidity.Raw[bool]
	name        *solidity.Raw[string]
	symbol      *solidity.Raw[string]

	collectionService *collection.Service
	positionService   *position.Service
	userIndexService  *userindex.Service
	receiptService    *receipt.Service
}

// New create a new instance.
func New(addr custodian.Address, state *state.State, resolver RegistryResolver) *Staker {
	sctx := solidity.NewContext(addr, state)

	return &Staker{
		addr:     addr,
		state:    state,
		resolver: resolver,

		initialized: solidity.NewRaw[bool](sctx, slotInitialized),
		name:        solidity.NewRaw[string](sctx, slotName),
		symbol:      solidity.NewRaw[string](sctx, slotSymbol),

		collectionService: collection.New(sctx),
		positionService:   position.New(sctx),
		userIndexService:  userindex.New(sctx),
		receiptService:    receipt.New(sctx),
	}
}

// Address returns the registry's own address, which holds tokens in custody.
func (s *Staker) Address() custodian.Address {
	return s.addr
}

// atomic runs fn and reverts every storage write it made if it fails.
func (s *Staker) atomic(fn func() error) error {
	cp := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(cp)
		return err
	}
	return nil
}

func (s *Staker) ensureInitialized() error {
	ok, err := s.initialized.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get initialized flag")
	}
	if !ok {
		return reverts.ErrNotInitialized
	}
	return nil
}

func (s *Staker) registry(index uint32) (TokenRegistry, error) {
	addr, err := s.collectionService.Get(index)
	if err != nil {
		return nil, err
	}
	return s.resolver(addr), nil
}

//
// Getters - no state change
//

// IsInitialized reports whether Initialize succeeded.
func (s *Staker) IsInitialized() (bool, error) {
	return s.initialized.Get()
}

func (s *Staker) Name() (string, error) {
	return s.name.Get()
}

func (s *Staker) Symbol() (string, error) {
	return s.symbol.Get()
}

// CollectionCount returns the number of collections.
func (s *Staker) CollectionCount() (uint32, error) {
	if err := s.ensureInitialized(); err != nil {
		return 0, err
	}
	return s.collectionService.Count()
}

// Collection returns the registry address of the collection at index.
func (s *Staker) Collection(index uint32) (custodian.Address, error) {
	if err := s.ensureInitialized(); err != nil {
		return custodian.Address{}, err
	}
	return s.collectionService.Get(index)
}

// Collections returns all registry addresses in index order.
func (s *Staker) Collections() ([]custodian.Address, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.collectionService.All()
}

// IsStaked reports whether an active position exists for the token.
func (s *Staker) IsStaked(collection uint32, tokenID *big.Int) (bool, error) {
	if !custodian.IsTokenID(tokenID) {
		return false, reverts.ErrInvalidTokenID
	}
	pos, err := s.positionService.GetActive(position.NewKey(collection, tokenID))
	if err != nil {
		return false, err
	}
	return pos != nil, nil
}

// PositionInfo returns the position record of the token.
// Keys never staked yield an empty record.
func (s *Staker) PositionInfo(collection uint32, tokenID *big.Int) (*position.Position, error) {
	if !custodian.IsTokenID(tokenID) {
		return nil, reverts.ErrInvalidTokenID
	}
	pos, err := s.positionService.Get(position.NewKey(collection, tokenID))
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return position.Empty(), nil
	}
	return pos, nil
}

// UserPosition returns the entry at index of the user's position index.
func (s *Staker) UserPosition(user custodian.Address, index uint64) (uint32, *big.Int, error) {
	key, err := s.userIndexService.At(user, index)
	if err != nil {
		return 0, nil, err
	}
	return key.Collection, key.TokenID, nil
}

// UserPositionCount returns the number of indexed positions of user.
func (s *Staker) UserPositionCount(user custodian.Address) (uint64, error) {
	return s.userIndexService.Len(user)
}

// AllUserPositions returns the user's token ids grouped by collection index,
// each group in index order.
func (s *Staker) AllUserPositions(user custodian.Address) ([][]*big.Int, error) {
	count, err := s.CollectionCount()
	if err != nil {
		return nil, err
	}
	keys, err := s.userIndexService.List(user)
	if err != nil {
		return nil, err
	}

	grouped := make([][]*big.Int, count)
	for i := range grouped {
		grouped[i] = []*big.Int{}
	}
	for _, key := range keys {
		if key.Collection >= count {
			return nil, errors.Errorf("index entry %v refers to unknown collection", key)
		}
		grouped[key.Collection] = append(grouped[key.Collection], key.TokenID)
	}
	return grouped, nil
}

// ActivePositions returns the number of active positions across all users.
func (s *Staker) ActivePositions() (uint64, error) {
	return s.positionService.ActiveCount()
}

// ReceiptOwner returns the holder of a receipt or reward id.
func (s *Staker) ReceiptOwner(id *big.Int) (custodian.Address, error) {
	return s.receiptService.OwnerOf(id)
}

// ReceiptKind returns whether id is a position receipt or a reward.
func (s *Staker) ReceiptKind(id *big.Int) (receipt.Kind, error) {
	return s.receiptService.KindOf(id)
}

// ReceiptBalance returns the number of ids held by holder.
func (s *Staker) ReceiptBalance(holder custodian.Address) (uint64, error) {
	return s.receiptService.BalanceOf(holder)
}

// TotalReceipts returns the number of ids ever minted.
func (s *Staker) TotalReceipts() (*big.Int, error) {
	return s.receiptService.Total()
}

//
// Setters - state change
//

// Initialize stores the collections and the issuer's name and symbol. It succeeds once.
func (s *Staker) Initialize(name, symbol string, collections []custodian.Address) error {
	logger.Debug("initializing registry", "name", name, "symbol", symbol, "collections", len(collections))

	return s.atomic(func() error {
		ok, err := s.initialized.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get initialized flag")
		}
		if ok {
			return reverts.ErrAlreadyInitialized
		}
		if err := s.collectionService.Init(collections); err != nil {
			return err
		}
		if err := s.name.Set(name); err != nil {
			return errors.Wrap(err, "failed to set name")
		}
		if err := s.symbol.Set(symbol); err != nil {
			return errors.Wrap(err, "failed to set symbol")
		}
		return errors.Wrap(s.initialized.Set(true), "failed to set initialized flag")
	})
}

// Stake takes custody of the caller's token and mints a position receipt to the caller.
func (s *Staker) Stake(caller custodian.Address, tokenID *big.Int, collection uint32, now uint64) (*big.Int, error) {
	logger.Debug("staking token", "caller", caller, "collection", collection, "tokenID", tokenID)

	var receiptID *big.Int
	err := s.atomic(func() error {
		if err := s.ensureInitialized(); err != nil {
			return err
		}
		if !custodian.IsTokenID(tokenID) {
			return reverts.ErrInvalidTokenID
		}
		registry, err := s.registry(collection)
		if err != nil {
			return err
		}
		owner, err := registry.OwnerOf(tokenID)
		if err != nil {
			return errors.WithMessage(err, "owner lookup")
		}
		key := position.NewKey(collection, tokenID)
		active, err := s.positionService.GetActive(key)
		if err != nil {
			return err
		}
		// while staked the token is owned by the registry itself
		if active != nil && (owner == s.addr || owner == caller) {
			return reverts.ErrAlreadyStaked
		}
		if owner.IsZero() || owner != caller {
			return reverts.ErrNotOwner
		}
		count, err := s.userIndexService.Len(caller)
		if err != nil {
			return err
		}
		if count >= custodian.MaxUserPositions {
			return reverts.ErrCapacityExceeded
		}

		if err := registry.TransferFrom(s.addr, caller, s.addr, tokenID); err != nil {
			return errors.WithMessage(err, "custody transfer")
		}
		if receiptID, err = s.receiptService.Mint(caller, receipt.KindPosition); err != nil {
			return err
		}
		if err := s.positionService.Open(key, &position.Position{
			ReceiptID: receiptID,
			EndTime:   now + custodian.StakingPeriod,
			Staker:    caller,
		}); err != nil {
			return err
		}
		return s.userIndexService.Append(caller, key)
	})
	if err != nil {
		logger.Info("stake failed", "caller", caller, "collection", collection, "tokenID", tokenID, "error", err)
		return nil, err
	}

	logger.Info("staked token", "caller", caller, "collection", collection, "tokenID", tokenID, "receiptID", receiptID)
	return receiptID, nil
}

// activePositionOf loads the active position of key and checks it belongs to caller.
func (s *Staker) activePositionOf(caller custodian.Address, key position.Key) (*position.Position, error) {
	pos, err := s.positionService.GetActive(key)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, reverts.ErrNotStaked
	}
	if pos.Staker != caller {
		return nil, reverts.ErrNotStaker
	}
	return pos, nil
}

// Unstake returns the token before the staking period ends. The position receipt goes to the registry.
func (s *Staker) Unstake(caller custodian.Address, tokenID *big.Int, collection uint32, now uint64) error {
	logger.Debug("unstaking token", "caller", caller, "collection", collection, "tokenID", tokenID)

	err := s.atomic(func() error {
		if err := s.ensureInitialized(); err != nil {
			return err
		}
		if !custodian.IsTokenID(tokenID) {
			return reverts.ErrInvalidTokenID
		}
		key := position.NewKey(collection, tokenID)
		pos, err := s.activePositionOf(caller, key)
		if err != nil {
			return err
		}
		if pos.Elapsed(now) {
			return reverts.ErrPeriodElapsed
		}

		registry, err := s.registry(collection)
		if err != nil {
			return err
		}
		if err := registry.TransferFrom(s.addr, s.addr, caller, tokenID); err != nil {
			return errors.WithMessage(err, "custody transfer")
		}
		if err := s.receiptService.Transfer(pos.ReceiptID, caller, s.addr); err != nil {
			return err
		}
		if err := s.positionService.Close(key, pos); err != nil {
			return err
		}
		return s.userIndexService.Remove(caller, key)
	})
	if err != nil {
		logger.Info("unstake failed", "caller", caller, "collection", collection, "tokenID", tokenID, "error", err)
		return err
	}

	logger.Info("unstaked token", "caller", caller, "collection", collection, "tokenID", tokenID)
	return nil
}

// Claim returns the token after the staking period and mints a reward to the caller.
// The position stays active and keeps its index entry.
func (s *Staker) Claim(caller custodian.Address, tokenID *big.Int, collection uint32, now uint64) (*big.Int, error) {
	logger.Debug("claiming token", "caller", caller, "collection", collection, "tokenID", tokenID)

	var rewardID *big.Int
	err := s.atomic(func() error {
		if err := s.ensureInitialized(); err != nil {
			return err
		}
		if !custodian.IsTokenID(tokenID) {
			return reverts.ErrInvalidTokenID
		}
		key := position.NewKey(collection, tokenID)
		pos, err := s.activePositionOf(caller, key)
		if err != nil {
			return err
		}
		if !pos.Elapsed(now) {
			return reverts.ErrPeriodNotElapsed
		}
		if pos.Claimed {
			return reverts.ErrAlreadyClaimed
		}

		registry, err := s.registry(collection)
		if err != nil {
			return err
		}
		if err := registry.TransferFrom(s.addr, s.addr, caller, tokenID); err != nil {
			return errors.WithMessage(err, "custody transfer")
		}
		if rewardID, err = s.receiptService.Mint(caller, receipt.KindReward); err != nil {
			return err
		}
		pos.Claimed = true
		return s.positionService.Update(key, pos)
	})
	if err != nil {
		logger.Info("claim failed", "caller", caller, "collection", collection, "tokenID", tokenID, "error", err)
		return nil, err
	}

	logger.Info("claimed token", "caller", caller, "collection", collection, "tokenID", tokenID, "rewardID", rewardID)
	return rewardID, nil
}
