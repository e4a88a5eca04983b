// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/runtime"
	"github.com/vechain/custodian/state"
)

type Staking struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staking {
	return &Staking{rt}
}

func (s *Staking) handleGetRegistry(w http.ResponseWriter, _ *http.Request) error {
	reg := &Registry{
		Address:          builtin.Staker.Address,
		Collections:      []*Collection{},
		StakingPeriod:    custodian.StakingPeriod,
		MaxUserPositions: custodian.MaxUserPositions,
		Time:             s.rt.LastTime(),
	}
	err := s.rt.View(func(st *state.State) error {
		stk := runtime.Staker(st)
		initialized, err := stk.IsInitialized()
		if err != nil {
			return err
		}
		total, err := stk.TotalReceipts()
		if err != nil {
			return err
		}
		active, err := stk.ActivePositions()
		if err != nil {
			return err
		}
		reg.Initialized = initialized
		reg.TotalReceipts = total.String()
		reg.ActivePositions = active
		if !initialized {
			return nil
		}

		if reg.Name, err = stk.Name(); err != nil {
			return err
		}
		if reg.Symbol, err = stk.Symbol(); err != nil {
			return err
		}
		addrs, err := stk.Collections()
		if err != nil {
			return err
		}
		for i, addr := range addrs {
			col := builtin.Collection(addr).WithState(st)
			c := &Collection{Index: uint32(i), Address: addr}
			if c.Name, err = col.Name(); err != nil {
				return err
			}
			if c.Symbol, err = col.Symbol(); err != nil {
				return err
			}
			reg.Collections = append(reg.Collections, c)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, reg)
}

func parseCallRequest(req *http.Request) (custodian.Address, *big.Int, uint32, error) {
	var body CallRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return custodian.Address{}, nil, 0, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := utils.RequiredAddress("caller", body.Caller)
	if err != nil {
		return custodian.Address{}, nil, 0, err
	}
	tokenID, err := utils.RequiredTokenID("tokenId", body.TokenID)
	if err != nil {
		return custodian.Address{}, nil, 0, err
	}
	return caller, tokenID, body.Collection, nil
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	caller, tokenID, collection, err := parseCallRequest(req)
	if err != nil {
		return err
	}
	receiptID, err := s.rt.Stake(caller, tokenID, collection)
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, &StakeResult{ReceiptID: receiptID.String()})
}

func (s *Staking) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	caller, tokenID, collection, err := parseCallRequest(req)
	if err != nil {
		return err
	}
	if err := s.rt.Unstake(caller, tokenID, collection); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	caller, tokenID, collection, err := parseCallRequest(req)
	if err != nil {
		return err
	}
	rewardID, err := s.rt.Claim(caller, tokenID, collection)
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, &ClaimResult{RewardID: rewardID.String()})
}

func (s *Staking) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	collection, err := utils.ParseIndex(mux.Vars(req)["collection"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "collection"))
	}
	tokenID, err := utils.RequiredTokenID("tokenId", mux.Vars(req)["tokenId"])
	if err != nil {
		return err
	}

	var pos *Position
	err = s.rt.View(func(st *state.State) error {
		p, err := runtime.Staker(st).PositionInfo(collection, tokenID)
		if err != nil {
			return err
		}
		pos = convertPosition(collection, tokenID, p)
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, pos)
}

func parseUser(req *http.Request) (custodian.Address, error) {
	return utils.RequiredAddress("address", mux.Vars(req)["address"])
}

func (s *Staking) handleGetUserPositions(w http.ResponseWriter, req *http.Request) error {
	user, err := parseUser(req)
	if err != nil {
		return err
	}

	res := &UserPositions{}
	err = s.rt.View(func(st *state.State) error {
		grouped, err := runtime.Staker(st).AllUserPositions(user)
		if err != nil {
			return err
		}
		res.Collections = make([][]string, len(grouped))
		for i, ids := range grouped {
			res.Collections[i] = make([]string, 0, len(ids))
			for _, id := range ids {
				res.Collections[i] = append(res.Collections[i], id.String())
			}
		}
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, res)
}

func (s *Staking) handleGetUserPositionCount(w http.ResponseWriter, req *http.Request) error {
	user, err := parseUser(req)
	if err != nil {
		return err
	}

	var count uint64
	err = s.rt.View(func(st *state.State) (err error) {
		count, err = runtime.Staker(st).UserPositionCount(user)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Count{count})
}

func (s *Staking) handleGetUserPosition(w http.ResponseWriter, req *http.Request) error {
	user, err := parseUser(req)
	if err != nil {
		return err
	}
	index, err := utils.ParseUint(mux.Vars(req)["index"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}

	entry := &IndexEntry{Index: index}
	err = s.rt.View(func(st *state.State) error {
		collection, tokenID, err := runtime.Staker(st).UserPosition(user, index)
		if err != nil {
			return err
		}
		entry.Collection = collection
		entry.TokenID = tokenID.String()
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, entry)
}

func (s *Staking) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.RequiredTokenID("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}

	rcpt := &Receipt{ID: id.String()}
	err = s.rt.View(func(st *state.State) error {
		stk := runtime.Staker(st)
		owner, err := stk.ReceiptOwner(id)
		if err != nil {
			return err
		}
		kind, err := stk.ReceiptKind(id)
		if err != nil {
			return err
		}
		rcpt.Owner = owner
		rcpt.Kind = kind.String()
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, rcpt)
}

func (s *Staking) handleGetReceiptBalance(w http.ResponseWriter, req *http.Request) error {
	holder, err := parseUser(req)
	if err != nil {
		return err
	}

	var balance uint64
	err = s.rt.View(func(st *state.State) (err error) {
		balance, err = runtime.Staker(st).ReceiptBalance(holder)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{balance})
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /staking").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetRegistry))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /staking/stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("POST /staking/unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /staking/claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
	sub.Path("/positions/{collection}/{tokenId}").
		Methods(http.MethodGet).
		Name("GET /staking/positions/{collection}/{tokenId}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPosition))
	sub.Path("/users/{address}/positions").
		Methods(http.MethodGet).
		Name("GET /staking/users/{address}/positions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUserPositions))
	// count is matched before the index route
	sub.Path("/users/{address}/positions/count").
		Methods(http.MethodGet).
		Name("GET /staking/users/{address}/positions/count").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUserPositionCount))
	sub.Path("/users/{address}/positions/{index:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /staking/users/{address}/positions/{index}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUserPosition))
	sub.Path("/receipts/balance/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/receipts/balance/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetReceiptBalance))
	sub.Path("/receipts/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/receipts/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetReceipt))
}
