// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collections

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/builtin/nft"
	"github.com/vechain/custodian/runtime"
	"github.com/vechain/custodian/state"
)

type Collections struct {
	rt       *runtime.Runtime
	soloMode bool
}

// New creates the collections api. Minting is only exposed in solo mode.
func New(rt *runtime.Runtime, soloMode bool) *Collections {
	return &Collections{
		rt,
		soloMode,
	}
}

func parseIndex(req *http.Request) (uint32, error) {
	index, err := utils.ParseIndex(mux.Vars(req)["index"])
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "index"))
	}
	return index, nil
}

// view runs fn against the collection at index in the committed state.
func (c *Collections) view(index uint32, fn func(col *nft.NFT) error) error {
	return c.rt.View(func(st *state.State) error {
		addr, err := runtime.Staker(st).Collection(index)
		if err != nil {
			return err
		}
		return fn(builtin.Collection(addr).WithState(st))
	})
}

func (c *Collections) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	tokenID, err := utils.RequiredTokenID("tokenId", mux.Vars(req)["tokenId"])
	if err != nil {
		return err
	}

	token := &Token{Collection: index, TokenID: tokenID.String()}
	err = c.view(index, func(col *nft.NFT) error {
		owner, err := col.OwnerOf(tokenID)
		if err != nil {
			return err
		}
		if owner.IsZero() {
			return nft.ErrTokenNotFound
		}
		approved, err := col.GetApproved(tokenID)
		if err != nil {
			return err
		}
		token.Owner = owner
		token.Approved = approved
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, token)
}

func (c *Collections) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	owner, err := utils.RequiredAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	var balance uint64
	err = c.view(index, func(col *nft.NFT) (err error) {
		balance, err = col.BalanceOf(owner)
		return
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, &Balance{balance})
}

func (c *Collections) handleApprove(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := utils.RequiredAddress("caller", body.Caller)
	if err != nil {
		return err
	}
	to, err := utils.RequiredAddress("to", body.To)
	if err != nil {
		return err
	}
	tokenID, err := utils.RequiredTokenID("tokenId", body.TokenID)
	if err != nil {
		return err
	}

	err = c.rt.Collection("approve", index, func(col *nft.NFT) error {
		return col.Approve(caller, to, tokenID)
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (c *Collections) handleApproveAll(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	var body ApproveAllRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := utils.RequiredAddress("caller", body.Caller)
	if err != nil {
		return err
	}
	operator, err := utils.RequiredAddress("operator", body.Operator)
	if err != nil {
		return err
	}

	err = c.rt.Collection("approve-all", index, func(col *nft.NFT) error {
		return col.SetApprovalForAll(caller, operator, body.Approved)
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (c *Collections) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := utils.RequiredAddress("caller", body.Caller)
	if err != nil {
		return err
	}
	from, err := utils.RequiredAddress("from", body.From)
	if err != nil {
		return err
	}
	to, err := utils.RequiredAddress("to", body.To)
	if err != nil {
		return err
	}
	tokenID, err := utils.RequiredTokenID("tokenId", body.TokenID)
	if err != nil {
		return err
	}

	err = c.rt.Collection("transfer", index, func(col *nft.NFT) error {
		return col.TransferFrom(caller, from, to, tokenID)
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (c *Collections) handleMint(w http.ResponseWriter, req *http.Request) error {
	index, err := parseIndex(req)
	if err != nil {
		return err
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	to, err := utils.RequiredAddress("to", body.To)
	if err != nil {
		return err
	}
	tokenID, err := utils.RequiredTokenID("tokenId", body.TokenID)
	if err != nil {
		return err
	}

	err = c.rt.Collection("mint", index, func(col *nft.NFT) error {
		return col.Mint(to, tokenID)
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{})
}

func (c *Collections) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{index}/tokens/{tokenId}").
		Methods(http.MethodGet).
		Name("GET /collections/{index}/tokens/{tokenId}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetToken))
	sub.Path("/{index}/balance/{address}").
		Methods(http.MethodGet).
		Name("GET /collections/{index}/balance/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetBalance))
	sub.Path("/{index}/approve").
		Methods(http.MethodPost).
		Name("POST /collections/{index}/approve").
		HandlerFunc(utils.WrapHandlerFunc(c.handleApprove))
	sub.Path("/{index}/approve-all").
		Methods(http.MethodPost).
		Name("POST /collections/{index}/approve-all").
		HandlerFunc(utils.WrapHandlerFunc(c.handleApproveAll))
	sub.Path("/{index}/transfer").
		Methods(http.MethodPost).
		Name("POST /collections/{index}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(c.handleTransfer))

	if c.soloMode {
		sub.Path("/{index}/mint").
			Methods(http.MethodPost).
			Name("POST /collections/{index}/mint").
			HandlerFunc(utils.WrapHandlerFunc(c.handleMint))
	}
}
