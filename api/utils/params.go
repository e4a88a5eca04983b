// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/custodian/builtin/nft"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
)

// ParseTokenID parses a decimal or 0x-prefixed hex id that fits in 256 bits.
func ParseTokenID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty id")
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		// FromHex refuses leading zeros, which are valid in ids
		digits := s[2:]
		if digits != "" {
			if digits = strings.TrimLeft(digits, "0"); digits == "" {
				digits = "0"
			}
		}
		v, err = uint256.FromHex("0x" + digits)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// ParseAddress parses a 0x-prefixed 20 byte address.
func ParseAddress(s string) (custodian.Address, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return custodian.Address{}, err
	}
	if len(b) != custodian.AddressLength {
		return custodian.Address{}, errors.New("invalid address length")
	}
	return custodian.BytesToAddress(b), nil
}

// ParseIndex parses a collection index.
func ParseIndex(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// ParseUint parses an unsigned decimal.
func ParseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// RequiredTokenID reads an id field, reporting failures as bad request.
func RequiredTokenID(name, value string) (*big.Int, error) {
	id, err := ParseTokenID(value)
	if err != nil {
		return nil, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return id, nil
}

// RequiredAddress reads an address field, reporting failures as bad request.
func RequiredAddress(name, value string) (custodian.Address, error) {
	addr, err := ParseAddress(value)
	if err != nil {
		return custodian.Address{}, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return addr, nil
}

var revertStatus = map[error]int{
	reverts.ErrNotOwner:  http.StatusForbidden,
	reverts.ErrNotStaker: http.StatusForbidden,
	nft.ErrNotAuthorized: http.StatusForbidden,
	nft.ErrWrongOwner:    http.StatusForbidden,

	reverts.ErrNotStaked:       http.StatusNotFound,
	reverts.ErrReceiptNotFound: http.StatusNotFound,
	reverts.ErrIndexOutOfRange: http.StatusNotFound,
	nft.ErrTokenNotFound:       http.StatusNotFound,

	reverts.ErrAlreadyStaked:      http.StatusConflict,
	reverts.ErrAlreadyClaimed:     http.StatusConflict,
	reverts.ErrAlreadyInitialized: http.StatusConflict,
	reverts.ErrCapacityExceeded:   http.StatusConflict,
	reverts.ErrNotInitialized:     http.StatusConflict,
	nft.ErrTokenExists:            http.StatusConflict,
}

// CallError maps a failed registry call onto an http error.
// Reverts are client errors, anything else is left to respond 500.
func CallError(err error) error {
	if err == nil || !reverts.IsRevertErr(err) {
		return err
	}
	for sentinel, status := range revertStatus {
		if errors.Is(err, sentinel) {
			return HTTPError(err, status)
		}
	}
	return BadRequest(err)
}
