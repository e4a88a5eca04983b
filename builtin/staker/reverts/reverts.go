// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Registry preconditions. Each aborts the call with no state change.
var (
	ErrInvalidConfiguration = New("invalid configuration: no collections")
	ErrAlreadyInitialized   = New("registry already initialized")
	ErrNotInitialized       = New("registry not initialized")
	ErrUnknownCollection    = New("unknown collection")
	ErrNotOwner             = New("caller is not the token owner")
	ErrAlreadyStaked        = New("token already staked")
	ErrCapacityExceeded     = New("user position capacity exceeded")
	ErrNotStaked            = New("token not staked")
	ErrNotStaker            = New("caller is not the staker")
	ErrPeriodElapsed        = New("staking period elapsed")
	ErrPeriodNotElapsed     = New("staking period not elapsed")
	ErrAlreadyClaimed       = New("position already claimed")
	ErrIndexOutOfRange      = New("index out of range")
	ErrReceiptNotFound      = New("receipt not found")
	ErrInvalidTokenID       = New("token id out of uint256 range")
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
