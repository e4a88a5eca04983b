// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/custodian/custodian"
)

// EventKind names the registry operation an event records.
type EventKind string

const (
	Staked   EventKind = "Staked"
	Unstaked EventKind = "Unstaked"
	Claimed  EventKind = "Claimed"
)

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case Staked, Unstaked, Claimed:
		return true
	}
	return false
}

// Event represents one committed registry operation.
type Event struct {
	Seq        uint64
	Kind       EventKind
	Time       uint64
	Staker     custodian.Address
	Collection uint32
	TokenID    *big.Int
	ReceiptID  *big.Int
	RewardID   *big.Int // only set for Claimed
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive time range in unix seconds.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Kind       *EventKind
	Staker     *custodian.Address
	Collection *uint32
	TokenID    *big.Int
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

// Match reports whether ev satisfies every set field of c.
func (c *EventCriteria) Match(ev *Event) bool {
	if c.Kind != nil && *c.Kind != ev.Kind {
		return false
	}
	if c.Staker != nil && *c.Staker != ev.Staker {
		return false
	}
	if c.Collection != nil && *c.Collection != ev.Collection {
		return false
	}
	if c.TokenID != nil && (ev.TokenID == nil || c.TokenID.Cmp(ev.TokenID) != 0) {
		return false
	}
	return true
}
