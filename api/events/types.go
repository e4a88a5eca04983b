// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/logdb"
)

type EventCriteria struct {
	Kind       *string            `json:"kind"`
	Staker     *custodian.Address `json:"staker"`
	Collection *uint32            `json:"collection"`
	TokenID    *string            `json:"tokenId"`
}

// Range is an inclusive range of unix seconds. A missing bound is open.
type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type FilteredEvent struct {
	Seq        uint64            `json:"seq"`
	Kind       logdb.EventKind   `json:"kind"`
	Time       uint64            `json:"time"`
	Staker     custodian.Address `json:"staker"`
	Collection uint32            `json:"collection"`
	TokenID    string            `json:"tokenId"`
	ReceiptID  string            `json:"receiptId"`
	RewardID   string            `json:"rewardId,omitempty"`
}

// ConvertEvent renders a stored event.
func ConvertEvent(ev *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Seq:        ev.Seq,
		Kind:       ev.Kind,
		Time:       ev.Time,
		Staker:     ev.Staker,
		Collection: ev.Collection,
		TokenID:    ev.TokenID.String(),
		ReceiptID:  ev.ReceiptID.String(),
	}
	if ev.RewardID != nil {
		fe.RewardID = ev.RewardID.String()
	}
	return fe
}

func convertCriteria(c *EventCriteria) (*logdb.EventCriteria, error) {
	criteria := &logdb.EventCriteria{
		Staker:     c.Staker,
		Collection: c.Collection,
	}
	if c.Kind != nil {
		kind := logdb.EventKind(*c.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown kind %q", *c.Kind)
		}
		criteria.Kind = &kind
	}
	if c.TokenID != nil {
		id, err := utils.ParseTokenID(*c.TokenID)
		if err != nil {
			return nil, errors.WithMessage(err, "tokenId")
		}
		criteria.TokenID = id
	}
	return criteria, nil
}

// ConvertEventFilter validates f and turns it into a log db query.
func ConvertEventFilter(f *EventFilter) (*logdb.EventFilter, error) {
	filter := &logdb.EventFilter{
		Order: f.Order,
	}
	switch f.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, fmt.Errorf("order: unknown value %q", f.Order)
	}

	for i, c := range f.CriteriaSet {
		criteria, err := convertCriteria(c)
		if err != nil {
			return nil, errors.WithMessagef(err, "criteriaSet[%d]", i)
		}
		filter.CriteriaSet = append(filter.CriteriaSet, criteria)
	}

	if f.Range != nil && (f.Range.From != nil || f.Range.To != nil) {
		r := &logdb.Range{To: math.MaxInt64}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = min(*f.Range.To, math.MaxInt64)
		}
		filter.Range = r
	}

	if f.Options != nil {
		filter.Options = &logdb.Options{
			Offset: f.Options.Offset,
			Limit:  f.Options.Limit,
		}
	}
	return filter, nil
}
