// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/api/utils"
	"github.com/vechain/custodian/logdb"
)

type Events struct {
	db    logdb.Reader
	limit uint64
}

func New(db logdb.Reader, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// filter query events with option
func (e *Events) filter(ctx context.Context, ef *EventFilter) ([]*FilteredEvent, error) {
	filter, err := ConvertEventFilter(ef)
	if err != nil {
		return nil, utils.BadRequest(err)
	}
	events, err := e.db.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = ConvertEvent(ev)
	}
	return fes, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Range != nil && filter.Range.From != nil {
		if *filter.Range.From > math.MaxInt64 {
			return utils.BadRequest(fmt.Errorf("range.from exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
		}
		if filter.Range.To != nil && *filter.Range.From > *filter.Range.To {
			return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
		}
	}
	// {} is a match-all criteria, null is rejected
	for i, criteria := range filter.CriteriaSet {
		if criteria == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// one more than the limit tells whether the result was cut
		filter.Options = &Options{
			Offset: 0,
			Limit:  e.limit + 1,
		}
	}

	fes, err := e.filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if uint64(len(fes)) > e.limit {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return utils.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
