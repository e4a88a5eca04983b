// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
)

// Reader defines the read side of the event log.
type Reader interface {
	// FilterEvents filters events based on the given criteria.
	FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error)

	// NewestSeq returns the sequence of the newest written event, 0 if none.
	NewestSeq() (uint64, error)
}

// Writer defines the interface for transactional event writing operations.
type Writer interface {
	// Write assigns sequences to the events and stages them.
	Write(events ...*Event) error

	// Commit commits accumulated events.
	Commit() error

	// Rollback rollbacks all uncommitted events.
	Rollback() error

	// UncommittedCount returns the count of uncommitted events.
	UncommittedCount() int
}
