// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/custodian"
)

var (
	_ Reader = (*LogDB)(nil)
	_ Writer = (*writer)(nil)
)

const (
	memPath = ":memory:"

	insertEventQuery = "INSERT INTO event(seq, kind, time, staker, collection, tokenID, receiptID, rewardID) VALUES(?, ?, ?, ?, ?, ?, ?, ?)"
	newestSeqQuery   = "SELECT MAX(seq) FROM event"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path
	if path != memPath {
		dsn += "?_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()

	// the in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	// statements used while a writer holds the connection must be prepared up front
	sc := newStmtCache(db)
	for _, q := range []string{insertEventQuery, newestSeqQuery} {
		if _, err := sc.Prepare(q); err != nil {
			return nil, errors.Wrap(err, "prepare statement")
		}
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
		sc,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(memPath)
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ? "
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Kind != nil {
			args = append(args, string(*criteria.Kind))
			stmt += " AND kind = ? "
		}
		if criteria.Staker != nil {
			args = append(args, criteria.Staker.Bytes())
			stmt += " AND staker = ? "
		}
		if criteria.Collection != nil {
			args = append(args, *criteria.Collection)
			stmt += " AND collection = ? "
		}
		if criteria.TokenID != nil {
			args = append(args, idValue(criteria.TokenID))
			stmt += " AND tokenID = ? "
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

// NewestSeq returns the sequence of the newest written event, 0 if none.
func (db *LogDB) NewestSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := db.stmtCache.MustPrepare(newestSeqQuery).QueryRow().Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq        uint64
			kind       string
			time       uint64
			staker     []byte
			collection uint32
			tokenID    []byte
			receiptID  []byte
			rewardID   []byte
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&time,
			&staker,
			&collection,
			&tokenID,
			&receiptID,
			&rewardID,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:        seq,
			Kind:       EventKind(kind),
			Time:       time,
			Staker:     custodian.BytesToAddress(staker),
			Collection: collection,
			TokenID:    new(big.Int).SetBytes(tokenID),
			ReceiptID:  new(big.Int).SetBytes(receiptID),
		}
		if len(rewardID) > 0 {
			event.RewardID = new(big.Int).SetBytes(rewardID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// idValue encodes ids as fixed width blobs so that equality works on the column.
func idValue(id *big.Int) []byte {
	if id == nil {
		return nil
	}
	return math.PaddedBigBytes(id, 32)
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() Writer {
	return &writer{db: db}
}

type writer struct {
	db          *LogDB
	tx          *sql.Tx
	next        uint64
	uncommitted int
}

func (w *writer) Write(events ...*Event) error {
	if w.tx == nil {
		newest, err := w.db.NewestSeq()
		if err != nil {
			return err
		}
		tx, err := w.db.db.Begin()
		if err != nil {
			return err
		}
		w.tx = tx
		w.next = newest + 1
	}

	stmt := w.tx.Stmt(w.db.stmtCache.MustPrepare(insertEventQuery))
	for _, ev := range events {
		if !ev.Kind.Valid() {
			return errors.Errorf("invalid event kind %q", ev.Kind)
		}
		ev.Seq = w.next
		if _, err := stmt.Exec(
			ev.Seq,
			string(ev.Kind),
			ev.Time,
			ev.Staker.Bytes(),
			ev.Collection,
			idValue(ev.TokenID),
			idValue(ev.ReceiptID),
			idValue(ev.RewardID),
		); err != nil {
			return err
		}
		w.next++
		w.uncommitted++
	}
	return nil
}

func (w *writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	w.uncommitted = 0
	return err
}

func (w *writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback()
	w.tx = nil
	w.uncommitted = 0
	return err
}

func (w *writer) UncommittedCount() int {
	return w.uncommitted
}
