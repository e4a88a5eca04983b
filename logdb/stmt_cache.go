// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"sync"
)

// stmtCache keeps one prepared statement per distinct query text.
// Filter queries are built from a small set of shapes so the cache stays small.
type stmtCache struct {
	db    *sql.DB
	stmts sync.Map // string -> *sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db}
}

func (c *stmtCache) Prepare(query string) (*sql.Stmt, error) {
	if v, ok := c.stmts.Load(query); ok {
		return v.(*sql.Stmt), nil
	}
	stmt, err := c.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	if v, loaded := c.stmts.LoadOrStore(query, stmt); loaded {
		_ = stmt.Close()
		return v.(*sql.Stmt), nil
	}
	return stmt, nil
}

// MustPrepare is for the fixed queries, which are known to be valid.
func (c *stmtCache) MustPrepare(query string) *sql.Stmt {
	stmt, err := c.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

// Clear closes every cached statement.
func (c *stmtCache) Clear() {
	c.stmts.Range(func(k, v any) bool {
		_ = v.(*sql.Stmt).Close()
		c.stmts.Delete(k)
		return true
	})
}
