// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testnet runs the dev genesis on in-memory stores for tests.
package testnet

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/genesis"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/runtime"
	"github.com/vechain/custodian/state"
)

// Clock is a manually driven runtime clock.
type Clock struct {
	mu  sync.Mutex
	now uint64
}

func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by secs.
func (c *Clock) Advance(secs uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += secs
}

type Net struct {
	*runtime.Runtime
	Clock   *Clock
	DB      *lvldb.LevelDB
	LogDB   *logdb.LogDB
	Genesis *genesis.Genesis
}

// New builds the dev genesis and a runtime over it. Everything is released when t ends.
func New(t testing.TB) *Net {
	db := lvldb.NewMem()
	gen := genesis.NewDevnet()
	st := state.New(db, 0)
	_, err := gen.Build(st)
	require.NoError(t, err)

	logDB, err := logdb.NewMem()
	require.NoError(t, err)

	clock := &Clock{now: gen.LaunchTime()}
	rt := runtime.New(st, logDB, clock.Now, gen.LaunchTime())
	t.Cleanup(func() {
		rt.Close()
		logDB.Close()
		db.Close()
	})
	return &Net{
		Runtime: rt,
		Clock:   clock,
		DB:      db,
		LogDB:   logDB,
		Genesis: gen,
	}
}
