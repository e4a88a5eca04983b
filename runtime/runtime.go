// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/builtin/nft"
	"github.com/vechain/custodian/builtin/staker"
	"github.com/vechain/custodian/builtin/staker/reverts"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/log"
	"github.com/vechain/custodian/logdb"
	"github.com/vechain/custodian/state"
)

var logger = log.WithContext("pkg", "runtime")

// eventQueueSize bounds the committed events waiting for subscribers. Beyond it events are
// dropped from the live stream; the event log still has them.
const eventQueueSize = 1024

// Clock returns the current unix time in seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Runtime serializes registry calls against one state.
// Every mutating call runs in its own checkpoint and is either reverted or committed to the store.
type Runtime struct {
	mu       sync.RWMutex
	state    *state.State
	logDB    *logdb.LogDB
	writer   logdb.Writer
	clock    Clock
	lastTime uint64

	feed      event.Feed
	scope     event.SubscriptionScope
	pending   chan *logdb.Event
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New create a Runtime object. logDB may be nil. Observed time never drops below since.
func New(st *state.State, logDB *logdb.LogDB, clock Clock, since uint64) *Runtime {
	rt := &Runtime{
		state:    st,
		logDB:    logDB,
		clock:    clock,
		lastTime: since,
		pending:  make(chan *logdb.Event, eventQueueSize),
		quit:     make(chan struct{}),
	}
	rt.wg.Add(1)
	go rt.dispatch()
	if logDB != nil {
		rt.writer = logDB.NewWriter()
	}
	return rt
}

// now must be called with the write lock held.
func (rt *Runtime) now() uint64 {
	rt.lastTime = max(rt.lastTime, rt.clock())
	return rt.lastTime
}

// LastTime returns the latest time a call was executed at.
func (rt *Runtime) LastTime() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.lastTime
}

// View runs fn against the committed state under the read lock. fn must not write.
func (rt *Runtime) View(fn func(st *state.State) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(rt.state)
}

// SubscribeEvents delivers every committed registry event to ch.
func (rt *Runtime) SubscribeEvents(ch chan<- *logdb.Event) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close ends all subscriptions and stops event delivery.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		rt.scope.Close()
		close(rt.quit)
		rt.wg.Wait()
	})
}

// dispatch hands queued events to subscribers in commit order, so a slow
// subscriber holds up delivery but never the calls producing events.
func (rt *Runtime) dispatch() {
	defer rt.wg.Done()
	for {
		select {
		case ev := <-rt.pending:
			rt.feed.Send(ev)
		case <-rt.quit:
			return
		}
	}
}

// publish must be called with the write lock held, which keeps the queue in commit order.
func (rt *Runtime) publish(ev *logdb.Event) {
	select {
	case rt.pending <- ev:
	default:
		logger.Warn("event queue full, dropping live event", "kind", ev.Kind, "seq", ev.Seq)
	}
}

// execute runs fn in a checkpoint, then commits the state and records the event fn returns.
func (rt *Runtime) execute(op string, fn func(st *state.State, now uint64) (*logdb.Event, error)) error {
	start := time.Now()
	err := rt.executeLocked(op, fn)

	result := "ok"
	if err != nil {
		result = "error"
		if reverts.IsRevertErr(err) {
			result = "revert"
		}
	}
	metricCallCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
	metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	return err
}

func (rt *Runtime) executeLocked(op string, fn func(st *state.State, now uint64) (*logdb.Event, error)) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := rt.now()
	cp := rt.state.NewCheckpoint()
	ev, err := fn(rt.state, now)
	if err != nil {
		rt.state.RevertTo(cp)
		return err
	}
	writes := rt.state.Changes()
	if err := rt.state.Commit(); err != nil {
		rt.state.RevertTo(cp)
		return errors.Wrap(err, "commit state")
	}

	logger.Debug("committed", "op", op, "writes", writes)

	if active, err := builtin.Staker.WithState(rt.state).ActivePositions(); err == nil {
		metricActivePositions().Set(int64(active))
	}

	if ev != nil && rt.writer != nil {
		if err := rt.writeEvent(ev); err != nil {
			logger.Warn("failed to write event", "op", op, "error", err)
		}
	}
	if ev != nil {
		rt.publish(ev)
	}
	return nil
}

func (rt *Runtime) writeEvent(ev *logdb.Event) error {
	if err := rt.writer.Write(ev); err != nil {
		_ = rt.writer.Rollback()
		return err
	}
	return rt.writer.Commit()
}

// Stake takes custody of the caller's token at the current time.
func (rt *Runtime) Stake(caller custodian.Address, tokenID *big.Int, collection uint32) (receiptID *big.Int, err error) {
	err = rt.execute("stake", func(st *state.State, now uint64) (*logdb.Event, error) {
		receiptID, err = builtin.Staker.WithState(st).Stake(caller, tokenID, collection, now)
		if err != nil {
			return nil, err
		}
		return &logdb.Event{
			Kind:       logdb.Staked,
			Time:       now,
			Staker:     caller,
			Collection: collection,
			TokenID:    tokenID,
			ReceiptID:  receiptID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return receiptID, nil
}

// Unstake returns the caller's token before the staking period ends.
func (rt *Runtime) Unstake(caller custodian.Address, tokenID *big.Int, collection uint32) error {
	return rt.execute("unstake", func(st *state.State, now uint64) (*logdb.Event, error) {
		s := builtin.Staker.WithState(st)
		pos, err := s.PositionInfo(collection, tokenID)
		if err != nil {
			return nil, err
		}
		if err := s.Unstake(caller, tokenID, collection, now); err != nil {
			return nil, err
		}
		return &logdb.Event{
			Kind:       logdb.Unstaked,
			Time:       now,
			Staker:     caller,
			Collection: collection,
			TokenID:    tokenID,
			ReceiptID:  pos.ReceiptID,
		}, nil
	})
}

// Claim returns the caller's token after the staking period and mints a reward.
func (rt *Runtime) Claim(caller custodian.Address, tokenID *big.Int, collection uint32) (rewardID *big.Int, err error) {
	err = rt.execute("claim", func(st *state.State, now uint64) (*logdb.Event, error) {
		s := builtin.Staker.WithState(st)
		pos, err := s.PositionInfo(collection, tokenID)
		if err != nil {
			return nil, err
		}
		if rewardID, err = s.Claim(caller, tokenID, collection, now); err != nil {
			return nil, err
		}
		return &logdb.Event{
			Kind:       logdb.Claimed,
			Time:       now,
			Staker:     caller,
			Collection: collection,
			TokenID:    tokenID,
			ReceiptID:  pos.ReceiptID,
			RewardID:   rewardID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return rewardID, nil
}

// Collection runs a mutating call against the collection at index.
func (rt *Runtime) Collection(op string, index uint32, fn func(col *nft.NFT) error) error {
	return rt.execute(op, func(st *state.State, _ uint64) (*logdb.Event, error) {
		addr, err := builtin.Staker.WithState(st).Collection(index)
		if err != nil {
			return nil, err
		}
		return nil, fn(builtin.Collection(addr).WithState(st))
	})
}

// Staker returns the registry bound to st, for use inside View.
func Staker(st *state.State) *staker.Staker {
	return builtin.Staker.WithState(st)
}
