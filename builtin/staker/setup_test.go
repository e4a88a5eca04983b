// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/custodian/builtin/nft"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/state"
)

const launchTime = uint64(1_700_000_000)

var registryAddr = custodian.BytesToAddress([]byte("Staker"))

type testEnv struct {
	staker      *Staker
	state       *state.State
	collections []*nft.NFT
	overrides   map[custodian.Address]TokenRegistry
}

// newTestEnv creates an initialized registry over n in-state collections.
func newTestEnv(t *testing.T, n int) *testEnv {
	env := newUninitializedEnv(n)
	require.NoError(t, env.staker.Initialize("NFTStaking", "NSC", env.addresses()))
	return env
}

func newUninitializedEnv(n int) *testEnv {
	st := state.New(lvldb.NewMem(), 0)
	env := &testEnv{state: st, overrides: make(map[custodian.Address]TokenRegistry)}
	for i := range n {
		addr := custodian.BytesToAddress([]byte{'c', byte(i)})
		env.collections = append(env.collections, nft.New(addr, st))
	}
	env.staker = New(registryAddr, st, func(addr custodian.Address) TokenRegistry {
		if r, ok := env.overrides[addr]; ok {
			return r
		}
		return nft.New(addr, st)
	})
	return env
}

func (e *testEnv) addresses() []custodian.Address {
	addrs := make([]custodian.Address, 0, len(e.collections))
	for _, c := range e.collections {
		addrs = append(addrs, c.Address())
	}
	return addrs
}

// give mints the token to user and lets the registry move it.
func (e *testEnv) give(t *testing.T, user custodian.Address, collection uint32, tokenID int64) {
	c := e.collections[collection]
	require.NoError(t, c.Mint(user, big.NewInt(tokenID)))
	require.NoError(t, c.SetApprovalForAll(user, registryAddr, true))
}

func (e *testEnv) ownerOf(t *testing.T, collection uint32, tokenID int64) custodian.Address {
	owner, err := e.collections[collection].OwnerOf(big.NewInt(tokenID))
	require.NoError(t, err)
	return owner
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv
	now uint64

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env, now: launchTime}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

// At sets the time used by subsequent operations.
func (st *TestSequence) At(now uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.now = now
	})
}

// Advance moves the time of subsequent operations forward.
func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.now += seconds
	})
}

func (st *TestSequence) Give(user custodian.Address, collection uint32, tokenID int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.give(t, user, collection, tokenID)
	})
}

func (st *TestSequence) Stake(user custodian.Address, collection uint32, tokenID int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		id, err := st.env.staker.Stake(user, big.NewInt(tokenID), collection, st.now)
		if err != nil {
			t.Fatalf("failed to stake %d/%d for %s: %v", collection, tokenID, user, err)
		}
		t.Logf("staked %d/%d for %s, receipt %s", collection, tokenID, user, id)
	})
}

func (st *TestSequence) StakeErr(user custodian.Address, collection uint32, tokenID int64, expected error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		_, err := st.env.staker.Stake(user, big.NewInt(tokenID), collection, st.now)
		assert.ErrorIs(t, err, expected, "stake %d/%d", collection, tokenID)
	})
}

func (st *TestSequence) Unstake(user custodian.Address, collection uint32, tokenID int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.Unstake(user, big.NewInt(tokenID), collection, st.now); err != nil {
			t.Fatalf("failed to unstake %d/%d for %s: %v", collection, tokenID, user, err)
		}
		t.Logf("unstaked %d/%d for %s", collection, tokenID, user)
	})
}

func (st *TestSequence) UnstakeErr(user custodian.Address, collection uint32, tokenID int64, expected error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.env.staker.Unstake(user, big.NewInt(tokenID), collection, st.now)
		assert.ErrorIs(t, err, expected, "unstake %d/%d", collection, tokenID)
	})
}

func (st *TestSequence) Claim(user custodian.Address, collection uint32, tokenID int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		id, err := st.env.staker.Claim(user, big.NewInt(tokenID), collection, st.now)
		if err != nil {
			t.Fatalf("failed to claim %d/%d for %s: %v", collection, tokenID, user, err)
		}
		t.Logf("claimed %d/%d for %s, reward %s", collection, tokenID, user, id)
	})
}

func (st *TestSequence) ClaimErr(user custodian.Address, collection uint32, tokenID int64, expected error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		_, err := st.env.staker.Claim(user, big.NewInt(tokenID), collection, st.now)
		assert.ErrorIs(t, err, expected, "claim %d/%d", collection, tokenID)
	})
}

func (st *TestSequence) Assert(pa *PositionAssertions) *TestSequence {
	return st.AddFunc(pa.Assert)
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type PositionAssertions struct {
	env        *testEnv
	collection uint32
	tokenID    int64

	staked     *bool
	active     *bool
	claimed    *bool
	staker     *custodian.Address
	endTime    *uint64
	receiptID  *int64
	tokenOwner *custodian.Address
}

func AssertPosition(env *testEnv, collection uint32, tokenID int64) *PositionAssertions {
	return &PositionAssertions{env: env, collection: collection, tokenID: tokenID}
}

func (pa *PositionAssertions) Staked(expected bool) *PositionAssertions {
	pa.staked = &expected
	return pa
}

func (pa *PositionAssertions) Active(expected bool) *PositionAssertions {
	pa.active = &expected
	return pa
}

func (pa *PositionAssertions) Claimed(expected bool) *PositionAssertions {
	pa.claimed = &expected
	return pa
}

func (pa *PositionAssertions) Staker(expected custodian.Address) *PositionAssertions {
	pa.staker = &expected
	return pa
}

func (pa *PositionAssertions) EndTime(expected uint64) *PositionAssertions {
	pa.endTime = &expected
	return pa
}

func (pa *PositionAssertions) ReceiptID(expected int64) *PositionAssertions {
	pa.receiptID = &expected
	return pa
}

// TokenOwner checks the owner recorded by the external collection.
func (pa *PositionAssertions) TokenOwner(expected custodian.Address) *PositionAssertions {
	pa.tokenOwner = &expected
	return pa
}

func (pa *PositionAssertions) Assert(t *testing.T) {
	id := big.NewInt(pa.tokenID)
	name := positionName(pa.collection, pa.tokenID)

	if pa.staked != nil {
		staked, err := pa.env.staker.IsStaked(pa.collection, id)
		require.NoError(t, err)
		assert.Equal(t, *pa.staked, staked, "position %s staked mismatch", name)
	}

	info, err := pa.env.staker.PositionInfo(pa.collection, id)
	require.NoError(t, err, "failed to get position %s", name)

	if pa.active != nil {
		assert.Equal(t, *pa.active, info.Active, "position %s active mismatch", name)
	}
	if pa.claimed != nil {
		assert.Equal(t, *pa.claimed, info.Claimed, "position %s claimed mismatch", name)
	}
	if pa.staker != nil {
		assert.Equal(t, *pa.staker, info.Staker, "position %s staker mismatch", name)
	}
	if pa.endTime != nil {
		assert.Equal(t, *pa.endTime, info.EndTime, "position %s end time mismatch", name)
	}
	if pa.receiptID != nil {
		assert.Equal(t, *pa.receiptID, info.ReceiptID.Int64(), "position %s receipt mismatch", name)
	}
	if pa.tokenOwner != nil {
		assert.Equal(t, *pa.tokenOwner, pa.env.ownerOf(t, pa.collection, pa.tokenID), "position %s token owner mismatch", name)
	}
}

func positionName(collection uint32, tokenID int64) string {
	return big.NewInt(int64(collection)).String() + "/" + big.NewInt(tokenID).String()
}

// stubRegistry is a collection whose ownership never changes and whose transfers can be made to fail.
type stubRegistry struct {
	owners      map[int64]custodian.Address
	transferErr error
	transfers   int
}

func (r *stubRegistry) OwnerOf(tokenID *big.Int) (custodian.Address, error) {
	return r.owners[tokenID.Int64()], nil
}

func (r *stubRegistry) TransferFrom(_, _, _ custodian.Address, _ *big.Int) error {
	if r.transferErr != nil {
		return r.transferErr
	}
	r.transfers++
	return nil
}
