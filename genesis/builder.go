// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/lvldb"
	"github.com/vechain/custodian/state"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64

	stateProcs []func(state *state.State) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (custodian.Bytes32, error) {
	db := lvldb.NewMem()
	defer db.Close()

	return b.Build(state.New(db, 0))
}

// Build runs the state processes, commits and returns the resulting state root.
func (b *Builder) Build(st *state.State) (custodian.Bytes32, error) {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return custodian.Bytes32{}, errors.Wrap(err, "state process")
		}
	}
	if err := st.Commit(); err != nil {
		return custodian.Bytes32{}, errors.Wrap(err, "commit state")
	}
	return st.Root()
}
