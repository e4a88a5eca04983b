// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/state"
)

// Genesis to build genesis state.
type Genesis struct {
	builder    *Builder
	id         custodian.Bytes32
	name       string
	launchTime uint64
}

// Build writes the genesis state and returns its root.
func (g *Genesis) Build(st *state.State) (custodian.Bytes32, error) {
	return g.builder.Build(st)
}

// ID returns genesis id.
func (g *Genesis) ID() custodian.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the earliest time the registry accepts calls at.
func (g *Genesis) LaunchTime() uint64 {
	return g.launchTime
}

func newGenesis(name string, launchTime uint64, builder *Builder) (*Genesis, error) {
	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name, launchTime}, nil
}
