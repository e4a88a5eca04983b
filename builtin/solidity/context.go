// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/state"
)

// Context binds storage helpers to one contract address.
type Context struct {
	address custodian.Address
	state   *state.State
}

func NewContext(address custodian.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() custodian.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
