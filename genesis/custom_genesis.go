// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/custodian/builtin"
	"github.com/vechain/custodian/custodian"
	"github.com/vechain/custodian/state"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	Name        string       `yaml:"name"`
	Symbol      string       `yaml:"symbol"`
	LaunchTime  uint64       `yaml:"launchTime"`
	Collections []Collection `yaml:"collections"`
	Tokens      []TokenAlloc `yaml:"tokens"`
}

// Collection is an in-state token collection created at genesis.
type Collection struct {
	Name    string             `yaml:"name"`
	Symbol  string             `yaml:"symbol"`
	Address *custodian.Address `yaml:"address"`
}

// TokenAlloc pre-mints tokens of one collection to an owner.
type TokenAlloc struct {
	Collection      uint32                  `yaml:"collection"`
	Owner           custodian.Address       `yaml:"owner"`
	IDs             []*math.HexOrDecimal256 `yaml:"ids"`
	ApproveRegistry bool                    `yaml:"approveRegistry"`
}

// ParseCustomGenesis decodes a YAML genesis document. Unknown fields are rejected.
func ParseCustomGenesis(data []byte) (*CustomGenesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen CustomGenesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// LoadCustomGenesis reads a YAML genesis file.
func LoadCustomGenesis(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return ParseCustomGenesis(data)
}

func (gen *CustomGenesis) collectionAddresses() []custodian.Address {
	addrs := make([]custodian.Address, 0, len(gen.Collections))
	for i, c := range gen.Collections {
		if c.Address != nil {
			addrs = append(addrs, *c.Address)
		} else {
			addrs = append(addrs, builtin.CollectionAddress(uint32(i)))
		}
	}
	return addrs
}

func (gen *CustomGenesis) validate() error {
	if gen.Name == "" || gen.Symbol == "" {
		return errors.New("name and symbol must be set")
	}
	if len(gen.Collections) == 0 {
		return errors.New("at least one collection is required")
	}
	seen := make(map[custodian.Address]bool)
	for i, addr := range gen.collectionAddresses() {
		if addr.IsZero() {
			return fmt.Errorf("collection %d: zero address", i)
		}
		if addr == builtin.Staker.Address {
			return fmt.Errorf("collection %d: address is reserved", i)
		}
		if seen[addr] {
			return fmt.Errorf("collection %d: duplicated address %v", i, addr)
		}
		seen[addr] = true
	}
	for i, alloc := range gen.Tokens {
		if int(alloc.Collection) >= len(gen.Collections) {
			return fmt.Errorf("tokens %d: unknown collection %d", i, alloc.Collection)
		}
		if alloc.Owner.IsZero() {
			return fmt.Errorf("tokens %d: owner must be set", i)
		}
		for _, id := range alloc.IDs {
			if id == nil {
				return fmt.Errorf("tokens %d: empty token id", i)
			}
		}
	}
	return nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if err := gen.validate(); err != nil {
		return nil, err
	}
	addrs := gen.collectionAddresses()

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(st *state.State) error {
			for i, c := range gen.Collections {
				if err := builtin.Collection(addrs[i]).WithState(st).SetMeta(c.Name, c.Symbol); err != nil {
					return errors.Wrapf(err, "collection %d", i)
				}
			}
			for _, alloc := range gen.Tokens {
				col := builtin.Collection(addrs[alloc.Collection]).WithState(st)
				for _, id := range alloc.IDs {
					if err := col.Mint(alloc.Owner, (*big.Int)(id)); err != nil {
						return errors.Wrapf(err, "mint %v to %v", (*big.Int)(id), alloc.Owner)
					}
				}
				if alloc.ApproveRegistry {
					if err := col.SetApprovalForAll(alloc.Owner, builtin.Staker.Address, true); err != nil {
						return err
					}
				}
			}
			return builtin.Staker.WithState(st).Initialize(gen.Name, gen.Symbol, addrs)
		})

	return newGenesis("customnet", gen.LaunchTime, builder)
}
