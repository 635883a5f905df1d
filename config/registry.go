// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Registry describes a deployed system hosting one or more setts.
type Registry struct {
	Deployer common.Address            `yaml:"deployer"`
	Accounts []common.Address          `yaml:"accounts"`
	Tokens   map[string]common.Address `yaml:"tokens"`
	Setts    map[string]SettEntry      `yaml:"setts"`
}

// SettEntry lists the entities of one sett.
type SettEntry struct {
	Sett           common.Address `yaml:"sett"`
	Strategy       common.Address `yaml:"strategy"`
	Kind           string         `yaml:"kind"`
	SettKeeper     common.Address `yaml:"settKeeper"`
	StrategyKeeper common.Address `yaml:"strategyKeeper"`
	Router         common.Address `yaml:"router"`

	// Whales maps a token name of Registry.Tokens, or "want", to a rich holder.
	Whales map[string]common.Address `yaml:"whales"`
	// Pair names the two tokens an lp provisioner adds liquidity with.
	Pair []string   `yaml:"pair"`
	Digg *DiggEntry `yaml:"digg"`
}

// DiggEntry lists the rebase machinery of a rebasing want.
type DiggEntry struct {
	Token        common.Address `yaml:"token"`
	Orchestrator common.Address `yaml:"orchestrator"`
	Oracle       common.Address `yaml:"oracle"`
	Owner        common.Address `yaml:"owner"`
}

// LoadRegistry reads and validates a registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read registry %v", path)
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*Registry, error) {
	r := new(Registry)
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, errors.Wrap(err, "cannot parse registry")
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) validate() error {
	if len(r.Accounts) == 0 {
		return errors.New("registry: accounts must not be empty")
	}
	for id, s := range r.Setts {
		if s.Sett == (common.Address{}) {
			return errors.Newf("registry: setts.%v.sett is missing", id)
		}
		if s.Strategy == (common.Address{}) {
			return errors.Newf("registry: setts.%v.strategy is missing", id)
		}
		if len(s.Pair) != 0 && len(s.Pair) != 2 {
			return errors.Newf("registry: setts.%v.pair must name two tokens", id)
		}
		for _, name := range s.Pair {
			if _, found := r.Tokens[name]; !found {
				return errors.Newf("registry: setts.%v.pair names unknown token %v", id, name)
			}
		}
		for name := range s.Whales {
			if _, found := r.Tokens[name]; !found && name != "want" {
				return errors.Newf("registry: setts.%v.whales names unknown token %v", id, name)
			}
		}
	}
	return nil
}

// Sett returns the entry of the given sett.
func (r *Registry) Sett(id string) (SettEntry, error) {
	s, found := r.Setts[id]
	if !found {
		return SettEntry{}, errors.Newf("registry has no sett %q", id)
	}
	return s, nil
}
