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

// Package snapshot models the state of a vault system at one block.
package snapshot

import (
	"sort"
	"strings"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

var (
	// ErrUnknownKey is returned for keys a snapshot does not hold.
	ErrUnknownKey = errors.New("unknown snapshot key")
	// ErrUndefined is returned for the price per share of a vault without supply.
	ErrUndefined = errors.New("price per share is undefined")
)

const (
	SettTotalSupply       = "sett.totalSupply"
	SettBalance           = "sett.balance"
	SettAvailable         = "sett.available"
	SettPricePerFullShare = "sett.pricePerFullShare"
	SettShares            = "sett.shares"

	StrategyBalanceOf                = "strategy.balanceOf"
	StrategyBalanceOfPool            = "strategy.balanceOfPool"
	StrategyBalanceOfWant            = "strategy.balanceOfWant"
	StrategyWithdrawalFee            = "strategy.withdrawalFee"
	StrategyPerformanceFeeGovernance = "strategy.performanceFeeGovernance"
	StrategyPerformanceFeeStrategist = "strategy.performanceFeeStrategist"
)

// BalanceKey is the key of the balance of token held by entity.
func BalanceKey(token, entity string) string {
	return "balances." + token + "." + entity
}

// ShareKey is the key of the rebasing shares of token held by entity.
func ShareKey(token, entity string) string {
	return "shares." + token + "." + entity
}

// SettState holds the vault level fields.
type SettState struct {
	Balance     *uint256.Int
	Available   *uint256.Int
	TotalSupply *uint256.Int
	// PricePerFullShare is nil while the total supply is zero.
	PricePerFullShare *uint256.Int
	// Shares is nil unless the want token is rebasing.
	Shares *uint256.Int
}

// StrategyState holds the strategy level fields; fees are nil when not read.
type StrategyState struct {
	BalanceOf                *uint256.Int
	BalanceOfPool            *uint256.Int
	BalanceOfWant            *uint256.Int
	WithdrawalFee            *uint256.Int
	PerformanceFeeGovernance *uint256.Int
	PerformanceFeeStrategist *uint256.Int
}

// Snap is the immutable state of the tracked entities at one block.
type Snap struct {
	block    uint64
	time     uint64
	entities []string
	balances map[string]map[string]*uint256.Int
	shares   map[string]map[string]*uint256.Int
	sett     SettState
	strategy StrategyState
	extra    map[string]*uint256.Int
}

// Build routes the results of a multicall into a snapshot.
func Build(block, time uint64, entities []string, results multicall.Results) (*Snap, error) {
	s := &Snap{
		block:    block,
		time:     time,
		entities: append([]string(nil), entities...),
		balances: make(map[string]map[string]*uint256.Int),
		shares:   make(map[string]map[string]*uint256.Int),
		extra:    make(map[string]*uint256.Int),
	}
	sort.Strings(s.entities)

	for key := range results {
		value, err := results.Uint(key)
		if err != nil {
			return nil, err
		}
		section, rest, _ := strings.Cut(key, ".")
		switch section {
		case "balances", "shares":
			token, entity, found := strings.Cut(rest, ".")
			if !found {
				s.extra[key] = value
				continue
			}
			table := s.balances
			if section == "shares" {
				table = s.shares
			}
			if table[token] == nil {
				table[token] = make(map[string]*uint256.Int)
			}
			table[token][entity] = value
		case "sett", "strategy":
			if field := s.field(key); field != nil {
				*field = value
				continue
			}
			s.extra[key] = value
		default:
			s.extra[key] = value
		}
	}

	for _, key := range []string{SettTotalSupply, SettBalance, SettAvailable, StrategyBalanceOf, StrategyBalanceOfPool, StrategyBalanceOfWant} {
		if *s.field(key) == nil {
			return nil, errors.Wrapf(ErrUnknownKey, "missing %v", key)
		}
	}
	if s.sett.TotalSupply.IsZero() {
		s.sett.PricePerFullShare = nil
	}
	return s, nil
}

// field maps the typed fields to their keys.
func (s *Snap) field(key string) **uint256.Int {
	switch key {
	case SettTotalSupply:
		return &s.sett.TotalSupply
	case SettBalance:
		return &s.sett.Balance
	case SettAvailable:
		return &s.sett.Available
	case SettPricePerFullShare:
		return &s.sett.PricePerFullShare
	case SettShares:
		return &s.sett.Shares
	case StrategyBalanceOf:
		return &s.strategy.BalanceOf
	case StrategyBalanceOfPool:
		return &s.strategy.BalanceOfPool
	case StrategyBalanceOfWant:
		return &s.strategy.BalanceOfWant
	case StrategyWithdrawalFee:
		return &s.strategy.WithdrawalFee
	case StrategyPerformanceFeeGovernance:
		return &s.strategy.PerformanceFeeGovernance
	case StrategyPerformanceFeeStrategist:
		return &s.strategy.PerformanceFeeStrategist
	}
	return nil
}

func (s *Snap) Block() uint64 {
	return s.block
}

func (s *Snap) Time() uint64 {
	return s.time
}

// Entities lists the names of the entities tracked by this snapshot.
func (s *Snap) Entities() []string {
	return append([]string(nil), s.entities...)
}

func (s *Snap) Sett() SettState {
	return SettState{
		Balance:           clone(s.sett.Balance),
		Available:         clone(s.sett.Available),
		TotalSupply:       clone(s.sett.TotalSupply),
		PricePerFullShare: clone(s.sett.PricePerFullShare),
		Shares:            clone(s.sett.Shares),
	}
}

func (s *Snap) Strategy() StrategyState {
	return StrategyState{
		BalanceOf:                clone(s.strategy.BalanceOf),
		BalanceOfPool:            clone(s.strategy.BalanceOfPool),
		BalanceOfWant:            clone(s.strategy.BalanceOfWant),
		WithdrawalFee:            clone(s.strategy.WithdrawalFee),
		PerformanceFeeGovernance: clone(s.strategy.PerformanceFeeGovernance),
		PerformanceFeeStrategist: clone(s.strategy.PerformanceFeeStrategist),
	}
}

func (s *Snap) Balance(token, entity string) (*uint256.Int, error) {
	if v, found := s.balances[token][entity]; found {
		return clone(v), nil
	}
	return nil, errors.Wrapf(ErrUnknownKey, "%v", BalanceKey(token, entity))
}

func (s *Snap) Share(token, entity string) (*uint256.Int, error) {
	if v, found := s.shares[token][entity]; found {
		return clone(v), nil
	}
	return nil, errors.Wrapf(ErrUnknownKey, "%v", ShareKey(token, entity))
}

// PricePerShare returns ErrUndefined while the vault has no supply.
func (s *Snap) PricePerShare() (*uint256.Int, error) {
	if s.sett.PricePerFullShare == nil {
		return nil, ErrUndefined
	}
	return clone(s.sett.PricePerFullShare), nil
}

// Has reports whether the snapshot holds a value for key.
func (s *Snap) Has(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

// Get returns the value stored under a dotted key.
func (s *Snap) Get(key string) (*uint256.Int, error) {
	section, rest, _ := strings.Cut(key, ".")
	switch section {
	case "balances", "shares":
		token, entity, _ := strings.Cut(rest, ".")
		if section == "balances" {
			if v, found := s.balances[token][entity]; found {
				return clone(v), nil
			}
		} else if v, found := s.shares[token][entity]; found {
			return clone(v), nil
		}
	case "sett", "strategy":
		if field := s.field(key); field != nil && *field != nil {
			return clone(*field), nil
		}
	}
	if v, found := s.extra[key]; found {
		return clone(v), nil
	}
	return nil, errors.Wrapf(ErrUnknownKey, "%v", key)
}

// Keys lists all keys held by the snapshot in sorted order.
func (s *Snap) Keys() []string {
	var keys []string
	for token, holders := range s.balances {
		for entity := range holders {
			keys = append(keys, BalanceKey(token, entity))
		}
	}
	for token, holders := range s.shares {
		for entity := range holders {
			keys = append(keys, ShareKey(token, entity))
		}
	}
	for _, key := range []string{
		SettTotalSupply, SettBalance, SettAvailable, SettPricePerFullShare, SettShares,
		StrategyBalanceOf, StrategyBalanceOfPool, StrategyBalanceOfWant,
		StrategyWithdrawalFee, StrategyPerformanceFeeGovernance, StrategyPerformanceFeeStrategist,
	} {
		if *s.field(key) != nil {
			keys = append(keys, key)
		}
	}
	keys = append(keys, maps.Keys(s.extra)...)
	sort.Strings(keys)
	return keys
}

func clone(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return new(uint256.Int).Set(v)
}
