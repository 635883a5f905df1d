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

package state

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// VaultSpec configures a vault, its controller, strategy and reward source.
type VaultSpec struct {
	Kind string
	Want common.Address

	Governance common.Address
	Strategist common.Address
	Keeper     common.Address
	Rewards    common.Address
	BadgerTree common.Address

	// RewardToken is paid out by the reward source; no source is deployed when zero.
	RewardToken  common.Address
	RewardRate   *uint256.Int
	RewardBudget *uint256.Int
	// PoolName is the strategy getter exposing the reward source.
	PoolName string
	// Stake makes the strategy stake want in the reward source; otherwise
	// the source is a faucet dripping rewards to the strategy.
	Stake    bool
	Tendable bool

	WithdrawalFee            uint64
	PerformanceFeeGovernance uint64
	PerformanceFeeStrategist uint64

	// Addresses are exposed as additional strategy getters, e.g. "digg".
	Addresses map[string]common.Address
}

// Vault lists the entities created by DeployVault.
type Vault struct {
	Sett       common.Address
	Strategy   common.Address
	Controller common.Address
	Pool       common.Address
}

// RebaseSpec configures the rebase machinery of a rebasing token.
type RebaseSpec struct {
	Token        common.Address
	Owner        common.Address
	WindowOffset uint64
	WindowLength uint64
	Interval     uint64
	ReportDelay  uint64
}

// Rebase lists the entities created by DeployRebase.
type Rebase struct {
	Oracle       common.Address
	Orchestrator common.Address
}

func (m *MemorySubstrate) DeployToken(name string, decimals uint8) common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deploy(newErc20(name, decimals))
}

// DeployRebasingToken creates a rebasing token whose whole supply belongs to holder.
func (m *MemorySubstrate) DeployRebasingToken(name string, decimals uint8, supply *uint256.Int, holder common.Address) common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deploy(newRebasingToken(name, decimals, supply, holder))
}

// Mint credits a plain token to an account.
func (m *MemorySubstrate) Mint(token, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := lookup[*erc20](m, token)
	if err != nil {
		return err
	}
	t.mint(to, amount)
	return nil
}

func (m *MemorySubstrate) DeployVault(spec VaultSpec) (Vault, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := lookup[fungible](m, spec.Want); err != nil {
		return Vault{}, errors.Wrap(err, "invalid want")
	}
	if spec.Kind == "" {
		return Vault{}, errors.New("strategy kind must be set")
	}
	poolName := spec.PoolName
	if poolName == "" {
		poolName = "geyser"
	}

	var v Vault
	v.Controller = m.deploy(&controller{
		rewards:    spec.Rewards,
		governance: spec.Governance,
		strategies: make(map[common.Address]common.Address),
		vaults:     make(map[common.Address]common.Address),
	})
	v.Sett = m.deploy(&sett{
		shares:     newErc20("b"+spec.Kind, 18),
		want:       spec.Want,
		controller: v.Controller,
		governance: spec.Governance,
		keeper:     spec.Keeper,
		min:        9_500,
		max:        maxBps,
	})

	if spec.RewardToken != (common.Address{}) {
		reward, err := lookup[fungible](m, spec.RewardToken)
		if err != nil {
			return Vault{}, errors.Wrap(err, "invalid reward token")
		}
		rate := new(uint256.Int)
		if spec.RewardRate != nil {
			rate.Set(spec.RewardRate)
		}
		pool := &stakingPool{
			rewardToken: spec.RewardToken,
			rate:        rate,
			lastUpdate:  m.time,
			total:       new(uint256.Int),
			staked:      make(map[common.Address]*uint256.Int),
			accrued:     make(map[common.Address]*uint256.Int),
		}
		if spec.Stake {
			pool.stakingToken = spec.Want
		}
		v.Pool = m.deploy(pool)
		pool.self = v.Pool
		if spec.RewardBudget != nil && !spec.RewardBudget.IsZero() {
			plain, ok := reward.(*erc20)
			if !ok {
				return Vault{}, errors.New("reward budget can only be minted for plain tokens")
			}
			plain.mint(v.Pool, spec.RewardBudget)
		}
	} else if spec.Stake {
		return Vault{}, errors.New("a staking strategy needs a reward source")
	}

	addresses := make(map[string]common.Address, len(spec.Addresses))
	for k, a := range spec.Addresses {
		addresses[k] = a
	}
	strat := &strategy{
		kind:                     spec.Kind,
		want:                     spec.Want,
		controller:               v.Controller,
		governance:               spec.Governance,
		strategist:               spec.Strategist,
		keeper:                   spec.Keeper,
		badgerTree:               spec.BadgerTree,
		pool:                     v.Pool,
		poolName:                 poolName,
		stake:                    spec.Stake,
		tendable:                 spec.Tendable,
		withdrawalFee:            spec.WithdrawalFee,
		performanceFeeGovernance: spec.PerformanceFeeGovernance,
		performanceFeeStrategist: spec.PerformanceFeeStrategist,
		addresses:                addresses,
	}
	v.Strategy = m.deploy(strat)
	strat.self = v.Strategy
	if !spec.Stake && v.Pool != (common.Address{}) {
		m.contracts[v.Pool].(*stakingPool).beneficiary = v.Strategy
	}

	ctrl := m.contracts[v.Controller].(*controller)
	ctrl.strategies[spec.Want] = v.Strategy
	ctrl.vaults[spec.Want] = v.Sett
	return v, nil
}

func (m *MemorySubstrate) DeployRebase(spec RebaseSpec) (Rebase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := lookup[*rebasingToken](m, spec.Token)
	if err != nil {
		return Rebase{}, err
	}
	if spec.Interval == 0 || spec.WindowOffset+spec.WindowLength > spec.Interval {
		return Rebase{}, errors.Newf("rebase window [%d, %d) does not fit the interval %d",
			spec.WindowOffset, spec.WindowOffset+spec.WindowLength, spec.Interval)
	}
	var r Rebase
	r.Oracle = m.deploy(&oracle{reportDelay: spec.ReportDelay})
	r.Orchestrator = m.deploy(&orchestrator{
		token:        spec.Token,
		oracle:       r.Oracle,
		owner:        spec.Owner,
		windowOffset: spec.WindowOffset,
		windowLength: spec.WindowLength,
		interval:     spec.Interval,
	})
	token.monetaryPolicy = r.Orchestrator
	return r, nil
}

func (m *MemorySubstrate) DeployRouter() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deploy(&router{pairs: make(map[[2]common.Address]common.Address)})
}

// CreatePair registers a liquidity pair with the router and returns its LP token.
func (m *MemorySubstrate) CreatePair(routerAddr, tokenA, tokenB common.Address) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := lookup[*router](m, routerAddr)
	if err != nil {
		return common.Address{}, err
	}
	for _, t := range []common.Address{tokenA, tokenB} {
		if _, err := lookup[fungible](m, t); err != nil {
			return common.Address{}, err
		}
	}
	key := pairKey(tokenA, tokenB)
	if pair, ok := r.pairs[key]; ok {
		return pair, nil
	}
	pair := m.deploy(newErc20("LP", 18))
	r.pairs[key] = pair
	return pair, nil
}
