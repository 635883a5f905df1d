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

package main

import (
	"context"

	"github.com/0xsoniclabs/aida-sett/config"
	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/simulation"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/0xsoniclabs/aida-sett/state/proxy"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Kinds of the demo systems hosted by the memory substrate.
const (
	demoRewardsKind = "StrategyBadgerRewards"
	demoDiggKind    = "StrategyDiggRewards"
)

// system is the vault under test together with the accounts acting on it.
type system struct {
	sub      state.Substrate
	counter  *proxy.CounterSubstrate
	sett     common.Address
	strategy common.Address
	kind     string
	digg     *sett.Digg
	setup    simulation.Setup
}

// openSystem connects to the substrate selected by cfg. Every operation
// goes through a counting proxy wrapping a logging proxy.
func openSystem(ctx context.Context, cfg *config.Config, log logger.Logger) (*system, error) {
	var (
		sys *system
		err error
	)
	switch cfg.Substrate {
	case config.MemorySubstrate:
		sys, err = newMemorySystem(cfg)
	case config.RpcSubstrate:
		sys, err = newRpcSystem(ctx, cfg)
	default:
		err = errors.Newf("unknown substrate %q", cfg.Substrate)
	}
	if err != nil {
		return nil, err
	}
	sys.counter = proxy.NewCounterProxy(proxy.NewLoggerProxy(sys.sub, logger.NewLogger(cfg.LogLevel, "substrate")))
	sys.sub = sys.counter
	sys.setup.Sub = sys.counter
	log.Infof("opened %v substrate hosting sett %v", cfg.Substrate, sys.sett.Hex())
	return sys, nil
}

// settOptions configures the snapshot manager of the system.
func (s *system) settOptions(cfg *config.Config) []sett.Option {
	opts := []sett.Option{sett.WithConfirm(cfg.Confirm)}
	if s.kind != "" {
		opts = append(opts, sett.WithKind(s.kind))
	}
	if s.digg != nil {
		opts = append(opts, sett.WithDigg(*s.digg))
	}
	return opts
}

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

// newMemorySystem deploys a demo vault of the configured kind into a fresh
// memory substrate.
func newMemorySystem(cfg *config.Config) (*system, error) {
	kind := cfg.StrategyKind
	if kind == "" {
		kind = demoRewardsKind
	}
	mem := state.NewMemorySubstrate(1, 1_600_000_000)
	keeper := mem.NewAccount()
	deployer := mem.NewAccount()
	spec := state.VaultSpec{
		Kind:                     kind,
		Governance:               mem.NewAccount(),
		Strategist:               mem.NewAccount(),
		Keeper:                   keeper,
		Rewards:                  mem.NewAccount(),
		BadgerTree:               mem.NewAccount(),
		WithdrawalFee:            50,
		PerformanceFeeGovernance: 1_000,
	}
	sys := &system{sub: mem}

	switch kind {
	case demoRewardsKind:
		want := mem.DeployToken("BADGER", 18)
		whale := mem.NewAccount()
		if err := mem.Mint(want, whale, ether(1_000_000)); err != nil {
			return nil, err
		}
		spec.Want = want
		spec.RewardToken = want
		spec.RewardRate = uint256.NewInt(1_000_000_000)
		spec.RewardBudget = ether(1_000)
		spec.Stake = true
		sys.setup.Whales = map[common.Address]common.Address{want: whale}
	case demoDiggKind:
		digg := mem.DeployRebasingToken("DIGG", 9, uint256.NewInt(4_000_000_000_000_000), deployer)
		policy, err := mem.DeployRebase(state.RebaseSpec{
			Token:        digg,
			Owner:        deployer,
			WindowOffset: 7200,
			WindowLength: 1200,
			Interval:     86400,
			ReportDelay:  100,
		})
		if err != nil {
			return nil, err
		}
		spec.Want = digg
		spec.RewardToken = digg
		spec.PoolName = "diggFaucet"
		sys.digg = &sett.Digg{Orchestrator: policy.Orchestrator, Oracle: policy.Oracle, Owner: deployer}
		sys.setup.DiggToken = digg
	default:
		return nil, errors.Newf("the %v substrate hosts %v or %v, not %v", config.MemorySubstrate, demoRewardsKind, demoDiggKind, kind)
	}

	vault, err := mem.DeployVault(spec)
	if err != nil {
		return nil, errors.Wrap(err, "cannot deploy the demo vault")
	}
	sys.sett = vault.Sett
	sys.strategy = vault.Strategy
	sys.kind = kind
	sys.setup.Deployer = deployer
	sys.setup.SettKeeper = keeper
	sys.setup.StrategyKeeper = keeper
	for range 2 * cfg.NumUsers {
		sys.setup.Accounts = append(sys.setup.Accounts, mem.NewAccount())
	}
	return sys, nil
}

// newRpcSystem locates the configured sett of the registry on a development fork.
func newRpcSystem(ctx context.Context, cfg *config.Config) (*system, error) {
	registry, err := config.LoadRegistry(cfg.Registry)
	if err != nil {
		return nil, err
	}
	entry, err := registry.Sett(cfg.SettId)
	if err != nil {
		return nil, err
	}
	sub, err := state.DialRpcSubstrate(ctx, cfg.RpcUrl, state.WithImpersonationPrefix(cfg.Impersonation))
	if err != nil {
		return nil, err
	}

	kind := cfg.StrategyKind
	if kind == "" {
		kind = entry.Kind
	}
	sys := &system{
		sub:      sub,
		sett:     entry.Sett,
		strategy: entry.Strategy,
		kind:     kind,
		setup: simulation.Setup{
			Accounts:       registry.Accounts,
			Deployer:       registry.Deployer,
			SettKeeper:     entry.SettKeeper,
			StrategyKeeper: entry.StrategyKeeper,
			Router:         entry.Router,
			Whales:         make(map[common.Address]common.Address),
		},
	}
	if err := sys.resolveTokens(ctx, registry, entry); err != nil {
		_ = sub.Close()
		return nil, err
	}
	if entry.Digg != nil {
		sys.digg = &sett.Digg{Orchestrator: entry.Digg.Orchestrator, Oracle: entry.Digg.Oracle, Owner: entry.Digg.Owner}
		sys.setup.DiggToken = entry.Digg.Token
	}
	return sys, nil
}

// resolveTokens maps the token names of the registry to addresses; "want"
// names the token of the vault.
func (s *system) resolveTokens(ctx context.Context, registry *config.Registry, entry config.SettEntry) error {
	var want common.Address
	if _, found := entry.Whales["want"]; found {
		v, err := s.sub.Read(ctx, state.Call{Target: entry.Sett, Method: "token()"})
		if err != nil {
			return errors.Wrap(err, "cannot read the want of the vault")
		}
		if want, err = v.Address(); err != nil {
			return err
		}
	}
	for name, holder := range entry.Whales {
		token := want
		if name != "want" {
			token = registry.Tokens[name]
		}
		s.setup.Whales[token] = holder
	}
	for i, name := range entry.Pair {
		s.setup.Pair[i] = registry.Tokens[name]
	}
	return nil
}
