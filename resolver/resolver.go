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

// Package resolver provides the per strategy family knowledge of the
// simulator: which values to read into a snapshot and which invariants
// must hold across every operation.
package resolver

import (
	"context"
	"sort"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

var (
	// ErrUnknownStrategy is returned for a strategy kind without resolver.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvariant marks every violated invariant.
	ErrInvariant = errors.New("invariant violated")
	// ErrNotSpecified is returned by checks which are not defined for a strategy family.
	ErrNotSpecified = errors.New("invariant not specified")
)

// DefaultUser is the entity name of the acting user.
const DefaultUser = "user"

// System lists the entities a resolver reads from.
type System struct {
	Sett       common.Address
	Strategy   common.Address
	Controller common.Address
	Want       common.Address
	Reader     state.Substrate
}

// Params describes the operation being confirmed.
type Params struct {
	// User is the entity name of the acting user.
	User    string
	Amount  *uint256.Int
	Shares  *uint256.Int
	Receipt *state.Receipt
	// Value is the oracle value of a rebase.
	Value *uint256.Int
}

func (p Params) user() string {
	if p.User == "" {
		return DefaultUser
	}
	return p.User
}

//go:generate mockgen -source resolver.go -destination resolver_mock.go -package resolver

// Resolver knows what to read and what to check for one strategy family.
type Resolver interface {
	// Kind returns the strategy family name.
	Kind() string
	// Destinations returns the external entities the strategy moves funds to.
	Destinations(ctx context.Context) (map[string]common.Address, error)
	BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error)
	SettRequests(ctx context.Context) ([]multicall.Request, error)
	StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error)

	ConfirmDeposit(before, after *snapshot.Snap, p Params) error
	ConfirmWithdraw(before, after *snapshot.Snap, p Params) error
	ConfirmEarn(before, after *snapshot.Snap, p Params) error
	ConfirmTend(before, after *snapshot.Snap, p Params) error
	ConfirmHarvest(before, after *snapshot.Snap, p Params) error
	ConfirmRebase(before, after *snapshot.Snap, p Params) error
	ConfirmMigrate(before, after *snapshot.Snap, p Params) error
}

var families = map[string]func(*core) Resolver{
	"StrategyBadgerRewards":    func(c *core) Resolver { return &badgerRewards{c} },
	"StrategyBadgerLpMetaFarm": func(c *core) Resolver { return &badgerLpMetaFarm{badgerRewards{c}} },
	"StrategyUniGenericLp":     func(c *core) Resolver { return &badgerLpMetaFarm{badgerRewards{c}} },

	"StrategyHarvestMetaFarm": func(c *core) Resolver { return &harvestMetaFarm{c} },
	"StrategyPickleMetaFarm":  func(c *core) Resolver { return &pickleMetaFarm{c} },

	"StrategyCurveGauge":          func(c *core) Resolver { return &curveGauge{c} },
	"StrategyCurveGaugeRenBtcCrv": func(c *core) Resolver { return &curveGauge{c} },
	"StrategyCurveGaugeSbtcCrv":   func(c *core) Resolver { return &curveGauge{c} },
	"StrategyCurveGaugeTbtcCrv":   func(c *core) Resolver { return &curveGauge{c} },
	"StrategyCurveGaugex":         func(c *core) Resolver { return &curveGauge{c} },

	"StrategyBaseSushi":                func(c *core) Resolver { return &sushi{core: c} },
	"StrategySushiLpOptimizer":         func(c *core) Resolver { return &sushi{core: c} },
	"StrategySushiBadgerLpOptimizer":   func(c *core) Resolver { return &sushi{core: c} },
	"StrategySushiBadgerWbtc":          func(c *core) Resolver { return &sushi{core: c, geyser: true} },
	"StrategySushiDiggWbtcLpOptimizer": func(c *core) Resolver { return &sushi{core: c, digg: true} },

	"StrategyDiggRewards":     func(c *core) Resolver { return &diggRewards{c} },
	"StrategyDiggLpMetaFarm":  func(c *core) Resolver { return &diggLpMetaFarm{c} },
	"StabilizeStrategyDiggV1": func(c *core) Resolver { return &stabilizeDigg{c} },

	"StrategyPancakeLpOptimizer": func(c *core) Resolver { return &pancake{c} },

	"StrategyConvexStakingOptimizer": func(c *core) Resolver { return &convexStakingOptimizer{c} },
}

// New returns the resolver of the given strategy family.
func New(kind string, sys System) (Resolver, error) {
	family, found := families[kind]
	if !found {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%v", kind)
	}
	if sys.Reader == nil {
		return nil, errors.New("resolver needs a state reader")
	}
	return family(newCore(kind, sys)), nil
}

// Kinds lists all strategy families with a resolver.
func Kinds() []string {
	kinds := maps.Keys(families)
	sort.Strings(kinds)
	return kinds
}
