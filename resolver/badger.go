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

package resolver

import (
	"context"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/ethereum/go-ethereum/common"
)

// badgerRewards stakes want in a staking rewards contract exposed as geyser.
type badgerRewards struct {
	*core
}

func (r *badgerRewards) Destinations(ctx context.Context) (map[string]common.Address, error) {
	geyser, err := r.strategyAddress(ctx, "geyser")
	if err != nil {
		return nil, err
	}
	return map[string]common.Address{"stakingRewards": geyser}, nil
}

func (r *badgerRewards) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	geyser, err := r.strategyAddress(ctx, "geyser")
	if err != nil {
		return nil, err
	}
	return append(reqs,
		r.positionRead("stakingRewards.staked", geyser, "balanceOf(address)"),
		r.positionRead("stakingRewards.earned", geyser, "earned(address)"),
	), nil
}

func (r *badgerRewards) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.zero("staking rewards are claimed", "stakingRewards.earned")
	return k.err
}

// badgerLpMetaFarm additionally tracks the badger rewards it converts into want.
type badgerLpMetaFarm struct {
	badgerRewards
}

func (r *badgerLpMetaFarm) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	badger, err := r.tokenBalanceRequests(ctx, "badger", entities)
	if err != nil {
		return nil, err
	}
	return append(reqs, badger...), nil
}

func (r *badgerLpMetaFarm) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.badgerRewards.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.zero("strategy keeps no idle badger", snapshot.BalanceKey("badger", "strategy"))
	return k.err
}
