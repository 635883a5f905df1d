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
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// harvestMetaFarm deposits into a harvest.finance vault and farms FARM twice.
type harvestMetaFarm struct {
	*core
}

func (r *harvestMetaFarm) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "harvestVault", "vaultFarm", "metaFarm", "badgerTree")
}

func (r *harvestMetaFarm) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	farm, err := r.tokenBalanceRequests(ctx, "farm", entities)
	if err != nil {
		return nil, err
	}
	return append(reqs, farm...), nil
}

func (r *harvestMetaFarm) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	farms, err := r.strategyAddresses(ctx, "vaultFarm", "metaFarm")
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"vaultFarm", "metaFarm"} {
		reqs = append(reqs,
			r.positionRead(name+".earned", farms[name], "earned(address)"),
			r.positionRead(name+".staked", farms[name], "balanceOf(address)"),
		)
	}
	return reqs, nil
}

func (r *harvestMetaFarm) ConfirmTend(before, after *snapshot.Snap, _ Params) error {
	k := newChecker("tend", before, after)
	k.zero("strategy keeps no idle farm", snapshot.BalanceKey("farm", "strategy"))
	k.zero("vault farm rewards are claimed", "vaultFarm.earned")
	k.notDecreased("vault farm stake does not shrink", "vaultFarm.staked")
	k.notDecreased("meta farm stake does not shrink", "metaFarm.staked")
	return k.err
}

func (r *harvestMetaFarm) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.notDecreased("strategy want does not shrink", snapshot.BalanceKey("want", "strategy"))
	k.zero("strategy keeps no idle farm", snapshot.BalanceKey("farm", "strategy"))
	k.zero("vault farm rewards are claimed", "vaultFarm.earned")
	k.zero("meta farm stake is released", "metaFarm.staked")
	k.increased("badger tree receives farm", snapshot.BalanceKey("farm", "badgerTree"))
	return k.err
}

// pickleMetaFarm deposits into a pickle jar and stakes the jar shares.
type pickleMetaFarm struct {
	*core
}

func (r *pickleMetaFarm) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "pickleJar", "pickleChef", "pickleStaking")
}

func (r *pickleMetaFarm) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	pickle, err := r.tokenBalanceRequests(ctx, "pickle", entities)
	if err != nil {
		return nil, err
	}
	return append(reqs, pickle...), nil
}

func (r *pickleMetaFarm) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	dst, err := r.Destinations(ctx)
	if err != nil {
		return nil, err
	}
	v, err := r.sys.Reader.Read(ctx, state.Call{Target: r.sys.Strategy, Method: "pid()"})
	if err != nil {
		return nil, errors.Wrap(err, "cannot read pid of the strategy")
	}
	pid, err := v.Uint256()
	if err != nil {
		return nil, err
	}
	return append(reqs,
		r.positionRead("pickleJar.staked", dst["pickleJar"], "balanceOf(address)"),
		// the first word of userInfo is the staked amount
		multicall.Request{Key: "pickleChef.staked", Call: state.Call{
			Target: dst["pickleChef"],
			Method: "userInfo(uint256,address)",
			Args:   []any{pid, r.sys.Strategy},
		}},
		r.positionRead("stakingRewards.staked", dst["pickleStaking"], "balanceOf(address)"),
		r.positionRead("stakingRewards.earned", dst["pickleStaking"], "earned(address)"),
	), nil
}

func (r *pickleMetaFarm) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.increased("strategy balance grows", snapshot.StrategyBalanceOf)
	k.zero("strategy keeps no idle pickle", snapshot.BalanceKey("pickle", "strategy"))
	k.zero("staked pickle is released", "stakingRewards.staked")
	if before.Has(snapshot.SettPricePerFullShare) && after.Has(snapshot.SettPricePerFullShare) {
		k.increased("price per share grows", snapshot.SettPricePerFullShare)
	}
	return k.err
}
