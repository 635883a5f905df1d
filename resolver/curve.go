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

// curveGauge deposits curve LP tokens into a gauge and sells the CRV.
type curveGauge struct {
	*core
}

func (r *curveGauge) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "gauge")
}

func (r *curveGauge) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	crv, err := r.tokenBalanceRequests(ctx, "crv", entities)
	if err != nil {
		return nil, err
	}
	return append(reqs, crv...), nil
}

func (r *curveGauge) ConfirmTend(before, after *snapshot.Snap, _ Params) error {
	k := newChecker("tend", before, after)
	k.zero("strategy keeps no idle crv", snapshot.BalanceKey("crv", "strategy"))
	return k.err
}

func (r *curveGauge) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	if before.Has(snapshot.SettPricePerFullShare) && after.Has(snapshot.SettPricePerFullShare) {
		k.increased("price per share grows", snapshot.SettPricePerFullShare)
	}
	return k.err
}

// convexStakingOptimizer stakes curve LP through convex and forwards the
// crv, cvx and cvxCrv rewards.
type convexStakingOptimizer struct {
	*core
}

func (r *convexStakingOptimizer) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "badgerTree", "convexMasterChef", "cvxCrvRewardsPool", "cvxRewardsPool", "baseRewardsPool")
}

func (r *convexStakingOptimizer) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	for _, token := range []string{"crv", "cvx", "cvxCrv"} {
		more, err := r.tokenBalanceRequests(ctx, token, entities)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, more...)
	}
	return reqs, nil
}

func (r *convexStakingOptimizer) ConfirmTend(before, after *snapshot.Snap, p Params) error {
	k := newChecker("tend", before, after)
	if amount := tended(k, p.Receipt); !amount.IsZero() {
		k.zero("strategy keeps no idle cvx", snapshot.BalanceKey("cvx", "strategy"))
		k.zero("strategy keeps no idle cvxCrv", snapshot.BalanceKey("cvxCrv", "strategy"))
	}
	return k.err
}

func (r *convexStakingOptimizer) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.zero("strategy keeps no idle crv", snapshot.BalanceKey("crv", "strategy"))
	return k.err
}
