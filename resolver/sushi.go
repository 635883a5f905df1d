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

// sushi farms sushiswap LP in the MasterChef and stakes the SUSHI as xSUSHI.
type sushi struct {
	*core
	// geyser adds the badger staking rewards contract.
	geyser bool
	// digg tracks the rebasing side of a DIGG pair.
	digg bool
}

func (r *sushi) Destinations(ctx context.Context) (map[string]common.Address, error) {
	getters := []string{"chef", "xsushi", "badgerTree"}
	if r.geyser {
		getters = append(getters, "geyser")
	}
	addresses, err := r.strategyAddresses(ctx, getters...)
	if err != nil {
		return nil, err
	}
	// the xsushi token is the sushi bar itself
	addresses["bar"] = addresses["xsushi"]
	delete(addresses, "xsushi")
	if r.geyser {
		addresses["stakingRewards"] = addresses["geyser"]
		delete(addresses, "geyser")
	}
	return addresses, nil
}

func (r *sushi) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	tokens := []string{"sushi", "xsushi"}
	if r.geyser {
		tokens = append(tokens, "badger")
	}
	if r.digg {
		tokens = append(tokens, "digg")
	}
	for _, token := range tokens {
		more, err := r.tokenBalanceRequests(ctx, token, entities)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, more...)
	}
	if r.digg {
		digg, err := r.strategyAddress(ctx, "digg")
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, shareRequests("digg", digg, entities)...)
	}
	return reqs, nil
}

func (r *sushi) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil || !r.geyser {
		return reqs, err
	}
	geyser, err := r.strategyAddress(ctx, "geyser")
	if err != nil {
		return nil, err
	}
	return append(reqs, r.positionRead("stakingRewards.staked", geyser, "balanceOf(address)")), nil
}

func (r *sushi) ConfirmTend(before, after *snapshot.Snap, p Params) error {
	k := newChecker("tend", before, after)
	if amount := tended(k, p.Receipt); !amount.IsZero() {
		k.increased("xsushi position grows", snapshot.BalanceKey("xsushi", "strategy"))
	}
	return k.err
}

func (r *sushi) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	k := newChecker("harvest", before, after)
	k.notDecreased("badger tree xsushi does not shrink", snapshot.BalanceKey("xsushi", "badgerTree"))
	k.zero("strategy keeps no idle sushi", snapshot.BalanceKey("sushi", "strategy"))
	return k.err
}
