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

// pancake farms LP in the pancake MasterChef and stakes the CAKE it earns
// in the CAKE pool of the same chef.
type pancake struct {
	*core
}

func (r *pancake) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "chef")
}

func (r *pancake) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	for _, token := range []string{"cake", "syrup"} {
		more, err := r.tokenBalanceRequests(ctx, token, entities)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, more...)
	}
	return reqs, nil
}

func (r *pancake) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	chef, err := r.strategyAddress(ctx, "chef")
	if err != nil {
		return nil, err
	}
	for _, pool := range []string{"want", "cake"} {
		v, err := r.sys.Reader.Read(ctx, state.Call{Target: r.sys.Strategy, Method: pool + "Pid()"})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %v pid of the strategy", pool)
		}
		pid, err := v.Uint256()
		if err != nil {
			return nil, err
		}
		// the first word of userInfo is the staked amount
		reqs = append(reqs, multicall.Request{Key: "pancakeChef." + pool + ".staked", Call: state.Call{
			Target: chef,
			Method: "userInfo(uint256,address)",
			Args:   []any{pid, r.sys.Strategy},
		}})
	}
	return reqs, nil
}

func (r *pancake) ConfirmTend(before, after *snapshot.Snap, p Params) error {
	k := newChecker("tend", before, after)
	if amount := tended(k, p.Receipt); !amount.IsZero() {
		k.increased("chef cake position grows", "pancakeChef.cake.staked")
	}
	return k.err
}

func (r *pancake) ConfirmHarvest(before, after *snapshot.Snap, p Params) error {
	var logs []state.Log
	if p.Receipt != nil {
		logs = p.Receipt.Logs
	}
	events, err := state.HarvestStateEvent.Decode(logs)
	if err != nil {
		return errors.Wrap(err, "cannot confirm harvest")
	}
	k := newChecker("harvest", before, after)
	k.expect("harvest emits a single HarvestState event", len(events) == 1)
	if k.err != nil {
		return k.err
	}
	if err := r.core.ConfirmHarvest(before, after, p); err != nil {
		return err
	}
	if !events[0].Fields["wantCompounded"].IsZero() {
		k.increased("strategy balance grows by the compounded want", snapshot.StrategyBalanceOf)
	}
	return k.err
}
