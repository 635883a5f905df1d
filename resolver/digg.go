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
	"github.com/holiman/uint256"
)

// diggRewards holds DIGG and collects rewards from a DIGG faucet.
type diggRewards struct {
	*core
}

func (r *diggRewards) Destinations(ctx context.Context) (map[string]common.Address, error) {
	return r.strategyAddresses(ctx, "diggFaucet")
}

func (r *diggRewards) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	reqs = append(reqs, balanceRequests("digg", r.sys.Want, entities)...)
	return append(reqs, shareRequests("digg", r.sys.Want, entities)...), nil
}

func (r *diggRewards) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	faucet, err := r.strategyAddress(ctx, "diggFaucet")
	if err != nil {
		return nil, err
	}
	return append(reqs,
		multicall.Request{Key: "diggFaucet.earned", Call: state.Call{Target: faucet, Method: "earned()"}},
		r.settRead(snapshot.SettShares, "shares()"),
		r.strategyRead("strategy.sharesOf", "sharesOf()"),
		r.strategyRead("strategy.sharesOfPool", "sharesOfPool()"),
		r.strategyRead("strategy.sharesOfWant", "sharesOfWant()"),
	), nil
}

// ConfirmDeposit expects vault shares in proportion to the DIGG shares
// transferred, since the fragment value of a share changes on rebase.
func (r *diggRewards) ConfirmDeposit(before, after *snapshot.Snap, p Params) error {
	k := newChecker("deposit", before, after)
	poolBefore := k.before(snapshot.SettShares)
	transferred := sub(k.after(snapshot.SettShares), poolBefore)
	supply := k.before(snapshot.SettTotalSupply)
	if k.err != nil {
		return k.err
	}
	amount := orZero(p.Amount)
	expected := new(uint256.Int).Set(amount)
	if !supply.IsZero() && !poolBefore.IsZero() {
		expected = mulDiv(transferred, supply, poolBefore)
	}
	return r.confirmDeposit(before, after, p.user(), amount, expected)
}

// ConfirmEarn allows the strategy to keep the deposited DIGG idle.
func (r *diggRewards) ConfirmEarn(before, after *snapshot.Snap, p Params) error {
	k := newChecker("earn", before, after)
	reserve := snapshot.BalanceKey("want", "sett")
	k.notIncreased("vault reserve does not increase", reserve)
	deposited := sub(k.before(reserve), k.after(reserve))
	k.expect("strategy receives the earned want",
		k.after(snapshot.StrategyBalanceOfWant).Eq(add(k.before(snapshot.StrategyBalanceOfWant), deposited)),
		reserve, snapshot.StrategyBalanceOfWant)
	pool := snapshot.StrategyBalanceOfPool
	k.expect("strategy pool is empty or grows", k.after(pool).IsZero() || k.after(pool).Gt(k.before(pool)), pool)
	if p.User != "" {
		k.unchanged("user want is untouched", snapshot.BalanceKey("want", p.User))
	}
	return k.err
}

func (r *diggRewards) ConfirmRebase(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmRebase(before, after, p); err != nil {
		return err
	}
	k := newChecker("rebase", before, after)
	k.unchanged("vault supply is not rebased", snapshot.SettTotalSupply)
	return k.err
}

// diggLpMetaFarm holds DIGG LP tokens which do not rebase themselves.
type diggLpMetaFarm struct {
	*core
}

func (r *diggLpMetaFarm) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	digg, err := r.strategyAddress(ctx, "digg")
	if err != nil {
		return nil, err
	}
	reqs = append(reqs, balanceRequests("digg", digg, entities)...)
	return append(reqs, shareRequests("digg", digg, entities)...), nil
}

func (r *diggLpMetaFarm) ConfirmRebase(before, after *snapshot.Snap, p Params) error {
	if err := r.core.ConfirmRebase(before, after, p); err != nil {
		return err
	}
	k := newChecker("rebase", before, after)
	for _, entity := range before.Entities() {
		k.unchanged("LP balances are not rebased", snapshot.BalanceKey("want", entity))
	}
	return k.err
}

// stabilizeDigg holds DIGG in a stabilization vault whose shares carry
// nine more decimals than DIGG. Rewards are paid out externally.
type stabilizeDigg struct {
	*core
}

var diggScale = uint256.NewInt(1e9)

func (r *stabilizeDigg) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs, err := r.core.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	return append(reqs, shareRequests("digg", r.sys.Want, entities)...), nil
}

func (r *stabilizeDigg) ConfirmDeposit(before, after *snapshot.Snap, p Params) error {
	amount := orZero(p.Amount)
	expected := new(uint256.Int).Mul(amount, diggScale)
	ppfs, err := before.PricePerShare()
	switch {
	case errors.Is(err, snapshot.ErrUndefined):
	case err != nil:
		return err
	case ppfs.IsZero():
		return errors.New("cannot confirm deposit into a vault with a worthless share")
	default:
		expected = mulDiv(expected, wei, ppfs)
	}
	return r.confirmDeposit(before, after, p.user(), amount, expected)
}
