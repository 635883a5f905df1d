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
	"sort"
	"sync"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

const maxBps = 10_000

var wei = uint256.NewInt(1e18)

// core holds the checks shared by all strategy families.
type core struct {
	kind string
	sys  System

	mu        sync.Mutex
	addresses map[string]common.Address
}

func newCore(kind string, sys System) *core {
	return &core{
		kind:      kind,
		sys:       sys,
		addresses: make(map[string]common.Address),
	}
}

func (c *core) Kind() string {
	return c.kind
}

// strategyAddress reads an address getter of the strategy once.
func (c *core) strategyAddress(ctx context.Context, getter string) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr, found := c.addresses[getter]; found {
		return addr, nil
	}
	v, err := c.sys.Reader.Read(ctx, state.Call{Target: c.sys.Strategy, Method: getter + "()"})
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "cannot read %v of the strategy", getter)
	}
	addr, err := v.Address()
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "cannot decode %v of the strategy", getter)
	}
	c.addresses[getter] = addr
	return addr, nil
}

// strategyAddresses reads several getters into a destination map.
func (c *core) strategyAddresses(ctx context.Context, getters ...string) (map[string]common.Address, error) {
	out := make(map[string]common.Address, len(getters))
	for _, g := range getters {
		addr, err := c.strategyAddress(ctx, g)
		if err != nil {
			return nil, err
		}
		out[g] = addr
	}
	return out, nil
}

func (c *core) Destinations(context.Context) (map[string]common.Address, error) {
	return map[string]common.Address{}, nil
}

func (c *core) BalanceRequests(_ context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	reqs := balanceRequests("want", c.sys.Want, entities)
	return append(reqs, balanceRequests("sett", c.sys.Sett, entities)...), nil
}

// tokenBalanceRequests reads the balances of a token exposed by a strategy getter.
func (c *core) tokenBalanceRequests(ctx context.Context, token string, entities map[string]common.Address) ([]multicall.Request, error) {
	addr, err := c.strategyAddress(ctx, token)
	if err != nil {
		return nil, err
	}
	return balanceRequests(token, addr, entities), nil
}

func (c *core) SettRequests(context.Context) ([]multicall.Request, error) {
	return []multicall.Request{
		c.settRead(snapshot.SettBalance, "balance()"),
		c.settRead(snapshot.SettAvailable, "available()"),
		c.settRead(snapshot.SettPricePerFullShare, "getPricePerFullShare()"),
		c.settRead(snapshot.SettTotalSupply, "totalSupply()"),
	}, nil
}

func (c *core) StrategyRequests(context.Context, map[string]common.Address) ([]multicall.Request, error) {
	return []multicall.Request{
		c.strategyRead(snapshot.StrategyBalanceOfPool, "balanceOfPool()"),
		c.strategyRead(snapshot.StrategyBalanceOfWant, "balanceOfWant()"),
		c.strategyRead(snapshot.StrategyBalanceOf, "balanceOf()"),
		c.strategyRead(snapshot.StrategyWithdrawalFee, "withdrawalFee()"),
		c.strategyRead(snapshot.StrategyPerformanceFeeGovernance, "performanceFeeGovernance()"),
		c.strategyRead(snapshot.StrategyPerformanceFeeStrategist, "performanceFeeStrategist()"),
	}, nil
}

func (c *core) settRead(key, method string) multicall.Request {
	return multicall.Request{Key: key, Call: state.Call{Target: c.sys.Sett, Method: method}}
}

func (c *core) strategyRead(key, method string) multicall.Request {
	return multicall.Request{Key: key, Call: state.Call{Target: c.sys.Strategy, Method: method}}
}

// positionRead reads an amount the strategy holds in an external contract.
func (c *core) positionRead(key string, target common.Address, method string) multicall.Request {
	return multicall.Request{Key: key, Call: state.Call{Target: target, Method: method, Args: []any{c.sys.Strategy}}}
}

func (c *core) ConfirmDeposit(before, after *snapshot.Snap, p Params) error {
	amount := orZero(p.Amount)
	expected := new(uint256.Int).Set(amount)
	ppfs, err := before.PricePerShare()
	switch {
	case errors.Is(err, snapshot.ErrUndefined):
	case err != nil:
		return err
	case ppfs.IsZero():
		return errors.New("cannot confirm deposit into a vault with a worthless share")
	default:
		expected = mulDiv(amount, wei, ppfs)
	}
	return c.confirmDeposit(before, after, p.user(), amount, expected)
}

func (c *core) confirmDeposit(before, after *snapshot.Snap, user string, amount, shares *uint256.Int) error {
	k := newChecker("deposit", before, after)

	supply := snapshot.SettTotalSupply
	k.increased("total supply increases", supply)
	k.expect("total supply grows by the expected shares", approx(k.after(supply), add(k.before(supply), shares), 1), supply)

	userShares := snapshot.BalanceKey("sett", user)
	k.increased("user vault balance increases", userShares)
	k.expect("user vault balance grows by the expected shares", approx(k.after(userShares), add(k.before(userShares), shares), 1), userShares)

	reserve := snapshot.BalanceKey("want", "sett")
	k.increased("vault reserve increases", reserve)
	k.expect("vault reserve grows by the deposit", approx(k.after(reserve), add(k.before(reserve), amount), 1), reserve)

	userWant := snapshot.BalanceKey("want", user)
	k.decreased("user want decreases", userWant)
	k.expect("user want shrinks by the deposit", approx(k.after(userWant), sub(k.before(userWant), amount), 1), userWant)
	return k.err
}

func (c *core) ConfirmWithdraw(before, after *snapshot.Snap, p Params) error {
	k := newChecker("withdraw", before, after)
	k.decreased("total supply decreases", snapshot.SettTotalSupply)
	k.decreased("user vault balance decreases", snapshot.BalanceKey("sett", p.user()))

	reserve := snapshot.BalanceKey("want", "sett")
	if !k.before(reserve).IsZero() {
		k.decreased("vault reserve decreases", reserve)
		k.notIncreased("available funds do not increase", snapshot.SettAvailable)
	}

	held := []string{snapshot.StrategyBalanceOfWant, snapshot.StrategyBalanceOfPool, reserve}
	k.expect("vault and strategy hold less want", sum(k.after, held).Lt(sum(k.before, held)), held...)

	// expected want redeemed by the burnt shares
	redeemed := new(uint256.Int)
	if supply := k.before(snapshot.SettTotalSupply); !supply.IsZero() {
		redeemed = mulDiv(orZero(p.Shares), k.before(snapshot.SettBalance), supply)
	}
	fromStrategy := sub(redeemed, k.before(reserve))
	fee := mulDiv(fromStrategy, k.before(snapshot.StrategyWithdrawalFee), uint256.NewInt(maxBps))
	if !fee.IsZero() {
		k.increased("governance rewards collect the withdrawal fee", snapshot.BalanceKey("want", "governanceRewards"))
	}
	return k.err
}

func (c *core) ConfirmEarn(before, after *snapshot.Snap, p Params) error {
	k := newChecker("earn", before, after)
	k.notIncreased("vault reserve does not increase", snapshot.BalanceKey("want", "sett"))
	k.zero("strategy keeps no idle want", snapshot.StrategyBalanceOfWant)
	if !k.before(snapshot.SettAvailable).IsZero() {
		k.increased("strategy pool grows", snapshot.StrategyBalanceOfPool)
		k.increased("strategy balance grows", snapshot.StrategyBalanceOf)
	} else {
		k.notDecreased("strategy pool does not shrink", snapshot.StrategyBalanceOfPool)
	}
	if p.User != "" {
		k.unchanged("user want is untouched", snapshot.BalanceKey("want", p.User))
	}
	return k.err
}

func (c *core) ConfirmTend(_, _ *snapshot.Snap, _ Params) error {
	return errors.Wrapf(ErrNotSpecified, "tend of %v", c.kind)
}

func (c *core) ConfirmHarvest(before, after *snapshot.Snap, _ Params) error {
	k := newChecker("harvest", before, after)
	k.notDecreased("strategy balance does not shrink", snapshot.StrategyBalanceOf)
	if before.Has(snapshot.SettPricePerFullShare) && after.Has(snapshot.SettPricePerFullShare) {
		k.notDecreased("price per share does not drop", snapshot.SettPricePerFullShare)
	}
	return k.err
}

func (c *core) ConfirmRebase(before, after *snapshot.Snap, _ Params) error {
	k := newChecker("rebase", before, after)
	k.expect("rebase is mined in a later block", after.Block() > before.Block())
	return k.err
}

func (c *core) ConfirmMigrate(_, _ *snapshot.Snap, _ Params) error {
	return errors.Wrapf(ErrNotSpecified, "migration of %v", c.kind)
}

func balanceRequests(token string, addr common.Address, entities map[string]common.Address) []multicall.Request {
	return holderRequests(token, addr, "balanceOf(address)", snapshot.BalanceKey, entities)
}

func shareRequests(token string, addr common.Address, entities map[string]common.Address) []multicall.Request {
	return holderRequests(token, addr, "sharesOf(address)", snapshot.ShareKey, entities)
}

func holderRequests(token string, addr common.Address, method string, key func(string, string) string, entities map[string]common.Address) []multicall.Request {
	names := maps.Keys(entities)
	sort.Strings(names)
	reqs := make([]multicall.Request, 0, len(names))
	for _, name := range names {
		reqs = append(reqs, multicall.Request{
			Key:  key(token, name),
			Call: state.Call{Target: addr, Method: method, Args: []any{entities[name]}},
		})
	}
	return reqs
}

func sum(get func(string) *uint256.Int, keys []string) *uint256.Int {
	total := new(uint256.Int)
	for _, key := range keys {
		total.Add(total, get(key))
	}
	return total
}

// tended returns the amount reported by the Tend event of a receipt.
func tended(k *checker, receipt *state.Receipt) *uint256.Int {
	var logs []state.Log
	if receipt != nil {
		logs = receipt.Logs
	}
	events, err := state.TendEvent.Decode(logs)
	if err != nil {
		if k.err == nil {
			k.err = errors.Wrap(err, "cannot confirm tend")
		}
		return new(uint256.Int)
	}
	k.expect("tend emits a Tend event", len(events) == 1)
	if len(events) != 1 {
		return new(uint256.Int)
	}
	return events[0].Fields["tended"]
}
