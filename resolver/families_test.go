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
	"testing"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func keysOf(reqs []multicall.Request) []string {
	keys := make([]string, len(reqs))
	for i, r := range reqs {
		keys[i] = r.Key
	}
	return keys
}

func expectGetters(sub *state.MockSubstrate, strategy common.Address, getters map[string]common.Address) {
	for getter, addr := range getters {
		sub.EXPECT().Read(gomock.Any(), state.Call{Target: strategy, Method: getter + "()"}).Return(state.Addr(addr), nil)
	}
}

func TestSushi_DestinationsAndRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	strategy := common.Address{1}
	chef, xsushi, tree, geyser, token := common.Address{2}, common.Address{3}, common.Address{4}, common.Address{5}, common.Address{6}
	// every getter is read once and cached
	expectGetters(sub, strategy, map[string]common.Address{
		"chef": chef, "xsushi": xsushi, "badgerTree": tree, "geyser": geyser, "sushi": token, "badger": token,
	})

	r, err := New("StrategySushiBadgerWbtc", System{Strategy: strategy, Reader: sub})
	require.NoError(t, err)
	ctx := context.Background()

	destinations, err := r.Destinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]common.Address{"chef": chef, "bar": xsushi, "badgerTree": tree, "stakingRewards": geyser}, destinations)

	entities := map[string]common.Address{"user": {7}, "strategy": strategy}
	balances, err := r.BalanceRequests(ctx, entities)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"balances.want.strategy", "balances.want.user",
		"balances.sett.strategy", "balances.sett.user",
		"balances.sushi.strategy", "balances.sushi.user",
		"balances.xsushi.strategy", "balances.xsushi.user",
		"balances.badger.strategy", "balances.badger.user",
	}, keysOf(balances))
	assert.Equal(t, xsushi, balances[6].Call.Target)
	assert.Equal(t, []any{strategy}, balances[6].Call.Args)

	reqs, err := r.StrategyRequests(ctx, entities)
	require.NoError(t, err)
	assert.Contains(t, keysOf(reqs), "stakingRewards.staked")
}

func TestSushi_ConfirmTend(t *testing.T) {
	r := newTestResolver(t, "StrategyBaseSushi")
	tend := func(amount uint64) *state.Receipt {
		l, err := state.TendEvent.Encode(common.Address{1}, uint256.NewInt(amount))
		require.NoError(t, err)
		return &state.Receipt{Logs: []state.Log{l}}
	}
	before := makeSnap(t, 1, map[string]uint64{snapshot.BalanceKey("xsushi", "strategy"): 10})
	grown := makeSnap(t, 2, map[string]uint64{snapshot.BalanceKey("xsushi", "strategy"): 15})
	same := makeSnap(t, 2, map[string]uint64{snapshot.BalanceKey("xsushi", "strategy"): 10})

	assert.NoError(t, r.ConfirmTend(before, grown, Params{Receipt: tend(5)}))
	assert.NoError(t, r.ConfirmTend(before, same, Params{Receipt: tend(0)}))
	requireViolation(t, r.ConfirmTend(before, same, Params{Receipt: tend(5)}), "xsushi position grows")
	requireViolation(t, r.ConfirmTend(before, grown, Params{Receipt: &state.Receipt{}}), "tend emits a Tend event")
	requireViolation(t, r.ConfirmTend(before, grown, Params{}), "tend emits a Tend event")
}

func TestSushi_ConfirmHarvest(t *testing.T) {
	r := newTestResolver(t, "StrategySushiLpOptimizer")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.BalanceKey("xsushi", "badgerTree"): 10,
		snapshot.BalanceKey("sushi", "strategy"):    4,
	})
	assert.NoError(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("xsushi", "badgerTree"): 14,
		snapshot.BalanceKey("sushi", "strategy"):    0,
	}), Params{}))
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("xsushi", "badgerTree"): 14,
		snapshot.BalanceKey("sushi", "strategy"):    1,
	}), Params{}), "strategy keeps no idle sushi")
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("xsushi", "badgerTree"): 9,
		snapshot.BalanceKey("sushi", "strategy"):    0,
	}), Params{}), "badger tree xsushi does not shrink")
}

func TestDiggRewards_Requests(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	sett, strategy, want, faucet := common.Address{1}, common.Address{2}, common.Address{3}, common.Address{4}
	expectGetters(sub, strategy, map[string]common.Address{"diggFaucet": faucet})

	r, err := New("StrategyDiggRewards", System{Sett: sett, Strategy: strategy, Want: want, Reader: sub})
	require.NoError(t, err)
	ctx := context.Background()
	destinations, err := r.Destinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]common.Address{"diggFaucet": faucet}, destinations)

	balances, err := r.BalanceRequests(ctx, map[string]common.Address{"user": {9}})
	require.NoError(t, err)
	assert.Equal(t, []string{"balances.want.user", "balances.sett.user", "balances.digg.user", "shares.digg.user"}, keysOf(balances))
	assert.Equal(t, "sharesOf(address)", balances[3].Call.Method)

	reqs, err := r.StrategyRequests(ctx, nil)
	require.NoError(t, err)
	keys := keysOf(reqs)
	for _, key := range []string{"diggFaucet.earned", snapshot.SettShares, "strategy.sharesOf", "strategy.sharesOfPool", "strategy.sharesOfWant"} {
		assert.Contains(t, keys, key)
	}
}

func TestDiggRewards_ConfirmDeposit(t *testing.T) {
	r := newTestResolver(t, "StrategyDiggRewards")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettShares:                 2000,
		snapshot.BalanceKey("sett", "user"): 0,
		snapshot.BalanceKey("want", "sett"): 50,
		snapshot.BalanceKey("want", "user"): 500,
	})
	after := makeSnap(t, 2, map[string]uint64{
		snapshot.SettShares:                 2400,
		snapshot.SettTotalSupply:            1200,
		snapshot.BalanceKey("sett", "user"): 200,
		snapshot.BalanceKey("want", "sett"): 150,
		snapshot.BalanceKey("want", "user"): 400,
	})
	assert.NoError(t, r.ConfirmDeposit(before, after, Params{Amount: uint256.NewInt(100)}))

	// the fragment based expectation of the core would be 100 shares
	short := makeSnap(t, 2, map[string]uint64{
		snapshot.SettShares:                 2400,
		snapshot.SettTotalSupply:            1100,
		snapshot.BalanceKey("sett", "user"): 100,
		snapshot.BalanceKey("want", "sett"): 150,
		snapshot.BalanceKey("want", "user"): 400,
	})
	requireViolation(t, r.ConfirmDeposit(before, short, Params{Amount: uint256.NewInt(100)}), "total supply grows by the expected shares")
}

func TestDiggRewards_ConfirmEarn(t *testing.T) {
	r := newTestResolver(t, "StrategyDiggRewards")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.BalanceKey("want", "sett"): 100,
		snapshot.StrategyBalanceOfWant:      10,
	})
	assert.NoError(t, r.ConfirmEarn(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("want", "sett"): 5,
		snapshot.StrategyBalanceOfWant:      105,
	}), Params{}))
	requireViolation(t, r.ConfirmEarn(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("want", "sett"): 5,
		snapshot.StrategyBalanceOfWant:      100,
	}), Params{}), "strategy receives the earned want")
}

func TestDiggRewards_ConfirmEarnLeavesUserAlone(t *testing.T) {
	r := newTestResolver(t, "StrategyDiggRewards")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.BalanceKey("want", "sett"): 100,
		snapshot.BalanceKey("want", "user"): 7,
	})
	requireViolation(t, r.ConfirmEarn(before, makeSnap(t, 2, map[string]uint64{
		snapshot.BalanceKey("want", "sett"): 0,
		snapshot.BalanceKey("want", "user"): 8,
		snapshot.StrategyBalanceOfWant:      100,
	}), Params{User: "user"}), "user want is untouched")
}

func TestDiggRewards_ConfirmRebase(t *testing.T) {
	r := newTestResolver(t, "StrategyDiggRewards")
	before := makeSnap(t, 1, nil)
	assert.NoError(t, r.ConfirmRebase(before, makeSnap(t, 2, nil), Params{Value: uint256.NewInt(1e18)}))
	requireViolation(t, r.ConfirmRebase(before, makeSnap(t, 2, map[string]uint64{snapshot.SettTotalSupply: 1500}), Params{}),
		"vault supply is not rebased")
}

func TestDiggLpMetaFarm_ConfirmRebase(t *testing.T) {
	r := newTestResolver(t, "StrategyDiggLpMetaFarm")
	balances := func(strategy uint64) map[string]uint64 {
		values := map[string]uint64{}
		for _, e := range testEntities {
			values[snapshot.BalanceKey("want", e)] = 10
		}
		values[snapshot.BalanceKey("want", "strategy")] = strategy
		return values
	}
	before := makeSnap(t, 1, balances(10))
	assert.NoError(t, r.ConfirmRebase(before, makeSnap(t, 2, balances(10)), Params{}))
	violation := requireViolation(t, r.ConfirmRebase(before, makeSnap(t, 2, balances(11)), Params{}), "LP balances are not rebased")
	assert.Equal(t, snapshot.BalanceKey("want", "strategy"), violation.Values[0].Key)
}

func TestHarvestMetaFarm_Confirmations(t *testing.T) {
	r := newTestResolver(t, "StrategyHarvestMetaFarm")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.BalanceKey("want", "strategy"):   5,
		snapshot.BalanceKey("farm", "strategy"):   3,
		snapshot.BalanceKey("farm", "badgerTree"): 1,
		"vaultFarm.earned":                        7,
		"vaultFarm.staked":                        100,
		"metaFarm.staked":                         20,
	})
	tended := map[string]uint64{
		snapshot.BalanceKey("want", "strategy"):   5,
		snapshot.BalanceKey("farm", "strategy"):   0,
		snapshot.BalanceKey("farm", "badgerTree"): 1,
		"vaultFarm.earned":                        0,
		"vaultFarm.staked":                        100,
		"metaFarm.staked":                         30,
	}
	assert.NoError(t, r.ConfirmTend(before, makeSnap(t, 2, tended), Params{}))
	tended["metaFarm.staked"] = 19
	requireViolation(t, r.ConfirmTend(before, makeSnap(t, 2, tended), Params{}), "meta farm stake does not shrink")

	harvested := map[string]uint64{
		snapshot.BalanceKey("want", "strategy"):   5,
		snapshot.BalanceKey("farm", "strategy"):   0,
		snapshot.BalanceKey("farm", "badgerTree"): 9,
		"vaultFarm.earned":                        0,
		"vaultFarm.staked":                        100,
		"metaFarm.staked":                         0,
	}
	assert.NoError(t, r.ConfirmHarvest(before, makeSnap(t, 2, harvested), Params{}))
	harvested[snapshot.BalanceKey("farm", "badgerTree")] = 1
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, harvested), Params{}), "badger tree receives farm")
}

func TestPickleMetaFarm_Requests(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	strategy, jar, chef, staking := common.Address{1}, common.Address{2}, common.Address{3}, common.Address{4}
	expectGetters(sub, strategy, map[string]common.Address{"pickleJar": jar, "pickleChef": chef, "pickleStaking": staking})
	sub.EXPECT().Read(gomock.Any(), state.Call{Target: strategy, Method: "pid()"}).Return(state.Uint64(14), nil)

	r, err := New("StrategyPickleMetaFarm", System{Strategy: strategy, Reader: sub})
	require.NoError(t, err)
	reqs, err := r.StrategyRequests(context.Background(), nil)
	require.NoError(t, err)

	var chefRead multicall.Request
	for _, req := range reqs {
		if req.Key == "pickleChef.staked" {
			chefRead = req
		}
	}
	assert.Equal(t, chef, chefRead.Call.Target)
	assert.Equal(t, "userInfo(uint256,address)", chefRead.Call.Method)
	assert.Equal(t, []any{uint256.NewInt(14), strategy}, chefRead.Call.Args)
	assert.Contains(t, keysOf(reqs), "stakingRewards.earned")
}

func TestPickleMetaFarm_ConfirmHarvest(t *testing.T) {
	r := newTestResolver(t, "StrategyPickleMetaFarm")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.StrategyBalanceOf:                100,
		snapshot.BalanceKey("pickle", "strategy"): 3,
		"stakingRewards.staked":                   8,
	})
	harvested := map[string]uint64{
		snapshot.StrategyBalanceOf:                110,
		snapshot.SettPricePerFullShare:            1_100_000_000_000_000_000,
		snapshot.BalanceKey("pickle", "strategy"): 0,
		"stakingRewards.staked":                   0,
	}
	assert.NoError(t, r.ConfirmHarvest(before, makeSnap(t, 2, harvested), Params{}))
	harvested[snapshot.SettPricePerFullShare] = 1e18
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, harvested), Params{}), "price per share grows")
}

func TestCurveGauge_Confirmations(t *testing.T) {
	r := newTestResolver(t, "StrategyCurveGaugeRenBtcCrv")
	before := makeSnap(t, 1, map[string]uint64{snapshot.BalanceKey("crv", "strategy"): 4})
	assert.NoError(t, r.ConfirmTend(before, makeSnap(t, 2, map[string]uint64{snapshot.BalanceKey("crv", "strategy"): 0}), Params{}))
	requireViolation(t, r.ConfirmTend(before, makeSnap(t, 2, map[string]uint64{snapshot.BalanceKey("crv", "strategy"): 1}), Params{}),
		"strategy keeps no idle crv")
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, nil), Params{}), "price per share grows")
}

func TestConvexStakingOptimizer_ConfirmTend(t *testing.T) {
	r := newTestResolver(t, "StrategyConvexStakingOptimizer")
	l, err := state.TendEvent.Encode(common.Address{1}, uint256.NewInt(3))
	require.NoError(t, err)
	receipt := &state.Receipt{Logs: []state.Log{l}}
	clean := map[string]uint64{
		snapshot.BalanceKey("cvx", "strategy"):    0,
		snapshot.BalanceKey("cvxCrv", "strategy"): 0,
	}
	before := makeSnap(t, 1, clean)
	assert.NoError(t, r.ConfirmTend(before, makeSnap(t, 2, clean), Params{Receipt: receipt}))
	clean[snapshot.BalanceKey("cvxCrv", "strategy")] = 2
	requireViolation(t, r.ConfirmTend(before, makeSnap(t, 2, clean), Params{Receipt: receipt}), "strategy keeps no idle cvxCrv")
}

func TestBadgerLpMetaFarm_ConfirmHarvest(t *testing.T) {
	r := newTestResolver(t, "StrategyUniGenericLp")
	before := makeSnap(t, 1, map[string]uint64{"stakingRewards.earned": 2, snapshot.BalanceKey("badger", "strategy"): 0})
	assert.NoError(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		"stakingRewards.earned": 0, snapshot.BalanceKey("badger", "strategy"): 0,
	}), Params{}))
	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		"stakingRewards.earned": 0, snapshot.BalanceKey("badger", "strategy"): 5,
	}), Params{}), "strategy keeps no idle badger")
}

func TestPancake_DestinationsAndRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	strategy, chef, cake, syrup := common.Address{1}, common.Address{2}, common.Address{3}, common.Address{4}
	expectGetters(sub, strategy, map[string]common.Address{"chef": chef, "cake": cake, "syrup": syrup})
	sub.EXPECT().Read(gomock.Any(), state.Call{Target: strategy, Method: "wantPid()"}).Return(state.Uint64(2), nil)
	sub.EXPECT().Read(gomock.Any(), state.Call{Target: strategy, Method: "cakePid()"}).Return(state.Uint64(0), nil)

	r, err := New("StrategyPancakeLpOptimizer", System{Strategy: strategy, Reader: sub})
	require.NoError(t, err)
	ctx := context.Background()

	destinations, err := r.Destinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]common.Address{"chef": chef}, destinations)

	balances, err := r.BalanceRequests(ctx, map[string]common.Address{"user": {7}})
	require.NoError(t, err)
	assert.Equal(t, []string{"balances.want.user", "balances.sett.user", "balances.cake.user", "balances.syrup.user"}, keysOf(balances))
	assert.Equal(t, syrup, balances[3].Call.Target)

	reqs, err := r.StrategyRequests(ctx, nil)
	require.NoError(t, err)
	positions := map[string]multicall.Request{}
	for _, req := range reqs {
		positions[req.Key] = req
	}
	require.Contains(t, positions, "pancakeChef.want.staked")
	require.Contains(t, positions, "pancakeChef.cake.staked")
	assert.Equal(t, chef, positions["pancakeChef.want.staked"].Call.Target)
	assert.Equal(t, []any{uint256.NewInt(2), strategy}, positions["pancakeChef.want.staked"].Call.Args)
	assert.Equal(t, []any{uint256.NewInt(0), strategy}, positions["pancakeChef.cake.staked"].Call.Args)
}

func TestPancake_ConfirmTend(t *testing.T) {
	r := newTestResolver(t, "StrategyPancakeLpOptimizer")
	tend := func(amount uint64) *state.Receipt {
		l, err := state.TendEvent.Encode(common.Address{1}, uint256.NewInt(amount))
		require.NoError(t, err)
		return &state.Receipt{Logs: []state.Log{l}}
	}
	before := makeSnap(t, 1, map[string]uint64{"pancakeChef.cake.staked": 10})
	grown := makeSnap(t, 2, map[string]uint64{"pancakeChef.cake.staked": 15})
	same := makeSnap(t, 2, map[string]uint64{"pancakeChef.cake.staked": 10})

	assert.NoError(t, r.ConfirmTend(before, grown, Params{Receipt: tend(5)}))
	assert.NoError(t, r.ConfirmTend(before, same, Params{Receipt: tend(0)}))
	requireViolation(t, r.ConfirmTend(before, same, Params{Receipt: tend(5)}), "chef cake position grows")
	requireViolation(t, r.ConfirmTend(before, grown, Params{}), "tend emits a Tend event")
}

func TestPancake_ConfirmHarvest(t *testing.T) {
	r := newTestResolver(t, "StrategyPancakeLpOptimizer")
	harvestState := func(compounded uint64) state.Log {
		l, err := state.HarvestStateEvent.Encode(common.Address{1},
			uint256.NewInt(20), uint256.NewInt(20), uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(compounded))
		require.NoError(t, err)
		return l
	}
	before := makeSnap(t, 1, map[string]uint64{snapshot.StrategyBalanceOf: 100})
	grown := makeSnap(t, 2, map[string]uint64{snapshot.StrategyBalanceOf: 110})
	same := makeSnap(t, 2, map[string]uint64{snapshot.StrategyBalanceOf: 100})
	shrunk := makeSnap(t, 2, map[string]uint64{snapshot.StrategyBalanceOf: 90})
	once := &state.Receipt{Logs: []state.Log{harvestState(10)}}

	assert.NoError(t, r.ConfirmHarvest(before, grown, Params{Receipt: once}))
	assert.NoError(t, r.ConfirmHarvest(before, same, Params{Receipt: &state.Receipt{Logs: []state.Log{harvestState(0)}}}))

	tests := map[string]struct {
		after   *snapshot.Snap
		receipt *state.Receipt
		check   string
	}{
		"no receipt":         {grown, nil, "harvest emits a single HarvestState event"},
		"no event":           {grown, &state.Receipt{}, "harvest emits a single HarvestState event"},
		"two events":         {grown, &state.Receipt{Logs: []state.Log{harvestState(5), harvestState(5)}}, "harvest emits a single HarvestState event"},
		"balance shrinks":    {shrunk, once, "strategy balance does not shrink"},
		"nothing compounded": {same, once, "strategy balance grows by the compounded want"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			requireViolation(t, r.ConfirmHarvest(before, test.after, Params{Receipt: test.receipt}), test.check)
		})
	}
}

func TestStabilizeDigg_BalanceRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	want := common.Address{3}
	r, err := New("StabilizeStrategyDiggV1", System{Want: want, Reader: state.NewMockSubstrate(ctrl)})
	require.NoError(t, err)

	balances, err := r.BalanceRequests(context.Background(), map[string]common.Address{"user": {9}})
	require.NoError(t, err)
	assert.Equal(t, []string{"balances.want.user", "balances.sett.user", "shares.digg.user"}, keysOf(balances))
	assert.Equal(t, want, balances[2].Call.Target)

	destinations, err := r.Destinations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, destinations)
}

func TestStabilizeDigg_ConfirmDeposit(t *testing.T) {
	r := newTestResolver(t, "StabilizeStrategyDiggV1")
	deposit := func(ppfs, minted uint64) (*snapshot.Snap, *snapshot.Snap) {
		before := makeSnap(t, 1, map[string]uint64{
			snapshot.SettPricePerFullShare:      ppfs,
			snapshot.BalanceKey("sett", "user"): 0,
			snapshot.BalanceKey("want", "sett"): 0,
			snapshot.BalanceKey("want", "user"): 500,
		})
		after := makeSnap(t, 2, map[string]uint64{
			snapshot.SettTotalSupply:            1000 + minted,
			snapshot.BalanceKey("sett", "user"): minted,
			snapshot.BalanceKey("want", "sett"): 100,
			snapshot.BalanceKey("want", "user"): 400,
		})
		return before, after
	}
	params := Params{Amount: uint256.NewInt(100)}

	// shares carry nine more decimals than the deposited DIGG
	before, after := deposit(1e18, 100e9)
	assert.NoError(t, r.ConfirmDeposit(before, after, params))
	before, after = deposit(2e18, 50e9)
	assert.NoError(t, r.ConfirmDeposit(before, after, params))

	before, after = deposit(1e18, 100)
	requireViolation(t, r.ConfirmDeposit(before, after, params), "total supply grows by the expected shares")
	before, after = deposit(1e18, 0)
	requireViolation(t, r.ConfirmDeposit(before, after, params), "total supply increases")
}
