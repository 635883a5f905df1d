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
	"testing"

	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireViolation(t *testing.T, err error, check string) *InvariantError {
	t.Helper()
	require.ErrorIs(t, err, ErrInvariant)
	var violation *InvariantError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, check, violation.Check)
	return violation
}

func depositSnaps(t *testing.T, mutate map[string]uint64) (*snapshot.Snap, *snapshot.Snap) {
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettPricePerFullShare:           2e18,
		snapshot.BalanceKey("sett", "user"):      0,
		snapshot.BalanceKey("want", "sett"):      0,
		snapshot.BalanceKey("want", "user"):      500,
	})
	values := map[string]uint64{
		snapshot.SettTotalSupply:                 1100,
		snapshot.SettBalance:                     1200,
		snapshot.SettPricePerFullShare:           2e18,
		snapshot.BalanceKey("sett", "user"):      100,
		snapshot.BalanceKey("want", "sett"):      200,
		snapshot.BalanceKey("want", "user"):      300,
	}
	for k, v := range mutate {
		values[k] = v
	}
	return before, makeSnap(t, 2, values)
}

func TestCore_ConfirmDeposit(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	params := Params{Amount: uint256.NewInt(200)}

	before, after := depositSnaps(t, nil)
	assert.NoError(t, r.ConfirmDeposit(before, after, params))

	tests := map[string]struct {
		mutate map[string]uint64
		check  string
	}{
		"no shares minted":   {map[string]uint64{snapshot.SettTotalSupply: 1000}, "total supply increases"},
		"too few minted":     {map[string]uint64{snapshot.SettTotalSupply: 1050}, "total supply grows by the expected shares"},
		"user got nothing":   {map[string]uint64{snapshot.BalanceKey("sett", "user"): 0}, "user vault balance increases"},
		"user got too much":  {map[string]uint64{snapshot.BalanceKey("sett", "user"): 200}, "user vault balance grows by the expected shares"},
		"reserve unchanged":  {map[string]uint64{snapshot.BalanceKey("want", "sett"): 0}, "vault reserve increases"},
		"user kept the want": {map[string]uint64{snapshot.BalanceKey("want", "user"): 500}, "user want decreases"},
		"user paid twice":    {map[string]uint64{snapshot.BalanceKey("want", "user"): 100}, "user want shrinks by the deposit"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			before, after := depositSnaps(t, test.mutate)
			requireViolation(t, r.ConfirmDeposit(before, after, params), test.check)
		})
	}
}

func TestCore_ConfirmDeposit_IntoEmptyVault(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettTotalSupply:            0,
		snapshot.SettBalance:                0,
		snapshot.BalanceKey("sett", "user"): 0,
		snapshot.BalanceKey("want", "sett"): 0,
		snapshot.BalanceKey("want", "user"): 500,
	})
	after := makeSnap(t, 2, map[string]uint64{
		snapshot.SettTotalSupply:            200,
		snapshot.SettBalance:                200,
		snapshot.BalanceKey("sett", "user"): 200,
		snapshot.BalanceKey("want", "sett"): 200,
		snapshot.BalanceKey("want", "user"): 300,
	})
	assert.NoError(t, r.ConfirmDeposit(before, after, Params{Amount: uint256.NewInt(200)}))
}

func TestCore_ConfirmDeposit_SupplyUnchangedOnLargeVault(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	// 100 shares sit inside the 1% tolerance of a large supply
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettTotalSupply:            100000,
		snapshot.SettBalance:                100000,
		snapshot.BalanceKey("sett", "user"): 0,
		snapshot.BalanceKey("want", "sett"): 0,
		snapshot.BalanceKey("want", "user"): 500,
	})
	after := makeSnap(t, 2, map[string]uint64{
		snapshot.SettTotalSupply:            100000,
		snapshot.SettBalance:                100100,
		snapshot.BalanceKey("sett", "user"): 100,
		snapshot.BalanceKey("want", "sett"): 100,
		snapshot.BalanceKey("want", "user"): 400,
	})
	err := r.ConfirmDeposit(before, after, Params{Amount: uint256.NewInt(100)})
	requireViolation(t, err, "total supply increases")
}

func TestCore_ConfirmDeposit_MissingKeyIsNoViolation(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	err := r.ConfirmDeposit(makeSnap(t, 1, nil), makeSnap(t, 2, nil), Params{Amount: uint256.NewInt(1)})
	assert.ErrorIs(t, err, snapshot.ErrUnknownKey)
	assert.NotErrorIs(t, err, ErrInvariant)
}

func withdrawSnaps(t *testing.T, mutate map[string]uint64) (*snapshot.Snap, *snapshot.Snap) {
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettAvailable:                           95,
		snapshot.StrategyBalanceOfPool:                   900,
		snapshot.StrategyBalanceOf:                       900,
		snapshot.StrategyWithdrawalFee:                   50,
		snapshot.BalanceKey("sett", "user"):              500,
		snapshot.BalanceKey("want", "sett"):              100,
		snapshot.BalanceKey("want", "governanceRewards"): 0,
	})
	values := map[string]uint64{
		snapshot.SettTotalSupply:                         500,
		snapshot.SettBalance:                             502,
		snapshot.SettAvailable:                           0,
		snapshot.StrategyBalanceOfPool:                   502,
		snapshot.StrategyBalanceOf:                       502,
		snapshot.StrategyWithdrawalFee:                   50,
		snapshot.BalanceKey("sett", "user"):              0,
		snapshot.BalanceKey("want", "sett"):              0,
		snapshot.BalanceKey("want", "governanceRewards"): 2,
	}
	for k, v := range mutate {
		values[k] = v
	}
	return before, makeSnap(t, 2, values)
}

func TestCore_ConfirmWithdraw(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	params := Params{Shares: uint256.NewInt(500)}

	before, after := withdrawSnaps(t, nil)
	assert.NoError(t, r.ConfirmWithdraw(before, after, params))

	tests := map[string]struct {
		mutate map[string]uint64
		check  string
	}{
		"supply unchanged":     {map[string]uint64{snapshot.SettTotalSupply: 1000}, "total supply decreases"},
		"shares not burnt":     {map[string]uint64{snapshot.BalanceKey("sett", "user"): 500}, "user vault balance decreases"},
		"reserve untouched":    {map[string]uint64{snapshot.BalanceKey("want", "sett"): 100}, "vault reserve decreases"},
		"available grows":      {map[string]uint64{snapshot.SettAvailable: 96}, "available funds do not increase"},
		"want created":         {map[string]uint64{snapshot.StrategyBalanceOfPool: 1000}, "vault and strategy hold less want"},
		"fee not paid":         {map[string]uint64{snapshot.BalanceKey("want", "governanceRewards"): 0}, "governance rewards collect the withdrawal fee"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			before, after := withdrawSnaps(t, test.mutate)
			requireViolation(t, r.ConfirmWithdraw(before, after, params), test.check)
		})
	}
}

func TestCore_ConfirmWithdraw_FromReserveChargesNoFee(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	before, after := withdrawSnaps(t, map[string]uint64{
		snapshot.SettTotalSupply:                         950,
		snapshot.BalanceKey("sett", "user"):              450,
		snapshot.BalanceKey("want", "sett"):              50,
		snapshot.StrategyBalanceOfPool:                   900,
		snapshot.BalanceKey("want", "governanceRewards"): 0,
	})
	assert.NoError(t, r.ConfirmWithdraw(before, after, Params{Shares: uint256.NewInt(50)}))
}

func TestCore_ConfirmEarn(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	before := makeSnap(t, 1, map[string]uint64{
		snapshot.SettAvailable:              95,
		snapshot.BalanceKey("want", "sett"): 100,
		snapshot.BalanceKey("want", "user"): 7,
	})
	after := makeSnap(t, 2, map[string]uint64{
		snapshot.StrategyBalanceOfPool:      95,
		snapshot.StrategyBalanceOf:          95,
		snapshot.BalanceKey("want", "sett"): 5,
		snapshot.BalanceKey("want", "user"): 7,
	})
	assert.NoError(t, r.ConfirmEarn(before, after, Params{User: "user"}))

	idle := makeSnap(t, 2, map[string]uint64{
		snapshot.StrategyBalanceOfWant:      95,
		snapshot.StrategyBalanceOf:          95,
		snapshot.BalanceKey("want", "sett"): 5,
	})
	requireViolation(t, r.ConfirmEarn(before, idle, Params{}), "strategy keeps no idle want")

	// nothing available, nothing moves
	empty := makeSnap(t, 1, map[string]uint64{snapshot.BalanceKey("want", "sett"): 3})
	assert.NoError(t, r.ConfirmEarn(empty, makeSnap(t, 2, map[string]uint64{snapshot.BalanceKey("want", "sett"): 3}), Params{}))
}

func TestCore_ConfirmHarvest(t *testing.T) {
	r := newTestResolver(t, "StrategyCurveGauge").(*curveGauge).core
	before := makeSnap(t, 1, map[string]uint64{snapshot.StrategyBalanceOf: 100})
	assert.NoError(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.StrategyBalanceOf:     120,
		snapshot.SettPricePerFullShare: 1_020_000_000_000_000_000,
	}), Params{}))

	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.StrategyBalanceOf: 99,
	}), Params{}), "strategy balance does not shrink")

	requireViolation(t, r.ConfirmHarvest(before, makeSnap(t, 2, map[string]uint64{
		snapshot.StrategyBalanceOf:     100,
		snapshot.SettPricePerFullShare: 9e17,
	}), Params{}), "price per share does not drop")

	// no price before the first deposit
	empty := makeSnap(t, 1, map[string]uint64{snapshot.SettTotalSupply: 0})
	assert.NoError(t, r.ConfirmHarvest(empty, makeSnap(t, 2, nil), Params{}))
}

func TestCore_ConfirmRebase(t *testing.T) {
	r := newTestResolver(t, "StrategyBadgerRewards")
	assert.NoError(t, r.ConfirmRebase(makeSnap(t, 1, nil), makeSnap(t, 2, nil), Params{}))
	requireViolation(t, r.ConfirmRebase(makeSnap(t, 2, nil), makeSnap(t, 2, nil), Params{}), "rebase is mined in a later block")
}

func TestCore_NotSpecified(t *testing.T) {
	for _, kind := range Kinds() {
		r := newTestResolver(t, kind)
		err := r.ConfirmMigrate(makeSnap(t, 1, nil), makeSnap(t, 2, nil), Params{})
		assert.ErrorIs(t, err, ErrNotSpecified, kind)
	}
	for _, kind := range []string{"StrategyBadgerRewards", "StrategyDiggRewards", "StrategyPickleMetaFarm"} {
		r := newTestResolver(t, kind)
		err := r.ConfirmTend(makeSnap(t, 1, nil), makeSnap(t, 2, nil), Params{})
		assert.ErrorIs(t, err, ErrNotSpecified, kind)
	}
}
