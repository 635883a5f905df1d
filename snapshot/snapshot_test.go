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

package snapshot

import (
	"testing"

	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultResults(values map[string]uint64) multicall.Results {
	results := multicall.Results{
		SettTotalSupply:       state.Uint64(100),
		SettBalance:           state.Uint64(100),
		SettAvailable:         state.Uint64(95),
		SettPricePerFullShare: state.Uint64(1e18),
		StrategyBalanceOf:     state.Uint64(0),
		StrategyBalanceOfPool: state.Uint64(0),
		StrategyBalanceOfWant: state.Uint64(0),
	}
	for k, v := range values {
		results[k] = state.Uint64(v)
	}
	return results
}

func makeSnap(t *testing.T, block uint64, values map[string]uint64) *Snap {
	t.Helper()
	s, err := Build(block, block*10, []string{"user", "sett"}, vaultResults(values))
	require.NoError(t, err)
	return s
}

func TestBuild_RoutesKeys(t *testing.T) {
	s := makeSnap(t, 5, map[string]uint64{
		BalanceKey("want", "user"):         7,
		ShareKey("digg", "sett"):           8,
		StrategyWithdrawalFee:              50,
		"stakingRewards.earned":            3,
		"strategy.sharesOfPool":            4,
		"balances.malformed":               9,
	})

	assert.Equal(t, uint64(5), s.Block())
	assert.Equal(t, uint64(50), s.Time())
	assert.Equal(t, []string{"sett", "user"}, s.Entities())

	b, err := s.Balance("want", "user")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), b.Uint64())
	sh, err := s.Share("digg", "sett")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), sh.Uint64())
	assert.Equal(t, uint64(50), s.Strategy().WithdrawalFee.Uint64())
	assert.Nil(t, s.Strategy().PerformanceFeeGovernance)
	assert.Equal(t, uint64(95), s.Sett().Available.Uint64())

	for key, want := range map[string]uint64{
		"stakingRewards.earned": 3,
		"strategy.sharesOfPool": 4,
		"balances.malformed":    9,
		SettBalance:             100,
	} {
		v, err := s.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, v.Uint64(), key)
	}
}

func TestBuild_MissingMandatoryKey(t *testing.T) {
	results := vaultResults(nil)
	delete(results, StrategyBalanceOfPool)
	_, err := Build(1, 1, nil, results)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestBuild_OmitsPricePerShareWithoutSupply(t *testing.T) {
	s := makeSnap(t, 1, map[string]uint64{SettTotalSupply: 0})
	_, err := s.PricePerShare()
	assert.ErrorIs(t, err, ErrUndefined)
	assert.False(t, s.Has(SettPricePerFullShare))
	assert.NotContains(t, s.Keys(), SettPricePerFullShare)

	s = makeSnap(t, 1, nil)
	ppfs, err := s.PricePerShare()
	require.NoError(t, err)
	assert.Equal(t, uint64(1e18), ppfs.Uint64())
}

func TestSnap_UnknownKeysFailFast(t *testing.T) {
	s := makeSnap(t, 1, nil)
	for _, key := range []string{
		BalanceKey("want", "nobody"),
		ShareKey("digg", "user"),
		StrategyPerformanceFeeStrategist,
		"vaultFarm.earned",
	} {
		_, err := s.Get(key)
		assert.ErrorIs(t, err, ErrUnknownKey, key)
	}
	_, err := s.Balance("want", "nobody")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSnap_AccessorsReturnCopies(t *testing.T) {
	s := makeSnap(t, 1, map[string]uint64{BalanceKey("want", "user"): 7})

	b, err := s.Balance("want", "user")
	require.NoError(t, err)
	b.Add(b, uint256.NewInt(1))
	s.Sett().TotalSupply.SetUint64(0)

	b, err = s.Balance("want", "user")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), b.Uint64())
	assert.Equal(t, uint64(100), s.Sett().TotalSupply.Uint64())
}

func TestSnap_Keys(t *testing.T) {
	s := makeSnap(t, 1, map[string]uint64{BalanceKey("want", "user"): 7, "metaFarm.staked": 1})
	assert.Equal(t, []string{
		BalanceKey("want", "user"),
		"metaFarm.staked",
		SettAvailable,
		SettBalance,
		SettPricePerFullShare,
		SettTotalSupply,
		StrategyBalanceOf,
		StrategyBalanceOfPool,
		StrategyBalanceOfWant,
	}, s.Keys())
}
