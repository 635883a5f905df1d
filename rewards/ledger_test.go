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

package rewards

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.Address{1}
	bob   = common.Address{2}
)

func TestLedger_AccumulatesShareSeconds(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(alice, 100, uint256.NewInt(10)))
	require.NoError(t, l.Deposit(alice, 110, uint256.NewInt(5)))
	require.NoError(t, l.Withdraw(alice, 120, uint256.NewInt(15)))

	e, found := l.Entry(alice)
	require.True(t, found)
	// 10*10 + 15*10
	assert.Equal(t, uint64(250), e.ShareSeconds.Uint64())
	assert.True(t, e.CurrentDeposited.IsZero())
	assert.Equal(t, uint64(120), e.LastUpdated)
}

func TestLedger_SameSecondAccruesNothing(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(alice, 100, uint256.NewInt(10)))
	require.NoError(t, l.Withdraw(alice, 100, uint256.NewInt(5)))
	e, _ := l.Entry(alice)
	assert.True(t, e.ShareSeconds.IsZero())
	assert.Equal(t, uint64(5), e.CurrentDeposited.Uint64())
}

func TestLedger_RejectsEventsFromThePast(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(alice, 100, uint256.NewInt(10)))
	err := l.Deposit(alice, 99, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrNonMonotonic)

	e, _ := l.Entry(alice)
	assert.Equal(t, uint64(10), e.CurrentDeposited.Uint64())
	assert.Equal(t, uint64(100), e.LastUpdated)

	// other addresses keep their own clock
	assert.NoError(t, l.Deposit(bob, 50, uint256.NewInt(1)))
}

func TestLedger_NegativeBalanceIsSurfaced(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(alice, 100, uint256.NewInt(10)))
	err := l.Withdraw(alice, 110, uint256.NewInt(11))
	assert.ErrorIs(t, err, ErrNegativeBalance)

	e, _ := l.Entry(alice)
	assert.Equal(t, uint64(10), e.CurrentDeposited.Uint64())
	assert.True(t, e.ShareSeconds.IsZero())
	assert.Equal(t, uint64(100), e.LastUpdated)

	assert.ErrorIs(t, NewLedger().Withdraw(bob, 1, uint256.NewInt(1)), ErrNegativeBalance)
}

func TestLedger_ShareSecondsNeverDecrease(t *testing.T) {
	l := NewLedger()
	amounts := []uint64{5, 3, 9, 1, 4}
	last := new(uint256.Int)
	for i, a := range amounts {
		ts := uint64(100 + 7*i)
		if i%2 == 0 {
			require.NoError(t, l.Deposit(alice, ts, uint256.NewInt(a)))
		} else {
			require.NoError(t, l.Withdraw(alice, ts, uint256.NewInt(a)))
		}
		e, _ := l.Entry(alice)
		assert.False(t, e.ShareSeconds.Lt(last))
		last = e.ShareSeconds
	}
}

func TestLedger_AdvanceAndDistribute(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(alice, 0, uint256.NewInt(3)))
	require.NoError(t, l.Deposit(bob, 0, uint256.NewInt(1)))
	require.NoError(t, l.Advance(10))
	total, err := l.TotalShareSeconds()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), total.Uint64())

	allocations, remainder, err := l.Distribute(uint256.NewInt(101))
	require.NoError(t, err)
	assert.Equal(t, uint64(75), allocations[alice].Uint64())
	assert.Equal(t, uint64(25), allocations[bob].Uint64())
	assert.Equal(t, uint64(1), remainder.Uint64())

	assert.ErrorIs(t, l.Advance(9), ErrNonMonotonic)
}

func TestLedger_TotalShareSecondsOverflow(t *testing.T) {
	l := NewLedger()
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	require.NoError(t, l.Deposit(alice, 0, half))
	require.NoError(t, l.Deposit(bob, 0, half))
	require.NoError(t, l.Advance(1))

	_, err := l.TotalShareSeconds()
	assert.ErrorIs(t, err, errOverflow)
	_, _, err = l.Distribute(uint256.NewInt(100))
	assert.ErrorIs(t, err, errOverflow)
}

func TestLedger_DistributeWithoutStake(t *testing.T) {
	l := NewLedger()
	_, _, err := l.Distribute(uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrNothingToDistribute)
}

func TestLedger_EntriesAreOrderedCopies(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Deposit(bob, 1, uint256.NewInt(1)))
	require.NoError(t, l.Deposit(alice, 1, uint256.NewInt(2)))
	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, alice, entries[0].Address)
	entries[0].CurrentDeposited.SetUint64(100)
	e, _ := l.Entry(alice)
	assert.Equal(t, uint64(2), e.CurrentDeposited.Uint64())
}
