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

package simulation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/rewards"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/simulation/schedule"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/0xsoniclabs/aida-sett/state/proxy"
	"github.com/0xsoniclabs/aida-sett/tracer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

type simFixture struct {
	mem      *state.MemorySubstrate
	sub      *proxy.CounterSubstrate
	want     common.Address
	vault    state.Vault
	keeper   common.Address
	whale    common.Address
	accounts []common.Address
}

// newSimFixture deploys a staking vault compounding its want and a pool of
// twenty accounts.
func newSimFixture(t *testing.T) *simFixture {
	t.Helper()
	mem := state.NewMemorySubstrate(100, 1_000_000)
	f := &simFixture{
		mem:    mem,
		want:   mem.DeployToken("BADGER", 18),
		keeper: mem.NewAccount(),
		whale:  mem.NewAccount(),
	}
	var err error
	f.vault, err = mem.DeployVault(state.VaultSpec{
		Kind:                     "StrategyBadgerRewards",
		Want:                     f.want,
		Governance:               mem.NewAccount(),
		Strategist:               mem.NewAccount(),
		Keeper:                   f.keeper,
		Rewards:                  mem.NewAccount(),
		BadgerTree:               mem.NewAccount(),
		RewardToken:              f.want,
		RewardRate:               uint256.NewInt(1_000_000_000),
		RewardBudget:             ether(1_000),
		Stake:                    true,
		WithdrawalFee:            50,
		PerformanceFeeGovernance: 1_000,
	})
	require.NoError(t, err)
	require.NoError(t, mem.Mint(f.want, f.whale, ether(1_000_000)))
	for range 20 {
		f.accounts = append(f.accounts, mem.NewAccount())
	}
	f.sub = proxy.NewCounterProxy(mem)
	return f
}

func (f *simFixture) snap(t *testing.T, opts ...sett.Option) *sett.Manager {
	t.Helper()
	m, err := sett.NewManager(context.Background(), f.sub, f.vault.Sett, f.vault.Strategy, logger.NewLogger("critical", "simulation-test"), opts...)
	require.NoError(t, err)
	return m
}

func (f *simFixture) setup() Setup {
	return Setup{
		Sub:            f.sub,
		Accounts:       f.accounts,
		SettKeeper:     f.keeper,
		StrategyKeeper: f.keeper,
		Whales:         map[common.Address]common.Address{f.want: f.whale},
	}
}

func (f *simFixture) manager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(f.snap(t), f.setup(), logger.NewLogger("critical", "simulation-test"), opts...)
	require.NoError(t, err)
	return m
}

func (f *simFixture) balance(t *testing.T, token, account common.Address) *uint256.Int {
	t.Helper()
	v, err := f.mem.Read(context.Background(), state.Call{Target: token, Method: "balanceOf(address)", Args: []any{account}})
	require.NoError(t, err)
	u, err := v.Uint256()
	require.NoError(t, err)
	return u
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Provisioned", Provisioned.String())
	assert.Equal(t, "Randomized", Randomized.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestNewManager_RejectsInvalidSetup(t *testing.T) {
	f := newSimFixture(t)
	log := logger.NewLogger("critical", "simulation-test")

	_, err := NewManager(f.snap(t), Setup{}, log)
	assert.ErrorContains(t, err, "needs a substrate")

	_, err = NewManager(f.snap(t), f.setup(), log, WithNumUsers(0))
	assert.ErrorContains(t, err, "must be positive")

	_, err = NewManager(f.snap(t), f.setup(), log, WithMaxSleep(0))
	assert.ErrorContains(t, err, "maximal sleep")
}

func TestNewManager_TimeBasedSeed(t *testing.T) {
	f := newSimFixture(t)
	assert.NotZero(t, f.manager(t).Seed())
	assert.Equal(t, int64(5), f.manager(t, WithSeed(5)).Seed())
}

func TestManager_IllegalTransitions(t *testing.T) {
	ctx := context.Background()
	f := newSimFixture(t)
	m := f.manager(t, WithSeed(1), WithRounds(0))

	assert.ErrorIs(t, m.Randomize(), ErrInvalidState)
	assert.ErrorIs(t, m.Run(ctx), ErrInvalidState)
	assert.Equal(t, Idle, m.State())

	require.NoError(t, m.Provision(ctx))
	assert.ErrorIs(t, m.Provision(ctx), ErrInvalidState)
	assert.ErrorIs(t, m.Run(ctx), ErrInvalidState)
	assert.Equal(t, Provisioned, m.State())

	require.NoError(t, m.Randomize())
	assert.ErrorIs(t, m.Provision(ctx), ErrInvalidState)
	assert.ErrorIs(t, m.Randomize(), ErrInvalidState)
	assert.Equal(t, Randomized, m.State())

	require.NoError(t, m.Run(ctx))
	assert.Equal(t, Running, m.State())
	for _, err := range []error{m.Provision(ctx), m.Randomize(), m.Run(ctx)} {
		assert.ErrorIs(t, err, ErrInvalidState)
	}
}

func TestManager_ProvisionFundsDistinctUsers(t *testing.T) {
	f := newSimFixture(t)
	m := f.manager(t, WithSeed(3))
	initial := f.balance(t, f.want, f.whale)

	require.NoError(t, m.Provision(context.Background()))

	users := m.Users()
	require.Len(t, users, DefaultNumUsers)
	seen := make(map[common.Address]bool)
	funded := new(uint256.Int)
	for _, u := range users {
		assert.False(t, seen[u], "user %v sampled twice", u)
		seen[u] = true
		assert.Contains(t, f.accounts, u)
		funded.Add(funded, f.balance(t, f.want, u))
	}
	remaining := f.balance(t, f.want, f.whale)
	assert.Equal(t, new(uint256.Int).Sub(initial, remaining), funded)
	assert.True(t, remaining.Lt(initial))

	assert.Len(t, m.actors[RoleUser], DefaultNumUsers)
	assert.Len(t, m.actors[RoleSettKeeper], 1)
	assert.Len(t, m.actors[RoleStrategyKeeper], 1)
	assert.Len(t, m.actors[RoleChain], 1)
	assert.Empty(t, m.actors[RoleDigg])
}

func TestManager_ProvisionNeedsEnoughAccounts(t *testing.T) {
	f := newSimFixture(t)
	setup := f.setup()
	setup.Accounts = setup.Accounts[:3]
	m, err := NewManager(f.snap(t), setup, logger.NewLogger("critical", "simulation-test"))
	require.NoError(t, err)

	assert.ErrorIs(t, m.Provision(context.Background()), ErrTooFewAccounts)
	assert.Equal(t, Idle, m.State())
	assert.Empty(t, m.Users())
}

func TestManager_ProvisionAddsDiggActorForRebasingSystems(t *testing.T) {
	f := newSimFixture(t)
	m, err := NewManager(f.snap(t, sett.WithDigg(sett.Digg{})), f.setup(), logger.NewLogger("critical", "simulation-test"), WithSeed(1))
	require.NoError(t, err)
	require.NoError(t, m.Provision(context.Background()))
	assert.Len(t, m.actors[RoleDigg], 1)

	require.NoError(t, m.Randomize())
	assert.Equal(t, 5, m.schedule.Len())
	assert.Equal(t, 4, m.schedule.Find(RoleDigg))
}

func TestManager_RunEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newSimFixture(t)
	fp := filepath.Join(t.TempDir(), "trace.gz")
	trace, err := tracer.NewFileWriter(fp)
	require.NoError(t, err)
	ledger := rewards.NewLedger()

	const rounds = 60
	m := f.manager(t, WithSeed(42), WithRounds(rounds), WithMaxSleep(3600), WithTrace(trace), WithLedger(ledger))
	require.NoError(t, m.Provision(ctx))
	require.NoError(t, m.Randomize())
	require.NoError(t, m.Run(ctx))
	require.NoError(t, trace.Close())

	summary := m.Summary()
	assert.Equal(t, rounds, summary.Rounds)
	total := 0
	for _, n := range summary.Frequency {
		total += n
	}
	assert.Equal(t, rounds, total)
	for _, loss := range summary.Losses {
		assert.LessOrEqual(t, loss, float64(maxRoundTripLoss))
	}

	reader, err := tracer.NewFileReader(fp)
	require.NoError(t, err)
	records, err := tracer.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Len(t, records, rounds)
	var last uint64
	for i, r := range records {
		assert.Equal(t, i, r.Round)
		assert.Contains(t, roleOrder, r.Actor)
		assert.Contains(t, summary.Frequency, r.Action)
		assert.GreaterOrEqual(t, r.Block, last)
		last = r.Block
	}

	users := m.Users()
	for _, e := range ledger.Entries() {
		assert.Contains(t, users, e.Address)
	}
	assert.NotZero(t, f.sub.Stats().Sends)
}

func TestManager_RunIsReproducible(t *testing.T) {
	run := func() (Summary, []common.Address) {
		ctx := context.Background()
		f := newSimFixture(t)
		m := f.manager(t, WithSeed(7), WithRounds(30), WithMaxSleep(3600))
		require.NoError(t, m.Provision(ctx))
		require.NoError(t, m.Randomize())
		require.NoError(t, m.Run(ctx))
		return m.Summary(), m.Users()
	}
	first, firstUsers := run()
	second, secondUsers := run()
	assert.Equal(t, firstUsers, secondUsers)
	assert.Equal(t, first.Frequency, second.Frequency)
	assert.Equal(t, first.Losses, second.Losses)
}

type stubActor struct {
	actions []Action
}

func (a *stubActor) Role() string {
	return RoleUser
}

func (a *stubActor) GenerateAction() Action {
	next := a.actions[0]
	a.actions = a.actions[1:]
	return next
}

// randomized returns a manager whose only actor hands out the given actions.
func randomized(t *testing.T, f *simFixture, actions []Action, opts ...Option) *Manager {
	t.Helper()
	m := f.manager(t, append([]Option{WithSeed(1)}, opts...)...)
	require.NoError(t, m.Provision(context.Background()))
	require.NoError(t, m.Randomize())
	chain, err := schedule.Uniform([]string{RoleUser})
	require.NoError(t, err)
	m.schedule = chain
	m.actors = map[string][]Actor{RoleUser: {&stubActor{actions: actions}}}
	return m
}

func TestManager_RunStopsAtFirstFailure(t *testing.T) {
	f := newSimFixture(t)
	ctrl := gomock.NewController(t)
	ok := NewMockAction(ctrl)
	failing := NewMockAction(ctrl)
	boom := errors.New("boom")

	gomock.InOrder(
		ok.EXPECT().Run(gomock.Any()).Return(nil),
		failing.EXPECT().Run(gomock.Any()).Return(boom),
	)
	ok.EXPECT().Name().Return("stub").AnyTimes()
	failing.EXPECT().Name().Return("failing").AnyTimes()

	m := randomized(t, f, []Action{ok, failing}, WithRounds(5))
	err := m.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "round 1: failing failed")
	assert.Equal(t, Running, m.State())
	assert.Equal(t, 1, m.Summary().Rounds)
	assert.ErrorIs(t, m.Run(context.Background()), ErrInvalidState)
}

func TestManager_RunRecordsActions(t *testing.T) {
	f := newSimFixture(t)
	ctrl := gomock.NewController(t)
	action := NewMockAction(ctrl)
	action.EXPECT().Run(gomock.Any()).Return(nil)
	action.EXPECT().Name().Return("stub").AnyTimes()
	action.EXPECT().Amount().Return(uint256.NewInt(3))

	trace := tracer.NewMockFileWriter(ctrl)
	m := randomized(t, f, []Action{action}, WithRounds(1), WithTrace(trace))
	height, err := f.sub.CurrentHeight(context.Background())
	require.NoError(t, err)
	trace.EXPECT().Write(tracer.Record{Round: 0, Actor: RoleUser, Action: "stub", Amount: uint256.NewInt(3), Block: height})

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, map[string]int{"stub": 1}, m.Summary().Frequency)
}

func TestManager_RunHonoursCancellation(t *testing.T) {
	f := newSimFixture(t)
	m := randomized(t, f, nil, WithRounds(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Run(ctx), context.Canceled)
}

func TestSummary_LossStats(t *testing.T) {
	mean, std := Summary{}.LossStats()
	assert.Zero(t, mean)
	assert.Zero(t, std)

	mean, std = Summary{Losses: []float64{2}}.LossStats()
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, std)

	mean, std = Summary{Losses: []float64{1, 2, 3}}.LossStats()
	assert.InDelta(t, 2.0, mean, 1e-9)
	assert.InDelta(t, 1.0, std, 1e-9)
}
