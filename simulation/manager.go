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

// Package simulation drives randomized scenarios against a vault: it funds
// a set of users, then lets users, keepers and the chain clock act in an
// order sampled from a Markov chain while every operation is confirmed by
// the snapshot manager.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/rewards"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/simulation/schedule"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/0xsoniclabs/aida-sett/tracer"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// State is the phase of a Manager. Phases only move forward.
type State int

const (
	Idle State = iota
	Provisioned
	Randomized
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Provisioned:
		return "Provisioned"
	case Randomized:
		return "Randomized"
	case Running:
		return "Running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrInvalidState is returned for a phase transition out of order.
	ErrInvalidState = errors.New("invalid state")
	// ErrTooFewAccounts is returned when the account pool cannot supply the requested users.
	ErrTooFewAccounts = errors.New("account pool is smaller than the number of users")
)

// Simulation defaults
const (
	DefaultNumUsers = 10
	DefaultRounds   = 100
	// DefaultMaxSleep is ten days in seconds.
	DefaultMaxSleep = 10 * 24 * 60 * 60
)

// Setup lists the accounts and collaborators of the simulated system.
type Setup struct {
	Sub state.Substrate
	// Accounts is the pool users are sampled from.
	Accounts       []common.Address
	Deployer       common.Address
	SettKeeper     common.Address
	StrategyKeeper common.Address
	// Whales maps a token to a rich holder funding the users.
	Whales map[common.Address]common.Address
	// Router and Pair are used to mint liquidity tokens.
	Router common.Address
	Pair   [2]common.Address
	// DiggToken is distributed from the deployer.
	DiggToken common.Address
}

// Option configures a Manager.
type Option func(*Manager)

func WithNumUsers(n int) Option {
	return func(m *Manager) {
		m.numUsers = n
	}
}

func WithRounds(n int) Option {
	return func(m *Manager) {
		m.rounds = n
	}
}

// WithSeed fixes the random seed; zero picks a time based seed.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		m.seed = seed
	}
}

// WithMaxSleep bounds a single time advance of the chain actor in seconds.
func WithMaxSleep(seconds uint64) Option {
	return func(m *Manager) {
		m.w.maxSleep = seconds
	}
}

// WithTrace records every executed action.
func WithTrace(w tracer.FileWriter) Option {
	return func(m *Manager) {
		m.trace = w
	}
}

// WithLedger feeds the vault balance changes of the users into l.
func WithLedger(l *rewards.Ledger) Option {
	return func(m *Manager) {
		m.w.ledger = l
	}
}

// Manager runs one scenario. It is not reusable: a new Manager is needed
// for every run.
type Manager struct {
	setup       Setup
	log         logger.Logger
	w           *world
	provisioner Provisioner

	numUsers int
	rounds   int
	seed     int64
	trace    tracer.FileWriter

	state    State
	users    []common.Address
	actors   map[string][]Actor
	schedule *schedule.Chain
	summary  Summary
}

// NewManager prepares a scenario for the vault managed by snap.
func NewManager(snap *sett.Manager, setup Setup, log logger.Logger, opts ...Option) (*Manager, error) {
	if setup.Sub == nil {
		return nil, errors.New("simulation needs a substrate")
	}
	m := &Manager{
		setup:    setup,
		log:      log,
		numUsers: DefaultNumUsers,
		rounds:   DefaultRounds,
		w: &world{
			snap:     snap,
			sub:      setup.Sub,
			maxSleep: DefaultMaxSleep,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.numUsers <= 0 {
		return nil, errors.Newf("number of users must be positive, got %d", m.numUsers)
	}
	if m.w.maxSleep == 0 {
		return nil, errors.New("maximal sleep must be positive")
	}
	if m.seed == 0 {
		m.seed = time.Now().Unix()
	}
	m.w.rg = rand.New(rand.NewSource(m.seed))

	var err error
	if m.provisioner, err = newProvisioner(snap.Kind(), snap.Want(), setup, m.w); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) State() State {
	return m.state
}

// Seed returns the seed that reproduces the scenario.
func (m *Manager) Seed() int64 {
	return m.seed
}

// Users returns the provisioned users.
func (m *Manager) Users() []common.Address {
	return append([]common.Address(nil), m.users...)
}

// Summary describes the executed rounds.
func (m *Manager) Summary() Summary {
	return m.summary.clone()
}

// Provision samples distinct users from the account pool, funds them and
// builds the actors of the scenario.
func (m *Manager) Provision(ctx context.Context) error {
	if m.state != Idle {
		return errors.Wrapf(ErrInvalidState, "cannot provision in state %v", m.state)
	}
	accounts := m.setup.Accounts
	if len(accounts) < m.numUsers {
		return errors.Wrapf(ErrTooFewAccounts, "%d accounts for %d users", len(accounts), m.numUsers)
	}

	used := make(map[int]struct{}, m.numUsers)
	users := make([]common.Address, 0, m.numUsers)
	for len(users) < m.numUsers {
		idx := m.w.rg.Intn(len(accounts))
		if _, found := used[idx]; found {
			continue
		}
		used[idx] = struct{}{}
		users = append(users, accounts[idx])
	}

	if err := m.provisioner.DistributeTokens(ctx, users); err != nil {
		return errors.Wrap(err, "cannot distribute tokens")
	}
	if err := m.provisioner.DistributeWant(ctx, users); err != nil {
		return errors.Wrap(err, "cannot distribute want")
	}
	actors, err := m.newActors(ctx, users)
	if err != nil {
		return err
	}

	m.users = users
	m.actors = actors
	m.state = Provisioned
	m.log.Noticef("provisioned %d users for %v", len(users), m.w.snap.Kind())
	return nil
}

func (m *Manager) newActors(ctx context.Context, users []common.Address) (map[string][]Actor, error) {
	actors := make(map[string][]Actor)
	for _, u := range users {
		actors[RoleUser] = append(actors[RoleUser], &userActor{w: m.w, user: u})
	}
	actors[RoleSettKeeper] = []Actor{&settKeeperActor{w: m.w, keeper: m.setup.SettKeeper}}
	tendable, err := m.w.snap.IsTendable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read whether the strategy is tendable")
	}
	actors[RoleStrategyKeeper] = []Actor{&strategyKeeperActor{w: m.w, keeper: m.setup.StrategyKeeper, tendable: tendable}}
	actors[RoleChain] = []Actor{&chainActor{w: m.w}}
	if m.w.snap.CanRebase() {
		actors[RoleDigg] = []Actor{&diggActor{w: m.w}}
	}
	return actors, nil
}

// Randomize fixes the seed of the run and the schedule of the actor roles.
func (m *Manager) Randomize() error {
	if m.state != Provisioned {
		return errors.Wrapf(ErrInvalidState, "cannot randomize in state %v", m.state)
	}
	var (
		roles   []string
		weights []float64
	)
	for _, role := range presentRoles(m.actors) {
		roles = append(roles, role)
		weights = append(weights, roleWeights[role])
	}
	chain, err := schedule.Weighted(roles, weights)
	if err != nil {
		return errors.Wrap(err, "cannot build the action schedule")
	}
	m.w.rg.Seed(m.seed)
	m.log.Noticef("using random seed %d", m.seed)
	m.schedule = chain
	m.state = Randomized
	return nil
}

// Run executes the scheduled rounds and stops at the first failure. The
// manager stays in the Running state afterwards.
func (m *Manager) Run(ctx context.Context) error {
	if m.state != Randomized {
		return errors.Wrapf(ErrInvalidState, "cannot run in state %v", m.state)
	}
	m.state = Running

	start := time.Now()
	m.summary = newSummary()
	defer func() {
		m.summary.Elapsed = time.Since(start)
		m.summary.Losses = append([]float64(nil), m.w.losses...)
		m.logSummary()
	}()

	current := m.schedule.Find(RoleUser)
	for round := 0; round < m.rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		role, err := m.schedule.Label(current)
		if err != nil {
			return err
		}
		actors := m.actors[role]
		actor := actors[m.w.rg.Intn(len(actors))]
		action := actor.GenerateAction()
		if err := action.Run(ctx); err != nil {
			return errors.Wrapf(err, "round %d: %v failed", round, action.Name())
		}
		m.summary.add(action.Name())
		if err := m.record(ctx, round, role, action); err != nil {
			return err
		}
		if current, err = m.schedule.Sample(current, m.w.rg.Float64()); err != nil {
			return errors.Wrap(err, "cannot sample the next actor")
		}
	}
	if m.w.ledger != nil {
		now, err := m.setup.Sub.CurrentTime(ctx)
		if err != nil {
			return err
		}
		if err := m.w.ledger.Advance(now); err != nil {
			return errors.Wrap(err, "cannot close the reward period")
		}
	}
	return nil
}

func (m *Manager) record(ctx context.Context, round int, role string, action Action) error {
	if m.trace == nil {
		return nil
	}
	height, err := m.setup.Sub.CurrentHeight(ctx)
	if err != nil {
		return err
	}
	return m.trace.Write(tracer.Record{
		Round:  round,
		Actor:  role,
		Action: action.Name(),
		Amount: action.Amount(),
		Block:  height,
	})
}
