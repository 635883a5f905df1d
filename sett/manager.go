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

// Package sett drives a vault and its strategy through state-mutating
// operations, snapshotting the system around each of them and confirming
// the change against the invariants of the strategy family.
package sett

import (
	"context"
	"sort"
	"sync"

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/multicall"
	"github.com/0xsoniclabs/aida-sett/resolver"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/op/go-logging"
	"golang.org/x/exp/maps"
)

// ErrWantMismatch is returned when the strategy and the vault disagree on the deposited token.
var ErrWantMismatch = errors.New("strategy want differs from the vault token")

// Option configures a Manager.
type Option func(*Manager)

// WithKind overrides the strategy kind otherwise read from getName().
func WithKind(kind string) Option {
	return func(m *Manager) {
		m.kind = kind
	}
}

// WithConfirm enables or disables the invariant checks after each operation.
func WithConfirm(confirm bool) Option {
	return func(m *Manager) {
		m.confirm = confirm
	}
}

// WithStore appends every snapshot to the given history.
func WithStore(store *snapshot.Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithDigg enables rebases of a DIGG-like token.
func WithDigg(d Digg) Option {
	return func(m *Manager) {
		m.digg = &d
	}
}

// Outcome is a confirmed operation together with the state around it.
type Outcome struct {
	Before  *snapshot.Snap
	After   *snapshot.Snap
	Receipt *state.Receipt
}

// Manager owns the entity registry of one vault and the snapshots taken of it.
type Manager struct {
	sub      state.Substrate
	reader   *multicall.Reader
	log      logger.Logger
	resolver resolver.Resolver
	sys      resolver.System
	kind     string
	confirm  bool
	store    *snapshot.Store
	digg     *Digg

	mu       sync.Mutex
	entities map[string]common.Address
	snaps    map[uint64]*snapshot.Snap
}

// NewManager discovers the system around the given vault and strategy and
// registers its entities.
func NewManager(ctx context.Context, sub state.Substrate, settAddr, strategyAddr common.Address, log logger.Logger, opts ...Option) (*Manager, error) {
	m := &Manager{
		sub:      sub,
		reader:   multicall.NewReader(sub),
		log:      log,
		confirm:  true,
		entities: make(map[string]common.Address),
		snaps:    make(map[uint64]*snapshot.Snap),
	}
	for _, opt := range opts {
		opt(m)
	}

	controller, err := readAddress(ctx, sub, settAddr, "controller()")
	if err != nil {
		return nil, err
	}
	want, err := readAddress(ctx, sub, settAddr, "token()")
	if err != nil {
		return nil, err
	}
	strategyWant, err := readAddress(ctx, sub, strategyAddr, "want()")
	if err != nil {
		return nil, err
	}
	if want != strategyWant {
		return nil, errors.Wrapf(ErrWantMismatch, "vault %v, strategy %v", want.Hex(), strategyWant.Hex())
	}
	if m.kind == "" {
		v, err := sub.Read(ctx, state.Call{Target: strategyAddr, Method: "getName()"})
		if err != nil {
			return nil, errors.Wrap(err, "cannot read strategy kind")
		}
		if m.kind, err = v.Text(); err != nil {
			return nil, errors.Wrap(err, "cannot decode strategy kind")
		}
	}

	m.sys = resolver.System{Sett: settAddr, Strategy: strategyAddr, Controller: controller, Want: want, Reader: sub}
	if m.resolver, err = resolver.New(m.kind, m.sys); err != nil {
		return nil, err
	}

	governance, err := readAddress(ctx, sub, strategyAddr, "governance()")
	if err != nil {
		return nil, err
	}
	rewards, err := readAddress(ctx, sub, controller, "rewards()")
	if err != nil {
		return nil, err
	}
	strategist, err := readAddress(ctx, sub, strategyAddr, "strategist()")
	if err != nil {
		return nil, err
	}
	m.AddEntity("sett", settAddr)
	m.AddEntity("strategy", strategyAddr)
	m.AddEntity("controller", controller)
	m.AddEntity("governance", governance)
	m.AddEntity("governanceRewards", rewards)
	m.AddEntity("strategist", strategist)

	destinations, err := m.resolver.Destinations(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot resolve strategy destinations")
	}
	for key, addr := range destinations {
		m.AddEntity(key, addr)
	}
	log.Infof("managing %v vault %v with %d entities", m.kind, settAddr.Hex(), len(m.entities))
	return m, nil
}

func (m *Manager) Kind() string {
	return m.kind
}

func (m *Manager) Sett() common.Address {
	return m.sys.Sett
}

func (m *Manager) Strategy() common.Address {
	return m.sys.Strategy
}

func (m *Manager) Want() common.Address {
	return m.sys.Want
}

func (m *Manager) Controller() common.Address {
	return m.sys.Controller
}

func (m *Manager) Resolver() resolver.Resolver {
	return m.resolver
}

// AddEntity registers addr under key, replacing an earlier registration.
func (m *Manager) AddEntity(key string, addr common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[key] = addr
}

// Entities returns a copy of the registry.
func (m *Manager) Entities() map[string]common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]common.Address, len(m.entities))
	for k, v := range m.entities {
		out[k] = v
	}
	return out
}

// Snaps returns all snapshots taken so far, ordered by block height.
func (m *Manager) Snaps() []*snapshot.Snap {
	m.mu.Lock()
	defer m.mu.Unlock()
	heights := maps.Keys(m.snaps)
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	out := make([]*snapshot.Snap, len(heights))
	for i, h := range heights {
		out[i] = m.snaps[h]
	}
	return out
}

// Snap reads the current state of all registered entities plus the
// tracked ones. Tracked entities are not added to the registry.
func (m *Manager) Snap(ctx context.Context, tracked map[string]common.Address) (*snapshot.Snap, error) {
	return m.snap(ctx, tracked, "snap")
}

func (m *Manager) snap(ctx context.Context, tracked map[string]common.Address, label string) (*snapshot.Snap, error) {
	entities := m.Entities()
	for k, addr := range tracked {
		entities[k] = addr
	}

	height, err := m.sub.CurrentHeight(ctx)
	if err != nil {
		return nil, err
	}
	now, err := m.sub.CurrentTime(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := m.resolver.BalanceRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	settRequests, err := m.resolver.SettRequests(ctx)
	if err != nil {
		return nil, err
	}
	strategyRequests, err := m.resolver.StrategyRequests(ctx, entities)
	if err != nil {
		return nil, err
	}
	requests = append(append(requests, settRequests...), strategyRequests...)

	results, failures, err := m.reader.ExecutePartial(ctx, requests)
	if err != nil {
		return nil, err
	}
	// the price per share is undefined while there are no shares
	if _, failed := failures[snapshot.SettPricePerFullShare]; failed {
		if supply, err := results.Uint(snapshot.SettTotalSupply); err == nil && supply.IsZero() {
			delete(failures, snapshot.SettPricePerFullShare)
		}
	}
	if len(failures) > 0 {
		return nil, errors.Wrapf(multicall.JoinFailures(failures), "snapshot at block %d", height)
	}

	names := maps.Keys(entities)
	sort.Strings(names)
	s, err := snapshot.Build(height, now, names, results)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.snaps[height] = s
	m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Add(label, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WantBalance reads the want balance of an account.
func (m *Manager) WantBalance(ctx context.Context, account common.Address) (*uint256.Int, error) {
	return readUint(ctx, m.sub, m.sys.Want, "balanceOf(address)", account)
}

// SettBalance reads the vault shares held by an account.
func (m *Manager) SettBalance(ctx context.Context, account common.Address) (*uint256.Int, error) {
	return readUint(ctx, m.sub, m.sys.Sett, "balanceOf(address)", account)
}

type confirmation func(before, after *snapshot.Snap, p resolver.Params) error

// execute snapshots the system around tx and confirms the change with check.
func (m *Manager) execute(ctx context.Context, op string, tx state.Tx, p resolver.Params, check confirmation) (*Outcome, error) {
	tracked := map[string]common.Address{resolver.DefaultUser: tx.From}
	before, err := m.snap(ctx, tracked, op+".before")
	if err != nil {
		return nil, err
	}
	m.log.Debugf("%v: %v", op, tx)
	receipt, err := m.sub.Send(ctx, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "%v failed", op)
	}
	return m.conclude(ctx, op, tracked, before, receipt, p, check)
}

// conclude takes the after snapshot of an operation and confirms it.
func (m *Manager) conclude(ctx context.Context, op string, tracked map[string]common.Address, before *snapshot.Snap, receipt *state.Receipt, p resolver.Params, check confirmation) (*Outcome, error) {
	after, err := m.snap(ctx, tracked, op+".after")
	if err != nil {
		return nil, err
	}
	out := &Outcome{Before: before, After: after, Receipt: receipt}
	if !m.confirm {
		return out, nil
	}
	p.Receipt = receipt
	if err := check(before, after, p); err != nil {
		if errors.Is(err, resolver.ErrInvariant) {
			m.log.Errorf("%v of %v: %v\n%v", op, m.kind, err, snapshot.Compare(before, after))
		}
		return out, err
	}
	if m.log.IsEnabledFor(logging.DEBUG) {
		m.log.Debugf("%v confirmed\n%v", op, snapshot.Compare(before, after))
	}
	return out, nil
}

func readAddress(ctx context.Context, sub state.Substrate, target common.Address, method string) (common.Address, error) {
	v, err := sub.Read(ctx, state.Call{Target: target, Method: method})
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "cannot read %v", method)
	}
	addr, err := v.Address()
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "cannot decode %v", method)
	}
	return addr, nil
}

func readUint(ctx context.Context, sub state.Substrate, target common.Address, method string, args ...any) (*uint256.Int, error) {
	v, err := sub.Read(ctx, state.Call{Target: target, Method: method, Args: args})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %v", method)
	}
	u, err := v.Uint256()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode %v", method)
	}
	return u, nil
}
