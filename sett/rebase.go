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

package sett

import (
	"context"

	"github.com/0xsoniclabs/aida-sett/resolver"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// rebaseShiftPadding moves the clock slightly past the start of the rebase window.
const rebaseShiftPadding = 60

// ErrNoRebase is returned by Rebase on a Manager built without WithDigg.
var ErrNoRebase = errors.New("rebase machinery is not configured")

// Digg locates the monetary policy of a rebasing token.
type Digg struct {
	Orchestrator common.Address
	Oracle       common.Address
	Owner        common.Address
}

// CanRebase reports whether the manager was built with the rebase machinery.
func (m *Manager) CanRebase() bool {
	return m.digg != nil
}

// Rebase reports value to the market oracle and rebases the token in the
// next rebase window.
func (m *Manager) Rebase(ctx context.Context, value *uint256.Int) (*Outcome, error) {
	if m.digg == nil {
		return nil, ErrNoRebase
	}
	m.log.Infof("rebasing at value %v", value)
	tracked := map[string]common.Address{resolver.DefaultUser: m.digg.Owner}
	before, err := m.snap(ctx, tracked, "rebase.before")
	if err != nil {
		return nil, err
	}
	if err := m.shiftIntoRebaseWindow(ctx, value); err != nil {
		return nil, errors.Wrap(err, "cannot reach the rebase window")
	}
	receipt, err := m.sub.Send(ctx, state.Tx{From: m.digg.Owner, To: m.digg.Orchestrator, Method: "rebase()"})
	if err != nil {
		return nil, errors.Wrap(err, "rebase failed")
	}
	return m.conclude(ctx, "rebase", tracked, before, receipt, resolver.Params{Value: value}, m.resolver.ConfirmRebase)
}

// shiftIntoRebaseWindow advances the clock into the window of the next
// interval. The oracle report is pushed early enough for its delay to pass
// on arrival.
func (m *Manager) shiftIntoRebaseWindow(ctx context.Context, value *uint256.Int) error {
	interval, err := m.readUint64(ctx, m.digg.Orchestrator, "minRebaseTimeIntervalSec()")
	if err != nil {
		return err
	}
	if interval == 0 {
		return errors.New("rebase interval is zero")
	}
	offset, err := m.readUint64(ctx, m.digg.Orchestrator, "rebaseWindowOffsetSec()")
	if err != nil {
		return err
	}
	delay, err := m.readUint64(ctx, m.digg.Oracle, "reportDelaySec()")
	if err != nil {
		return err
	}
	now, err := m.sub.CurrentTime(ctx)
	if err != nil {
		return err
	}

	shift := interval - now%interval + offset + rebaseShiftPadding
	if shift > delay {
		if err := m.sub.AdvanceTime(ctx, shift-delay); err != nil {
			return err
		}
	}
	push := state.Tx{From: m.digg.Owner, To: m.digg.Oracle, Method: "setValueAndPush(uint256)", Args: []any{value}}
	if _, err := m.sub.Send(ctx, push); err != nil {
		return errors.Wrap(err, "cannot report market value")
	}
	if err := m.sub.AdvanceTime(ctx, delay); err != nil {
		return err
	}
	return m.sub.MineBlock(ctx)
}

func (m *Manager) readUint64(ctx context.Context, target common.Address, method string) (uint64, error) {
	v, err := readUint(ctx, m.sub, target, method)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Newf("%v does not fit 64 bits", method)
	}
	return v.Uint64(), nil
}
