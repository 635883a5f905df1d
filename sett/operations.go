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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SettDeposit deposits amount of want into the vault on behalf of user.
func (m *Manager) SettDeposit(ctx context.Context, user common.Address, amount *uint256.Int) (*Outcome, error) {
	tx := state.Tx{From: user, To: m.sys.Sett, Method: "deposit(uint256)", Args: []any{amount}}
	return m.execute(ctx, "deposit", tx, resolver.Params{Amount: amount}, m.resolver.ConfirmDeposit)
}

// SettDepositAll deposits the whole want balance of user.
func (m *Manager) SettDepositAll(ctx context.Context, user common.Address) (*Outcome, error) {
	amount, err := m.WantBalance(ctx, user)
	if err != nil {
		return nil, err
	}
	tx := state.Tx{From: user, To: m.sys.Sett, Method: "depositAll()"}
	return m.execute(ctx, "depositAll", tx, resolver.Params{Amount: amount}, m.resolver.ConfirmDeposit)
}

// SettWithdraw burns shares of user for want.
func (m *Manager) SettWithdraw(ctx context.Context, user common.Address, shares *uint256.Int) (*Outcome, error) {
	tx := state.Tx{From: user, To: m.sys.Sett, Method: "withdraw(uint256)", Args: []any{shares}}
	return m.execute(ctx, "withdraw", tx, resolver.Params{Shares: shares}, m.resolver.ConfirmWithdraw)
}

// SettWithdrawAll burns every share held by user.
func (m *Manager) SettWithdrawAll(ctx context.Context, user common.Address) (*Outcome, error) {
	shares, err := m.SettBalance(ctx, user)
	if err != nil {
		return nil, err
	}
	return m.SettWithdraw(ctx, user, shares)
}

// SettEarn moves the available funds of the vault into the strategy.
func (m *Manager) SettEarn(ctx context.Context, keeper common.Address) (*Outcome, error) {
	tx := state.Tx{From: keeper, To: m.sys.Sett, Method: "earn()"}
	return m.execute(ctx, "earn", tx, resolver.Params{User: resolver.DefaultUser}, m.resolver.ConfirmEarn)
}

func (m *Manager) SettTend(ctx context.Context, keeper common.Address) (*Outcome, error) {
	tx := state.Tx{From: keeper, To: m.sys.Strategy, Method: "tend()"}
	return m.execute(ctx, "tend", tx, resolver.Params{}, m.resolver.ConfirmTend)
}

func (m *Manager) SettHarvest(ctx context.Context, keeper common.Address) (*Outcome, error) {
	tx := state.Tx{From: keeper, To: m.sys.Strategy, Method: "harvest()"}
	return m.execute(ctx, "harvest", tx, resolver.Params{}, m.resolver.ConfirmHarvest)
}

// SettMigrate pulls all funds of the strategy back into the vault.
func (m *Manager) SettMigrate(ctx context.Context, governance common.Address) (*Outcome, error) {
	tx := state.Tx{From: governance, To: m.sys.Controller, Method: "withdrawAll(address)", Args: []any{m.sys.Want}}
	return m.execute(ctx, "migrate", tx, resolver.Params{}, m.resolver.ConfirmMigrate)
}

// IsTendable reports whether the strategy accepts tend calls.
func (m *Manager) IsTendable(ctx context.Context) (bool, error) {
	v, err := m.sub.Read(ctx, state.Call{Target: m.sys.Strategy, Method: "isTendable()"})
	if err != nil {
		return false, err
	}
	return v.Bool()
}
