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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Actor roles
const (
	RoleUser           = "user"
	RoleSettKeeper     = "settKeeper"
	RoleStrategyKeeper = "strategyKeeper"
	RoleChain          = "chain"
	RoleDigg           = "digg"
)

// roleOrder fixes the state numbering of the schedule.
var roleOrder = []string{RoleUser, RoleSettKeeper, RoleStrategyKeeper, RoleChain, RoleDigg}

// roleWeights is the relative frequency of each role in a run.
var roleWeights = map[string]float64{
	RoleUser:           4,
	RoleSettKeeper:     1,
	RoleStrategyKeeper: 1,
	RoleChain:          2,
	RoleDigg:           1,
}

func presentRoles(actors map[string][]Actor) []string {
	var out []string
	for _, role := range roleOrder {
		if len(actors[role]) > 0 {
			out = append(out, role)
		}
	}
	return out
}

// Rebase values are drawn from [minRebaseValue, minRebaseValue+rebaseValueRange].
const (
	minRebaseValue   = 500_000_000_000_000_000
	rebaseValueRange = 1_000_000_000_000_000_000
)

// Actor proposes the actions of one participant.
type Actor interface {
	Role() string
	// GenerateAction returns a fresh action; actions are never handed out twice.
	GenerateAction() Action
}

// userActor alternates deposits and withdrawals so that it never withdraws
// before depositing. Every other action on average is a round trip.
type userActor struct {
	w         *world
	user      common.Address
	deposited bool
}

func (a *userActor) Role() string {
	return RoleUser
}

func (a *userActor) GenerateAction() Action {
	if a.w.rg.Float64() < 0.5 {
		return &depositWithdrawHalfAction{w: a.w, user: a.user}
	}
	if a.deposited {
		a.deposited = false
		return &withdrawAllAction{w: a.w, user: a.user}
	}
	a.deposited = true
	return &depositAction{w: a.w, user: a.user}
}

type settKeeperActor struct {
	w      *world
	keeper common.Address
}

func (a *settKeeperActor) Role() string {
	return RoleSettKeeper
}

func (a *settKeeperActor) GenerateAction() Action {
	return &earnAction{w: a.w, keeper: a.keeper}
}

type strategyKeeperActor struct {
	w        *world
	keeper   common.Address
	tendable bool
}

func (a *strategyKeeperActor) Role() string {
	return RoleStrategyKeeper
}

func (a *strategyKeeperActor) GenerateAction() Action {
	if a.tendable && a.w.rg.Intn(2) == 1 {
		return &tendAction{w: a.w, keeper: a.keeper}
	}
	return &harvestAction{w: a.w, keeper: a.keeper}
}

// chainActor moves the clock independent of any vault.
type chainActor struct {
	w *world
}

func (a *chainActor) Role() string {
	return RoleChain
}

func (a *chainActor) GenerateAction() Action {
	if a.w.rg.Intn(2) == 0 {
		return &mineAction{w: a.w}
	}
	return &sleepAction{w: a.w, seconds: 1 + a.w.rg.Uint64()%a.w.maxSleep}
}

type diggActor struct {
	w *world
}

func (a *diggActor) Role() string {
	return RoleDigg
}

func (a *diggActor) GenerateAction() Action {
	value := uint256.NewInt(minRebaseValue + uint64(a.w.rg.Int63n(rebaseValueRange+1)))
	return &rebaseAction{w: a.w, value: value}
}
