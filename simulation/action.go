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
	"math/rand"

	"github.com/0xsoniclabs/aida-sett/resolver"
	"github.com/0xsoniclabs/aida-sett/rewards"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrActionReused is returned by a second Run of the same action.
var ErrActionReused = errors.New("action already ran")

// maxRoundTripLoss is the precision loss tolerated for a deposit that is
// withdrawn right away.
const maxRoundTripLoss = 2

//go:generate mockgen -source action.go -destination action_mock.go -package simulation

// Action is a single-use command bound to one actor.
type Action interface {
	// Name identifies the kind of action in traces and summaries.
	Name() string
	// Amount is the amount of funds or seconds the action moved; nil if none.
	Amount() *uint256.Int
	Run(ctx context.Context) error
}

// world is shared by all actors of one scenario.
type world struct {
	snap     *sett.Manager
	sub      state.Substrate
	rg       *rand.Rand
	ledger   *rewards.Ledger
	maxSleep uint64
	losses   []float64
}

// approve lets the vault pull any amount of want from user.
func (w *world) approve(ctx context.Context, user common.Address) error {
	_, err := w.sub.Send(ctx, state.Tx{
		From:   user,
		To:     w.snap.Want(),
		Method: "approve(address,uint256)",
		Args:   []any{w.snap.Sett(), new(uint256.Int).SetAllOne()},
	})
	return errors.Wrap(err, "cannot approve the vault")
}

// observe feeds the vault balance change of the acting user into the ledger.
func (w *world) observe(user common.Address, out *sett.Outcome) error {
	if w.ledger == nil {
		return nil
	}
	before, err := out.Before.Balance("sett", resolver.DefaultUser)
	if err != nil {
		return err
	}
	after, err := out.After.Balance("sett", resolver.DefaultUser)
	if err != nil {
		return err
	}
	switch {
	case after.Gt(before):
		return w.ledger.Deposit(user, out.After.Time(), new(uint256.Int).Sub(after, before))
	case after.Lt(before):
		return w.ledger.Withdraw(user, out.After.Time(), new(uint256.Int).Sub(before, after))
	}
	return nil
}

type once struct {
	done bool
}

func (o *once) claim(name string) error {
	if o.done {
		return errors.Wrapf(ErrActionReused, "%v", name)
	}
	o.done = true
	return nil
}

// depositAction deposits half of the want balance of a user.
type depositAction struct {
	once
	w      *world
	user   common.Address
	amount *uint256.Int
}

func (a *depositAction) Name() string {
	return "deposit"
}

func (a *depositAction) Amount() *uint256.Int {
	return a.amount
}

func (a *depositAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	balance, err := a.w.snap.WantBalance(ctx, a.user)
	if err != nil {
		return err
	}
	a.amount = new(uint256.Int).Rsh(balance, 1)
	if a.amount.IsZero() {
		return nil
	}
	if err := a.w.approve(ctx, a.user); err != nil {
		return err
	}
	out, err := a.w.snap.SettDeposit(ctx, a.user, a.amount)
	if err != nil {
		return err
	}
	return a.w.observe(a.user, out)
}

// withdrawAllAction redeems every share of a user.
type withdrawAllAction struct {
	once
	w      *world
	user   common.Address
	shares *uint256.Int
}

func (a *withdrawAllAction) Name() string {
	return "withdrawAll"
}

func (a *withdrawAllAction) Amount() *uint256.Int {
	return a.shares
}

func (a *withdrawAllAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	shares, err := a.w.snap.SettBalance(ctx, a.user)
	if err != nil {
		return err
	}
	a.shares = shares
	if shares.IsZero() {
		return nil
	}
	out, err := a.w.snap.SettWithdraw(ctx, a.user, shares)
	if err != nil {
		return err
	}
	return a.w.observe(a.user, out)
}

// depositWithdrawHalfAction deposits half of the want balance of a user and
// redeems the minted shares right away. The user may lose the withdrawal
// fee plus at most maxRoundTripLoss to rounding.
type depositWithdrawHalfAction struct {
	once
	w      *world
	user   common.Address
	amount *uint256.Int
}

func (a *depositWithdrawHalfAction) Name() string {
	return "depositWithdrawHalf"
}

func (a *depositWithdrawHalfAction) Amount() *uint256.Int {
	return a.amount
}

func (a *depositWithdrawHalfAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	starting, err := a.w.snap.WantBalance(ctx, a.user)
	if err != nil {
		return err
	}
	a.amount = new(uint256.Int).Rsh(starting, 1)
	if a.amount.IsZero() {
		return nil
	}
	if err := a.w.approve(ctx, a.user); err != nil {
		return err
	}
	deposit, err := a.w.snap.SettDeposit(ctx, a.user, a.amount)
	if err != nil {
		return err
	}
	if err := a.w.observe(a.user, deposit); err != nil {
		return err
	}
	minted, err := shareDelta(deposit)
	if err != nil {
		return err
	}

	fee := new(uint256.Int)
	if !minted.IsZero() {
		withdraw, err := a.w.snap.SettWithdraw(ctx, a.user, minted)
		if err != nil {
			return err
		}
		if err := a.w.observe(a.user, withdraw); err != nil {
			return err
		}
		if fee, err = feeCollected(withdraw); err != nil {
			return err
		}
	}

	ending, err := a.w.snap.WantBalance(ctx, a.user)
	if err != nil {
		return err
	}
	loss := new(uint256.Int)
	if ending.Lt(starting) {
		loss.Sub(starting, ending)
	}
	if loss.Gt(fee) {
		loss.Sub(loss, fee)
	} else {
		loss.Clear()
	}
	a.w.losses = append(a.w.losses, loss.Float64())
	if loss.GtUint64(maxRoundTripLoss) {
		return &resolver.InvariantError{
			Operation: a.Name(),
			Check:     "round trip loses at most 2 units beyond the withdrawal fee",
			Values: []resolver.Observation{
				{Key: snapshot.BalanceKey("want", resolver.DefaultUser), Before: starting, After: ending},
			},
		}
	}
	return nil
}

// shareDelta returns the shares minted to the acting user.
func shareDelta(out *sett.Outcome) (*uint256.Int, error) {
	before, err := out.Before.Balance("sett", resolver.DefaultUser)
	if err != nil {
		return nil, err
	}
	after, err := out.After.Balance("sett", resolver.DefaultUser)
	if err != nil {
		return nil, err
	}
	if !after.Gt(before) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(after, before), nil
}

// feeCollected returns the want received by the governance rewards.
func feeCollected(out *sett.Outcome) (*uint256.Int, error) {
	before, err := out.Before.Balance("want", "governanceRewards")
	if err != nil {
		return nil, err
	}
	after, err := out.After.Balance("want", "governanceRewards")
	if err != nil {
		return nil, err
	}
	if !after.Gt(before) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(after, before), nil
}

type earnAction struct {
	once
	w      *world
	keeper common.Address
}

func (a *earnAction) Name() string {
	return "earn"
}

func (a *earnAction) Amount() *uint256.Int {
	return nil
}

func (a *earnAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	_, err := a.w.snap.SettEarn(ctx, a.keeper)
	return err
}

type harvestAction struct {
	once
	w      *world
	keeper common.Address
}

func (a *harvestAction) Name() string {
	return "harvest"
}

func (a *harvestAction) Amount() *uint256.Int {
	return nil
}

func (a *harvestAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	_, err := a.w.snap.SettHarvest(ctx, a.keeper)
	return err
}

type tendAction struct {
	once
	w      *world
	keeper common.Address
}

func (a *tendAction) Name() string {
	return "tend"
}

func (a *tendAction) Amount() *uint256.Int {
	return nil
}

func (a *tendAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	_, err := a.w.snap.SettTend(ctx, a.keeper)
	return err
}

type mineAction struct {
	once
	w *world
}

func (a *mineAction) Name() string {
	return "mine"
}

func (a *mineAction) Amount() *uint256.Int {
	return nil
}

func (a *mineAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	return a.w.sub.MineBlock(ctx)
}

// sleepAction advances the clock and mines a block at the new time.
type sleepAction struct {
	once
	w       *world
	seconds uint64
}

func (a *sleepAction) Name() string {
	return "sleep"
}

func (a *sleepAction) Amount() *uint256.Int {
	return uint256.NewInt(a.seconds)
}

func (a *sleepAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	if err := a.w.sub.AdvanceTime(ctx, a.seconds); err != nil {
		return err
	}
	return a.w.sub.MineBlock(ctx)
}

type rebaseAction struct {
	once
	w     *world
	value *uint256.Int
}

func (a *rebaseAction) Name() string {
	return "rebase"
}

func (a *rebaseAction) Amount() *uint256.Int {
	return a.value
}

func (a *rebaseAction) Run(ctx context.Context) error {
	if err := a.claim(a.Name()); err != nil {
		return err
	}
	_, err := a.w.snap.Rebase(ctx, a.value)
	return err
}
