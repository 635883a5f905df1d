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
	"bytes"
	"context"
	"sort"

	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// ErrUnknownProvisioner is returned for a strategy kind without provisioner.
var ErrUnknownProvisioner = errors.New("no provisioner for strategy")

// percentageScale is the resolution of the random share of a whale balance.
const percentageScale = 1_000_000

// liquidityDeadline is how long an addLiquidity call stays valid in seconds.
const liquidityDeadline = 3600

// Provisioner funds the users of a scenario.
type Provisioner interface {
	// DistributeTokens hands every user a random share of the auxiliary tokens.
	DistributeTokens(ctx context.Context, users []common.Address) error
	// DistributeWant hands every user the asset deposited into the vault.
	DistributeWant(ctx context.Context, users []common.Address) error
}

type provisionerFactory func(*whaleProvisioner) (Provisioner, error)

var provisioners = map[string]provisionerFactory{
	"StrategyBadgerRewards":          newWhale,
	"StrategyBadgerLpMetaFarm":       newWhale,
	"StrategyHarvestMetaFarm":        newWhale,
	"StrategyPickleMetaFarm":         newWhale,
	"StrategyCurveGauge":             newWhale,
	"StrategyCurveGaugeRenBtcCrv":    newWhale,
	"StrategyCurveGaugeSbtcCrv":      newWhale,
	"StrategyCurveGaugeTbtcCrv":      newWhale,
	"StrategyCurveGaugex":            newWhale,
	"StrategyConvexStakingOptimizer": newWhale,

	"StrategyDiggRewards":     newDigg,
	"StabilizeStrategyDiggV1": newDigg,

	"StrategyUniGenericLp":           newLp,
	"StrategyBaseSushi":              newLp,
	"StrategySushiLpOptimizer":       newLp,
	"StrategySushiBadgerLpOptimizer": newLp,
	"StrategySushiBadgerWbtc":        newLp,
	"StrategyPancakeLpOptimizer":     newLp,
	"StrategyDiggLpMetaFarm":         newDiggLp,

	"StrategySushiDiggWbtcLpOptimizer": newDiggLp,
}

func newProvisioner(kind string, want common.Address, setup Setup, w *world) (Provisioner, error) {
	factory, found := provisioners[kind]
	if !found {
		return nil, errors.Wrapf(ErrUnknownProvisioner, "%v", kind)
	}
	return factory(&whaleProvisioner{w: w, want: want, setup: setup})
}

// whaleProvisioner moves a random share of the balance of every whale to each user.
type whaleProvisioner struct {
	w     *world
	want  common.Address
	setup Setup
}

func newWhale(p *whaleProvisioner) (Provisioner, error) {
	return p, nil
}

func (p *whaleProvisioner) DistributeTokens(ctx context.Context, users []common.Address) error {
	return p.distribute(ctx, users, func(token common.Address) bool { return token != p.want }, nil)
}

func (p *whaleProvisioner) DistributeWant(ctx context.Context, users []common.Address) error {
	if _, found := p.setup.Whales[p.want]; !found {
		return errors.Newf("no whale holds the want %v", p.want.Hex())
	}
	return p.distribute(ctx, users, func(token common.Address) bool { return token == p.want }, nil)
}

// distribute draws one random percentage per user and applies it to the
// selected whales and to extra, which may fund the user from other sources.
func (p *whaleProvisioner) distribute(ctx context.Context, users []common.Address, selected func(common.Address) bool, extra func(ctx context.Context, user common.Address, percentage uint64) error) error {
	tokens := sortedTokens(p.setup.Whales)
	for _, user := range users {
		percentage := uint64(p.w.rg.Float64() * percentageScale)
		for _, token := range tokens {
			if !selected(token) {
				continue
			}
			if err := p.transferShare(ctx, token, p.setup.Whales[token], user, percentage); err != nil {
				return err
			}
		}
		if extra != nil {
			if err := extra(ctx, user, percentage); err != nil {
				return err
			}
		}
	}
	return nil
}

// transferShare transfers percentage/percentageScale of the balance of holder.
func (p *whaleProvisioner) transferShare(ctx context.Context, token, holder, user common.Address, percentage uint64) error {
	balance, err := p.balanceOf(ctx, token, holder)
	if err != nil {
		return err
	}
	amount, overflow := new(uint256.Int).MulDivOverflow(balance, uint256.NewInt(percentage), uint256.NewInt(percentageScale))
	if overflow {
		return errors.Newf("share of %v overflows", balance)
	}
	if amount.IsZero() {
		return nil
	}
	_, err = p.w.sub.Send(ctx, state.Tx{From: holder, To: token, Method: "transfer(address,uint256)", Args: []any{user, amount}})
	return errors.Wrapf(err, "cannot fund %v with %v of %v", user.Hex(), amount, token.Hex())
}

func (p *whaleProvisioner) balanceOf(ctx context.Context, token, holder common.Address) (*uint256.Int, error) {
	v, err := p.w.sub.Read(ctx, state.Call{Target: token, Method: "balanceOf(address)", Args: []any{holder}})
	if err != nil {
		return nil, err
	}
	return v.Uint256()
}

// diggProvisioner additionally hands out DIGG held by the deployer.
type diggProvisioner struct {
	*whaleProvisioner
}

func newDigg(p *whaleProvisioner) (Provisioner, error) {
	if p.setup.DiggToken == (common.Address{}) {
		return nil, errors.New("digg provisioner needs the digg token")
	}
	if p.setup.Deployer == (common.Address{}) {
		return nil, errors.New("digg provisioner needs the deployer")
	}
	return &diggProvisioner{p}, nil
}

func (p *diggProvisioner) DistributeTokens(ctx context.Context, users []common.Address) error {
	digg := p.setup.DiggToken
	return p.distribute(ctx, users,
		func(token common.Address) bool { return token != p.want && token != digg },
		func(ctx context.Context, user common.Address, percentage uint64) error {
			return p.transferShare(ctx, digg, p.setup.Deployer, user, percentage)
		})
}

// DistributeWant is covered by the DIGG distribution when the want is DIGG.
func (p *diggProvisioner) DistributeWant(ctx context.Context, users []common.Address) error {
	if p.want == p.setup.DiggToken {
		return nil
	}
	return p.whaleProvisioner.DistributeWant(ctx, users)
}

// lpProvisioner mints the want by adding the whole balance of both pair
// tokens of each user as liquidity.
type lpProvisioner struct {
	tokens Provisioner
	*whaleProvisioner
}

func newLp(p *whaleProvisioner) (Provisioner, error) {
	if err := p.checkPair(); err != nil {
		return nil, err
	}
	return &lpProvisioner{tokens: p, whaleProvisioner: p}, nil
}

func newDiggLp(p *whaleProvisioner) (Provisioner, error) {
	if err := p.checkPair(); err != nil {
		return nil, err
	}
	tokens, err := newDigg(p)
	if err != nil {
		return nil, err
	}
	return &lpProvisioner{tokens: tokens, whaleProvisioner: p}, nil
}

func (p *whaleProvisioner) checkPair() error {
	if p.setup.Router == (common.Address{}) {
		return errors.New("lp provisioner needs a router")
	}
	if p.setup.Pair[0] == (common.Address{}) || p.setup.Pair[1] == (common.Address{}) {
		return errors.New("lp provisioner needs both pair tokens")
	}
	return nil
}

func (p *lpProvisioner) DistributeTokens(ctx context.Context, users []common.Address) error {
	return p.tokens.DistributeTokens(ctx, users)
}

func (p *lpProvisioner) DistributeWant(ctx context.Context, users []common.Address) error {
	router := p.setup.Router
	for _, user := range users {
		amounts := make([]*uint256.Int, 2)
		for i, token := range p.setup.Pair {
			balance, err := p.balanceOf(ctx, token, user)
			if err != nil {
				return err
			}
			amounts[i] = balance
			approve := state.Tx{From: user, To: token, Method: "approve(address,uint256)", Args: []any{router, balance}}
			if _, err := p.w.sub.Send(ctx, approve); err != nil {
				return errors.Wrap(err, "cannot approve the router")
			}
		}
		if amounts[0].IsZero() || amounts[1].IsZero() {
			continue
		}
		now, err := p.w.sub.CurrentTime(ctx)
		if err != nil {
			return err
		}
		tx := state.Tx{
			From:   user,
			To:     router,
			Method: "addLiquidity(address,address,uint256,uint256,uint256,uint256,address,uint256)",
			Args: []any{
				p.setup.Pair[0], p.setup.Pair[1],
				amounts[0], amounts[1],
				new(uint256.Int), new(uint256.Int),
				user, uint256.NewInt(now + liquidityDeadline),
			},
		}
		if _, err := p.w.sub.Send(ctx, tx); err != nil {
			return errors.Wrapf(err, "cannot add liquidity for %v", user.Hex())
		}
	}
	return nil
}

// sortedTokens returns the whale tokens in address order.
func sortedTokens(whales map[common.Address]common.Address) []common.Address {
	tokens := maps.Keys(whales)
	sort.Slice(tokens, func(i, j int) bool { return bytes.Compare(tokens[i].Bytes(), tokens[j].Bytes()) < 0 })
	return tokens
}
