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

package state

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const maxBps = 10_000

// sett is a vault issuing shares against a want token and delegating
// idle funds to a strategy through its controller.
type sett struct {
	shares     *erc20
	want       common.Address
	controller common.Address
	governance common.Address
	keeper     common.Address
	min, max   uint64
}

func (s *sett) clone() contract {
	c := *s
	c.shares = s.shares.cloneErc20()
	return &c
}

func (s *sett) balance(m *MemorySubstrate, self common.Address) (*uint256.Int, error) {
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return nil, err
	}
	ctrl, err := lookup[*controller](m, s.controller)
	if err != nil {
		return nil, err
	}
	invested, err := ctrl.balanceOf(m, s.want)
	if err != nil {
		return nil, err
	}
	return invested.Add(invested, want.balanceOf(self)), nil
}

func (s *sett) available(m *MemorySubstrate, self common.Address) (*uint256.Int, error) {
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return nil, err
	}
	return mulDiv(want.balanceOf(self), uint256.NewInt(s.min), uint256.NewInt(s.max)), nil
}

func (s *sett) read(m *MemorySubstrate, self common.Address, method string, args []any) (Value, error) {
	switch method {
	case "token()":
		return Addr(s.want), nil
	case "controller()":
		return Addr(s.controller), nil
	case "governance()":
		return Addr(s.governance), nil
	case "keeper()":
		return Addr(s.keeper), nil
	case "min()":
		return Uint64(s.min), nil
	case "max()":
		return Uint64(s.max), nil
	case "balance()":
		b, err := s.balance(m, self)
		if err != nil {
			return nil, err
		}
		return Uint(b), nil
	case "available()":
		a, err := s.available(m, self)
		if err != nil {
			return nil, err
		}
		return Uint(a), nil
	case "getPricePerFullShare()":
		supply := s.shares.totalSupply()
		if supply.IsZero() {
			return nil, revert("division by zero")
		}
		b, err := s.balance(m, self)
		if err != nil {
			return nil, err
		}
		return Uint(mulDiv(b, uint256.NewInt(1e18), supply)), nil
	case "shares()":
		want, err := lookup[*rebasingToken](m, s.want)
		if err != nil {
			return nil, unknownMethod(method)
		}
		b, err := s.balance(m, self)
		if err != nil {
			return nil, err
		}
		// shares of the whole pool, including funds invested by the strategy
		return Uint(want.fragmentsToShares(b)), nil
	}
	return s.shares.read(m, self, method, args)
}

func (s *sett) send(m *MemorySubstrate, self, from common.Address, method string, args []any) error {
	switch method {
	case "deposit(uint256)":
		amount, err := argUint(args, 0)
		if err != nil {
			return err
		}
		return s.deposit(m, self, from, amount)
	case "depositAll()":
		want, err := lookup[fungible](m, s.want)
		if err != nil {
			return err
		}
		return s.deposit(m, self, from, want.balanceOf(from))
	case "withdraw(uint256)":
		shares, err := argUint(args, 0)
		if err != nil {
			return err
		}
		return s.withdraw(m, self, from, shares)
	case "withdrawAll()":
		return s.withdraw(m, self, from, s.shares.balanceOf(from))
	case "earn()":
		return s.earn(m, self, from)
	}
	return sendErc20(s.shares, self, from, method, args, s.shares.allowances)
}

func (s *sett) deposit(m *MemorySubstrate, self, from common.Address, amount *uint256.Int) error {
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return err
	}
	pool, err := s.balance(m, self)
	if err != nil {
		return err
	}
	if err := want.spend(from, self, amount); err != nil {
		return err
	}
	if err := want.transfer(from, self, amount); err != nil {
		return err
	}
	supply := s.shares.totalSupply()
	minted := new(uint256.Int).Set(amount)
	if !supply.IsZero() {
		if pool.IsZero() {
			return revert("deposit into an empty pool with outstanding shares")
		}
		minted = mulDiv(amount, supply, pool)
	}
	s.shares.mint(from, minted)
	return nil
}

func (s *sett) withdraw(m *MemorySubstrate, self, from common.Address, shares *uint256.Int) error {
	supply := s.shares.totalSupply()
	if supply.IsZero() {
		return revert("nothing to withdraw")
	}
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return err
	}
	pool, err := s.balance(m, self)
	if err != nil {
		return err
	}
	r := mulDiv(pool, shares, supply)
	if err := s.shares.burn(from, shares); err != nil {
		return err
	}

	b := want.balanceOf(self)
	if b.Lt(r) {
		missing := new(uint256.Int).Sub(r, b)
		ctrl, err := lookup[*controller](m, s.controller)
		if err != nil {
			return err
		}
		if err := ctrl.withdraw(m, s.want, missing); err != nil {
			return err
		}
		diff := new(uint256.Int).Sub(want.balanceOf(self), b)
		if diff.Lt(missing) {
			r = diff.Add(diff, b)
		}
	}
	return want.transfer(self, from, r)
}

func (s *sett) earn(m *MemorySubstrate, self, from common.Address) error {
	if from != s.keeper && from != s.governance {
		return revert("onlyAuthorizedActors")
	}
	amount, err := s.available(m, self)
	if err != nil || amount.IsZero() {
		return err
	}
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return err
	}
	ctrl, err := lookup[*controller](m, s.controller)
	if err != nil {
		return err
	}
	if err := want.transfer(self, ctrl.strategies[s.want], amount); err != nil {
		return err
	}
	return ctrl.earn(m, s.want)
}

// controller routes funds between vaults and strategies.
type controller struct {
	rewards    common.Address
	governance common.Address
	strategies map[common.Address]common.Address
	vaults     map[common.Address]common.Address
}

func (c *controller) clone() contract {
	out := *c
	out.strategies = make(map[common.Address]common.Address, len(c.strategies))
	for k, v := range c.strategies {
		out.strategies[k] = v
	}
	out.vaults = make(map[common.Address]common.Address, len(c.vaults))
	for k, v := range c.vaults {
		out.vaults[k] = v
	}
	return &out
}

func (c *controller) strategyFor(m *MemorySubstrate, want common.Address) (*strategy, error) {
	return lookup[*strategy](m, c.strategies[want])
}

func (c *controller) balanceOf(m *MemorySubstrate, want common.Address) (*uint256.Int, error) {
	if _, ok := c.strategies[want]; !ok {
		return new(uint256.Int), nil
	}
	s, err := c.strategyFor(m, want)
	if err != nil {
		return nil, err
	}
	return s.balanceOf(m)
}

func (c *controller) earn(m *MemorySubstrate, want common.Address) error {
	s, err := c.strategyFor(m, want)
	if err != nil {
		return err
	}
	return s.deposit(m)
}

func (c *controller) withdraw(m *MemorySubstrate, want common.Address, amount *uint256.Int) error {
	s, err := c.strategyFor(m, want)
	if err != nil {
		return err
	}
	return s.withdraw(m, c.vaults[want], amount)
}

func (c *controller) read(m *MemorySubstrate, _ common.Address, method string, args []any) (Value, error) {
	switch method {
	case "rewards()":
		return Addr(c.rewards), nil
	case "governance()":
		return Addr(c.governance), nil
	case "strategies(address)", "vaults(address)", "balanceOf(address)":
		want, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		switch method {
		case "strategies(address)":
			return Addr(c.strategies[want]), nil
		case "vaults(address)":
			return Addr(c.vaults[want]), nil
		}
		b, err := c.balanceOf(m, want)
		if err != nil {
			return nil, err
		}
		return Uint(b), nil
	}
	return nil, unknownMethod(method)
}

func (c *controller) send(m *MemorySubstrate, _, from common.Address, method string, args []any) error {
	switch method {
	case "withdrawAll(address)":
		if from != c.governance {
			return revert("onlyGovernance")
		}
		want, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		s, err := c.strategyFor(m, want)
		if err != nil {
			return err
		}
		return s.withdrawAll(m, c.vaults[want])
	}
	return unknownMethod(method)
}

// strategy invests want into an optional staking pool and realizes the
// rewards of its reward source on harvest.
type strategy struct {
	self       common.Address
	kind       string
	want       common.Address
	controller common.Address
	governance common.Address
	strategist common.Address
	keeper     common.Address
	badgerTree common.Address
	pool       common.Address
	poolName   string
	stake      bool
	tendable   bool

	withdrawalFee            uint64
	performanceFeeGovernance uint64
	performanceFeeStrategist uint64

	addresses map[string]common.Address
}

func (s *strategy) clone() contract {
	out := *s
	out.addresses = make(map[string]common.Address, len(s.addresses))
	for k, v := range s.addresses {
		out.addresses[k] = v
	}
	return &out
}

func (s *strategy) stakingPool(m *MemorySubstrate) (*stakingPool, error) {
	return lookup[*stakingPool](m, s.pool)
}

func (s *strategy) balanceOfWant(m *MemorySubstrate) (*uint256.Int, error) {
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return nil, err
	}
	return want.balanceOf(s.self), nil
}

func (s *strategy) balanceOfPool(m *MemorySubstrate) (*uint256.Int, error) {
	if !s.stake {
		return new(uint256.Int), nil
	}
	p, err := s.stakingPool(m)
	if err != nil {
		return nil, err
	}
	return p.stakedOf(s.self), nil
}

func (s *strategy) balanceOf(m *MemorySubstrate) (*uint256.Int, error) {
	idle, err := s.balanceOfWant(m)
	if err != nil {
		return nil, err
	}
	pooled, err := s.balanceOfPool(m)
	if err != nil {
		return nil, err
	}
	return idle.Add(idle, pooled), nil
}

func (s *strategy) rewardsSink(m *MemorySubstrate) (common.Address, error) {
	ctrl, err := lookup[*controller](m, s.controller)
	if err != nil {
		return common.Address{}, err
	}
	return ctrl.rewards, nil
}

// deposit stakes all idle want.
func (s *strategy) deposit(m *MemorySubstrate) error {
	if !s.stake {
		return nil
	}
	idle, err := s.balanceOfWant(m)
	if err != nil || idle.IsZero() {
		return err
	}
	p, err := s.stakingPool(m)
	if err != nil {
		return err
	}
	return p.stake(m, s.self, idle)
}

func (s *strategy) withdraw(m *MemorySubstrate, vault common.Address, amount *uint256.Int) error {
	idle, err := s.balanceOfWant(m)
	if err != nil {
		return err
	}
	if idle.Lt(amount) && s.stake {
		p, err := s.stakingPool(m)
		if err != nil {
			return err
		}
		missing := new(uint256.Int).Sub(amount, idle)
		if err := p.unstake(m, s.self, minOf(missing, p.stakedOf(s.self))); err != nil {
			return err
		}
		if idle, err = s.balanceOfWant(m); err != nil {
			return err
		}
	}
	amount = minOf(amount, idle)
	fee := mulDiv(amount, uint256.NewInt(s.withdrawalFee), uint256.NewInt(maxBps))
	sink, err := s.rewardsSink(m)
	if err != nil {
		return err
	}
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return err
	}
	if err := want.transfer(s.self, sink, fee); err != nil {
		return err
	}
	return want.transfer(s.self, vault, amount.Sub(amount, fee))
}

func (s *strategy) withdrawAll(m *MemorySubstrate, vault common.Address) error {
	if s.stake {
		p, err := s.stakingPool(m)
		if err != nil {
			return err
		}
		if err := p.unstake(m, s.self, p.stakedOf(s.self)); err != nil {
			return err
		}
	}
	idle, err := s.balanceOfWant(m)
	if err != nil {
		return err
	}
	want, err := lookup[fungible](m, s.want)
	if err != nil {
		return err
	}
	return want.transfer(s.self, vault, idle)
}

func (s *strategy) authorized(from common.Address) error {
	if from != s.keeper && from != s.governance {
		return revert("onlyAuthorizedActors")
	}
	return nil
}

func (s *strategy) harvest(m *MemorySubstrate, from common.Address) error {
	if err := s.authorized(from); err != nil {
		return err
	}
	gain := new(uint256.Int)
	if s.pool != (common.Address{}) {
		p, err := s.stakingPool(m)
		if err != nil {
			return err
		}
		if gain, err = p.claim(m, s.self); err != nil {
			return err
		}
		if err := s.distribute(m, p.rewardToken, gain); err != nil {
			return err
		}
	}
	l, err := HarvestEvent.Encode(s.self, gain, uint256.NewInt(m.height+1))
	if err != nil {
		return err
	}
	m.emit(l)
	return nil
}

// distribute pays performance fees out of a harvested amount and
// compounds or forwards the remainder.
func (s *strategy) distribute(m *MemorySubstrate, rewardToken common.Address, gain *uint256.Int) error {
	reward, err := lookup[fungible](m, rewardToken)
	if err != nil {
		return err
	}
	sink, err := s.rewardsSink(m)
	if err != nil {
		return err
	}
	governanceFee := mulDiv(gain, uint256.NewInt(s.performanceFeeGovernance), uint256.NewInt(maxBps))
	strategistFee := mulDiv(gain, uint256.NewInt(s.performanceFeeStrategist), uint256.NewInt(maxBps))
	if err := reward.transfer(s.self, sink, governanceFee); err != nil {
		return err
	}
	if err := reward.transfer(s.self, s.strategist, strategistFee); err != nil {
		return err
	}
	if rewardToken == s.want {
		return s.deposit(m)
	}
	rest := new(uint256.Int).Sub(gain, governanceFee)
	rest.Sub(rest, strategistFee)
	return reward.transfer(s.self, s.badgerTree, rest)
}

func (s *strategy) tend(m *MemorySubstrate, from common.Address) error {
	if err := s.authorized(from); err != nil {
		return err
	}
	if !s.tendable {
		return revert("strategy is not tendable")
	}
	idle, err := s.balanceOfWant(m)
	if err != nil {
		return err
	}
	tended := new(uint256.Int)
	if s.stake {
		tended.Set(idle)
		if err := s.deposit(m); err != nil {
			return err
		}
	}
	l, err := TendEvent.Encode(s.self, tended)
	if err != nil {
		return err
	}
	m.emit(l)
	return nil
}

func (s *strategy) read(m *MemorySubstrate, _ common.Address, method string, args []any) (Value, error) {
	uintOf := func(f func(*MemorySubstrate) (*uint256.Int, error)) (Value, error) {
		v, err := f(m)
		if err != nil {
			return nil, err
		}
		return Uint(v), nil
	}
	switch method {
	case "want()":
		return Addr(s.want), nil
	case "controller()":
		return Addr(s.controller), nil
	case "governance()":
		return Addr(s.governance), nil
	case "strategist()":
		return Addr(s.strategist), nil
	case "keeper()":
		return Addr(s.keeper), nil
	case "badgerTree()":
		return Addr(s.badgerTree), nil
	case "getName()":
		return Str(s.kind), nil
	case "isTendable()":
		return Bool(s.tendable), nil
	case "withdrawalFee()":
		return Uint64(s.withdrawalFee), nil
	case "performanceFeeGovernance()":
		return Uint64(s.performanceFeeGovernance), nil
	case "performanceFeeStrategist()":
		return Uint64(s.performanceFeeStrategist), nil
	case "balanceOf()":
		return uintOf(s.balanceOf)
	case "balanceOfWant()":
		return uintOf(s.balanceOfWant)
	case "balanceOfPool()":
		return uintOf(s.balanceOfPool)
	case "sharesOf()", "sharesOfWant()", "sharesOfPool()":
		want, err := lookup[*rebasingToken](m, s.want)
		if err != nil {
			return nil, unknownMethod(method)
		}
		var f func(*MemorySubstrate) (*uint256.Int, error)
		switch method {
		case "sharesOf()":
			f = s.balanceOf
		case "sharesOfWant()":
			return Uint(want.sharesOf(s.self)), nil
		default:
			f = s.balanceOfPool
		}
		v, err := f(m)
		if err != nil {
			return nil, err
		}
		return Uint(want.fragmentsToShares(v)), nil
	}
	if name, ok := strings.CutSuffix(method, "()"); ok {
		if name == s.poolName && s.pool != (common.Address{}) {
			return Addr(s.pool), nil
		}
		if addr, found := s.addresses[name]; found {
			return Addr(addr), nil
		}
	}
	return nil, unknownMethod(method)
}

func (s *strategy) send(m *MemorySubstrate, _, from common.Address, method string, _ []any) error {
	switch method {
	case "harvest()":
		return s.harvest(m, from)
	case "tend()":
		return s.tend(m, from)
	case "deposit()":
		if err := s.authorized(from); err != nil {
			return err
		}
		return s.deposit(m)
	}
	return unknownMethod(method)
}

// stakingPool distributes a constant reward rate among its stakers, or
// drips all of it to a single beneficiary when used as a faucet.
type stakingPool struct {
	self         common.Address
	stakingToken common.Address
	rewardToken  common.Address
	beneficiary  common.Address
	rate         *uint256.Int
	lastUpdate   uint64
	total        *uint256.Int
	staked       map[common.Address]*uint256.Int
	accrued      map[common.Address]*uint256.Int
}

func (p *stakingPool) clone() contract {
	out := *p
	out.rate = new(uint256.Int).Set(p.rate)
	out.total = new(uint256.Int).Set(p.total)
	out.staked = cloneBalances(p.staked)
	out.accrued = cloneBalances(p.accrued)
	return &out
}

func (p *stakingPool) stakedOf(account common.Address) *uint256.Int {
	if v, ok := p.staked[account]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

func (p *stakingPool) earned(now uint64, account common.Address) *uint256.Int {
	e := new(uint256.Int)
	if v, ok := p.accrued[account]; ok {
		e.Set(v)
	}
	if now <= p.lastUpdate {
		return e
	}
	reward := new(uint256.Int).Mul(p.rate, uint256.NewInt(now-p.lastUpdate))
	switch {
	case p.beneficiary != (common.Address{}):
		if account == p.beneficiary {
			e.Add(e, reward)
		}
	case !p.total.IsZero():
		e.Add(e, mulDiv(reward, p.stakedOf(account), p.total))
	}
	return e
}

func (p *stakingPool) settle(now uint64) {
	if now <= p.lastUpdate {
		return
	}
	updated := make(map[common.Address]*uint256.Int, len(p.staked)+1)
	for account := range p.staked {
		updated[account] = p.earned(now, account)
	}
	if p.beneficiary != (common.Address{}) {
		updated[p.beneficiary] = p.earned(now, p.beneficiary)
	}
	for account, e := range updated {
		p.accrued[account] = e
	}
	p.lastUpdate = now
}

// rewardBudget is the part of the pool's reward token balance not owed to stakers.
func (p *stakingPool) rewardBudget(m *MemorySubstrate) (*uint256.Int, error) {
	reward, err := lookup[fungible](m, p.rewardToken)
	if err != nil {
		return nil, err
	}
	budget := reward.balanceOf(p.self)
	if p.rewardToken == p.stakingToken {
		if budget.Lt(p.total) {
			return new(uint256.Int), nil
		}
		budget.Sub(budget, p.total)
	}
	return budget, nil
}

func (p *stakingPool) stake(m *MemorySubstrate, from common.Address, amount *uint256.Int) error {
	token, err := lookup[fungible](m, p.stakingToken)
	if err != nil {
		return err
	}
	p.settle(m.time)
	if err := token.transfer(from, p.self, amount); err != nil {
		return err
	}
	p.staked[from] = p.stakedOf(from).Add(p.stakedOf(from), amount)
	p.total = new(uint256.Int).Add(p.total, amount)
	return nil
}

func (p *stakingPool) unstake(m *MemorySubstrate, to common.Address, amount *uint256.Int) error {
	token, err := lookup[fungible](m, p.stakingToken)
	if err != nil {
		return err
	}
	p.settle(m.time)
	staked := p.stakedOf(to)
	if staked.Lt(amount) {
		return revert("withdraw amount exceeds stake")
	}
	p.staked[to] = staked.Sub(staked, amount)
	p.total = new(uint256.Int).Sub(p.total, amount)
	return token.transfer(p.self, to, amount)
}

func (p *stakingPool) claim(m *MemorySubstrate, to common.Address) (*uint256.Int, error) {
	reward, err := lookup[fungible](m, p.rewardToken)
	if err != nil {
		return nil, err
	}
	p.settle(m.time)
	budget, err := p.rewardBudget(m)
	if err != nil {
		return nil, err
	}
	owed := p.earned(m.time, to)
	amount := minOf(owed, budget)
	if err := reward.transfer(p.self, to, amount); err != nil {
		return nil, err
	}
	p.accrued[to] = owed.Sub(owed, amount)
	return amount, nil
}

func (p *stakingPool) read(m *MemorySubstrate, _ common.Address, method string, args []any) (Value, error) {
	switch method {
	case "earned(address)", "balanceOf(address)":
		account, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		if method == "earned(address)" {
			return Uint(p.earned(m.time, account)), nil
		}
		return Uint(p.stakedOf(account)), nil
	case "earned()":
		return Uint(p.earned(m.time, p.beneficiary)), nil
	case "totalSupply()":
		return Uint(p.total), nil
	case "rewardRate()":
		return Uint(p.rate), nil
	case "rewardsToken()":
		return Addr(p.rewardToken), nil
	case "stakingToken()":
		return Addr(p.stakingToken), nil
	}
	return nil, unknownMethod(method)
}

func (p *stakingPool) send(m *MemorySubstrate, _, from common.Address, method string, args []any) error {
	switch method {
	case "stake(uint256)", "withdraw(uint256)":
		amount, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if method == "stake(uint256)" {
			return p.stake(m, from, amount)
		}
		return p.unstake(m, from, amount)
	case "getReward()":
		_, err := p.claim(m, from)
		return err
	}
	return unknownMethod(method)
}
