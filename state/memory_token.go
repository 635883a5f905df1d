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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// fungible is a token hosted by a MemorySubstrate.
type fungible interface {
	contract
	balanceOf(owner common.Address) *uint256.Int
	totalSupply() *uint256.Int
	transfer(from, to common.Address, amount *uint256.Int) error
	spend(owner, spender common.Address, amount *uint256.Int) error
}

type allowances map[common.Address]map[common.Address]*uint256.Int

func (a allowances) get(owner, spender common.Address) *uint256.Int {
	if v, ok := a[owner][spender]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

func (a allowances) set(owner, spender common.Address, amount *uint256.Int) {
	if a[owner] == nil {
		a[owner] = make(map[common.Address]*uint256.Int)
	}
	a[owner][spender] = new(uint256.Int).Set(amount)
}

func (a allowances) spend(owner, spender common.Address, amount *uint256.Int) error {
	current := a.get(owner, spender)
	if current.Eq(maxUint256()) {
		return nil
	}
	if current.Lt(amount) {
		return revert("transfer amount exceeds allowance")
	}
	a.set(owner, spender, current.Sub(current, amount))
	return nil
}

func (a allowances) clone() allowances {
	out := make(allowances, len(a))
	for owner, spenders := range a {
		out[owner] = cloneBalances(spenders)
	}
	return out
}

// erc20 is a plain fungible token.
type erc20 struct {
	name       string
	decimals   uint8
	supply     *uint256.Int
	balances   map[common.Address]*uint256.Int
	allowances allowances
}

func newErc20(name string, decimals uint8) *erc20 {
	return &erc20{
		name:       name,
		decimals:   decimals,
		supply:     new(uint256.Int),
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(allowances),
	}
}

func (t *erc20) clone() contract {
	return t.cloneErc20()
}

func (t *erc20) cloneErc20() *erc20 {
	return &erc20{
		name:       t.name,
		decimals:   t.decimals,
		supply:     new(uint256.Int).Set(t.supply),
		balances:   cloneBalances(t.balances),
		allowances: t.allowances.clone(),
	}
}

func (t *erc20) balanceOf(owner common.Address) *uint256.Int {
	if b, ok := t.balances[owner]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

func (t *erc20) totalSupply() *uint256.Int {
	return new(uint256.Int).Set(t.supply)
}

func (t *erc20) transfer(from, to common.Address, amount *uint256.Int) error {
	balance := t.balanceOf(from)
	if balance.Lt(amount) {
		return revert("%v: transfer amount exceeds balance", t.name)
	}
	t.balances[from] = balance.Sub(balance, amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	return nil
}

func (t *erc20) spend(owner, spender common.Address, amount *uint256.Int) error {
	return t.allowances.spend(owner, spender, amount)
}

func (t *erc20) mint(to common.Address, amount *uint256.Int) {
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	t.supply = new(uint256.Int).Add(t.supply, amount)
}

func (t *erc20) burn(from common.Address, amount *uint256.Int) error {
	balance := t.balanceOf(from)
	if balance.Lt(amount) {
		return revert("%v: burn amount exceeds balance", t.name)
	}
	t.balances[from] = balance.Sub(balance, amount)
	t.supply = new(uint256.Int).Sub(t.supply, amount)
	return nil
}

func (t *erc20) read(_ *MemorySubstrate, _ common.Address, method string, args []any) (Value, error) {
	switch method {
	case "balanceOf(address)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return Uint(t.balanceOf(owner)), nil
	case "totalSupply()":
		return Uint(t.supply), nil
	case "allowance(address,address)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		spender, err := argAddress(args, 1)
		if err != nil {
			return nil, err
		}
		return Uint(t.allowances.get(owner, spender)), nil
	case "decimals()":
		return Uint64(uint64(t.decimals)), nil
	case "name()", "symbol()":
		return Str(t.name), nil
	}
	return nil, unknownMethod(method)
}

func (t *erc20) send(_ *MemorySubstrate, self, from common.Address, method string, args []any) error {
	return sendErc20(t, self, from, method, args, t.allowances)
}

// sendErc20 implements the transfer surface shared by all tokens.
func sendErc20(t fungible, self, from common.Address, method string, args []any, allowed allowances) error {
	switch method {
	case "transfer(address,uint256)":
		to, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		amount, err := argUint(args, 1)
		if err != nil {
			return err
		}
		return t.transfer(from, to, amount)
	case "approve(address,uint256)":
		spender, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		amount, err := argUint(args, 1)
		if err != nil {
			return err
		}
		allowed.set(from, spender, amount)
		return nil
	case "transferFrom(address,address,uint256)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		to, err := argAddress(args, 1)
		if err != nil {
			return err
		}
		amount, err := argUint(args, 2)
		if err != nil {
			return err
		}
		if err := t.spend(owner, from, amount); err != nil {
			return err
		}
		return t.transfer(owner, to, amount)
	}
	return unknownMethod(method)
}

// initialGonsPerFragment fixes the share resolution of rebasing tokens.
var initialGonsPerFragment = uint256.NewInt(1_000_000_000_000_000_000)

// rebasingToken keeps balances as shares (gons) of a supply that can be
// rebased; fragment balances change on every rebase while shares do not.
type rebasingToken struct {
	name            string
	decimals        uint8
	baseSupply      *uint256.Int
	totalGons       *uint256.Int
	gonsPerFragment *uint256.Int
	gons            map[common.Address]*uint256.Int
	allowances      allowances
	monetaryPolicy  common.Address
}

func newRebasingToken(name string, decimals uint8, supply *uint256.Int, holder common.Address) *rebasingToken {
	total := new(uint256.Int).Mul(supply, initialGonsPerFragment)
	return &rebasingToken{
		name:            name,
		decimals:        decimals,
		baseSupply:      new(uint256.Int).Set(supply),
		totalGons:       total,
		gonsPerFragment: new(uint256.Int).Set(initialGonsPerFragment),
		gons:            map[common.Address]*uint256.Int{holder: new(uint256.Int).Set(total)},
		allowances:      make(allowances),
	}
}

func (t *rebasingToken) clone() contract {
	return &rebasingToken{
		name:            t.name,
		decimals:        t.decimals,
		baseSupply:      new(uint256.Int).Set(t.baseSupply),
		totalGons:       new(uint256.Int).Set(t.totalGons),
		gonsPerFragment: new(uint256.Int).Set(t.gonsPerFragment),
		gons:            cloneBalances(t.gons),
		allowances:      t.allowances.clone(),
		monetaryPolicy:  t.monetaryPolicy,
	}
}

func (t *rebasingToken) sharesOf(owner common.Address) *uint256.Int {
	if g, ok := t.gons[owner]; ok {
		return new(uint256.Int).Set(g)
	}
	return new(uint256.Int)
}

func (t *rebasingToken) balanceOf(owner common.Address) *uint256.Int {
	shares := t.sharesOf(owner)
	return shares.Div(shares, t.gonsPerFragment)
}

func (t *rebasingToken) totalSupply() *uint256.Int {
	return new(uint256.Int).Div(t.totalGons, t.gonsPerFragment)
}

func (t *rebasingToken) fragmentsToShares(amount *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(amount, t.gonsPerFragment)
}

func (t *rebasingToken) transfer(from, to common.Address, amount *uint256.Int) error {
	shares := t.fragmentsToShares(amount)
	balance := t.sharesOf(from)
	if balance.Lt(shares) {
		return revert("%v: transfer amount exceeds balance", t.name)
	}
	t.gons[from] = balance.Sub(balance, shares)
	t.gons[to] = new(uint256.Int).Add(t.sharesOf(to), shares)
	return nil
}

func (t *rebasingToken) spend(owner, spender common.Address, amount *uint256.Int) error {
	return t.allowances.spend(owner, spender, amount)
}

// rebase sets a new total supply while all share balances stay unchanged.
func (t *rebasingToken) rebase(supply *uint256.Int) error {
	if supply.IsZero() || supply.Gt(t.totalGons) {
		return revert("%v: invalid supply %v", t.name, supply)
	}
	t.gonsPerFragment = new(uint256.Int).Div(t.totalGons, supply)
	return nil
}

func (t *rebasingToken) read(m *MemorySubstrate, self common.Address, method string, args []any) (Value, error) {
	switch method {
	case "balanceOf(address)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return Uint(t.balanceOf(owner)), nil
	case "sharesOf(address)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return Uint(t.sharesOf(owner)), nil
	case "totalSupply()":
		return Uint(t.totalSupply()), nil
	case "totalShares()":
		return Uint(t.totalGons), nil
	case "fragmentsToShares(uint256)":
		amount, err := argUint(args, 0)
		if err != nil {
			return nil, err
		}
		return Uint(t.fragmentsToShares(amount)), nil
	case "sharesToFragments(uint256)":
		shares, err := argUint(args, 0)
		if err != nil {
			return nil, err
		}
		return Uint(shares.Div(shares, t.gonsPerFragment)), nil
	case "allowance(address,address)":
		owner, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		spender, err := argAddress(args, 1)
		if err != nil {
			return nil, err
		}
		return Uint(t.allowances.get(owner, spender)), nil
	case "decimals()":
		return Uint64(uint64(t.decimals)), nil
	case "name()", "symbol()":
		return Str(t.name), nil
	case "monetaryPolicy()":
		return Addr(t.monetaryPolicy), nil
	}
	return nil, unknownMethod(method)
}

func (t *rebasingToken) send(_ *MemorySubstrate, self, from common.Address, method string, args []any) error {
	return sendErc20(t, self, from, method, args, t.allowances)
}
