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
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// oracle holds the last market value reported for a rebasing token.
type oracle struct {
	value       *uint256.Int
	reportTime  uint64
	reportDelay uint64
}

func (o *oracle) clone() contract {
	out := *o
	if o.value != nil {
		out.value = new(uint256.Int).Set(o.value)
	}
	return &out
}

// valid returns the reported value once the report delay has passed.
func (o *oracle) valid(now uint64) (*uint256.Int, bool) {
	if o.value == nil || o.reportTime+o.reportDelay > now {
		return nil, false
	}
	return new(uint256.Int).Set(o.value), true
}

func (o *oracle) read(m *MemorySubstrate, _ common.Address, method string, _ []any) (Value, error) {
	switch method {
	case "reportDelaySec()":
		return Uint64(o.reportDelay), nil
	case "getData()":
		v, ok := o.valid(m.time)
		if !ok {
			return nil, revert("no valid report")
		}
		return Uint(v), nil
	}
	return nil, unknownMethod(method)
}

func (o *oracle) send(m *MemorySubstrate, _, _ common.Address, method string, args []any) error {
	switch method {
	case "setValueAndPush(uint256)", "pushReport(uint256)":
		v, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if v.IsZero() {
			return revert("report must be positive")
		}
		o.value = v
		o.reportTime = m.time
		return nil
	}
	return unknownMethod(method)
}

// orchestrator rebases its token to the oracle value, once per interval
// and only inside the daily rebase window.
type orchestrator struct {
	token        common.Address
	oracle       common.Address
	owner        common.Address
	windowOffset uint64
	windowLength uint64
	interval     uint64
	lastRebase   uint64
}

func (o *orchestrator) clone() contract {
	out := *o
	return &out
}

func (o *orchestrator) read(_ *MemorySubstrate, _ common.Address, method string, _ []any) (Value, error) {
	switch method {
	case "rebaseWindowOffsetSec()":
		return Uint64(o.windowOffset), nil
	case "rebaseWindowLengthSec()":
		return Uint64(o.windowLength), nil
	case "minRebaseTimeIntervalSec()":
		return Uint64(o.interval), nil
	case "lastRebaseTimestampSec()":
		return Uint64(o.lastRebase), nil
	case "marketOracle()":
		return Addr(o.oracle), nil
	case "owner()":
		return Addr(o.owner), nil
	}
	return nil, unknownMethod(method)
}

func (o *orchestrator) send(m *MemorySubstrate, _, from common.Address, method string, _ []any) error {
	if method != "rebase()" {
		return unknownMethod(method)
	}
	if from != o.owner {
		return revert("onlyOwner")
	}
	now := m.time
	if within := now % o.interval; within < o.windowOffset || within >= o.windowOffset+o.windowLength {
		return revert("not in rebase window")
	}
	if o.lastRebase != 0 && o.lastRebase+o.interval > now {
		return revert("rebase too soon")
	}
	feed, err := lookup[*oracle](m, o.oracle)
	if err != nil {
		return err
	}
	value, ok := feed.valid(now)
	if !ok {
		return revert("no valid report")
	}
	token, err := lookup[*rebasingToken](m, o.token)
	if err != nil {
		return err
	}
	if err := token.rebase(mulDiv(token.baseSupply, value, uint256.NewInt(1e18))); err != nil {
		return err
	}
	o.lastRebase = now
	return nil
}

// router provides liquidity to registered pairs and mints LP tokens.
type router struct {
	pairs map[[2]common.Address]common.Address
}

func pairKey(a, b common.Address) [2]common.Address {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return [2]common.Address{a, b}
}

func (r *router) clone() contract {
	out := &router{pairs: make(map[[2]common.Address]common.Address, len(r.pairs))}
	for k, v := range r.pairs {
		out.pairs[k] = v
	}
	return out
}

func (r *router) read(_ *MemorySubstrate, _ common.Address, method string, args []any) (Value, error) {
	if method != "getPair(address,address)" {
		return nil, unknownMethod(method)
	}
	a, err := argAddress(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argAddress(args, 1)
	if err != nil {
		return nil, err
	}
	return Addr(r.pairs[pairKey(a, b)]), nil
}

func (r *router) send(m *MemorySubstrate, self, from common.Address, method string, args []any) error {
	if method != "addLiquidity(address,address,uint256,uint256,uint256,uint256,address,uint256)" {
		return unknownMethod(method)
	}
	tokens := make([]common.Address, 2)
	amounts := make([]*uint256.Int, 2)
	for i := range 2 {
		var err error
		if tokens[i], err = argAddress(args, i); err != nil {
			return err
		}
		if amounts[i], err = argUint(args, 2+i); err != nil {
			return err
		}
	}
	to, err := argAddress(args, 6)
	if err != nil {
		return err
	}
	pair, ok := r.pairs[pairKey(tokens[0], tokens[1])]
	if !ok {
		return revert("pair does not exist")
	}
	for i := range 2 {
		t, err := lookup[fungible](m, tokens[i])
		if err != nil {
			return err
		}
		if err := t.spend(from, self, amounts[i]); err != nil {
			return err
		}
		if err := t.transfer(from, pair, amounts[i]); err != nil {
			return err
		}
	}
	lp, err := lookup[*erc20](m, pair)
	if err != nil {
		return err
	}
	lp.mint(to, new(uint256.Int).Add(amounts[0], amounts[1]))
	return nil
}
