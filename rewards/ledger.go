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

// Package rewards accumulates time-weighted stake per address and shares
// a reward among the stakers in proportion to it.
package rewards

import (
	"bytes"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrNonMonotonic is returned for an event older than the last one of the same address.
	ErrNonMonotonic = errors.New("event precedes the last update")
	// ErrNegativeBalance is returned when a withdrawal exceeds the deposited stake.
	ErrNegativeBalance = errors.New("withdrawal exceeds the deposited balance")
	// ErrNothingToDistribute is returned when no share-seconds were accumulated.
	ErrNothingToDistribute = errors.New("no share-seconds accumulated")
	errOverflow            = errors.New("share-seconds overflow")
)

// Entry is the stake history of one address condensed into share-seconds.
type Entry struct {
	Address          common.Address
	CurrentDeposited *uint256.Int
	LastUpdated      uint64
	ShareSeconds     *uint256.Int
}

func (e *Entry) clone() Entry {
	return Entry{
		Address:          e.Address,
		CurrentDeposited: new(uint256.Int).Set(e.CurrentDeposited),
		LastUpdated:      e.LastUpdated,
		ShareSeconds:     new(uint256.Int).Set(e.ShareSeconds),
	}
}

// accrue adds the share-seconds earned by the current stake up to ts.
func (e *Entry) accrue(ts uint64) error {
	if ts < e.LastUpdated {
		return errors.Wrapf(ErrNonMonotonic, "%v: event at %d, last update at %d", e.Address.Hex(), ts, e.LastUpdated)
	}
	earned, overflow := new(uint256.Int).MulOverflow(e.CurrentDeposited, uint256.NewInt(ts-e.LastUpdated))
	if overflow {
		return errOverflow
	}
	total, overflow := new(uint256.Int).AddOverflow(e.ShareSeconds, earned)
	if overflow {
		return errOverflow
	}
	e.ShareSeconds = total
	e.LastUpdated = ts
	return nil
}

// Ledger holds one Entry per address.
type Ledger struct {
	mu      sync.Mutex
	entries map[common.Address]*Entry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[common.Address]*Entry)}
}

// Deposit records a stake increase of addr at timestamp ts.
func (l *Ledger) Deposit(addr common.Address, ts uint64, amount *uint256.Int) error {
	return l.apply(addr, ts, func(e *Entry) error {
		sum, overflow := new(uint256.Int).AddOverflow(e.CurrentDeposited, amount)
		if overflow {
			return errOverflow
		}
		e.CurrentDeposited = sum
		return nil
	})
}

// Withdraw records a stake decrease of addr at timestamp ts. A decrease
// beyond the deposited stake leaves the entry untouched.
func (l *Ledger) Withdraw(addr common.Address, ts uint64, amount *uint256.Int) error {
	return l.apply(addr, ts, func(e *Entry) error {
		if amount.Gt(e.CurrentDeposited) {
			return errors.Wrapf(ErrNegativeBalance, "%v withdraws %v of %v", addr.Hex(), amount, e.CurrentDeposited)
		}
		e.CurrentDeposited = new(uint256.Int).Sub(e.CurrentDeposited, amount)
		return nil
	})
}

func (l *Ledger) apply(addr common.Address, ts uint64, change func(*Entry) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, found := l.entries[addr]
	if !found {
		e = &Entry{Address: addr, CurrentDeposited: new(uint256.Int), LastUpdated: ts, ShareSeconds: new(uint256.Int)}
	}
	updated := e.clone()
	if err := updated.accrue(ts); err != nil {
		return err
	}
	if err := change(&updated); err != nil {
		return err
	}
	l.entries[addr] = &updated
	return nil
}

// Advance accrues every entry up to ts, closing a reward period.
func (l *Ledger) Advance(ts uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	updated := make(map[common.Address]*Entry, len(l.entries))
	for addr, e := range l.entries {
		c := e.clone()
		if err := c.accrue(ts); err != nil {
			return err
		}
		updated[addr] = &c
	}
	l.entries = updated
	return nil
}

// Entry returns a copy of the entry of addr.
func (l *Ledger) Entry(addr common.Address) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, found := l.entries[addr]
	if !found {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns copies of all entries ordered by address.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address.Bytes(), out[j].Address.Bytes()) < 0
	})
	return out
}

// TotalShareSeconds sums the share-seconds of every entry.
func (l *Ledger) TotalShareSeconds() (*uint256.Int, error) {
	return sumShareSeconds(l.Entries())
}

func sumShareSeconds(entries []Entry) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, e := range entries {
		if _, overflow := total.AddOverflow(total, e.ShareSeconds); overflow {
			return nil, errOverflow
		}
	}
	return total, nil
}

// Distribute allocates total in proportion to the share-seconds of every
// entry. The part lost to integer division is returned as remainder.
func (l *Ledger) Distribute(total *uint256.Int) (allocations map[common.Address]*uint256.Int, remainder *uint256.Int, err error) {
	entries := l.Entries()
	sum, err := sumShareSeconds(entries)
	if err != nil {
		return nil, nil, err
	}
	if sum.IsZero() {
		return nil, nil, ErrNothingToDistribute
	}
	allocations = make(map[common.Address]*uint256.Int, len(entries))
	remainder = new(uint256.Int).Set(total)
	for _, e := range entries {
		share, overflow := new(uint256.Int).MulDivOverflow(total, e.ShareSeconds, sum)
		if overflow {
			return nil, nil, errOverflow
		}
		allocations[e.Address] = share
		remainder.Sub(remainder, share)
	}
	return allocations, remainder, nil
}
