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

package resolver

import (
	"fmt"
	"strings"

	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"
)

// Observation is a value implicated in a violated invariant.
type Observation struct {
	Key    string
	Before *uint256.Int
	After  *uint256.Int
}

func (o Observation) String() string {
	return fmt.Sprintf("%v: %v -> %v", o.Key, dec(o.Before), dec(o.After))
}

// InvariantError reports which check of which operation failed.
type InvariantError struct {
	Operation string
	Check     string
	Values    []Observation
}

func (e *InvariantError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("invariant violated on %v: %v", e.Operation, e.Check)
	}
	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		values[i] = v.String()
	}
	return fmt.Sprintf("invariant violated on %v: %v (%v)", e.Operation, e.Check, strings.Join(values, "; "))
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// checker evaluates the checks of one operation and keeps the first failure.
type checker struct {
	op        string
	pre, post *snapshot.Snap
	err       error
}

func newChecker(op string, before, after *snapshot.Snap) *checker {
	return &checker{op: op, pre: before, post: after}
}

func (c *checker) before(key string) *uint256.Int {
	return c.get(c.pre, key)
}

func (c *checker) after(key string) *uint256.Int {
	return c.get(c.post, key)
}

// get returns zero for missing keys and remembers the lookup failure.
func (c *checker) get(s *snapshot.Snap, key string) *uint256.Int {
	v, err := s.Get(key)
	if err != nil {
		if c.err == nil {
			c.err = errors.Wrapf(err, "cannot confirm %v", c.op)
		}
		return new(uint256.Int)
	}
	return v
}

// expect records a violation of check unless ok holds.
func (c *checker) expect(check string, ok bool, keys ...string) {
	if c.err != nil || ok {
		return
	}
	e := &InvariantError{Operation: c.op, Check: check}
	for _, key := range keys {
		o := Observation{Key: key}
		o.Before, _ = c.pre.Get(key)
		o.After, _ = c.post.Get(key)
		e.Values = append(e.Values, o)
	}
	c.err = e
}

func (c *checker) increased(check, key string) {
	c.expect(check, c.after(key).Gt(c.before(key)), key)
}

func (c *checker) decreased(check, key string) {
	c.expect(check, c.after(key).Lt(c.before(key)), key)
}

func (c *checker) notIncreased(check, key string) {
	c.expect(check, !c.after(key).Gt(c.before(key)), key)
}

func (c *checker) notDecreased(check, key string) {
	c.expect(check, !c.after(key).Lt(c.before(key)), key)
}

func (c *checker) unchanged(check, key string) {
	c.expect(check, c.after(key).Eq(c.before(key)), key)
}

func (c *checker) zero(check, key string) {
	c.expect(check, c.after(key).IsZero(), key)
}

// approx reports whether expected is within pct percent of actual. Equal
// values always match, including zero.
func approx(actual, expected *uint256.Int, pct uint64) bool {
	diff := new(uint256.Int)
	if actual.Gt(expected) {
		diff.Sub(actual, expected)
	} else {
		diff.Sub(expected, actual)
	}
	if diff.IsZero() {
		return true
	}
	bound := new(uint256.Int).Mul(actual, uint256.NewInt(pct))
	bound.Div(bound, uint256.NewInt(100))
	return diff.Lt(bound)
}

func add(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}

// sub saturates at zero.
func sub(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

func mulDiv(a, b, c *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Mul(a, b)
	return out.Div(out, c)
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "-"
	}
	return v.Dec()
}
