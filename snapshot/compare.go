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

package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Compare renders every value that differs between two snapshots.
func Compare(before, after *Snap) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("block %d -> %d", before.Block(), after.Block()))
	t.AppendHeader(table.Row{"metric", "before", "after", "diff"})

	for _, key := range unionKeys(before, after) {
		b, errB := before.Get(key)
		a, errA := after.Get(key)
		switch {
		case errB != nil && errA != nil:
			continue
		case errB != nil:
			t.AppendRow(table.Row{key, "-", a.Dec(), "new"})
		case errA != nil:
			t.AppendRow(table.Row{key, b.Dec(), "-", "gone"})
		case !a.Eq(b):
			t.AppendRow(table.Row{key, b.Dec(), a.Dec(), Diff(b, a)})
		}
	}
	return t.Render()
}

// Table renders one snapshot; zero balances are left out.
func Table(s *Snap) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("block %d", s.Block()))
	t.AppendHeader(table.Row{"metric", "value"})
	for _, key := range s.Keys() {
		v, err := s.Get(key)
		if err != nil {
			continue
		}
		if v.IsZero() && (strings.HasPrefix(key, "balances.") || strings.HasPrefix(key, "shares.")) {
			continue
		}
		t.AppendRow(table.Row{key, v.Dec()})
	}
	return t.Render()
}

// Diff formats after-before as a signed decimal.
func Diff(before, after *uint256.Int) string {
	if after.Lt(before) {
		return "-" + new(uint256.Int).Sub(before, after).Dec()
	}
	return "+" + new(uint256.Int).Sub(after, before).Dec()
}

func unionKeys(a, b *Snap) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, s := range []*Snap{a, b} {
		for _, k := range s.Keys() {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
