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

package tracer

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_String(t *testing.T) {
	r := Record{Round: 3, Actor: "user", Action: "deposit", Amount: uint256.NewInt(1500), Block: 42}
	assert.Equal(t, "3\tuser\tdeposit\t1500\t42", r.String())

	r = Record{Round: 4, Actor: "chain", Action: "mine", Block: 43}
	assert.Equal(t, "4\tchain\tmine\t-\t43", r.String())
}

func TestRecord_ParseInvertsString(t *testing.T) {
	records := []Record{
		{Round: 0, Actor: "user", Action: "depositWithdrawHalf", Amount: uint256.NewInt(7), Block: 1},
		{Round: 12, Actor: "strategyKeeper", Action: "harvest", Block: 99},
	}
	for _, want := range records {
		got, err := ParseRecord(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRecord_ParseRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"TooFewFields", "1\tuser\tdeposit\t5", "want 5 fields"},
		{"BadRound", "x\tuser\tdeposit\t5\t1", "malformed round"},
		{"EmptyActor", "1\t\tdeposit\t5\t1", "empty actor"},
		{"BadAmount", "1\tuser\tdeposit\t-5\t1", "malformed amount"},
		{"BadBlock", "1\tuser\tdeposit\t5\tnext", "malformed block"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseRecord(test.line)
			assert.ErrorContains(t, err, test.want)
		})
	}
}
