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

// Package tracer records the actions of a simulation run as a gzip
// compressed text file with one record per line.
package tracer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"
)

const (
	separator = "\t"
	noAmount  = "-"
	numFields = 5
)

// Record is one executed action.
type Record struct {
	Round  int
	Actor  string
	Action string
	// Amount is nil for actions that move no funds.
	Amount *uint256.Int
	// Block is the height after the action.
	Block uint64
}

func (r Record) String() string {
	amount := noAmount
	if r.Amount != nil {
		amount = r.Amount.Dec()
	}
	return strings.Join([]string{
		strconv.Itoa(r.Round),
		r.Actor,
		r.Action,
		amount,
		strconv.FormatUint(r.Block, 10),
	}, separator)
}

// ParseRecord decodes a line written by Record.String.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, separator)
	if len(fields) != numFields {
		return Record{}, errors.Newf("malformed trace record %q: want %d fields, got %d", line, numFields, len(fields))
	}
	var (
		r   Record
		err error
	)
	if r.Round, err = strconv.Atoi(fields[0]); err != nil {
		return Record{}, errors.Wrapf(err, "malformed round in %q", line)
	}
	r.Actor = fields[1]
	r.Action = fields[2]
	if r.Actor == "" || r.Action == "" {
		return Record{}, errors.Newf("malformed trace record %q: empty actor or action", line)
	}
	if fields[3] != noAmount {
		if r.Amount, err = uint256.FromDecimal(fields[3]); err != nil {
			return Record{}, errors.Wrapf(err, "malformed amount in %q", line)
		}
	}
	if r.Block, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return Record{}, errors.Wrapf(err, "malformed block in %q", line)
	}
	return r, nil
}

func (r Record) format() string {
	return fmt.Sprintf("%v\n", r)
}
