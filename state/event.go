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
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EventSpec describes an event whose fields are all non-indexed uint256 values.
type EventSpec struct {
	Name   string
	Fields []string
}

// Event is a decoded event; fields are addressed by name.
type Event struct {
	Name   string
	Fields map[string]*uint256.Int
}

func (e EventSpec) Signature() string {
	types := make([]string, len(e.Fields))
	for i := range types {
		types[i] = "uint256"
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

func (e EventSpec) Topic() common.Hash {
	return crypto.Keccak256Hash([]byte(e.Signature()))
}

func (e EventSpec) arguments() (abi.Arguments, error) {
	t, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	args := make(abi.Arguments, len(e.Fields))
	for i, f := range e.Fields {
		args[i] = abi.Argument{Name: f, Type: t}
	}
	return args, nil
}

// Encode builds the log emitted by emitter for the given field values.
func (e EventSpec) Encode(emitter common.Address, values ...*uint256.Int) (Log, error) {
	if len(values) != len(e.Fields) {
		return Log{}, errors.Newf("event %v has %d fields, got %d values", e.Name, len(e.Fields), len(values))
	}
	args, err := e.arguments()
	if err != nil {
		return Log{}, err
	}
	converted := make([]any, len(values))
	for i, v := range values {
		converted[i] = v.ToBig()
	}
	data, err := args.Pack(converted...)
	if err != nil {
		return Log{}, errors.Wrapf(err, "cannot encode event %v", e.Name)
	}
	return Log{Address: emitter, Topics: []common.Hash{e.Topic()}, Data: data}, nil
}

// Decode returns all occurrences of this event in the given logs.
func (e EventSpec) Decode(logs []Log) ([]Event, error) {
	args, err := e.arguments()
	if err != nil {
		return nil, err
	}
	topic := e.Topic()
	var events []Event
	for _, l := range logs {
		if len(l.Topics) == 0 || l.Topics[0] != topic {
			continue
		}
		values := map[string]any{}
		if err := args.UnpackIntoMap(values, l.Data); err != nil {
			return nil, errors.Wrapf(err, "cannot decode event %v", e.Name)
		}
		ev := Event{Name: e.Name, Fields: make(map[string]*uint256.Int, len(values))}
		for _, f := range e.Fields {
			v, ok := values[f].(*big.Int)
			if !ok {
				return nil, errors.Newf("event %v misses field %v", e.Name, f)
			}
			ev.Fields[f] = uint256.MustFromBig(v)
		}
		events = append(events, ev)
	}
	return events, nil
}

var (
	// TendEvent is emitted by a strategy when it restakes idle funds.
	TendEvent = EventSpec{Name: "Tend", Fields: []string{"tended"}}
	// HarvestEvent is emitted by a strategy when it realizes rewards.
	HarvestEvent = EventSpec{Name: "Harvest", Fields: []string{"harvested", "blockNumber"}}
	// HarvestStateEvent is emitted by pancake strategies with the outcome of a harvest.
	HarvestStateEvent = EventSpec{Name: "HarvestState", Fields: []string{"cakeHarvested", "cakeSold", "toStrategist", "toGovernance", "wantCompounded"}}
)
