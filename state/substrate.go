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
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrReverted is returned when the system under test rejects a transaction.
	ErrReverted = errors.New("transaction reverted")
	// ErrUnknownMethod is returned when an entity does not expose the requested accessor or method.
	ErrUnknownMethod = errors.New("unknown method")
)

// Call is a read of one accessor of one entity. Method is a Solidity
// signature such as "balanceOf(address)".
type Call struct {
	Target common.Address
	Method string
	Args   []any
}

func (c Call) String() string {
	return fmt.Sprintf("%v.%v%v", c.Target.Hex(), methodName(c.Method), formatArgs(c.Args))
}

// Tx is a state-mutating invocation performed as From.
type Tx struct {
	From   common.Address
	To     common.Address
	Method string
	Args   []any
}

func (t Tx) String() string {
	return fmt.Sprintf("%v.%v%v from %v", t.To.Hex(), methodName(t.Method), formatArgs(t.Args), t.From.Hex())
}

// Log is an event emitted while executing a transaction.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt describes the effects of a successful transaction.
type Receipt struct {
	Block uint64
	Time  uint64
	Logs  []Log
}

// Result is the outcome of a single read inside a batch.
type Result struct {
	Value Value
	Err   error
}

//go:generate mockgen -source substrate.go -destination substrate_mock.go -package state

// Substrate is the system under test: a disposable ledger whose entities
// can be read, invoked on behalf of an identity, and whose clock is
// controlled by the caller.
type Substrate interface {
	// Read executes a single read-only call.
	Read(ctx context.Context, call Call) (Value, error)
	// ReadBatch executes all calls in a single round trip. A failing call
	// is reported in its Result and does not abort the batch; the returned
	// error is reserved for failures of the round trip itself.
	ReadBatch(ctx context.Context, calls []Call) ([]Result, error)
	// Send executes a transaction acting as tx.From.
	Send(ctx context.Context, tx Tx) (*Receipt, error)
	// AdvanceTime moves the clock forward without producing a block.
	AdvanceTime(ctx context.Context, seconds uint64) error
	// MineBlock produces an empty block at the current time.
	MineBlock(ctx context.Context) error
	CurrentHeight(ctx context.Context) (uint64, error)
	CurrentTime(ctx context.Context) (uint64, error)
	Close() error
}

// methodName strips the parameter list of a signature.
func methodName(method string) string {
	if i := strings.IndexByte(method, '('); i >= 0 {
		return method[:i]
	}
	return method
}

func formatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case common.Address:
			parts = append(parts, v.Hex())
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
