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
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// contract is an entity living inside a MemorySubstrate. Implementations
// only touch the substrate while its lock is held.
type contract interface {
	read(m *MemorySubstrate, self common.Address, method string, args []any) (Value, error)
	send(m *MemorySubstrate, self, from common.Address, method string, args []any) error
	clone() contract
}

// MemorySubstrate is a deterministic in-memory ledger hosting vaults,
// strategies, tokens and their reward sources. A failing transaction
// leaves no trace.
type MemorySubstrate struct {
	mu        sync.Mutex
	height    uint64
	time      uint64
	nonce     uint64
	contracts map[common.Address]contract
	pending   []Log
}

// NewMemorySubstrate creates an empty ledger at the given block height and time.
func NewMemorySubstrate(height, time uint64) *MemorySubstrate {
	return &MemorySubstrate{
		height:    height,
		time:      time,
		contracts: make(map[common.Address]contract),
	}
}

func (m *MemorySubstrate) Read(ctx context.Context, call Call) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read(call)
}

func (m *MemorySubstrate) ReadBatch(ctx context.Context, calls []Call) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]Result, len(calls))
	for i, c := range calls {
		results[i].Value, results[i].Err = m.read(c)
	}
	return results, nil
}

func (m *MemorySubstrate) read(call Call) (Value, error) {
	c, ok := m.contracts[call.Target]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMethod, "no entity at %v", call.Target.Hex())
	}
	return c.read(m, call.Target, call.Method, call.Args)
}

func (m *MemorySubstrate) Send(ctx context.Context, tx Tx) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contracts[tx.To]
	if !ok {
		return nil, errors.Wrapf(ErrReverted, "no entity at %v", tx.To.Hex())
	}
	backup := make(map[common.Address]contract, len(m.contracts))
	for addr, existing := range m.contracts {
		backup[addr] = existing.clone()
	}
	m.pending = nil
	if err := c.send(m, tx.To, tx.From, tx.Method, tx.Args); err != nil {
		m.contracts = backup
		m.pending = nil
		return nil, errors.Wrapf(err, "%v", tx)
	}
	m.height++
	receipt := &Receipt{Block: m.height, Time: m.time, Logs: m.pending}
	m.pending = nil
	return receipt, nil
}

func (m *MemorySubstrate) AdvanceTime(ctx context.Context, seconds uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.time += seconds
	return nil
}

func (m *MemorySubstrate) MineBlock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height++
	return nil
}

func (m *MemorySubstrate) CurrentHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height, nil
}

func (m *MemorySubstrate) CurrentTime(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time, nil
}

func (m *MemorySubstrate) Close() error {
	return nil
}

// NewAccount returns a fresh, deterministic address without code.
func (m *MemorySubstrate) NewAccount() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newAddress()
}

func (m *MemorySubstrate) newAddress() common.Address {
	m.nonce++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], m.nonce)
	return common.BytesToAddress(crypto.Keccak256(seed[:]))
}

func (m *MemorySubstrate) deploy(c contract) common.Address {
	addr := m.newAddress()
	m.contracts[addr] = c
	return addr
}

func (m *MemorySubstrate) emit(l Log) {
	m.pending = append(m.pending, l)
}

// lookup resolves an entity of the expected kind.
func lookup[T contract](m *MemorySubstrate, addr common.Address) (T, error) {
	var zero T
	c, ok := m.contracts[addr]
	if !ok {
		return zero, errors.Newf("no entity at %v", addr.Hex())
	}
	t, ok := c.(T)
	if !ok {
		return zero, errors.Newf("entity at %v is a %T", addr.Hex(), c)
	}
	return t, nil
}

func revert(format string, args ...any) error {
	return errors.Wrapf(ErrReverted, format, args...)
}

func unknownMethod(method string) error {
	return errors.Wrapf(ErrUnknownMethod, "%v", method)
}

func maxUint256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

func argAddress(args []any, i int) (common.Address, error) {
	if i >= len(args) {
		return common.Address{}, errors.Newf("missing argument %d", i)
	}
	a, ok := args[i].(common.Address)
	if !ok {
		return common.Address{}, errors.Newf("argument %d: expected address, got %T", i, args[i])
	}
	return a, nil
}

func argUint(args []any, i int) (*uint256.Int, error) {
	if i >= len(args) {
		return nil, errors.Newf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case *uint256.Int:
		return new(uint256.Int).Set(v), nil
	case uint64:
		return uint256.NewInt(v), nil
	}
	return nil, errors.Newf("argument %d: expected uint256, got %T", i, args[i])
}

func cloneBalances(in map[common.Address]*uint256.Int) map[common.Address]*uint256.Int {
	out := make(map[common.Address]*uint256.Int, len(in))
	for k, v := range in {
		out[k] = new(uint256.Int).Set(v)
	}
	return out
}

func mulDiv(a, b, c *uint256.Int) *uint256.Int {
	if c.IsZero() {
		return new(uint256.Int)
	}
	res, _ := new(uint256.Int).MulDivOverflow(a, b, c)
	return res
}

func minOf(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}
