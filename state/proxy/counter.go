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

package proxy

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/0xsoniclabs/aida-sett/state"
)

// Stats summarizes the traffic that went through a CounterSubstrate.
type Stats struct {
	Reads       uint64
	Batches     uint64
	BatchedRead uint64
	Sends       uint64
	Reverts     uint64
	Advances    uint64
	Seconds     uint64
	Blocks      uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("reads: %d, batches: %d (%d calls), sends: %d (%d reverted), time advances: %d (%ds), mined blocks: %d",
		s.Reads, s.Batches, s.BatchedRead, s.Sends, s.Reverts, s.Advances, s.Seconds, s.Blocks)
}

// NewCounterProxy wraps the given Substrate counting every operation.
func NewCounterProxy(sub state.Substrate) *CounterSubstrate {
	return &CounterSubstrate{sub: sub}
}

type CounterSubstrate struct {
	sub                                    state.Substrate
	reads, batches, batched                atomic.Uint64
	sends, reverts, advances, secs, blocks atomic.Uint64
}

func (s *CounterSubstrate) Stats() Stats {
	return Stats{
		Reads:       s.reads.Load(),
		Batches:     s.batches.Load(),
		BatchedRead: s.batched.Load(),
		Sends:       s.sends.Load(),
		Reverts:     s.reverts.Load(),
		Advances:    s.advances.Load(),
		Seconds:     s.secs.Load(),
		Blocks:      s.blocks.Load(),
	}
}

func (s *CounterSubstrate) Read(ctx context.Context, call state.Call) (state.Value, error) {
	s.reads.Add(1)
	return s.sub.Read(ctx, call)
}

func (s *CounterSubstrate) ReadBatch(ctx context.Context, calls []state.Call) ([]state.Result, error) {
	s.batches.Add(1)
	s.batched.Add(uint64(len(calls)))
	return s.sub.ReadBatch(ctx, calls)
}

func (s *CounterSubstrate) Send(ctx context.Context, tx state.Tx) (*state.Receipt, error) {
	s.sends.Add(1)
	receipt, err := s.sub.Send(ctx, tx)
	if err != nil {
		s.reverts.Add(1)
	}
	return receipt, err
}

func (s *CounterSubstrate) AdvanceTime(ctx context.Context, seconds uint64) error {
	s.advances.Add(1)
	s.secs.Add(seconds)
	return s.sub.AdvanceTime(ctx, seconds)
}

func (s *CounterSubstrate) MineBlock(ctx context.Context) error {
	s.blocks.Add(1)
	return s.sub.MineBlock(ctx)
}

func (s *CounterSubstrate) CurrentHeight(ctx context.Context) (uint64, error) {
	return s.sub.CurrentHeight(ctx)
}

func (s *CounterSubstrate) CurrentTime(ctx context.Context) (uint64, error) {
	return s.sub.CurrentTime(ctx)
}

func (s *CounterSubstrate) Close() error {
	return s.sub.Close()
}
