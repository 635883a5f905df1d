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

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/state"
)

// NewLoggerProxy wraps the given Substrate into a logging wrapper causing
// every operation to be logged for debugging.
func NewLoggerProxy(sub state.Substrate, log logger.Logger) state.Substrate {
	return &LoggingSubstrate{
		sub: sub,
		log: log,
	}
}

type LoggingSubstrate struct {
	sub state.Substrate
	log logger.Logger
}

func (s *LoggingSubstrate) Read(ctx context.Context, call state.Call) (state.Value, error) {
	s.log.Debugf("Read, %v", call)
	v, err := s.sub.Read(ctx, call)
	if err != nil {
		s.log.Errorf("Read, %v failed; %v", call, err)
	}
	return v, err
}

func (s *LoggingSubstrate) ReadBatch(ctx context.Context, calls []state.Call) ([]state.Result, error) {
	s.log.Debugf("ReadBatch, %d calls", len(calls))
	res, err := s.sub.ReadBatch(ctx, calls)
	if err != nil {
		s.log.Errorf("ReadBatch failed; %v", err)
		return res, err
	}
	for i, r := range res {
		if r.Err != nil {
			s.log.Debugf("ReadBatch, %v failed; %v", calls[i], r.Err)
		}
	}
	return res, nil
}

func (s *LoggingSubstrate) Send(ctx context.Context, tx state.Tx) (*state.Receipt, error) {
	s.log.Debugf("Send, %v", tx)
	receipt, err := s.sub.Send(ctx, tx)
	if err != nil {
		s.log.Errorf("Send, %v failed; %v", tx, err)
		return nil, err
	}
	s.log.Debugf("Send, mined in block %d with %d logs", receipt.Block, len(receipt.Logs))
	return receipt, nil
}

func (s *LoggingSubstrate) AdvanceTime(ctx context.Context, seconds uint64) error {
	s.log.Debugf("AdvanceTime, %d", seconds)
	err := s.sub.AdvanceTime(ctx, seconds)
	if err != nil {
		s.log.Errorf("AdvanceTime failed; %v", err)
	}
	return err
}

func (s *LoggingSubstrate) MineBlock(ctx context.Context) error {
	s.log.Debug("MineBlock")
	err := s.sub.MineBlock(ctx)
	if err != nil {
		s.log.Errorf("MineBlock failed; %v", err)
	}
	return err
}

func (s *LoggingSubstrate) CurrentHeight(ctx context.Context) (uint64, error) {
	return s.sub.CurrentHeight(ctx)
}

func (s *LoggingSubstrate) CurrentTime(ctx context.Context) (uint64, error) {
	return s.sub.CurrentTime(ctx)
}

func (s *LoggingSubstrate) Close() error {
	s.log.Debug("Close")
	return s.sub.Close()
}
