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
	"errors"
	"testing"

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLoggingSubstrate_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	log := logger.NewMockLogger(ctrl)
	proxy := NewLoggerProxy(sub, log)

	tx := state.Tx{From: common.Address{1}, To: common.Address{2}, Method: "earn()"}
	gomock.InOrder(
		log.EXPECT().Debugf("Send, %v", tx),
		sub.EXPECT().Send(gomock.Any(), tx).Return(&state.Receipt{Block: 5}, nil),
		log.EXPECT().Debugf("Send, mined in block %d with %d logs", uint64(5), 0),
	)
	receipt, err := proxy.Send(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), receipt.Block)
}

func TestLoggingSubstrate_SendLogsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	log := logger.NewMockLogger(ctrl)
	proxy := NewLoggerProxy(sub, log)

	tx := state.Tx{Method: "harvest()"}
	expectedErr := errors.New("test error")
	log.EXPECT().Debugf("Send, %v", tx)
	sub.EXPECT().Send(gomock.Any(), tx).Return(nil, expectedErr)
	log.EXPECT().Errorf("Send, %v failed; %v", tx, expectedErr)

	_, err := proxy.Send(context.Background(), tx)
	assert.Equal(t, expectedErr, err)
}

func TestLoggingSubstrate_ReadBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	proxy := NewLoggerProxy(sub, logger.NewLogger("info", "test"))

	calls := []state.Call{{Method: "totalSupply()"}, {Method: "balance()"}}
	results := []state.Result{{Value: state.Uint64(1)}, {Err: state.ErrReverted}}
	sub.EXPECT().ReadBatch(gomock.Any(), calls).Return(results, nil)

	got, err := proxy.ReadBatch(context.Background(), calls)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestLoggingSubstrate_Clock(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := state.NewMockSubstrate(ctrl)
	proxy := NewLoggerProxy(sub, logger.NewLogger("info", "test"))
	ctx := context.Background()

	sub.EXPECT().AdvanceTime(ctx, uint64(60)).Return(nil)
	sub.EXPECT().MineBlock(ctx).Return(nil)
	sub.EXPECT().CurrentTime(ctx).Return(uint64(1060), nil)
	sub.EXPECT().Close().Return(nil)

	assert.NoError(t, proxy.AdvanceTime(ctx, 60))
	assert.NoError(t, proxy.MineBlock(ctx))
	now, err := proxy.CurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1060), now)
	assert.NoError(t, proxy.Close())
}
