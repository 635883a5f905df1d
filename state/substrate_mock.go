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

// Package state is a generated GoMock package.
package state

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockSubstrate is a mock of Substrate interface.
type MockSubstrate struct {
	ctrl     *gomock.Controller
	recorder *MockSubstrateMockRecorder
	isgomock struct{}
}

// MockSubstrateMockRecorder is the mock recorder for MockSubstrate.
type MockSubstrateMockRecorder struct {
	mock *MockSubstrate
}

// NewMockSubstrate creates a new mock instance.
func NewMockSubstrate(ctrl *gomock.Controller) *MockSubstrate {
	mock := &MockSubstrate{ctrl: ctrl}
	mock.recorder = &MockSubstrateMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSubstrate) EXPECT() *MockSubstrateMockRecorder {
	return m.recorder
}

// AdvanceTime mocks base method.
func (m *MockSubstrate) AdvanceTime(ctx context.Context, seconds uint64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AdvanceTime", ctx, seconds)
	ret0, _ := ret[0].(error)
	return ret0
}

// AdvanceTime indicates an expected call of AdvanceTime.
func (mr *MockSubstrateMockRecorder) AdvanceTime(ctx, seconds any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AdvanceTime", reflect.TypeOf((*MockSubstrate)(nil).AdvanceTime), ctx, seconds)
}

// Close mocks base method.
func (m *MockSubstrate) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockSubstrateMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSubstrate)(nil).Close))
}

// CurrentHeight mocks base method.
func (m *MockSubstrate) CurrentHeight(ctx context.Context) (uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CurrentHeight", ctx)
	ret0, _ := ret[0].(uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CurrentHeight indicates an expected call of CurrentHeight.
func (mr *MockSubstrateMockRecorder) CurrentHeight(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CurrentHeight", reflect.TypeOf((*MockSubstrate)(nil).CurrentHeight), ctx)
}

// CurrentTime mocks base method.
func (m *MockSubstrate) CurrentTime(ctx context.Context) (uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CurrentTime", ctx)
	ret0, _ := ret[0].(uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CurrentTime indicates an expected call of CurrentTime.
func (mr *MockSubstrateMockRecorder) CurrentTime(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CurrentTime", reflect.TypeOf((*MockSubstrate)(nil).CurrentTime), ctx)
}

// MineBlock mocks base method.
func (m *MockSubstrate) MineBlock(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MineBlock", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

// MineBlock indicates an expected call of MineBlock.
func (mr *MockSubstrateMockRecorder) MineBlock(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MineBlock", reflect.TypeOf((*MockSubstrate)(nil).MineBlock), ctx)
}

// Read mocks base method.
func (m *MockSubstrate) Read(ctx context.Context, call Call) (Value, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Read", ctx, call)
	ret0, _ := ret[0].(Value)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Read indicates an expected call of Read.
func (mr *MockSubstrateMockRecorder) Read(ctx, call any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Read", reflect.TypeOf((*MockSubstrate)(nil).Read), ctx, call)
}

// ReadBatch mocks base method.
func (m *MockSubstrate) ReadBatch(ctx context.Context, calls []Call) ([]Result, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadBatch", ctx, calls)
	ret0, _ := ret[0].([]Result)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadBatch indicates an expected call of ReadBatch.
func (mr *MockSubstrateMockRecorder) ReadBatch(ctx, calls any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadBatch", reflect.TypeOf((*MockSubstrate)(nil).ReadBatch), ctx, calls)
}

// Send mocks base method.
func (m *MockSubstrate) Send(ctx context.Context, tx Tx) (*Receipt, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", ctx, tx)
	ret0, _ := ret[0].(*Receipt)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Send indicates an expected call of Send.
func (mr *MockSubstrateMockRecorder) Send(ctx, tx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockSubstrate)(nil).Send), ctx, tx)
}
