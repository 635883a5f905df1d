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

// Package resolver is a generated GoMock package.
package resolver

import (
	context "context"
	reflect "reflect"

	multicall "github.com/0xsoniclabs/aida-sett/multicall"
	snapshot "github.com/0xsoniclabs/aida-sett/snapshot"
	common "github.com/ethereum/go-ethereum/common"
	gomock "go.uber.org/mock/gomock"
)

// MockResolver is a mock of Resolver interface.
type MockResolver struct {
	ctrl     *gomock.Controller
	recorder *MockResolverMockRecorder
	isgomock struct{}
}

// MockResolverMockRecorder is the mock recorder for MockResolver.
type MockResolverMockRecorder struct {
	mock *MockResolver
}

// NewMockResolver creates a new mock instance.
func NewMockResolver(ctrl *gomock.Controller) *MockResolver {
	mock := &MockResolver{ctrl: ctrl}
	mock.recorder = &MockResolverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockResolver) EXPECT() *MockResolverMockRecorder {
	return m.recorder
}

// BalanceRequests mocks base method.
func (m *MockResolver) BalanceRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BalanceRequests", ctx, entities)
	ret0, _ := ret[0].([]multicall.Request)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BalanceRequests indicates an expected call of BalanceRequests.
func (mr *MockResolverMockRecorder) BalanceRequests(ctx, entities any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BalanceRequests", reflect.TypeOf((*MockResolver)(nil).BalanceRequests), ctx, entities)
}

// ConfirmDeposit mocks base method.
func (m *MockResolver) ConfirmDeposit(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmDeposit", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmDeposit indicates an expected call of ConfirmDeposit.
func (mr *MockResolverMockRecorder) ConfirmDeposit(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmDeposit", reflect.TypeOf((*MockResolver)(nil).ConfirmDeposit), before, after, p)
}

// ConfirmEarn mocks base method.
func (m *MockResolver) ConfirmEarn(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmEarn", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmEarn indicates an expected call of ConfirmEarn.
func (mr *MockResolverMockRecorder) ConfirmEarn(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmEarn", reflect.TypeOf((*MockResolver)(nil).ConfirmEarn), before, after, p)
}

// ConfirmHarvest mocks base method.
func (m *MockResolver) ConfirmHarvest(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmHarvest", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmHarvest indicates an expected call of ConfirmHarvest.
func (mr *MockResolverMockRecorder) ConfirmHarvest(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmHarvest", reflect.TypeOf((*MockResolver)(nil).ConfirmHarvest), before, after, p)
}

// ConfirmMigrate mocks base method.
func (m *MockResolver) ConfirmMigrate(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmMigrate", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmMigrate indicates an expected call of ConfirmMigrate.
func (mr *MockResolverMockRecorder) ConfirmMigrate(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmMigrate", reflect.TypeOf((*MockResolver)(nil).ConfirmMigrate), before, after, p)
}

// ConfirmRebase mocks base method.
func (m *MockResolver) ConfirmRebase(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmRebase", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmRebase indicates an expected call of ConfirmRebase.
func (mr *MockResolverMockRecorder) ConfirmRebase(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmRebase", reflect.TypeOf((*MockResolver)(nil).ConfirmRebase), before, after, p)
}

// ConfirmTend mocks base method.
func (m *MockResolver) ConfirmTend(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmTend", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmTend indicates an expected call of ConfirmTend.
func (mr *MockResolverMockRecorder) ConfirmTend(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmTend", reflect.TypeOf((*MockResolver)(nil).ConfirmTend), before, after, p)
}

// ConfirmWithdraw mocks base method.
func (m *MockResolver) ConfirmWithdraw(before *snapshot.Snap, after *snapshot.Snap, p Params) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmWithdraw", before, after, p)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmWithdraw indicates an expected call of ConfirmWithdraw.
func (mr *MockResolverMockRecorder) ConfirmWithdraw(before, after, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmWithdraw", reflect.TypeOf((*MockResolver)(nil).ConfirmWithdraw), before, after, p)
}

// Destinations mocks base method.
func (m *MockResolver) Destinations(ctx context.Context) (map[string]common.Address, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Destinations", ctx)
	ret0, _ := ret[0].(map[string]common.Address)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Destinations indicates an expected call of Destinations.
func (mr *MockResolverMockRecorder) Destinations(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Destinations", reflect.TypeOf((*MockResolver)(nil).Destinations), ctx)
}

// Kind mocks base method.
func (m *MockResolver) Kind() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Kind")
	ret0, _ := ret[0].(string)
	return ret0
}

// Kind indicates an expected call of Kind.
func (mr *MockResolverMockRecorder) Kind() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Kind", reflect.TypeOf((*MockResolver)(nil).Kind))
}

// SettRequests mocks base method.
func (m *MockResolver) SettRequests(ctx context.Context) ([]multicall.Request, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SettRequests", ctx)
	ret0, _ := ret[0].([]multicall.Request)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SettRequests indicates an expected call of SettRequests.
func (mr *MockResolverMockRecorder) SettRequests(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SettRequests", reflect.TypeOf((*MockResolver)(nil).SettRequests), ctx)
}

// StrategyRequests mocks base method.
func (m *MockResolver) StrategyRequests(ctx context.Context, entities map[string]common.Address) ([]multicall.Request, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "StrategyRequests", ctx, entities)
	ret0, _ := ret[0].([]multicall.Request)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// StrategyRequests indicates an expected call of StrategyRequests.
func (mr *MockResolverMockRecorder) StrategyRequests(ctx, entities any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StrategyRequests", reflect.TypeOf((*MockResolver)(nil).StrategyRequests), ctx, entities)
}
