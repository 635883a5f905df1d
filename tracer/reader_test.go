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
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFileReader_NewFileReaderRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.gz")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("0\tuser\tdeposit\t1\t1\n"), 0600))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"Missing", filepath.Join(dir, "missing.gz"), "does it exist"},
		{"Directory", dir, "is a directory"},
		{"Empty", empty, "is empty"},
		{"NotCompressed", plain, "could not create gzip reader"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewFileReader(test.path)
			assert.ErrorContains(t, err, test.want)
		})
	}
}

func TestFileReader_Read(t *testing.T) {
	mockErr := errors.New("mock error")
	tests := []struct {
		name    string
		setup   func(*MockReadBuffer)
		want    Record
		wantErr error
	}{
		{
			name: "FullLine",
			setup: func(m *MockReadBuffer) {
				m.EXPECT().ReadString(byte('\n')).Return("2\tuser\twithdrawAll\t9\t4\n", nil)
			},
			want: Record{Round: 2, Actor: "user", Action: "withdrawAll", Amount: uint256.NewInt(9), Block: 4},
		},
		{
			name: "LastLineWithoutNewline",
			setup: func(m *MockReadBuffer) {
				m.EXPECT().ReadString(byte('\n')).Return("3\tchain\tmine\t-\t5", io.EOF)
			},
			want: Record{Round: 3, Actor: "chain", Action: "mine", Block: 5},
		},
		{
			name: "EndOfTrace",
			setup: func(m *MockReadBuffer) {
				m.EXPECT().ReadString(byte('\n')).Return("", io.EOF)
			},
			wantErr: io.EOF,
		},
		{
			name: "ReadError",
			setup: func(m *MockReadBuffer) {
				m.EXPECT().ReadString(byte('\n')).Return("", mockErr)
			},
			wantErr: mockErr,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			buffer := NewMockReadBuffer(ctrl)
			test.setup(buffer)
			fr := &fileReader{reader: buffer, closer: closerFunc(func() error { return nil })}
			got, err := fr.Read()
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestFileReader_ReadAllStopsAtFirstError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fr := NewMockFileReader(ctrl)
	mockErr := errors.New("mock error")
	gomock.InOrder(
		fr.EXPECT().Read().Return(Record{Round: 0, Actor: "user", Action: "deposit", Block: 1}, nil),
		fr.EXPECT().Read().Return(Record{}, mockErr),
	)
	_, err := ReadAll(fr)
	assert.ErrorIs(t, err, mockErr)
}
