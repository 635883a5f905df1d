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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `
deployer: "0x1000000000000000000000000000000000000001"
accounts:
  - "0x2000000000000000000000000000000000000001"
  - "0x2000000000000000000000000000000000000002"
tokens:
  badger: "0x3000000000000000000000000000000000000001"
  wbtc: "0x3000000000000000000000000000000000000002"
setts:
  native.badger:
    sett: "0x4000000000000000000000000000000000000001"
    strategy: "0x4000000000000000000000000000000000000002"
    kind: StrategyBadgerRewards
    settKeeper: "0x4000000000000000000000000000000000000003"
    whales:
      badger: "0x5000000000000000000000000000000000000001"
  native.uniBadgerWbtc:
    sett: "0x4000000000000000000000000000000000000011"
    strategy: "0x4000000000000000000000000000000000000012"
    router: "0x6000000000000000000000000000000000000001"
    pair: [badger, wbtc]
`

func TestRegistry_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRegistry), 0600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000001"), r.Deployer)
	assert.Len(t, r.Accounts, 2)

	s, err := r.Sett("native.badger")
	require.NoError(t, err)
	assert.Equal(t, "StrategyBadgerRewards", s.Kind)
	assert.Equal(t, common.HexToAddress("0x4000000000000000000000000000000000000002"), s.Strategy)
	assert.Equal(t, common.HexToAddress("0x5000000000000000000000000000000000000001"), s.Whales["badger"])
	assert.Nil(t, s.Digg)

	lp, err := r.Sett("native.uniBadgerWbtc")
	require.NoError(t, err)
	assert.Equal(t, []string{"badger", "wbtc"}, lp.Pair)

	_, err = r.Sett("native.digg")
	assert.Error(t, err)
}

func TestRegistry_Validation(t *testing.T) {
	tests := map[string]string{
		"no accounts":    "setts: {}",
		"missing sett":   "accounts: [\"0x2000000000000000000000000000000000000001\"]\nsetts:\n  x:\n    strategy: \"0x4000000000000000000000000000000000000002\"",
		"unknown whale":  "accounts: [\"0x2000000000000000000000000000000000000001\"]\nsetts:\n  x:\n    sett: \"0x4000000000000000000000000000000000000001\"\n    strategy: \"0x4000000000000000000000000000000000000002\"\n    whales:\n      crv: \"0x5000000000000000000000000000000000000001\"",
		"malformed yaml": "accounts: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
