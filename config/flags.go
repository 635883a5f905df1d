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
	"github.com/urfave/cli/v2"
)

const (
	MemorySubstrate = "memory"
	RpcSubstrate    = "rpc"

	defaultNumUsers = 10
	defaultRounds   = 100
	// defaultMaxSleep is ten days in seconds.
	defaultMaxSleep = 10 * 24 * 60 * 60
)

var (
	SubstrateFlag = cli.StringFlag{
		Name:  "substrate",
		Usage: "system under test: 'memory' for the built-in vault system or 'rpc' for a development fork",
		Value: MemorySubstrate,
	}
	RpcUrlFlag = cli.StringFlag{
		Name:  "rpc-url",
		Usage: "JSON-RPC endpoint of the development fork",
		Value: "http://localhost:8545",
	}
	ImpersonationFlag = cli.StringFlag{
		Name:  "impersonation",
		Usage: "namespace of the impersonation cheat codes of the fork (anvil, hardhat)",
		Value: "anvil",
	}
	RegistryFlag = cli.PathFlag{
		Name:  "registry",
		Usage: "YAML file describing the deployed system",
	}
	SettIdFlag = cli.StringFlag{
		Name:  "sett",
		Usage: "identifier of the sett within the registry",
		Value: "native.badger",
	}
	StrategyKindFlag = cli.StringFlag{
		Name:  "strategy-kind",
		Usage: "strategy family; overrides the name reported by the strategy",
	}
	NumUsersFlag = cli.IntFlag{
		Name:  "num-users",
		Usage: "number of provisioned users",
		Value: defaultNumUsers,
	}
	RoundsFlag = cli.IntFlag{
		Name:  "rounds",
		Usage: "number of simulated actions",
		Value: defaultRounds,
	}
	RandomSeedFlag = cli.Int64Flag{
		Name:  "random-seed",
		Usage: "seed of the scenario (default: time-based)",
	}
	MaxSleepFlag = cli.Uint64Flag{
		Name:  "max-sleep",
		Usage: "longest time advance of a single sleep in seconds",
		Value: defaultMaxSleep,
	}
	NoConfirmFlag = cli.BoolFlag{
		Name:  "no-confirm",
		Usage: "skip invariant confirmation",
	}
	SnapshotDbFlag = cli.PathFlag{
		Name:  "snapshot-db",
		Usage: "sqlite file recording every snapshot",
	}
	LedgerDbFlag = cli.PathFlag{
		Name:  "ledger-db",
		Usage: "leveldb directory persisting the share-seconds ledger",
	}
	TraceFileFlag = cli.PathFlag{
		Name:  "trace-file",
		Usage: "gzip file recording every executed action",
	}
	ReportFileFlag = cli.PathFlag{
		Name:  "report-file",
		Usage: "HTML report of the snapshot history",
	}
)
