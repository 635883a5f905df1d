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
	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// Config summarizes the command line of a simulation run.
type Config struct {
	AppName     string
	CommandName string

	Substrate     string // memory or rpc
	RpcUrl        string
	Impersonation string
	Registry      string // path to the registry YAML
	SettId        string
	StrategyKind  string
	NumUsers      int
	Rounds        int
	RandomSeed    int64 // 0 means time-based
	MaxSleep      uint64
	Confirm       bool
	SnapshotDb    string
	LedgerDb      string
	TraceFile     string
	ReportFile    string
	LogLevel      string
}

// NewConfig returns Config instance with user specified values or the default ones.
func NewConfig(ctx *cli.Context) (*Config, error) {
	cfg := createConfigFromFlags(ctx)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createConfigFromFlags(ctx *cli.Context) *Config {
	cfg := &Config{
		Substrate:     getFlagValue(ctx, SubstrateFlag).(string),
		RpcUrl:        getFlagValue(ctx, RpcUrlFlag).(string),
		Impersonation: getFlagValue(ctx, ImpersonationFlag).(string),
		Registry:      getFlagValue(ctx, RegistryFlag).(string),
		SettId:        getFlagValue(ctx, SettIdFlag).(string),
		StrategyKind:  getFlagValue(ctx, StrategyKindFlag).(string),
		NumUsers:      getFlagValue(ctx, NumUsersFlag).(int),
		Rounds:        getFlagValue(ctx, RoundsFlag).(int),
		RandomSeed:    getFlagValue(ctx, RandomSeedFlag).(int64),
		MaxSleep:      getFlagValue(ctx, MaxSleepFlag).(uint64),
		Confirm:       !getFlagValue(ctx, NoConfirmFlag).(bool),
		SnapshotDb:    getFlagValue(ctx, SnapshotDbFlag).(string),
		LedgerDb:      getFlagValue(ctx, LedgerDbFlag).(string),
		TraceFile:     getFlagValue(ctx, TraceFileFlag).(string),
		ReportFile:    getFlagValue(ctx, ReportFileFlag).(string),
		LogLevel:      getFlagValue(ctx, logger.LogLevelFlag).(string),
	}
	if ctx.App != nil {
		cfg.AppName = ctx.App.HelpName
	}
	if ctx.Command != nil {
		cfg.CommandName = ctx.Command.Name
	}
	return cfg
}

// Validate checks the consistency of the configuration.
func (cfg *Config) Validate() error {
	switch cfg.Substrate {
	case MemorySubstrate:
	case RpcSubstrate:
		if cfg.RpcUrl == "" {
			return errors.Newf("--%v is required for the %v substrate", RpcUrlFlag.Name, RpcSubstrate)
		}
		if cfg.Registry == "" {
			return errors.Newf("--%v is required for the %v substrate", RegistryFlag.Name, RpcSubstrate)
		}
	default:
		return errors.Newf("unknown substrate %q; use %v or %v", cfg.Substrate, MemorySubstrate, RpcSubstrate)
	}
	if cfg.NumUsers <= 0 {
		return errors.Newf("--%v must be positive, got %d", NumUsersFlag.Name, cfg.NumUsers)
	}
	if cfg.Rounds < 0 {
		return errors.Newf("--%v must not be negative, got %d", RoundsFlag.Name, cfg.Rounds)
	}
	if cfg.MaxSleep == 0 {
		return errors.Newf("--%v must be positive", MaxSleepFlag.Name)
	}
	return nil
}

// getFlagValue returns value specified by user if flag is present in cli context, otherwise return default flag value
func getFlagValue(ctx *cli.Context, flag interface{}) interface{} {
	var cmdFlags []cli.Flag
	if ctx.Command != nil {
		cmdFlags = ctx.Command.Flags
	}
	for _, cmdFlag := range cmdFlags {
		switch f := flag.(type) {
		case cli.IntFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Int(f.Name)
			}

		case cli.Uint64Flag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Uint64(f.Name)
			}

		case cli.Int64Flag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Int64(f.Name)
			}

		case cli.StringFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.String(f.Name)
			}

		case cli.PathFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Path(f.Name)
			}

		case cli.BoolFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Bool(f.Name)
			}
		}
	}

	// If flag not found, return the default value of the flag
	switch f := flag.(type) {
	case cli.IntFlag:
		return f.Value
	case cli.Uint64Flag:
		return f.Value
	case cli.Int64Flag:
		return f.Value
	case cli.StringFlag:
		return f.Value
	case cli.PathFlag:
		return f.Value
	case cli.BoolFlag:
		return f.Value
	}
	return nil
}
