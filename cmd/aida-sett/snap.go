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

package main

import (
	"fmt"

	"github.com/0xsoniclabs/aida-sett/config"
	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/urfave/cli/v2"
)

// SnapCommand prints the current state of the configured sett.
var SnapCommand = cli.Command{
	Action: PrintSnap,
	Name:   "snap",
	Usage:  "prints one snapshot of the sett and its entities",
	Flags: []cli.Flag{
		&config.SubstrateFlag,
		&config.RpcUrlFlag,
		&config.ImpersonationFlag,
		&config.RegistryFlag,
		&config.SettIdFlag,
		&config.StrategyKindFlag,
		&logger.LogLevelFlag,
	},
}

func PrintSnap(ctx *cli.Context) error {
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "aida-sett")
	sys, err := openSystem(ctx.Context, cfg, log)
	if err != nil {
		return err
	}
	defer sys.sub.Close()

	m, err := sett.NewManager(ctx.Context, sys.sub, sys.sett, sys.strategy, log, sys.settOptions(cfg)...)
	if err != nil {
		return err
	}
	s, err := m.Snap(ctx.Context, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, snapshot.Table(s))
	return err
}
