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
	"context"
	"os"

	"github.com/0xsoniclabs/aida-sett/config"
	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/report"
	"github.com/0xsoniclabs/aida-sett/rewards"
	"github.com/0xsoniclabs/aida-sett/sett"
	"github.com/0xsoniclabs/aida-sett/simulation"
	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/0xsoniclabs/aida-sett/tracer"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// RunCommand provisions users, randomizes and runs one scenario.
var RunCommand = cli.Command{
	Action: RunSimulation,
	Name:   "run",
	Usage:  "runs a randomized scenario confirming every operation",
	Flags: []cli.Flag{
		&config.SubstrateFlag,
		&config.RpcUrlFlag,
		&config.ImpersonationFlag,
		&config.RegistryFlag,
		&config.SettIdFlag,
		&config.StrategyKindFlag,
		&config.NumUsersFlag,
		&config.RoundsFlag,
		&config.RandomSeedFlag,
		&config.MaxSleepFlag,
		&config.NoConfirmFlag,
		&config.SnapshotDbFlag,
		&config.LedgerDbFlag,
		&config.TraceFileFlag,
		&config.ReportFileFlag,
		&logger.LogLevelFlag,
	},
}

// RunSimulation runs one scenario as configured on the command line.
func RunSimulation(ctx *cli.Context) error {
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

	return run(ctx.Context, cfg, sys, log)
}

// run executes the scenario on an opened system. It is factored out to
// facilitate testing without a cli.Context.
func run(ctx context.Context, cfg *config.Config, sys *system, log logger.Logger) (err error) {
	opts := sys.settOptions(cfg)
	if cfg.SnapshotDb != "" {
		store, openErr := snapshot.OpenStore(cfg.SnapshotDb)
		if openErr != nil {
			return openErr
		}
		defer func() {
			err = errors.CombineErrors(err, store.Close())
		}()
		opts = append(opts, sett.WithStore(store))
	}
	snap, err := sett.NewManager(ctx, sys.sub, sys.sett, sys.strategy, logger.NewLogger(cfg.LogLevel, "sett"), opts...)
	if err != nil {
		return err
	}

	ledger := rewards.NewLedger()
	simOpts := []simulation.Option{
		simulation.WithNumUsers(cfg.NumUsers),
		simulation.WithRounds(cfg.Rounds),
		simulation.WithSeed(cfg.RandomSeed),
		simulation.WithMaxSleep(cfg.MaxSleep),
		simulation.WithLedger(ledger),
	}
	if cfg.TraceFile != "" {
		trace, createErr := tracer.NewFileWriter(cfg.TraceFile)
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = errors.CombineErrors(err, trace.Close())
		}()
		simOpts = append(simOpts, simulation.WithTrace(trace))
	}

	sim, err := simulation.NewManager(snap, sys.setup, logger.NewLogger(cfg.LogLevel, "simulation"), simOpts...)
	if err != nil {
		return err
	}
	if err := sim.Provision(ctx); err != nil {
		return err
	}
	if err := sim.Randomize(); err != nil {
		return err
	}
	runErr := sim.Run(ctx)
	if runErr != nil {
		log.Errorf("scenario failed; reproduce with --%v %d", config.RandomSeedFlag.Name, sim.Seed())
	}

	// the history of a failed run is what explains the failure
	if cfg.ReportFile != "" {
		runErr = errors.CombineErrors(runErr, writeReport(cfg.ReportFile, snap))
	}
	if runErr != nil {
		return runErr
	}
	if cfg.LedgerDb != "" {
		if err := saveLedger(cfg.LedgerDb, ledger); err != nil {
			return err
		}
	}
	total, err := ledger.TotalShareSeconds()
	if err != nil {
		return err
	}
	log.Noticef("%d users accrued %v share-seconds", len(ledger.Entries()), total)
	return nil
}

func writeReport(path string, snap *sett.Manager) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create report")
	}
	err = report.Render(f, "Sett "+snap.Sett().Hex()+" ("+snap.Kind()+")", snap.Snaps())
	return errors.CombineErrors(err, f.Close())
}

func saveLedger(path string, ledger *rewards.Ledger) error {
	store, err := rewards.OpenStore(path)
	if err != nil {
		return err
	}
	return errors.CombineErrors(store.Save(ledger), store.Close())
}
