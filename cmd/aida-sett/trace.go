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
	"io"

	"github.com/0xsoniclabs/aida-sett/tracer"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// TraceCommand prints the records of an action trace.
var TraceCommand = cli.Command{
	Action:    PrintTrace,
	Name:      "trace",
	Usage:     "prints the actions recorded by a run",
	ArgsUsage: "<trace-file>",
}

func PrintTrace(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("trace command requires exactly 1 argument")
	}
	reader, err := tracer.NewFileReader(ctx.Args().First())
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		r, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(ctx.App.Writer, r.String()); err != nil {
			return err
		}
	}
}
