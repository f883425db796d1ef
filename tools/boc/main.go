// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Run using
//  go run ./tools/boc <command> <flags>

const logKey = "log"

var (
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "sets the level of log messages written to stderr",
		Value: "warn",
	}
	base64Flag = cli.BoolFlag{
		Name:  "base64",
		Usage: "read the input as base64 instead of hex",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "boc",
		Usage:     "bag of cells toolbox",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags: []cli.Flag{
			&logLevelFlag,
		},
		Before: func(context *cli.Context) error {
			log, err := NewLog(context.String(logLevelFlag.Name))
			if err != nil {
				return err
			}
			context.App.Metadata = map[string]any{logKey: log}
			return nil
		},
		After: func(context *cli.Context) error {
			getLog(context).Sync()
			return nil
		},
		Commands: []*cli.Command{
			&Info,
			&Dump,
			&Hash,
			&Encode,
			&Parse,
		},
	}
}

func getLog(context *cli.Context) *Log {
	if log, ok := context.App.Metadata[logKey].(*Log); ok {
		return log
	}
	return newLogWith(zap.NewNop())
}
