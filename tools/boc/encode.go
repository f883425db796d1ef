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
	"strings"

	"github.com/Fantom-foundation/Cellar/cell/boc"
	"github.com/urfave/cli/v2"
)

var Encode = cli.Command{
	Action: encode,
	Name:   "encode",
	Usage:  "re-encodes a bag of cells with the given configuration",
	Flags: []cli.Flag{
		&base64Flag,
		&configFlag,
		&outputBase64Flag,
	},
	ArgsUsage: "<boc>",
}

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "the encoding to use, one of " + strings.Join(boc.ConfigNames(), ", "),
		Value: boc.CRC32CConfig.Name,
	}
	outputBase64Flag = cli.BoolFlag{
		Name:  "output-base64",
		Usage: "write the result as base64 instead of hex",
	}
)

func encode(context *cli.Context) error {
	name := context.String(configFlag.Name)
	config, found := boc.GetConfigByName(name)
	if !found {
		return fmt.Errorf("unknown configuration %q, supported are %v", name, boc.ConfigNames())
	}
	_, bag, err := readBOC(context)
	if err != nil {
		return err
	}

	var res string
	if context.Bool(outputBase64Flag.Name) {
		res, err = bag.ToBase64(config)
	} else {
		res, err = bag.ToHex(config)
	}
	if err != nil {
		return err
	}
	getLog(context).Print("encoded bag of cells", "config", config.Name, "length", len(res))
	fmt.Fprintln(context.App.Writer, res)
	return nil
}
