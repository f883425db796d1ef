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

	"github.com/Fantom-foundation/Cellar/tlb"
	"github.com/Fantom-foundation/Cellar/tlb/block"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"
)

var Parse = cli.Command{
	Action: parse,
	Name:   "parse",
	Usage:  "decodes the root of a bag of cells as a known schema type",
	Flags: []cli.Flag{
		&base64Flag,
		&schemaFlag,
	},
	ArgsUsage: "<boc>",
}

var schemaFlag = cli.StringFlag{
	Name:  "schema",
	Usage: "the type of the root, one of currency, address",
	Value: "currency",
}

func parse(context *cli.Context) error {
	_, bag, err := readBOC(context)
	if err != nil {
		return err
	}
	root, err := bag.SingleRoot()
	if err != nil {
		return err
	}
	out := context.App.Writer

	switch schema := context.String(schemaFlag.Name); schema {
	case "currency":
		var c block.CurrencyCollection
		if err := tlb.FromCell(root, &c); err != nil {
			return err
		}
		fmt.Fprintf(out, "grams: %v\n", c.Grams)
		ids := make([]uint32, 0, len(c.Other))
		for id := range c.Other {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "currency %d: %v\n", id, c.Other[id])
		}
	case "address":
		var addr block.MsgAddress
		if err := tlb.FromCell(root, block.Address(&addr)); err != nil {
			return err
		}
		fmt.Fprintf(out, "%T %v\n", addr, addr)
	default:
		return fmt.Errorf("unknown schema %q", schema)
	}
	return nil
}
