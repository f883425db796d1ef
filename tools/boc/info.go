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

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/urfave/cli/v2"
)

var Info = cli.Command{
	Action: info,
	Name:   "info",
	Usage:  "lists the roots and cell statistics of a bag of cells",
	Flags: []cli.Flag{
		&base64Flag,
	},
	ArgsUsage: "<boc>",
}

var Dump = cli.Command{
	Action: dump,
	Name:   "dump",
	Usage:  "prints the cell trees of a bag of cells",
	Flags: []cli.Flag{
		&base64Flag,
	},
	ArgsUsage: "<boc>",
}

var Hash = cli.Command{
	Action: hash,
	Name:   "hash",
	Usage:  "prints the representation hash of each root",
	Flags: []cli.Flag{
		&base64Flag,
	},
	ArgsUsage: "<boc>",
}

func info(context *cli.Context) error {
	raw, bag, err := readBOC(context)
	if err != nil {
		return err
	}
	out := context.App.Writer

	counts := map[cell.Type]int{}
	bits := 0
	for _, c := range raw.Cells {
		counts[c.Type]++
		bits += c.BitsLen
	}
	fmt.Fprintf(out, "Bag of cells:\n")
	fmt.Fprintf(out, "\tRoots:     %d\n", len(raw.Roots))
	fmt.Fprintf(out, "\tCells:     %d\n", len(raw.Cells))
	fmt.Fprintf(out, "\tData bits: %d\n", bits)
	for typ := cell.Ordinary; typ <= cell.MerkleUpdate; typ++ {
		if counts[typ] > 0 {
			fmt.Fprintf(out, "\t%-10s %d\n", typ.String()+":", counts[typ])
		}
	}
	for i, root := range bag.Roots() {
		fmt.Fprintf(out, "Root %d:\n", i)
		fmt.Fprintf(out, "\tHash:  %v\n", root.Hash())
		fmt.Fprintf(out, "\tDepth: %d\n", root.Depth())
		fmt.Fprintf(out, "\tLevel: %d\n", root.Level())
	}
	return nil
}

func dump(context *cli.Context) error {
	_, bag, err := readBOC(context)
	if err != nil {
		return err
	}
	for _, root := range bag.Roots() {
		fmt.Fprintln(context.App.Writer, root.String())
	}
	return nil
}

func hash(context *cli.Context) error {
	_, bag, err := readBOC(context)
	if err != nil {
		return err
	}
	for _, root := range bag.Roots() {
		fmt.Fprintln(context.App.Writer, root.Hash().Hex())
	}
	return nil
}
