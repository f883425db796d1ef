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
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Fantom-foundation/Cellar/cell/boc"
	"github.com/urfave/cli/v2"
)

// readInput returns the serialized bag of cells given as the single
// argument, or read from stdin if the argument is "-".
func readInput(context *cli.Context) ([]byte, error) {
	if context.Args().Len() != 1 {
		return nil, fmt.Errorf("expected a single bag of cells, use - to read from stdin")
	}
	text := context.Args().Get(0)
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if context.Bool(base64Flag.Name) {
		return base64.StdEncoding.DecodeString(text)
	}
	return hex.DecodeString(strings.TrimPrefix(text, "0x"))
}

// readBOC decodes the input into its raw and graph forms.
func readBOC(context *cli.Context) (*boc.Raw, *boc.BOC, error) {
	log := getLog(context)
	data, err := readInput(context)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("decoding input", "bytes", len(data))
	raw, err := boc.DecodeRaw(data)
	if err != nil {
		return nil, nil, err
	}
	roots, err := raw.Build()
	if err != nil {
		return nil, nil, err
	}
	log.Print("decoded bag of cells", "cells", len(raw.Cells), "roots", len(roots))
	return raw, boc.New(roots...), nil
}
