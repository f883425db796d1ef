// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tlb

import (
	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/cell/boc"
	"github.com/Fantom-foundation/Cellar/common"
)

// FromCell decodes v from the start of the given cell.
func FromCell(c *cell.Cell, v Type) error {
	return Read(c.Parser(), v)
}

// FromBOC decodes v from the single root of a serialized bag of cells.
func FromBOC(data []byte, v Type) error {
	bag, err := boc.FromBytes(data)
	if err != nil {
		return err
	}
	return fromBOC(bag, v)
}

// FromBOCHex decodes v from a hex encoded bag of cells.
func FromBOCHex(str string, v Type) error {
	bag, err := boc.FromHex(str)
	if err != nil {
		return err
	}
	return fromBOC(bag, v)
}

func fromBOC(bag *boc.BOC, v Type) error {
	root, err := bag.SingleRoot()
	if err != nil {
		return err
	}
	return FromCell(root, v)
}

// ToCell encodes v into a new ordinary cell.
func ToCell(v Type) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := Write(b, v); err != nil {
		return nil, err
	}
	return b.Build()
}

// ToBOC encodes v as a bag of cells with a single root, optionally followed
// by a CRC32C checksum.
func ToBOC(v Type, withCRC bool) ([]byte, error) {
	root, err := ToCell(v)
	if err != nil {
		return nil, err
	}
	config := boc.DefaultConfig
	if withCRC {
		config = boc.CRC32CConfig
	}
	return boc.New(root).ToBytes(config)
}

// ToBOCHex encodes v as a hex encoded bag of cells.
func ToBOCHex(v Type, withCRC bool) (string, error) {
	root, err := ToCell(v)
	if err != nil {
		return "", err
	}
	config := boc.DefaultConfig
	if withCRC {
		config = boc.CRC32CConfig
	}
	return boc.New(root).ToHex(config)
}

// CellHash returns the representation hash of the cell encoding v.
func CellHash(v Type) (common.Hash, error) {
	root, err := ToCell(v)
	if err != nil {
		return common.Hash{}, err
	}
	return root.Hash(), nil
}
