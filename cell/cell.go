// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cell

import (
	"fmt"

	"github.com/Fantom-foundation/Cellar/common"
)

const (
	// MaxBits is the maximum number of data bits of a cell.
	MaxBits = 1023
	// MaxRefs is the maximum number of children of a cell.
	MaxRefs = 4
	// MaxDepth is the maximum depth of a cell tree.
	MaxDepth = 1024
)

// Cell is an immutable node of up to 1023 data bits and up to 4 references
// to child cells. Cells are content addressed by their representation hash,
// hashes and depths of all levels are computed once on construction.
// Cells are safe for concurrent use by multiple readers.
type Cell struct {
	typ     Type
	data    []byte
	bitsLen int
	refs    []*Cell
	mask    LevelMask
	hashes  [MaxLevel + 1]common.Hash
	depths  [MaxLevel + 1]uint16
}

var emptyCell = func() *Cell {
	res, err := New(Ordinary, nil, 0, nil)
	if err != nil {
		panic(err)
	}
	return res
}()

// Empty returns the ordinary cell without data and references.
func Empty() *Cell {
	return emptyCell
}

// New creates a cell of the given type from the first bitsLen bits of data
// and the given references. The data is copied, bits beyond bitsLen are
// ignored. Exotic cells are validated according to their type.
func New(typ Type, data []byte, bitsLen int, refs []*Cell) (*Cell, error) {
	if bitsLen < 0 || bitsLen > MaxBits {
		return nil, fmt.Errorf("%w: %d bits", ErrDataOverflow, bitsLen)
	}
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("%w: %d refs", ErrRefsOverflow, len(refs))
	}
	size := (bitsLen + 7) / 8
	if len(data) < size {
		return nil, fmt.Errorf("%w: %d bytes for %d bits", ErrNotEnoughData, len(data), bitsLen)
	}
	for i, ref := range refs {
		if ref == nil {
			return nil, fmt.Errorf("reference %d is nil", i)
		}
	}
	res := &Cell{
		typ:     typ,
		data:    make([]byte, size),
		bitsLen: bitsLen,
	}
	copy(res.data, data)
	if rest := bitsLen % 8; rest != 0 {
		res.data[size-1] &= byte(0xff << (8 - rest))
	}
	if len(refs) > 0 {
		res.refs = make([]*Cell, len(refs))
		copy(res.refs, refs)
	}
	if err := res.computeMeta(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Cell) Type() Type {
	return c.typ
}

func (c *Cell) IsExotic() bool {
	return c.typ.IsExotic()
}

// Data returns the data bytes of the cell. Unused bits of the last byte are
// zero. The result must not be modified.
func (c *Cell) Data() []byte {
	return c.data
}

func (c *Cell) BitsLen() int {
	return c.bitsLen
}

func (c *Cell) RefsCount() int {
	return len(c.refs)
}

// Ref returns the i-th child of the cell.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, fmt.Errorf("%w: no reference %d in cell with %d refs", ErrRefsUnderflow, i, len(c.refs))
	}
	return c.refs[i], nil
}

// Refs returns the children of the cell. The result must not be modified.
func (c *Cell) Refs() []*Cell {
	return c.refs
}

func (c *Cell) LevelMask() LevelMask {
	return c.mask
}

func (c *Cell) Level() int {
	return c.mask.Level()
}

// Hash returns the representation hash of the cell at the highest level.
func (c *Cell) Hash() common.Hash {
	return c.HashAt(MaxLevel)
}

// HashAt returns the hash of the cell at the given level.
func (c *Cell) HashAt(level int) common.Hash {
	return c.hashes[clampLevel(level)]
}

// Depth returns the depth of the cell at the highest level.
func (c *Cell) Depth() int {
	return c.DepthAt(MaxLevel)
}

// DepthAt returns the depth of the cell tree at the given level.
func (c *Cell) DepthAt(level int) int {
	return int(c.depths[clampLevel(level)])
}

// Equal reports whether both cells have the same representation hash.
func (c *Cell) Equal(other *Cell) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c == other || c.Hash() == other.Hash()
}

// Parser creates a new parser positioned at the start of the cell.
func (c *Cell) Parser() *Parser {
	return &Parser{cell: c, reader: bitReader{data: c.data, size: c.bitsLen}}
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
