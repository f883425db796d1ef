// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package boc

import (
	"fmt"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"golang.org/x/exp/slices"
)

// RawCell is a cell whose references are indices into the enclosing Raw.
type RawCell struct {
	Type      cell.Type
	Data      []byte
	BitsLen   int
	LevelMask cell.LevelMask
	Refs      []int
}

// Raw is the flat form of a cell graph. Every cell is stored once and all
// references point to cells with a larger index.
type Raw struct {
	Cells []RawCell
	Roots []int
}

// arenaEntry is a distinct cell of the graph during linearization. Children
// are positions in the arena.
type arenaEntry struct {
	cell  *cell.Cell
	refs  []int
	index int
}

// FromRoots linearizes the graph reachable from the given roots. Cells are
// deduplicated by hash and numbered such that each cell has a smaller index
// than all of its children. Each root must be distinct, a root may still be
// referenced by another root.
func FromRoots(roots ...*cell.Cell) (*Raw, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	// Breadth-first collection of distinct cells, the arena position is the
	// initial index.
	var arena []arenaEntry
	positions := map[common.Hash]int{}
	add := func(c *cell.Cell) int {
		hash := c.Hash()
		if pos, found := positions[hash]; found {
			return pos
		}
		pos := len(arena)
		positions[hash] = pos
		arena = append(arena, arenaEntry{cell: c, index: pos})
		return pos
	}
	rootPositions := make([]int, len(roots))
	for i, root := range roots {
		if root == nil {
			return nil, fmt.Errorf("root %d is nil", i)
		}
		if _, found := positions[root.Hash()]; found {
			return nil, fmt.Errorf("%w: root %d", ErrDuplicateRoot, i)
		}
		rootPositions[i] = add(root)
	}
	for pos := 0; pos < len(arena); pos++ {
		refs := arena[pos].cell.Refs()
		children := make([]int, len(refs))
		for i, ref := range refs {
			children[i] = add(ref)
		}
		arena[pos].refs = children
	}

	// Move children behind their parents until no violation is left. Since
	// the graph is acyclic this reaches a fixed point.
	next := len(arena)
	for changed := true; changed; {
		changed = false
		for pos := range arena {
			for _, child := range arena[pos].refs {
				if arena[child].index < arena[pos].index {
					arena[child].index = next
					next++
					changed = true
				}
			}
		}
	}

	// Compact the indices into a dense range.
	order := make([]int, len(arena))
	for pos := range order {
		order[pos] = pos
	}
	slices.SortFunc(order, func(a, b int) int {
		return arena[a].index - arena[b].index
	})
	for index, pos := range order {
		arena[pos].index = index
	}

	res := &Raw{
		Cells: make([]RawCell, len(arena)),
		Roots: make([]int, len(roots)),
	}
	for _, entry := range arena {
		refs := make([]int, len(entry.refs))
		for i, child := range entry.refs {
			refs[i] = arena[child].index
		}
		res.Cells[entry.index] = RawCell{
			Type:      entry.cell.Type(),
			Data:      entry.cell.Data(),
			BitsLen:   entry.cell.BitsLen(),
			LevelMask: entry.cell.LevelMask(),
			Refs:      refs,
		}
	}
	for i, pos := range rootPositions {
		res.Roots[i] = arena[pos].index
	}
	return res, nil
}

// Build rehydrates the cell graph and returns its roots. Cells are created
// from the last to the first, so every referenced cell is available when its
// parent is built.
func (r *Raw) Build() ([]*cell.Cell, error) {
	if len(r.Roots) == 0 {
		return nil, ErrNoRoots
	}
	cells := make([]*cell.Cell, len(r.Cells))
	for i := len(r.Cells) - 1; i >= 0; i-- {
		raw := &r.Cells[i]
		refs := make([]*cell.Cell, len(raw.Refs))
		for j, ref := range raw.Refs {
			if ref <= i || ref >= len(cells) {
				return nil, fmt.Errorf("%w: cell %d references cell %d", ErrMalformed, i, ref)
			}
			refs[j] = cells[ref]
		}
		c, err := cell.New(raw.Type, raw.Data, raw.BitsLen, refs)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrMalformed, i, err)
		}
		if c.LevelMask() != raw.LevelMask {
			return nil, fmt.Errorf("%w: cell %d has level mask %d, computed %d", ErrMalformed, i, raw.LevelMask, c.LevelMask())
		}
		cells[i] = c
	}
	res := make([]*cell.Cell, len(r.Roots))
	for i, root := range r.Roots {
		if root < 0 || root >= len(cells) {
			return nil, fmt.Errorf("%w: root index %d out of range", ErrMalformed, root)
		}
		res[i] = cells[root]
	}
	return res, nil
}
