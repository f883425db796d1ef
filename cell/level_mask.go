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

import "math/bits"

// MaxLevel is the highest level a cell may have.
const MaxLevel = 3

// LevelMask is a 3-bit mask marking the levels at which a cell provides a
// distinct hash. Bit i-1 is set if level i is significant, level 0 is
// always significant.
type LevelMask uint8

// Level returns the level of the cell, which is the index of the highest set
// bit plus one.
func (m LevelMask) Level() int {
	return bits.Len8(uint8(m))
}

// HashIndex is the index of the highest hash provided for this mask.
func (m LevelMask) HashIndex() int {
	return bits.OnesCount8(uint8(m))
}

// HashCount is the number of distinct hashes provided for this mask.
func (m LevelMask) HashCount() int {
	return m.HashIndex() + 1
}

// Apply restricts the mask to the given level.
func (m LevelMask) Apply(level int) LevelMask {
	return m & LevelMask((1<<level)-1)
}

// IsSignificant reports whether the given level has its own hash.
func (m LevelMask) IsSignificant(level int) bool {
	return level == 0 || (m>>(level-1))&1 != 0
}
