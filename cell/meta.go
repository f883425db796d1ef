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
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Cellar/common"
)

const (
	hashBits  = common.HashSize * 8
	depthBits = 16

	libraryBits      = 8 + hashBits
	merkleProofBits  = 8 + hashBits + depthBits
	merkleUpdateBits = 8 + 2*(hashBits+depthBits)
)

// prunedLevel is a hash and depth of a lower level stored in a pruned branch.
type prunedLevel struct {
	hash  common.Hash
	depth uint16
}

// computeMeta validates the cell according to its type and derives the level
// mask as well as hashes and depths for all levels.
func (c *Cell) computeMeta() error {
	var pruned []prunedLevel
	switch c.typ {
	case Ordinary:
		for _, ref := range c.refs {
			c.mask |= ref.mask
		}
	case PrunedBranch:
		var err error
		if pruned, err = c.checkPrunedBranch(); err != nil {
			return err
		}
		c.mask = LevelMask(c.data[1])
	case Library:
		if err := c.checkLibrary(); err != nil {
			return err
		}
	case MerkleProof:
		if err := c.checkMerkle(merkleProofBits, 1); err != nil {
			return err
		}
		c.mask = c.refs[0].mask >> 1
	case MerkleUpdate:
		if err := c.checkMerkle(merkleUpdateBits, 2); err != nil {
			return err
		}
		c.mask = (c.refs[0].mask | c.refs[1].mask) >> 1
	default:
		return fmt.Errorf("%w: unsupported type %v", ErrInvalidExotic, c.typ)
	}

	// A pruned branch only computes its own top level hash, lower levels
	// are taken from its data.
	total := c.mask.HashCount()
	count := total
	if c.typ == PrunedBranch {
		count = 1
	}
	offset := total - count

	var hashes [MaxLevel + 1]common.Hash
	var depths [MaxLevel + 1]uint16
	for level, hashI := 0, 0; level <= c.mask.Level(); level++ {
		if !c.mask.IsSignificant(level) {
			continue
		}
		if hashI < offset {
			hashI++
			continue
		}
		childLevel := level
		if c.typ == MerkleProof || c.typ == MerkleUpdate {
			childLevel = level + 1
		}

		depth := 0
		for _, ref := range c.refs {
			if d := ref.DepthAt(childLevel); d > depth {
				depth = d
			}
		}
		if len(c.refs) > 0 {
			depth++
		}
		if depth > MaxDepth {
			return fmt.Errorf("%w: %d", ErrDepthOverflow, depth)
		}

		var data []byte
		if hashI == offset {
			data = c.paddedData()
		} else {
			data = hashes[hashI-offset-1][:]
		}
		dest := hashI - offset
		hashes[dest] = c.reprHash(level, childLevel, data)
		depths[dest] = uint16(depth)
		hashI++
	}

	top := c.mask.HashIndex()
	for level := 0; level <= MaxLevel; level++ {
		index := c.mask.Apply(level).HashIndex()
		switch {
		case pruned != nil && index != top:
			c.hashes[level] = pruned[index].hash
			c.depths[level] = pruned[index].depth
		case pruned != nil:
			c.hashes[level] = hashes[0]
			c.depths[level] = depths[0]
		default:
			c.hashes[level] = hashes[index]
			c.depths[level] = depths[index]
		}
	}
	return nil
}

// descriptors returns the two descriptor bytes of the cell for the given
// level mask.
func (c *Cell) descriptors(mask LevelMask) (byte, byte) {
	d1 := byte(len(c.refs)) + byte(mask)<<5
	if c.typ.IsExotic() {
		d1 += 8
	}
	d2 := byte(c.bitsLen/8 + (c.bitsLen+7)/8)
	return d1, d2
}

// paddedData returns the data with a completion tag appended if the bit
// length is not byte aligned.
func (c *Cell) paddedData() []byte {
	if c.bitsLen%8 == 0 {
		return c.data
	}
	res := make([]byte, len(c.data))
	copy(res, c.data)
	res[c.bitsLen/8] |= 0x80 >> (c.bitsLen % 8)
	return res
}

func (c *Cell) reprHash(level, childLevel int, data []byte) common.Hash {
	d1, d2 := c.descriptors(c.mask.Apply(level))
	buffer := make([]byte, 0, 2+len(data)+len(c.refs)*(2+common.HashSize))
	buffer = append(buffer, d1, d2)
	buffer = append(buffer, data...)
	for _, ref := range c.refs {
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(ref.DepthAt(childLevel)))
	}
	for _, ref := range c.refs {
		hash := ref.HashAt(childLevel)
		buffer = append(buffer, hash[:]...)
	}
	return common.Sha256(buffer)
}

func (c *Cell) checkTag() error {
	if c.bitsLen < 8 || c.data[0] != byte(c.typ) {
		if c.typ == Library {
			return ErrLibraryPrefix
		}
		return fmt.Errorf("%w: missing %v type tag", ErrInvalidExotic, c.typ)
	}
	return nil
}

func (c *Cell) checkPrunedBranch() ([]prunedLevel, error) {
	if err := c.checkTag(); err != nil {
		return nil, err
	}
	if c.bitsLen < 16 || len(c.refs) != 0 {
		return nil, fmt.Errorf("%w: malformed pruned branch", ErrInvalidExotic)
	}
	mask := LevelMask(c.data[1])
	if mask == 0 || mask.Level() > MaxLevel {
		return nil, fmt.Errorf("%w: pruned branch with level mask %d", ErrInvalidExotic, mask)
	}
	count := mask.HashIndex()
	if want := 16 + count*(hashBits+depthBits); c.bitsLen != want {
		return nil, fmt.Errorf("%w: pruned branch with %d bits, expected %d", ErrInvalidExotic, c.bitsLen, want)
	}
	res := make([]prunedLevel, count)
	for i := range res {
		copy(res[i].hash[:], c.data[2+i*common.HashSize:])
		res[i].depth = binary.BigEndian.Uint16(c.data[2+count*common.HashSize+2*i:])
	}
	return res, nil
}

func (c *Cell) checkLibrary() error {
	if err := c.checkTag(); err != nil {
		return err
	}
	if c.bitsLen != libraryBits || len(c.refs) != 0 {
		return fmt.Errorf("%w: library cell with %d bits and %d refs", ErrInvalidExotic, c.bitsLen, len(c.refs))
	}
	return nil
}

// checkMerkle verifies that a Merkle proof or update carries the level 0
// hashes and depths of its children.
func (c *Cell) checkMerkle(bitsLen, refs int) error {
	if err := c.checkTag(); err != nil {
		return err
	}
	if c.bitsLen != bitsLen || len(c.refs) != refs {
		return fmt.Errorf("%w: %v with %d bits and %d refs", ErrInvalidExotic, c.typ, c.bitsLen, len(c.refs))
	}
	for i, ref := range c.refs {
		hash := c.data[1+i*common.HashSize : 1+(i+1)*common.HashSize]
		depth := binary.BigEndian.Uint16(c.data[1+refs*common.HashSize+2*i:])
		if want := ref.HashAt(0); string(hash) != string(want[:]) {
			return fmt.Errorf("%w: %v hash mismatch for child %d", ErrInvalidExotic, c.typ, i)
		}
		if int(depth) != ref.DepthAt(0) {
			return fmt.Errorf("%w: %v depth mismatch for child %d", ErrInvalidExotic, c.typ, i)
		}
	}
	return nil
}
