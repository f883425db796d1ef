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
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math/bits"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
)

const (
	// magicGeneric identifies the serialization format with flags in the
	// header byte. It is the only format produced by the encoder.
	magicGeneric uint32 = 0xb5ee9c72
	// magicIndexed and magicIndexedCRC32C are legacy formats with an
	// implicit index and, for the latter, a checksum.
	magicIndexed       uint32 = 0x68ff65f3
	magicIndexedCRC32C uint32 = 0xacc3a728
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// bytesFor returns the number of bytes needed to represent v, at least one.
func bytesFor(v int) int {
	res := (bits.Len(uint(v)) + 7) / 8
	if res == 0 {
		return 1
	}
	return res
}

func appendUint(buffer []byte, v uint64, size int) []byte {
	for i := size - 1; i >= 0; i-- {
		buffer = append(buffer, byte(v>>(8*i)))
	}
	return buffer
}

// appendCell serializes a single cell with reference indices of the given
// byte width.
func appendCell(buffer []byte, c *RawCell, size int) []byte {
	d1 := byte(len(c.Refs)) | byte(c.LevelMask)<<5
	if c.Type.IsExotic() {
		d1 |= 8
	}
	d2 := byte(c.BitsLen/8 + (c.BitsLen+7)/8)
	buffer = append(buffer, d1, d2)
	start := len(buffer)
	buffer = append(buffer, c.Data[:(c.BitsLen+7)/8]...)
	if rest := c.BitsLen % 8; rest != 0 {
		buffer[start+c.BitsLen/8] |= 0x80 >> rest
	}
	for _, ref := range c.Refs {
		buffer = appendUint(buffer, uint64(ref), size)
	}
	return buffer
}

// Encode serializes the bag of cells using the sections enabled in the
// given configuration.
func (r *Raw) Encode(config Config) ([]byte, error) {
	if config.HasCacheBits && !config.HasIndex {
		return nil, fmt.Errorf("%w: %v has cache bits without index", ErrInvalidConfig, config)
	}
	if len(r.Roots) == 0 {
		return nil, ErrNoRoots
	}
	size := bytesFor(len(r.Cells))

	cells := make([]byte, 0, len(r.Cells)*8)
	ends := make([]int, len(r.Cells))
	for i := range r.Cells {
		cells = appendCell(cells, &r.Cells[i], size)
		ends[i] = len(cells)
	}
	offBytes := bytesFor(len(cells))

	var header byte
	if config.HasIndex {
		header |= 1 << 7
	}
	if config.HasCRC32C {
		header |= 1 << 6
	}
	if config.HasCacheBits {
		header |= 1 << 5
	}
	header |= byte(size)

	res := make([]byte, 0, 6+(3+len(r.Roots))*size+offBytes+len(cells)+4)
	res = binary.BigEndian.AppendUint32(res, magicGeneric)
	res = append(res, header, byte(offBytes))
	res = appendUint(res, uint64(len(r.Cells)), size)
	res = appendUint(res, uint64(len(r.Roots)), size)
	res = appendUint(res, 0, size) // absent cells
	res = appendUint(res, uint64(len(cells)), offBytes)
	for _, root := range r.Roots {
		res = appendUint(res, uint64(root), size)
	}
	if config.HasIndex {
		for _, end := range ends {
			if config.HasCacheBits {
				end <<= 1
			}
			res = appendUint(res, uint64(end), offBytes)
		}
	}
	res = append(res, cells...)
	if config.HasCRC32C {
		res = binary.LittleEndian.AppendUint32(res, crc32.Checksum(res, castagnoli))
	}
	return res, nil
}

// decoder is a cursor over a serialized bag of cells.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, fmt.Errorf("%w: unexpected end of data at byte %d", ErrMalformed, d.pos)
	}
	res := d.data[d.pos : d.pos+n]
	d.pos += n
	return res, nil
}

func (d *decoder) uint(size int) (int, error) {
	bytes, err := d.take(size)
	if err != nil {
		return 0, err
	}
	var res uint64
	for _, b := range bytes {
		res = res<<8 | uint64(b)
	}
	if res > uint64(len(d.data)) {
		return 0, fmt.Errorf("%w: value %d exceeds input size", ErrMalformed, res)
	}
	return int(res), nil
}

// DecodeRaw parses a serialized bag of cells. A present checksum is verified,
// precomputed hashes and the index are skipped.
func DecodeRaw(data []byte) (*Raw, error) {
	d := &decoder{data: data}
	head, err := d.take(6)
	if err != nil {
		return nil, err
	}

	var hasIndex, hasCRC32C, legacy bool
	switch magic := binary.BigEndian.Uint32(head); magic {
	case magicGeneric:
		hasIndex = head[4]&(1<<7) != 0
		hasCRC32C = head[4]&(1<<6) != 0
		hasCacheBits := head[4]&(1<<5) != 0
		if flags := (head[4] >> 3) & 3; flags != 0 {
			return nil, fmt.Errorf("%w: unsupported flags %d", ErrMalformed, flags)
		}
		if hasCacheBits && !hasIndex {
			return nil, fmt.Errorf("%w: cache bits without index", ErrMalformed)
		}
	case magicIndexed:
		hasIndex, legacy = true, true
	case magicIndexedCRC32C:
		hasIndex, hasCRC32C, legacy = true, true, true
	default:
		return nil, fmt.Errorf("%w: %08x", ErrWrongMagic, magic)
	}
	size := int(head[4] & 7)
	if legacy {
		size = int(head[4])
	}
	offBytes := int(head[5])
	if size < 1 || size > 4 || offBytes < 1 || offBytes > 8 {
		return nil, fmt.Errorf("%w: invalid field sizes %d and %d", ErrMalformed, size, offBytes)
	}

	if hasCRC32C {
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: missing checksum", ErrMalformed)
		}
		body := data[:len(data)-4]
		want := binary.LittleEndian.Uint32(data[len(data)-4:])
		if got := crc32.Checksum(body, castagnoli); got != want {
			return nil, fmt.Errorf("%w: computed %08x, stored %08x", ErrChecksum, got, want)
		}
		d.data = body
	}

	cellCount, err := d.uint(size)
	if err != nil {
		return nil, err
	}
	rootCount, err := d.uint(size)
	if err != nil {
		return nil, err
	}
	absent, err := d.uint(size)
	if err != nil {
		return nil, err
	}
	if rootCount < 1 {
		return nil, ErrNoRoots
	}
	if legacy && rootCount != 1 {
		return nil, fmt.Errorf("%w: legacy format with %d roots", ErrMalformed, rootCount)
	}
	if rootCount+absent > cellCount {
		return nil, fmt.Errorf("%w: %d roots and %d absent cells exceed %d cells", ErrMalformed, rootCount, absent, cellCount)
	}
	totalSize, err := d.uint(offBytes)
	if err != nil {
		return nil, err
	}

	res := &Raw{
		Cells: make([]RawCell, cellCount),
		Roots: make([]int, rootCount),
	}
	// The legacy formats have no root list, their root is the first cell.
	for i := 0; i < len(res.Roots) && !legacy; i++ {
		if res.Roots[i], err = d.uint(size); err != nil {
			return nil, err
		}
		if res.Roots[i] >= cellCount {
			return nil, fmt.Errorf("%w: root index %d out of range", ErrMalformed, res.Roots[i])
		}
	}
	if hasIndex {
		if _, err := d.take(cellCount * offBytes); err != nil {
			return nil, err
		}
	}

	start := d.pos
	for i := range res.Cells {
		if err := d.readCell(&res.Cells[i], size); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}
	if got := d.pos - start; got != totalSize {
		return nil, fmt.Errorf("%w: cells occupy %d bytes, header states %d", ErrMalformed, got, totalSize)
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(d.data)-d.pos)
	}
	return res, nil
}

func (d *decoder) readCell(c *RawCell, size int) error {
	descriptors, err := d.take(2)
	if err != nil {
		return err
	}
	d1, d2 := descriptors[0], descriptors[1]
	refCount := int(d1 & 7)
	exotic := d1&8 != 0
	hasHashes := d1&16 != 0
	c.LevelMask = cell.LevelMask(d1 >> 5)
	if refCount > cell.MaxRefs {
		return fmt.Errorf("%w: %d refs", ErrMalformed, refCount)
	}
	if hasHashes {
		count := c.LevelMask.HashCount()
		if _, err := d.take(count * (common.HashSize + 2)); err != nil {
			return err
		}
	}

	data, err := d.take((int(d2) + 1) / 2)
	if err != nil {
		return err
	}
	c.Data = append([]byte(nil), data...)
	c.BitsLen = len(data) * 8
	if d2%2 != 0 {
		last := c.Data[len(c.Data)-1]
		if last == 0 {
			return fmt.Errorf("%w: missing completion tag", ErrMalformed)
		}
		zeros := bits.TrailingZeros8(last)
		c.Data[len(c.Data)-1] = last &^ (1 << zeros)
		c.BitsLen -= zeros + 1
	}

	c.Type = cell.Ordinary
	if exotic {
		if c.Type, err = cell.ExoticTypeOf(c.Data, c.BitsLen); err != nil {
			return err
		}
	}

	c.Refs = make([]int, refCount)
	for i := range c.Refs {
		if c.Refs[i], err = d.uint(size); err != nil {
			return err
		}
	}
	return nil
}
