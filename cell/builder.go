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
	"math/big"

	"github.com/holiman/uint256"
)

// Builder accumulates bits and references for a new cell. Every write checks
// the capacity of the cell before modifying it, so a failed write leaves the
// builder unchanged. A Builder must not be used concurrently.
type Builder struct {
	typ    Type
	writer bitWriter
	refs   []*Cell
}

// NewBuilder creates a builder for an ordinary cell.
func NewBuilder() *Builder {
	return NewBuilderOfType(Ordinary)
}

// NewBuilderOfType creates a builder for a cell of the given type. Exotic
// cells expect their type tag as the first written byte.
func NewBuilderOfType(typ Type) *Builder {
	return &Builder{typ: typ}
}

func (b *Builder) BitsLen() int {
	return b.writer.pos
}

func (b *Builder) BitsLeft() int {
	return MaxBits - b.writer.pos
}

func (b *Builder) RefsCount() int {
	return len(b.refs)
}

func (b *Builder) RefsLeft() int {
	return MaxRefs - len(b.refs)
}

func (b *Builder) ensureBits(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative bit count %d", ErrBadPosition, n)
	}
	if n > b.BitsLeft() {
		return fmt.Errorf("%w: writing %d bits with %d bits left", ErrDataOverflow, n, b.BitsLeft())
	}
	return nil
}

func (b *Builder) WriteBit(bit bool) error {
	if err := b.ensureBits(1); err != nil {
		return err
	}
	b.writer.writeBit(bit)
	return nil
}

// WriteBits appends the first n bits of data.
func (b *Builder) WriteBits(data []byte, n int) error {
	return b.WriteBitsWithOffset(data, n, 0)
}

// WriteBitsWithOffset appends n bits of data starting at the given bit offset.
func (b *Builder) WriteBitsWithOffset(data []byte, n, offset int) error {
	if err := b.ensureBits(n); err != nil {
		return err
	}
	if offset < 0 || len(data)*8 < offset+n {
		return fmt.Errorf("%w: %d bits at offset %d requested from %d bytes", ErrNotEnoughData, n, offset, len(data))
	}
	if n > 0 {
		b.writer.writeBits(data, n, offset)
	}
	return nil
}

func (b *Builder) WriteBytes(data []byte) error {
	return b.WriteBits(data, len(data)*8)
}

func (b *Builder) WriteByte(v byte) error {
	return b.WriteUint(uint64(v), 8)
}

// WriteUint appends v as an unsigned number of exactly n <= 64 bits.
func (b *Builder) WriteUint(v uint64, n int) error {
	if err := checkWidth(n, 64); err != nil {
		return err
	}
	if n < 64 && v>>n != 0 {
		return fmt.Errorf("%w: %d in %d bits", ErrNumberTooWide, v, n)
	}
	if err := b.ensureBits(n); err != nil {
		return err
	}
	b.writer.writeUint(v, n)
	return nil
}

// WriteInt appends v as a two's complement number of exactly n <= 64 bits.
func (b *Builder) WriteInt(v int64, n int) error {
	if err := checkWidth(n, 64); err != nil {
		return err
	}
	if n == 0 && v != 0 {
		return fmt.Errorf("%w: %d in 0 bits", ErrNumberTooWide, v)
	}
	if n > 0 && n < 64 {
		limit := int64(1) << (n - 1)
		if v >= limit || v < -limit {
			return fmt.Errorf("%w: %d in %d signed bits", ErrNumberTooWide, v, n)
		}
	}
	if err := b.ensureBits(n); err != nil {
		return err
	}
	b.writer.writeUint(uint64(v), n)
	return nil
}

// WriteBigUint appends a non-negative v as an unsigned number of exactly n
// bits. A width of zero only accepts the value zero.
func (b *Builder) WriteBigUint(v *big.Int, n int) error {
	if err := checkWidth(n, MaxBits); err != nil {
		return err
	}
	if v.Sign() < 0 {
		return fmt.Errorf("%w: negative value %v for unsigned field", ErrNumberTooWide, v)
	}
	if v.BitLen() > n {
		return fmt.Errorf("%w: %v in %d bits", ErrNumberTooWide, v, n)
	}
	if err := b.ensureBits(n); err != nil {
		return err
	}
	b.writeAligned(v.FillBytes(make([]byte, (n+7)/8)), n)
	return nil
}

// WriteBigInt appends v as a two's complement number of exactly n bits. The
// value including its sign bit must fit into n bits.
func (b *Builder) WriteBigInt(v *big.Int, n int) error {
	if err := checkWidth(n, MaxBits); err != nil {
		return err
	}
	if n == 0 {
		if v.Sign() != 0 {
			return fmt.Errorf("%w: %v in 0 bits", ErrNumberTooWide, v)
		}
		return nil
	}
	magnitude := v
	if v.Sign() < 0 {
		// -2^(n-1) is the smallest value, so -v-1 must fit into n-1 bits
		magnitude = new(big.Int).Not(v)
	}
	if magnitude.BitLen() > n-1 {
		return fmt.Errorf("%w: %v in %d signed bits", ErrNumberTooWide, v, n)
	}
	if err := b.ensureBits(n); err != nil {
		return err
	}
	u := v
	if v.Sign() < 0 {
		u = new(big.Int).Lsh(big.NewInt(1), uint(n))
		u.Add(u, v)
	}
	b.writeAligned(u.FillBytes(make([]byte, (n+7)/8)), n)
	return nil
}

// WriteUint256 appends v as an unsigned number of exactly n <= 256 bits.
func (b *Builder) WriteUint256(v *uint256.Int, n int) error {
	if err := checkWidth(n, 256); err != nil {
		return err
	}
	if v.BitLen() > n {
		return fmt.Errorf("%w: %v in %d bits", ErrNumberTooWide, v, n)
	}
	if err := b.ensureBits(n); err != nil {
		return err
	}
	bytes := v.Bytes32()
	b.writer.writeBits(bytes[:], n, 256-n)
	return nil
}

func checkWidth(n, limit int) error {
	if n < 0 || n > limit {
		return fmt.Errorf("%w: width of %d bits not in [0,%d]", ErrNumberTooWide, n, limit)
	}
	return nil
}

// writeAligned writes the lowest n bits of a big-endian buffer holding
// exactly ceil(n/8) bytes.
func (b *Builder) writeAligned(data []byte, n int) {
	if n > 0 {
		b.writer.writeBits(data, n, len(data)*8-n)
	}
}

// WriteRef appends a reference to the given child cell.
func (b *Builder) WriteRef(c *Cell) error {
	if c == nil {
		return fmt.Errorf("cannot reference nil cell")
	}
	if len(b.refs) >= MaxRefs {
		return fmt.Errorf("%w: cell already has %d refs", ErrRefsOverflow, len(b.refs))
	}
	b.refs = append(b.refs, c)
	return nil
}

// WriteCell inlines the data and references of the given cell.
func (b *Builder) WriteCell(c *Cell) error {
	if err := b.ensureBits(c.bitsLen); err != nil {
		return err
	}
	if len(c.refs) > b.RefsLeft() {
		return fmt.Errorf("%w: adding %d refs with %d refs left", ErrRefsOverflow, len(c.refs), b.RefsLeft())
	}
	if c.bitsLen > 0 {
		b.writer.writeBits(c.data, c.bitsLen, 0)
	}
	b.refs = append(b.refs, c.refs...)
	return nil
}

// Build creates the immutable cell from the accumulated bits and references.
func (b *Builder) Build() (*Cell, error) {
	return New(b.typ, b.writer.data, b.writer.pos, b.refs)
}
