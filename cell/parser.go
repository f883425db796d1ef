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

// Parser is a sequential cursor over the data bits and references of a cell.
// Reads advance the cursor; only SeekBits and Reset move it backwards. A
// Parser must not be used concurrently.
type Parser struct {
	cell    *Cell
	reader  bitReader
	nextRef int
}

// Mark is a saved parser position that can be restored with Reset.
type Mark struct {
	pos, nextRef int
}

// Cell returns the cell being parsed.
func (p *Parser) Cell() *Cell {
	return p.cell
}

// Position returns the index of the next data bit to be read.
func (p *Parser) Position() int {
	return p.reader.pos
}

func (p *Parser) DataBitsLeft() int {
	return p.reader.left()
}

func (p *Parser) RefsLeft() int {
	return len(p.cell.refs) - p.nextRef
}

// Mark saves the current data and reference positions.
func (p *Parser) Mark() Mark {
	return Mark{pos: p.reader.pos, nextRef: p.nextRef}
}

// Reset restores a position obtained from Mark on the same parser.
func (p *Parser) Reset(m Mark) {
	p.reader.pos = m.pos
	p.nextRef = m.nextRef
}

func (p *Parser) ensureBits(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative bit count %d", ErrBadPosition, n)
	}
	if n > p.reader.left() {
		return fmt.Errorf("%w: requested %d bits, %d left", ErrDataUnderflow, n, p.reader.left())
	}
	return nil
}

func (p *Parser) ReadBit() (bool, error) {
	if err := p.ensureBits(1); err != nil {
		return false, err
	}
	return p.reader.readBit(), nil
}

// ReadBits reads n bits and returns them left aligned in ceil(n/8) bytes.
func (p *Parser) ReadBits(n int) ([]byte, error) {
	if err := p.ensureBits(n); err != nil {
		return nil, err
	}
	return p.reader.readBits(n), nil
}

// SkipBits advances the cursor by n bits.
func (p *Parser) SkipBits(n int) error {
	if err := p.ensureBits(n); err != nil {
		return err
	}
	p.reader.pos += n
	return nil
}

func (p *Parser) ReadBytes(n int) ([]byte, error) {
	return p.ReadBits(n * 8)
}

func (p *Parser) ReadByte() (byte, error) {
	v, err := p.ReadUint(8)
	return byte(v), err
}

// ReadUint reads an unsigned number of n <= 64 bits. Reading zero bits
// yields zero.
func (p *Parser) ReadUint(n int) (uint64, error) {
	if err := checkWidth(n, 64); err != nil {
		return 0, err
	}
	if err := p.ensureBits(n); err != nil {
		return 0, err
	}
	return p.reader.readUint(n), nil
}

// ReadInt reads a two's complement number of n <= 64 bits.
func (p *Parser) ReadInt(n int) (int64, error) {
	v, err := p.ReadUint(n)
	if err != nil || n == 0 || n == 64 {
		return int64(v), err
	}
	if v>>(n-1) != 0 {
		v |= ^uint64(0) << n
	}
	return int64(v), nil
}

// LookupBits returns the next n <= 64 bits without consuming them.
func (p *Parser) LookupBits(n int) (uint64, error) {
	pos := p.reader.pos
	v, err := p.ReadUint(n)
	p.reader.pos = pos
	return v, err
}

// ReadBigUint reads an unsigned number of n bits.
func (p *Parser) ReadBigUint(n int) (*big.Int, error) {
	if err := checkWidth(n, MaxBits); err != nil {
		return nil, err
	}
	bytes, err := p.ReadBits(n)
	if err != nil {
		return nil, err
	}
	res := new(big.Int).SetBytes(bytes)
	if rest := n % 8; rest != 0 {
		res.Rsh(res, uint(8-rest))
	}
	return res, nil
}

// ReadBigInt reads a two's complement number of n bits.
func (p *Parser) ReadBigInt(n int) (*big.Int, error) {
	res, err := p.ReadBigUint(n)
	if err != nil || n == 0 {
		return res, err
	}
	if res.Bit(n-1) != 0 {
		res.Sub(res, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	}
	return res, nil
}

// ReadUint256 reads an unsigned number of n <= 256 bits.
func (p *Parser) ReadUint256(n int) (*uint256.Int, error) {
	if err := checkWidth(n, 256); err != nil {
		return nil, err
	}
	bytes, err := p.ReadBits(n)
	if err != nil {
		return nil, err
	}
	res := new(uint256.Int).SetBytes(bytes)
	if rest := n % 8; rest != 0 {
		res.Rsh(res, uint(8-rest))
	}
	return res, nil
}

// ReadNextRef returns the next child of the cell.
func (p *Parser) ReadNextRef() (*Cell, error) {
	if p.nextRef >= len(p.cell.refs) {
		return nil, fmt.Errorf("%w: all %d refs consumed", ErrRefsUnderflow, len(p.cell.refs))
	}
	res := p.cell.refs[p.nextRef]
	p.nextRef++
	return res, nil
}

// SeekBits moves the cursor by a relative offset. The target position must
// be within [0, BitsLen), otherwise the position is left unchanged.
func (p *Parser) SeekBits(offset int) error {
	target := p.reader.pos + offset
	if target < 0 || target >= p.cell.bitsLen {
		return fmt.Errorf("%w: seeking to bit %d of %d", ErrBadPosition, target, p.cell.bitsLen)
	}
	p.reader.pos = target
	return nil
}

// EnsureEmpty fails if unread data bits are left.
func (p *Parser) EnsureEmpty() error {
	if left := p.reader.left(); left != 0 {
		return fmt.Errorf("%w: %d bits", ErrNotEmpty, left)
	}
	return nil
}

// ReadCell consumes all remaining bits and references and returns them as a
// new ordinary cell. If nothing has been read so far the parsed cell itself
// is returned, preserving its type.
func (p *Parser) ReadCell() (*Cell, error) {
	if p.reader.pos == 0 && p.nextRef == 0 {
		p.reader.pos = p.cell.bitsLen
		p.nextRef = len(p.cell.refs)
		return p.cell, nil
	}
	builder := NewBuilder()
	if left := p.reader.left(); left > 0 {
		builder.writer.writeBits(p.cell.data, left, p.reader.pos)
	}
	builder.refs = append(builder.refs, p.cell.refs[p.nextRef:]...)
	res, err := builder.Build()
	if err != nil {
		return nil, err
	}
	p.reader.pos = p.cell.bitsLen
	p.nextRef = len(p.cell.refs)
	return res, nil
}
