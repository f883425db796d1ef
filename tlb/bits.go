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
	"encoding/hex"
	"fmt"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
)

// BitString is a sequence of bits stored left aligned in Data.
type BitString struct {
	Data []byte
	Len  int
}

func (s BitString) String() string {
	return fmt.Sprintf("%d:%s", s.Len, hex.EncodeToString(s.Data))
}

type bitsField struct {
	v    *[]byte
	bits int
}

// Bits is a bit string of exactly the given length, stored left aligned in
// a byte slice of ceil(bits/8) bytes.
func Bits(v *[]byte, bits int) Type {
	return bitsField{v, bits}
}

func (f bitsField) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = p.ReadBits(f.bits)
	return err
}

func (f bitsField) StoreTo(b *cell.Builder) error {
	return b.WriteBits(*f.v, f.bits)
}

type hashField struct {
	v *common.Hash
}

// Hash is a 256 bit field.
func Hash(v *common.Hash) Type {
	return hashField{v}
}

func (f hashField) LoadFrom(p *cell.Parser) error {
	data, err := p.ReadBytes(common.HashSize)
	if err != nil {
		return err
	}
	copy(f.v[:], data)
	return nil
}

func (f hashField) StoreTo(b *cell.Builder) error {
	return b.WriteBytes(f.v[:])
}

type varBitsField struct {
	v       *BitString
	lenBits int
}

// VarBits is a bit string preceded by its length in lenBits bits.
func VarBits(v *BitString, lenBits int) Type {
	return varBitsField{v, lenBits}
}

func (f varBitsField) LoadFrom(p *cell.Parser) error {
	length, err := p.ReadUint(f.lenBits)
	if err != nil {
		return err
	}
	data, err := p.ReadBits(int(length))
	if err != nil {
		return err
	}
	*f.v = BitString{Data: data, Len: int(length)}
	return nil
}

func (f varBitsField) StoreTo(b *cell.Builder) error {
	if err := b.WriteUint(uint64(f.v.Len), f.lenBits); err != nil {
		return err
	}
	return b.WriteBits(f.v.Data, f.v.Len)
}
