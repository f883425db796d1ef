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
	"fmt"
	"math/big"
	"math/bits"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/holiman/uint256"
	"golang.org/x/exp/constraints"
)

// Unit is the granularity of a length field of a variable width value.
type Unit int

const (
	InBits  Unit = 1
	InBytes Unit = 8
)

type boolField struct {
	v *bool
}

// Bool is a single bit field.
func Bool(v *bool) Type {
	return boolField{v}
}

func (f boolField) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = p.ReadBit()
	return err
}

func (f boolField) StoreTo(b *cell.Builder) error {
	return b.WriteBit(*f.v)
}

type intField[T constraints.Integer] struct {
	v    *T
	bits int
}

// Uint is an unsigned integer field of exactly the given width.
func Uint[T constraints.Unsigned](v *T, bits int) Type {
	return intField[T]{v, bits}
}

// Int is a two's complement integer field of exactly the given width.
func Int[T constraints.Signed](v *T, bits int) Type {
	return intField[T]{v, bits}
}

func (f intField[T]) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = cell.ReadNum[T](p, f.bits)
	return err
}

func (f intField[T]) StoreTo(b *cell.Builder) error {
	return cell.WriteNum(b, *f.v, f.bits)
}

type bigField struct {
	v      **big.Int
	bits   int
	signed bool
}

// BigUint is an arbitrary precision unsigned field of exactly the given
// width. A nil value is stored as zero.
func BigUint(v **big.Int, bits int) Type {
	return bigField{v: v, bits: bits}
}

// BigInt is an arbitrary precision two's complement field of exactly the
// given width. A nil value is stored as zero.
func BigInt(v **big.Int, bits int) Type {
	return bigField{v: v, bits: bits, signed: true}
}

func (f bigField) LoadFrom(p *cell.Parser) (err error) {
	if f.signed {
		*f.v, err = p.ReadBigInt(f.bits)
	} else {
		*f.v, err = p.ReadBigUint(f.bits)
	}
	return err
}

func (f bigField) StoreTo(b *cell.Builder) error {
	v := valueOrZero(*f.v)
	if f.signed {
		return b.WriteBigInt(v, f.bits)
	}
	return b.WriteBigUint(v, f.bits)
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

type uint256Field struct {
	v    *uint256.Int
	bits int
}

// Uint256 is an unsigned field of up to 256 bits.
func Uint256(v *uint256.Int, bits int) Type {
	return uint256Field{v, bits}
}

func (f uint256Field) LoadFrom(p *cell.Parser) error {
	v, err := p.ReadUint256(f.bits)
	if err != nil {
		return err
	}
	f.v.Set(v)
	return nil
}

func (f uint256Field) StoreTo(b *cell.Builder) error {
	return b.WriteUint256(f.v, f.bits)
}

// varLength computes the length field for a value of the given bit length
// and checks that it fits into lenBits.
func varLength(bitLen, lenBits int, unit Unit) (int, error) {
	length := (bitLen + int(unit) - 1) / int(unit)
	if lenBits < 64 && uint64(length) >= uint64(1)<<lenBits {
		return 0, fmt.Errorf("%w: length %d does not fit into %d bits", cell.ErrNumberTooWide, length, lenBits)
	}
	return length, nil
}

type varUintField[T constraints.Unsigned] struct {
	v       *T
	lenBits int
	unit    Unit
}

// VarUint is an unsigned integer preceded by a length field of lenBits bits.
// The length counts bits or bytes of the value depending on the unit.
func VarUint[T constraints.Unsigned](v *T, lenBits int, unit Unit) Type {
	return varUintField[T]{v, lenBits, unit}
}

func (f varUintField[T]) LoadFrom(p *cell.Parser) error {
	length, err := p.ReadUint(f.lenBits)
	if err != nil {
		return err
	}
	*f.v, err = cell.ReadNum[T](p, int(length)*int(f.unit))
	return err
}

func (f varUintField[T]) StoreTo(b *cell.Builder) error {
	length, err := varLength(bits.Len64(uint64(*f.v)), f.lenBits, f.unit)
	if err != nil {
		return err
	}
	if err := b.WriteUint(uint64(length), f.lenBits); err != nil {
		return err
	}
	return cell.WriteNum(b, *f.v, length*int(f.unit))
}

type varBigField struct {
	v       **big.Int
	lenBits int
	unit    Unit
	signed  bool
}

// VarBigUint is an arbitrary precision unsigned value preceded by a length
// field, as used by VarUInteger.
func VarBigUint(v **big.Int, lenBits int, unit Unit) Type {
	return varBigField{v: v, lenBits: lenBits, unit: unit}
}

// VarBigInt is an arbitrary precision signed value preceded by a length
// field, as used by VarInteger.
func VarBigInt(v **big.Int, lenBits int, unit Unit) Type {
	return varBigField{v: v, lenBits: lenBits, unit: unit, signed: true}
}

func (f varBigField) LoadFrom(p *cell.Parser) error {
	length, err := p.ReadUint(f.lenBits)
	if err != nil {
		return err
	}
	return bigField{v: f.v, bits: int(length) * int(f.unit), signed: f.signed}.LoadFrom(p)
}

func (f varBigField) StoreTo(b *cell.Builder) error {
	v := valueOrZero(*f.v)
	bitLen := v.BitLen()
	if f.signed {
		switch v.Sign() {
		case 1:
			bitLen = v.BitLen() + 1
		case -1:
			bitLen = new(big.Int).Not(v).BitLen() + 1
		}
	}
	length, err := varLength(bitLen, f.lenBits, f.unit)
	if err != nil {
		return err
	}
	if err := b.WriteUint(uint64(length), f.lenBits); err != nil {
		return err
	}
	return bigField{v: &v, bits: length * int(f.unit), signed: f.signed}.StoreTo(b)
}

type unaryField struct {
	v *int
}

// Unary is a natural number encoded as that many one bits followed by a
// zero bit.
func Unary(v *int) Type {
	return unaryField{v}
}

func (f unaryField) LoadFrom(p *cell.Parser) error {
	n := 0
	for {
		bit, err := p.ReadBit()
		if err != nil {
			return err
		}
		if !bit {
			break
		}
		n++
	}
	*f.v = n
	return nil
}

func (f unaryField) StoreTo(b *cell.Builder) error {
	if *f.v < 0 {
		return fmt.Errorf("%w: negative unary value %d", cell.ErrNumberTooWide, *f.v)
	}
	if *f.v+1 > b.BitsLeft() {
		return fmt.Errorf("%w: unary value %d", cell.ErrDataOverflow, *f.v)
	}
	for i := 0; i < *f.v; i++ {
		if err := b.WriteBit(true); err != nil {
			return err
		}
	}
	return b.WriteBit(false)
}
