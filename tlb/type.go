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

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
)

const (
	// ErrWrongPrefix is matched by every *PrefixError.
	ErrWrongPrefix         = common.ConstError("wrong prefix")
	ErrOutOfOptions        = common.ConstError("no variant matches")
	ErrOverlappingPrefixes = common.ConstError("overlapping variant prefixes")
	ErrNilValue            = common.ConstError("nil value")
	ErrPrefixWidth         = common.ConstError("prefix width not in [0,64]")
)

// MaxPrefixBits is the widest supported constructor prefix.
const MaxPrefixBits = 64

// Type is implemented by every value that can be stored in a cell. LoadFrom
// decodes the value's fields from a parser, StoreTo encodes them into a
// builder. A type's prefix is handled by Read and Write, not by these
// methods.
type Type interface {
	LoadFrom(p *cell.Parser) error
	StoreTo(b *cell.Builder) error
}

// Prefixed is implemented by types whose encoding starts with a fixed bit
// pattern, used to distinguish the variants of a union.
type Prefixed interface {
	Prefix() Prefix
}

// Prefix is a bit pattern of up to MaxPrefixBits bits. Wider prefixes are
// rejected by Verify, Write and Union.Check with ErrPrefixWidth.
type Prefix struct {
	Value uint64
	Bits  int
}

func (p Prefix) String() string {
	if p.Bits == 0 {
		return "-"
	}
	return fmt.Sprintf("%0*b", p.Bits, p.Value)
}

func (p Prefix) check() error {
	if p.Bits < 0 || p.Bits > MaxPrefixBits {
		return fmt.Errorf("%w: %d bits", ErrPrefixWidth, p.Bits)
	}
	if p.Bits < MaxPrefixBits && p.Value>>p.Bits != 0 {
		return fmt.Errorf("%w: value %b exceeds %d bits", ErrPrefixWidth, p.Value, p.Bits)
	}
	return nil
}

// covers reports whether one prefix is a prefix of the other.
func (p Prefix) covers(other Prefix) bool {
	n := p.Bits
	if other.Bits < n {
		n = other.Bits
	}
	return p.Value>>(p.Bits-n) == other.Value>>(other.Bits-n)
}

// PrefixError reports a prefix mismatch. The parser is left at the position
// before the prefix.
type PrefixError struct {
	Expected uint64
	Actual   uint64
	Bits     int
	BitsLeft int
}

func (e *PrefixError) Error() string {
	if e.BitsLeft < e.Bits {
		return fmt.Sprintf("%v: expected %0*b, only %d bits left", ErrWrongPrefix, e.Bits, e.Expected, e.BitsLeft)
	}
	return fmt.Sprintf("%v: expected %0*b, got %0*b", ErrWrongPrefix, e.Bits, e.Expected, e.Bits, e.Actual)
}

func (e *PrefixError) Unwrap() error {
	return ErrWrongPrefix
}

// Verify consumes the prefix from the parser. On mismatch the parser is
// rewound and a *PrefixError is returned.
func (p Prefix) Verify(parser *cell.Parser) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.Bits == 0 {
		return nil
	}
	left := parser.DataBitsLeft()
	if left < p.Bits {
		return &PrefixError{Expected: p.Value, Bits: p.Bits, BitsLeft: left}
	}
	mark := parser.Mark()
	actual, err := parser.ReadUint(p.Bits)
	if err != nil {
		return err
	}
	if actual != p.Value {
		parser.Reset(mark)
		return &PrefixError{Expected: p.Value, Actual: actual, Bits: p.Bits, BitsLeft: left}
	}
	return nil
}

// Write stores the prefix in the builder.
func (p Prefix) Write(b *cell.Builder) error {
	if err := p.check(); err != nil {
		return err
	}
	return b.WriteUint(p.Value, p.Bits)
}

// Read decodes v from the parser, verifying its prefix first.
func Read(p *cell.Parser, v Type) error {
	if v == nil {
		return ErrNilValue
	}
	if prefixed, ok := v.(Prefixed); ok {
		if err := prefixed.Prefix().Verify(p); err != nil {
			return err
		}
	}
	return v.LoadFrom(p)
}

// Write encodes v into the builder, starting with its prefix.
func Write(b *cell.Builder, v Type) error {
	if v == nil {
		return ErrNilValue
	}
	if prefixed, ok := v.(Prefixed); ok {
		if err := prefixed.Prefix().Write(b); err != nil {
			return err
		}
	}
	return v.StoreTo(b)
}
