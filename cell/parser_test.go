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
	"errors"
	"math/big"
	"testing"

	"golang.org/x/exp/slices"
)

func cellOf(t *testing.T, data []byte, bitsLen int, refs ...*Cell) *Cell {
	t.Helper()
	res, err := New(Ordinary, data, bitsLen, refs)
	if err != nil {
		t.Fatalf("failed to create cell: %v", err)
	}
	return res
}

func TestParser_ReadBits(t *testing.T) {
	p := cellOf(t, []byte{0xAA, 0x55}, 16).Parser()
	got, err := p.ReadBits(3)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if want := []byte{0xA0}; !slices.Equal(got, want) {
		t.Errorf("unexpected bits, wanted %x, got %x", want, got)
	}
	got, err = p.ReadBits(6)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if want := []byte{0x50}; !slices.Equal(got, want) {
		t.Errorf("unexpected bits, wanted %x, got %x", want, got)
	}
	if got, want := p.DataBitsLeft(), 7; got != want {
		t.Errorf("unexpected bits left, wanted %d, got %d", want, got)
	}
}

func TestParser_ReadUint(t *testing.T) {
	p := cellOf(t, []byte{0xAA, 0x55}, 16).Parser()
	for _, want := range []uint64{5, 2, 4} {
		got, err := p.ReadUint(3)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if got != want {
			t.Errorf("unexpected value, wanted %d, got %d", want, got)
		}
	}
}

func TestParser_ZeroWidthReadsDoNotConsume(t *testing.T) {
	p := cellOf(t, []byte{0xFF}, 8).Parser()
	if got, err := p.ReadUint(0); err != nil || got != 0 {
		t.Errorf("unexpected result of zero width read: %d, %v", got, err)
	}
	if got, err := p.ReadBigInt(0); err != nil || got.Sign() != 0 {
		t.Errorf("unexpected result of zero width read: %v, %v", got, err)
	}
	if got, want := p.Position(), 0; got != want {
		t.Errorf("zero width reads moved the cursor to %d", got)
	}
}

func TestParser_LookupBitsDoesNotConsume(t *testing.T) {
	p := cellOf(t, []byte{0xAA, 0x55}, 16).Parser()
	got, err := p.LookupBits(3)
	if err != nil {
		t.Fatalf("failed to look up bits: %v", err)
	}
	if want := uint64(5); got != want {
		t.Errorf("unexpected value, wanted %d, got %d", want, got)
	}
	if got, want := p.Position(), 0; got != want {
		t.Errorf("unexpected position, wanted %d, got %d", want, got)
	}
}

func TestParser_ReadSignedNumbers(t *testing.T) {
	tests := []struct {
		data []byte
		skip int
		bits int
		want int64
	}{
		{[]byte{0xE0}, 0, 3, -1},
		{[]byte{0x80, 0x01}, 0, 16, -32767},
		{[]byte{0x1E, 0xF0}, 3, 9, -17},
		{[]byte{0x7F, 0xFF}, 0, 16, 32767},
	}
	for _, test := range tests {
		c := cellOf(t, test.data, len(test.data)*8)

		p := c.Parser()
		if err := p.SkipBits(test.skip); err != nil {
			t.Fatalf("failed to skip: %v", err)
		}
		got, err := p.ReadInt(test.bits)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if got != test.want {
			t.Errorf("unexpected value, wanted %d, got %d", test.want, got)
		}

		p = c.Parser()
		if err := p.SkipBits(test.skip); err != nil {
			t.Fatalf("failed to skip: %v", err)
		}
		wide, err := p.ReadBigInt(test.bits)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if !wide.IsInt64() || wide.Int64() != test.want {
			t.Errorf("unexpected big value, wanted %d, got %v", test.want, wide)
		}
	}
}

func TestParser_ReadBigUintDropsPaddingBits(t *testing.T) {
	p := cellOf(t, []byte{0xAA, 0x55, 0xFF, 0xFF}, 32).Parser()
	for _, step := range []struct {
		bits int
		want int64
	}{{3, 5}, {4, 5}, {8, 0x2A}, {1, 1}, {16, 0xFFFF}} {
		got, err := p.ReadBigUint(step.bits)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if got.Cmp(big.NewInt(step.want)) != 0 {
			t.Errorf("unexpected value, wanted %d, got %v", step.want, got)
		}
	}
}

func TestParser_ReadUint256(t *testing.T) {
	p := cellOf(t, []byte{0x01, 0x23, 0x40}, 20).Parser()
	got, err := p.ReadUint256(20)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if want := uint64(0x1234); got.Uint64() != want {
		t.Errorf("unexpected value, wanted %x, got %v", want, got)
	}
}

func TestParser_ReadBeyondEndFails(t *testing.T) {
	p := cellOf(t, []byte{0xFF}, 5).Parser()
	if _, err := p.ReadUint(6); !errors.Is(err, ErrDataUnderflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrDataUnderflow, err)
	}
	if _, err := p.ReadBits(6); !errors.Is(err, ErrDataUnderflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrDataUnderflow, err)
	}
	if _, err := p.ReadNextRef(); !errors.Is(err, ErrRefsUnderflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrRefsUnderflow, err)
	}
}

func TestParser_ReadNextRefIsSequential(t *testing.T) {
	a := cellOf(t, []byte{1}, 8)
	b := cellOf(t, []byte{2}, 8)
	p := cellOf(t, nil, 0, a, b).Parser()
	for _, want := range []*Cell{a, b} {
		got, err := p.ReadNextRef()
		if err != nil {
			t.Fatalf("failed to read ref: %v", err)
		}
		if got != want {
			t.Errorf("unexpected ref, wanted %v, got %v", want, got)
		}
	}
	if _, err := p.ReadNextRef(); !errors.Is(err, ErrRefsUnderflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrRefsUnderflow, err)
	}
}

func TestParser_SeekBitsStaysWithinData(t *testing.T) {
	p := cellOf(t, []byte{0xAA}, 8).Parser()
	if err := p.SeekBits(7); err != nil {
		t.Fatalf("failed to seek: %v", err)
	}
	if got, want := p.Position(), 7; got != want {
		t.Errorf("unexpected position, wanted %d, got %d", want, got)
	}
	for _, offset := range []int{1, -8, 100} {
		if err := p.SeekBits(offset); !errors.Is(err, ErrBadPosition) {
			t.Errorf("unexpected error for offset %d, wanted %v, got %v", offset, ErrBadPosition, err)
		}
		if got, want := p.Position(), 7; got != want {
			t.Errorf("failed seek moved the cursor to %d", got)
		}
	}
	if err := p.SeekBits(-7); err != nil {
		t.Fatalf("failed to seek back: %v", err)
	}
	if got, want := p.Position(), 0; got != want {
		t.Errorf("unexpected position, wanted %d, got %d", want, got)
	}
}

func TestParser_EnsureEmpty(t *testing.T) {
	p := cellOf(t, []byte{0xAA}, 4).Parser()
	if err := p.EnsureEmpty(); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrNotEmpty, err)
	}
	if _, err := p.ReadUint(4); err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if err := p.EnsureEmpty(); err != nil {
		t.Errorf("parser should be empty: %v", err)
	}
}

func TestParser_MarkAndReset(t *testing.T) {
	p := cellOf(t, []byte{0xAA}, 8, Empty()).Parser()
	mark := p.Mark()
	if _, err := p.ReadUint(5); err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if _, err := p.ReadNextRef(); err != nil {
		t.Fatalf("failed to read ref: %v", err)
	}
	p.Reset(mark)
	if got, want := p.Position(), 0; got != want {
		t.Errorf("unexpected position, wanted %d, got %d", want, got)
	}
	if got, want := p.RefsLeft(), 1; got != want {
		t.Errorf("unexpected refs left, wanted %d, got %d", want, got)
	}
}

func TestParser_ReadCellAtStartReturnsParsedCell(t *testing.T) {
	c := cellOf(t, []byte{0xAA}, 8, Empty())
	p := c.Parser()
	got, err := p.ReadCell()
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	if got != c {
		t.Errorf("expected the parsed cell to be returned")
	}
	if got, want := p.DataBitsLeft(), 0; got != want {
		t.Errorf("unexpected bits left, wanted %d, got %d", want, got)
	}
}

func TestParser_ReadCellDrainsRemainder(t *testing.T) {
	a := cellOf(t, []byte{1}, 8)
	b := cellOf(t, []byte{2}, 8)
	p := cellOf(t, []byte{0xAB, 0xC0}, 12, a, b).Parser()
	if _, err := p.ReadUint(4); err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if _, err := p.ReadNextRef(); err != nil {
		t.Fatalf("failed to read ref: %v", err)
	}
	got, err := p.ReadCell()
	if err != nil {
		t.Fatalf("failed to read cell: %v", err)
	}
	checkData(t, got, []byte{0xBC}, 8)
	if got.RefsCount() != 1 || got.Refs()[0] != b {
		t.Errorf("unexpected refs of drained cell: %v", got.Refs())
	}
	if err := p.EnsureEmpty(); err != nil {
		t.Errorf("parser should be empty: %v", err)
	}
	if got, want := p.RefsLeft(), 0; got != want {
		t.Errorf("unexpected refs left, wanted %d, got %d", want, got)
	}
}

func TestParser_ReadNumChecksTargetRange(t *testing.T) {
	p := cellOf(t, []byte{0xFF, 0xFF}, 16).Parser()
	if got, err := ReadNum[int8](p, 4); err != nil || got != -1 {
		t.Errorf("unexpected result: %d, %v", got, err)
	}
	if _, err := ReadNum[uint8](p, 12); !errors.Is(err, ErrNumberTooWide) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrNumberTooWide, err)
	}
}

func TestParser_BitRoundTripForAllWidths(t *testing.T) {
	for n := 1; n <= 128; n++ {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(n))
		unsigned := new(big.Int).Sub(limit, big.NewInt(1))
		signedMin := new(big.Int).Neg(new(big.Int).Rsh(limit, 1))

		b := NewBuilder()
		if err := b.WriteBigUint(unsigned, n); err != nil {
			t.Fatalf("failed to write %d bits: %v", n, err)
		}
		if err := b.WriteBigInt(signedMin, n); err != nil {
			t.Fatalf("failed to write %d bits: %v", n, err)
		}
		small := uint64(1)<<(min(n, 64)-1) | 1
		if err := b.WriteUint(small, min(n, 64)); err != nil {
			t.Fatalf("failed to write %d bits: %v", n, err)
		}
		p := build(t, b).Parser()

		gotUnsigned, err := p.ReadBigUint(n)
		if err != nil || gotUnsigned.Cmp(unsigned) != 0 {
			t.Errorf("unexpected unsigned %d bit value %v, %v", n, gotUnsigned, err)
		}
		gotSigned, err := p.ReadBigInt(n)
		if err != nil || gotSigned.Cmp(signedMin) != 0 {
			t.Errorf("unexpected signed %d bit value %v, %v", n, gotSigned, err)
		}
		gotSmall, err := p.ReadUint(min(n, 64))
		if err != nil || gotSmall != small {
			t.Errorf("unexpected small %d bit value %v, %v", n, gotSmall, err)
		}
	}
}
