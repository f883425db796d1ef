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

	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

func build(t *testing.T, b *Builder) *Cell {
	t.Helper()
	res, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build cell: %v", err)
	}
	return res
}

func checkData(t *testing.T, c *Cell, want []byte, wantBits int) {
	t.Helper()
	if got := c.Data(); !slices.Equal(got, want) {
		t.Errorf("unexpected data, wanted %x, got %x", want, got)
	}
	if got := c.BitsLen(); got != wantBits {
		t.Errorf("unexpected bit length, wanted %d, got %d", wantBits, got)
	}
}

func TestBuilder_WriteBitsAreAlignedToMostSignificantBit(t *testing.T) {
	b := NewBuilder()
	for _, bit := range []bool{true, false, true, false} {
		if err := b.WriteBit(bit); err != nil {
			t.Fatalf("failed to write bit: %v", err)
		}
	}
	checkData(t, build(t, b), []byte{0xA0}, 4)
}

func TestBuilder_WriteBitsWithOffset(t *testing.T) {
	b := NewBuilder()
	inputs := []struct {
		data      []byte
		n, offset int
	}{
		{[]byte{0xAA}, 8, 0},
		{[]byte{0x0F}, 4, 4},
		{[]byte{0xF3}, 3, 4},
	}
	for _, in := range inputs {
		if err := b.WriteBitsWithOffset(in.data, in.n, in.offset); err != nil {
			t.Fatalf("failed to write bits: %v", err)
		}
	}
	checkData(t, build(t, b), []byte{0xAA, 0xF2}, 15)

	b = NewBuilder()
	if err := b.WriteBitsWithOffset([]byte{0xAA, 0x0F}, 3, 10); err != nil {
		t.Fatalf("failed to write bits: %v", err)
	}
	checkData(t, build(t, b), []byte{0x20}, 3)
}

func TestBuilder_WriteBitsFailsOnMissingSourceData(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteBits([]byte{0xFF}, 9); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrNotEnoughData, err)
	}
	if err := b.WriteBitsWithOffset([]byte{0xFF}, 4, 6); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrNotEnoughData, err)
	}
	if got, want := b.BitsLen(), 0; got != want {
		t.Errorf("failed writes modified the builder, wanted %d bits, got %d", want, got)
	}
}

func TestBuilder_WriteUintPacksFixedWidthNumbers(t *testing.T) {
	b := NewBuilder()
	for _, in := range []struct{ v, n int }{{1, 4}, {2, 5}, {5, 10}} {
		if err := b.WriteUint(uint64(in.v), in.n); err != nil {
			t.Fatalf("failed to write %d: %v", in.v, err)
		}
	}
	checkData(t, build(t, b), []byte{0x11, 0x00, 0xA0}, 19)
}

func TestBuilder_WriteIntUsesTwosComplement(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteInt(-3, 16); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteInt(-3, 8); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	checkData(t, build(t, b), []byte{0xFF, 0xFD, 0xFD}, 24)

	b = NewBuilder()
	if err := b.WriteBit(false); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteInt(-3, 16); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteInt(-3, 8); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	checkData(t, build(t, b), []byte{0x7F, 0xFE, 0xFE, 0x80}, 25)
}

func TestBuilder_NumbersExceedingTheirWidthAreRejected(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		name  string
		write func() error
	}{
		{"uint 16 in 4 bits", func() error { return b.WriteUint(16, 4) }},
		{"uint 1 in 0 bits", func() error { return b.WriteUint(1, 0) }},
		{"uint in 65 bits", func() error { return b.WriteUint(1, 65) }},
		{"int 8 in 4 bits", func() error { return b.WriteInt(8, 4) }},
		{"int -9 in 4 bits", func() error { return b.WriteInt(-9, 4) }},
		{"int 1 in 0 bits", func() error { return b.WriteInt(1, 0) }},
		{"big int 8 in 4 bits", func() error { return b.WriteBigInt(big.NewInt(8), 4) }},
		{"big int -9 in 4 bits", func() error { return b.WriteBigInt(big.NewInt(-9), 4) }},
		{"big uint 16 in 4 bits", func() error { return b.WriteBigUint(big.NewInt(16), 4) }},
		{"big uint negative", func() error { return b.WriteBigUint(big.NewInt(-1), 8) }},
		{"big int 1 in 0 bits", func() error { return b.WriteBigInt(big.NewInt(1), 0) }},
		{"uint256 in 8 bits", func() error { return b.WriteUint256(uint256.NewInt(256), 8) }},
		{"negative width", func() error { return b.WriteUint(0, -1) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.write(); !errors.Is(err, ErrNumberTooWide) {
				t.Errorf("unexpected error, wanted %v, got %v", ErrNumberTooWide, err)
			}
		})
	}
	if got, want := b.BitsLen(), 0; got != want {
		t.Errorf("failed writes modified the builder, wanted %d bits, got %d", want, got)
	}
}

func TestBuilder_SignedValueNeedsRoomForSignBit(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteBigInt(big.NewInt(8), 4); !errors.Is(err, ErrNumberTooWide) {
		t.Fatalf("unexpected error, wanted %v, got %v", ErrNumberTooWide, err)
	}
	if err := b.WriteBigInt(big.NewInt(8), 5); err != nil {
		t.Fatalf("failed to write 8 into 5 bits: %v", err)
	}
	checkData(t, build(t, b), []byte{0x40}, 5)

	b = NewBuilder()
	if err := b.WriteBigInt(big.NewInt(-8), 4); err != nil {
		t.Fatalf("failed to write -8 into 4 bits: %v", err)
	}
	checkData(t, build(t, b), []byte{0x80}, 4)
}

func TestBuilder_WriteBigUint(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteUint(0, 7); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteBigUint(big.NewInt(3), 33); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	checkData(t, build(t, b), []byte{0, 0, 0, 0, 3}, 40)

	value, _ := new(big.Int).SetString("97887266651548624282413032824435501549503168134499591480902563623927645013201", 10)
	b = NewBuilder()
	if err := b.WriteUint(0, 7); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteBigUint(value, 257); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	want := []byte{0, 216, 106, 58, 195, 97, 8, 173, 64, 195, 26, 52, 186, 72, 230, 253, 248, 12,
		245, 147, 137, 170, 38, 117, 66, 220, 74, 104, 103, 119, 137, 4, 209}
	checkData(t, build(t, b), want, 264)
}

func TestBuilder_ZeroFitsIntoAnyWidth(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		b := NewBuilder()
		if err := b.WriteBigUint(new(big.Int), n); err != nil {
			t.Errorf("failed to write unsigned zero into %d bits: %v", n, err)
		}
		if err := b.WriteBigInt(new(big.Int), n); err != nil {
			t.Errorf("failed to write signed zero into %d bits: %v", n, err)
		}
		if got, want := b.BitsLen(), 2*n; got != want {
			t.Errorf("unexpected bit length, wanted %d, got %d", want, got)
		}
	}
}

func TestBuilder_WriteUint256(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteUint256(uint256.NewInt(0x1234), 20); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	checkData(t, build(t, b), []byte{0x01, 0x23, 0x40}, 20)
}

func TestBuilder_OverflowKeepsPreviouslyWrittenBits(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteBit(true); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteBits(make([]byte, 128), MaxBits); !errors.Is(err, ErrDataOverflow) {
		t.Fatalf("unexpected error, wanted %v, got %v", ErrDataOverflow, err)
	}
	checkData(t, build(t, b), []byte{0x80}, 1)
}

func TestBuilder_CapacityIsExactly1023Bits(t *testing.T) {
	b := NewBuilder()
	if err := b.WriteBits(make([]byte, 128), MaxBits); err != nil {
		t.Fatalf("failed to fill cell: %v", err)
	}
	if err := b.WriteBit(false); !errors.Is(err, ErrDataOverflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrDataOverflow, err)
	}
	if got, want := b.BitsLeft(), 0; got != want {
		t.Errorf("unexpected bits left, wanted %d, got %d", want, got)
	}
}

func TestBuilder_RefsAreLimited(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		if err := b.WriteRef(Empty()); err != nil {
			t.Fatalf("failed to add ref %d: %v", i, err)
		}
	}
	if err := b.WriteRef(Empty()); !errors.Is(err, ErrRefsOverflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrRefsOverflow, err)
	}
	if got, want := build(t, b).RefsCount(), MaxRefs; got != want {
		t.Errorf("unexpected number of refs, wanted %d, got %d", want, got)
	}
}

func TestBuilder_WriteCellInlinesDataAndRefs(t *testing.T) {
	inner := NewBuilder()
	if err := inner.WriteUint(0b101, 3); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := inner.WriteRef(Empty()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	innerCell := build(t, inner)

	b := NewBuilder()
	if err := b.WriteBit(true); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteCell(innerCell); err != nil {
		t.Fatalf("failed to write cell: %v", err)
	}
	res := build(t, b)
	checkData(t, res, []byte{0xD0}, 4)
	if got, want := res.RefsCount(), 1; got != want {
		t.Errorf("unexpected number of refs, wanted %d, got %d", want, got)
	}
}

func TestBuilder_WriteCellChecksCapacityFirst(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		if err := b.WriteRef(Empty()); err != nil {
			t.Fatalf("failed to add ref: %v", err)
		}
	}
	inner := NewBuilder()
	if err := inner.WriteByte(0xFF); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := inner.WriteRef(Empty()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteCell(build(t, inner)); !errors.Is(err, ErrRefsOverflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrRefsOverflow, err)
	}
	if got, want := b.BitsLen(), 0; got != want {
		t.Errorf("failed write modified the builder, wanted %d bits, got %d", want, got)
	}
}

func TestBuilder_WriteNumDispatchesOnSignedness(t *testing.T) {
	b := NewBuilder()
	if err := WriteNum[int8](b, -1, 4); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := WriteNum[uint16](b, 0xF, 4); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := WriteNum[uint8](b, 0xFF, 4); !errors.Is(err, ErrNumberTooWide) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrNumberTooWide, err)
	}
	checkData(t, build(t, b), []byte{0xFF}, 8)
}

func TestBuilder_UnaryPattern(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 6; i++ {
		if err := b.WriteBit(true); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
	}
	if err := b.WriteBit(false); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	checkData(t, build(t, b), []byte{0b11111100}, 7)
}

func TestBuilder_LibraryCellRequiresTag(t *testing.T) {
	b := NewBuilderOfType(Library)
	if err := b.WriteByte(3); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := b.WriteBytes(make([]byte, 32)); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrLibraryPrefix) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrLibraryPrefix, err)
	}
}
