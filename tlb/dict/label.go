// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dict

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/Fantom-foundation/Cellar/cell"
)

// Edge labels come in three forms, distinguished by a one or two bit tag:
//
//	hml_short$0 len:(Unary ~n) s:(n * Bit)
//	hml_long$10 n:(#<= m) s:(n * Bit)
//	hml_same$11 v:Bit n:(#<= m)
//
// where m is the number of key bits not yet covered by the path to the node.
// #<= m is stored in bits.Len(m) bits, the number of bits needed for m.

type labelKind int

const (
	labelShort labelKind = iota
	labelLong
	labelSame
)

// chooseLabel selects the shortest encoding for a label of n bits with m
// remaining key bits. Ties prefer short over long over same.
func chooseLabel(label *big.Int, n, m int) labelKind {
	lenBits := bits.Len(uint(m))
	kind, cost := labelShort, 2*n+2
	if long := 2 + lenBits + n; long < cost {
		kind, cost = labelLong, long
	}
	if isSame(label, n) && 3+lenBits < cost {
		kind = labelSame
	}
	return kind
}

// isSame reports whether all n bits of the label are equal.
func isSame(label *big.Int, n int) bool {
	if label.Sign() == 0 {
		return true
	}
	ones := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return ones.Sub(ones, big.NewInt(1)).Cmp(label) == 0
}

func writeLabel(b *cell.Builder, label *big.Int, n, m int) error {
	lenBits := bits.Len(uint(m))
	switch chooseLabel(label, n, m) {
	case labelShort:
		if err := b.WriteBit(false); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := b.WriteBit(true); err != nil {
				return err
			}
		}
		if err := b.WriteBit(false); err != nil {
			return err
		}
		return b.WriteBigUint(label, n)
	case labelLong:
		if err := b.WriteUint(0b10, 2); err != nil {
			return err
		}
		if err := b.WriteUint(uint64(n), lenBits); err != nil {
			return err
		}
		return b.WriteBigUint(label, n)
	default:
		if err := b.WriteUint(0b11, 2); err != nil {
			return err
		}
		if err := b.WriteBit(label.Sign() != 0); err != nil {
			return err
		}
		return b.WriteUint(uint64(n), lenBits)
	}
}

// readLabel decodes a label of at most m bits, returning its value and
// length.
func readLabel(p *cell.Parser, m int) (*big.Int, int, error) {
	long, err := p.ReadBit()
	if err != nil {
		return nil, 0, err
	}
	if !long {
		n := 0
		for {
			bit, err := p.ReadBit()
			if err != nil {
				return nil, 0, err
			}
			if !bit {
				break
			}
			if n++; n > m {
				return nil, 0, fmt.Errorf("%w: short label exceeds %d bits", ErrInvalidLabel, m)
			}
		}
		label, err := p.ReadBigUint(n)
		return label, n, err
	}

	same, err := p.ReadBit()
	if err != nil {
		return nil, 0, err
	}
	var bit bool
	if same {
		if bit, err = p.ReadBit(); err != nil {
			return nil, 0, err
		}
	}
	length, err := p.ReadUint(bits.Len(uint(m)))
	if err != nil {
		return nil, 0, err
	}
	n := int(length)
	if n > m {
		return nil, 0, fmt.Errorf("%w: label of %d bits exceeds %d bits", ErrInvalidLabel, n, m)
	}
	if !same {
		label, err := p.ReadBigUint(n)
		return label, n, err
	}
	label := new(big.Int)
	if bit {
		label.Lsh(big.NewInt(1), uint(n))
		label.Sub(label, big.NewInt(1))
	}
	return label, n, nil
}
