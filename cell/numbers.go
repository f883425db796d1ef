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

import "golang.org/x/exp/constraints"

func isSigned[T constraints.Integer]() bool {
	var zero T
	return ^zero < zero
}

// WriteNum appends v as a number of exactly n bits, using two's complement
// for signed types.
func WriteNum[T constraints.Integer](b *Builder, v T, n int) error {
	if isSigned[T]() {
		return b.WriteInt(int64(v), n)
	}
	return b.WriteUint(uint64(v), n)
}

// ReadNum reads a number of n bits into a value of type T. Values exceeding
// the range of T are reported as ErrNumberTooWide.
func ReadNum[T constraints.Integer](p *Parser, n int) (T, error) {
	if isSigned[T]() {
		v, err := p.ReadInt(n)
		if err != nil {
			return 0, err
		}
		if res := T(v); int64(res) == v {
			return res, nil
		}
		return 0, ErrNumberTooWide
	}
	v, err := p.ReadUint(n)
	if err != nil {
		return 0, err
	}
	if res := T(v); uint64(res) == v {
		return res, nil
	}
	return 0, ErrNumberTooWide
}
