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

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"github.com/Fantom-foundation/Cellar/tlb"
	"golang.org/x/exp/constraints"
)

// KeyCodec converts between Go map keys and dictionary keys.
type KeyCodec[K comparable] struct {
	ToBig   func(K) *big.Int
	FromBig func(*big.Int) (K, error)
}

// UintKeys maps unsigned integers to dictionary keys.
func UintKeys[K constraints.Unsigned]() KeyCodec[K] {
	return KeyCodec[K]{
		ToBig: func(k K) *big.Int {
			return new(big.Int).SetUint64(uint64(k))
		},
		FromBig: func(v *big.Int) (K, error) {
			k := K(v.Uint64())
			if !v.IsUint64() || uint64(k) != v.Uint64() {
				return 0, fmt.Errorf("%w: %v exceeds %T", ErrKeyOutOfRange, v, k)
			}
			return k, nil
		},
	}
}

// HashKeys maps 256-bit hashes, like account addresses, to dictionary keys.
func HashKeys() KeyCodec[common.Hash] {
	return KeyCodec[common.Hash]{
		ToBig: func(h common.Hash) *big.Int {
			return new(big.Int).SetBytes(h[:])
		},
		FromBig: func(v *big.Int) (res common.Hash, err error) {
			if v.BitLen() > 8*common.HashSize {
				return res, fmt.Errorf("%w: %v exceeds 256 bits", ErrKeyOutOfRange, v)
			}
			v.FillBytes(res[:])
			return res, nil
		},
	}
}

// ValueCodec serializes the values of a dictionary.
type ValueCodec[V any] struct {
	Load  LoadFunc[V]
	Store StoreFunc[V]
}

type pointer[T any] interface {
	*T
	tlb.Type
}

// Values stores values of a type implementing tlb.Type, including its
// constructor prefix if it has one.
func Values[V any, P pointer[V]]() ValueCodec[V] {
	return ValueCodec[V]{
		Load: func(p *cell.Parser) (V, error) {
			var v V
			err := tlb.Read(p, P(&v))
			return v, err
		},
		Store: func(b *cell.Builder, v V) error {
			return tlb.Write(b, P(&v))
		},
	}
}

// UintValues stores unsigned integers of a fixed width.
func UintValues[T constraints.Unsigned](bits int) ValueCodec[T] {
	return ValueCodec[T]{
		Load: func(p *cell.Parser) (T, error) {
			return cell.ReadNum[T](p, bits)
		},
		Store: func(b *cell.Builder, v T) error {
			return cell.WriteNum(b, v, bits)
		},
	}
}

// BigUintValues stores arbitrary precision unsigned integers of a fixed width.
func BigUintValues(bits int) ValueCodec[*big.Int] {
	return fieldValues(func(v **big.Int) tlb.Type { return tlb.BigUint(v, bits) })
}

// VarBigUintValues stores VarUInteger values with a length field of lenBits
// bits.
func VarBigUintValues(lenBits int, unit tlb.Unit) ValueCodec[*big.Int] {
	return fieldValues(func(v **big.Int) tlb.Type { return tlb.VarBigUint(v, lenBits, unit) })
}

// CellValues stores the remainder of each leaf as a cell.
func CellValues() ValueCodec[*cell.Cell] {
	return fieldValues(tlb.Cell)
}

func fieldValues[V any](field func(*V) tlb.Type) ValueCodec[V] {
	return ValueCodec[V]{
		Load: func(p *cell.Parser) (V, error) {
			var v V
			err := field(&v).LoadFrom(p)
			return v, err
		},
		Store: func(b *cell.Builder, v V) error {
			return field(&v).StoreTo(b)
		},
	}
}

type mapField[K comparable, V any] struct {
	m       *map[K]V
	keyBits int
	keys    KeyCodec[K]
	values  ValueCodec[V]
}

// Map is a HashmapE field backed by a Go map. Keys of keyBits bits are
// converted by the key codec, values are serialized by the value codec.
func Map[K comparable, V any](m *map[K]V, keyBits int, keys KeyCodec[K], values ValueCodec[V]) tlb.Type {
	return mapField[K, V]{m, keyBits, keys, values}
}

func (f mapField[K, V]) LoadFrom(p *cell.Parser) error {
	entries, err := Load(p, f.keyBits, f.values.Load)
	if err != nil {
		return err
	}
	res := make(map[K]V, len(entries))
	for _, e := range entries {
		key, err := f.keys.FromBig(e.Key)
		if err != nil {
			return err
		}
		res[key] = e.Value
	}
	*f.m = res
	return nil
}

func (f mapField[K, V]) StoreTo(b *cell.Builder) error {
	entries := make([]Entry[V], 0, len(*f.m))
	for k, v := range *f.m {
		entries = append(entries, Entry[V]{Key: f.keys.ToBig(k), Value: v})
	}
	return Store(b, f.keyBits, entries, f.values.Store)
}
