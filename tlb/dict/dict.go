// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dict implements the Patricia tree dictionaries of the TL-B
// schema language (Hashmap and HashmapE) with fixed-width keys.
package dict

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"golang.org/x/exp/slices"
)

const (
	ErrInvalidLabel  = common.ConstError("invalid edge label")
	ErrDuplicateKey  = common.ConstError("duplicate key")
	ErrKeyOutOfRange = common.ConstError("key out of range")
	ErrEmpty         = common.ConstError("empty dictionary")
	ErrKeyWidth      = common.ConstError("invalid key width")
)

// Entry is a single key/value pair of a dictionary. Keys are non-negative
// numbers of the dictionary's key width.
type Entry[V any] struct {
	Key   *big.Int
	Value V
}

// StoreFunc serializes a value into the leaf cell that holds it.
type StoreFunc[V any] func(b *cell.Builder, v V) error

// LoadFunc deserializes a value from the leaf cell that holds it.
type LoadFunc[V any] func(p *cell.Parser) (V, error)

func checkKeyBits(keyBits int) error {
	if keyBits < 0 || keyBits > cell.MaxBits {
		return fmt.Errorf("%w: %d", ErrKeyWidth, keyBits)
	}
	return nil
}

// sortEntries returns a copy of the entries in ascending key order, checking
// that all keys are distinct and fit into keyBits.
func sortEntries[V any](entries []Entry[V], keyBits int) ([]Entry[V], error) {
	res := slices.Clone(entries)
	for _, e := range res {
		if e.Key == nil || e.Key.Sign() < 0 || e.Key.BitLen() > keyBits {
			return nil, fmt.Errorf("%w: %v does not fit into %d bits", ErrKeyOutOfRange, e.Key, keyBits)
		}
	}
	slices.SortFunc(res, func(a, b Entry[V]) int {
		return a.Key.Cmp(b.Key)
	})
	for i := 1; i < len(res); i++ {
		if res[i-1].Key.Cmp(res[i].Key) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, res[i].Key)
		}
	}
	return res, nil
}

// BuildRoot builds the root cell of a non-empty Hashmap with keys of keyBits
// bits. The order of the entries does not matter; the result only depends on
// the set of entries.
func BuildRoot[V any](keyBits int, entries []Entry[V], store StoreFunc[V]) (*cell.Cell, error) {
	if err := checkKeyBits(keyBits); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	sorted, err := sortEntries(entries, keyBits)
	if err != nil {
		return nil, err
	}
	return buildNode(sorted, keyBits, 0, store)
}

// keyBit returns the bit of the key at the given position counted from the
// most significant of keyBits bits.
func keyBit(key *big.Int, keyBits, pos int) uint {
	return key.Bit(keyBits - 1 - pos)
}

// keySlice extracts n bits of the key starting at the given position.
func keySlice(key *big.Int, keyBits, pos, n int) *big.Int {
	res := new(big.Int).Rsh(key, uint(keyBits-pos-n))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return res.And(res, mask.Sub(mask, big.NewInt(1)))
}

// buildNode encodes the sorted entries sharing the first offset key bits.
func buildNode[V any](entries []Entry[V], keyBits, offset int, store StoreFunc[V]) (*cell.Cell, error) {
	m := keyBits - offset
	first, last := entries[0].Key, entries[len(entries)-1].Key

	// The common prefix of a sorted range is the common prefix of its ends.
	n := m
	if len(entries) > 1 {
		n = 0
		for keyBit(first, keyBits, offset+n) == keyBit(last, keyBits, offset+n) {
			n++
		}
	}

	b := cell.NewBuilder()
	if err := writeLabel(b, keySlice(first, keyBits, offset, n), n, m); err != nil {
		return nil, err
	}
	if n == m {
		if err := store(b, entries[0].Value); err != nil {
			return nil, err
		}
		return b.Build()
	}

	fork := offset + n
	split := sort.Search(len(entries), func(i int) bool {
		return keyBit(entries[i].Key, keyBits, fork) == 1
	})
	for _, part := range [][]Entry[V]{entries[:split], entries[split:]} {
		child, err := buildNode(part, keyBits, fork+1, store)
		if err != nil {
			return nil, err
		}
		if err := b.WriteRef(child); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// ParseRoot decodes all entries of the Hashmap rooted at the given cell in
// ascending key order.
func ParseRoot[V any](root *cell.Cell, keyBits int, load LoadFunc[V]) ([]Entry[V], error) {
	if err := checkKeyBits(keyBits); err != nil {
		return nil, err
	}
	var res []Entry[V]
	if err := parseNode(root, keyBits, big.NewInt(1), load, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// parseNode decodes the subtree of a node. The prefix holds the key bits
// leading to the node behind a leading one bit.
func parseNode[V any](c *cell.Cell, keyBits int, prefix *big.Int, load LoadFunc[V], res *[]Entry[V]) error {
	p := c.Parser()
	label, n, err := readLabel(p, keyBits+1-prefix.BitLen())
	if err != nil {
		return err
	}
	prefix = new(big.Int).Lsh(prefix, uint(n))
	prefix.Or(prefix, label)

	if prefix.BitLen() == keyBits+1 {
		key := prefix.SetBit(prefix, keyBits, 0)
		value, err := load(p)
		if err != nil {
			return fmt.Errorf("failed to load value of key %v: %w", key, err)
		}
		*res = append(*res, Entry[V]{Key: key, Value: value})
		return nil
	}

	for bit := uint(0); bit < 2; bit++ {
		child, err := p.ReadNextRef()
		if err != nil {
			return err
		}
		next := new(big.Int).Lsh(prefix, 1)
		if err := parseNode(child, keyBits, next.SetBit(next, 0, bit), load, res); err != nil {
			return err
		}
	}
	return nil
}

// Store writes a HashmapE: a single zero bit for an empty dictionary, or a
// one bit followed by a reference to the root of the tree.
func Store[V any](b *cell.Builder, keyBits int, entries []Entry[V], store StoreFunc[V]) error {
	if len(entries) == 0 {
		if err := checkKeyBits(keyBits); err != nil {
			return err
		}
		return b.WriteBit(false)
	}
	root, err := BuildRoot(keyBits, entries, store)
	if err != nil {
		return err
	}
	if err := b.WriteBit(true); err != nil {
		return err
	}
	return b.WriteRef(root)
}

// Load reads a HashmapE written by Store.
func Load[V any](p *cell.Parser, keyBits int, load LoadFunc[V]) ([]Entry[V], error) {
	present, err := p.ReadBit()
	if err != nil || !present {
		return nil, err
	}
	root, err := p.ReadNextRef()
	if err != nil {
		return nil, err
	}
	return ParseRoot(root, keyBits, load)
}
