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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Cellar/cell"
)

// Variant is a member of a union, identified by its prefix.
type Variant interface {
	Type
	Prefixed
}

// Union decodes values of a sum type T by trying its variants in declaration
// order. The first variant whose prefix matches is used; later variants
// sharing a matching prefix are never reached.
type Union[T Variant] struct {
	name     string
	variants []func() T
}

// NewUnion creates a union from constructors of its variants. Each
// constructor has to return a fresh zero value of the variant.
func NewUnion[T Variant](name string, variants ...func() T) *Union[T] {
	return &Union[T]{name: name, variants: variants}
}

// Check reports pairs of variants where one prefix is a prefix of the other
// and prefixes of unsupported width.
func (u *Union[T]) Check() error {
	prefixes := make([]Prefix, len(u.variants))
	for i, variant := range u.variants {
		prefixes[i] = variant().Prefix()
		if err := prefixes[i].check(); err != nil {
			return fmt.Errorf("%s variant %d: %w", u.name, i, err)
		}
	}
	for i := range prefixes {
		for j := i + 1; j < len(prefixes); j++ {
			if prefixes[i].covers(prefixes[j]) {
				return fmt.Errorf("%w: %s variants %d (%v) and %d (%v)", ErrOverlappingPrefixes, u.name, i, prefixes[i], j, prefixes[j])
			}
		}
	}
	return nil
}

// Load decodes the first variant whose prefix matches. A variant failing with
// a prefix error anywhere in its encoding is skipped and the parser is
// restored, any other error is returned.
func (u *Union[T]) Load(p *cell.Parser) (T, error) {
	mark := p.Mark()
	for _, variant := range u.variants {
		value := variant()
		err := Read(p, value)
		if err == nil {
			return value, nil
		}
		var prefixErr *PrefixError
		if !errors.As(err, &prefixErr) {
			var zero T
			return zero, fmt.Errorf("%s: %w", u.name, err)
		}
		p.Reset(mark)
	}
	var zero T
	return zero, fmt.Errorf("%w: %s at bit %d", ErrOutOfOptions, u.name, p.Position())
}

// Store encodes the given variant including its prefix.
func (u *Union[T]) Store(b *cell.Builder, v T) error {
	return Write(b, v)
}

type unionField[T Variant] struct {
	union *Union[T]
	v     *T
}

// Field adapts a union typed value to a record field.
func (u *Union[T]) Field(v *T) Type {
	return unionField[T]{u, v}
}

func (f unionField[T]) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = f.union.Load(p)
	return err
}

func (f unionField[T]) StoreTo(b *cell.Builder) error {
	return f.union.Store(b, *f.v)
}
