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

import "github.com/Fantom-foundation/Cellar/cell"

type record []Type

// Record combines fields that are encoded one after another in declaration
// order, without any tagging. Prefixes of the fields are verified and
// written as part of each field.
func Record(fields ...Type) Type {
	return record(fields)
}

func (r record) LoadFrom(p *cell.Parser) error {
	for _, field := range r {
		if err := Read(p, field); err != nil {
			return err
		}
	}
	return nil
}

func (r record) StoreTo(b *cell.Builder) error {
	for _, field := range r {
		if err := Write(b, field); err != nil {
			return err
		}
	}
	return nil
}

type exact struct {
	value Type
}

// Exact decodes the value and requires the parser to have no data bits left.
func Exact(v Type) Type {
	return exact{v}
}

func (e exact) LoadFrom(p *cell.Parser) error {
	if err := Read(p, e.value); err != nil {
		return err
	}
	return p.EnsureEmpty()
}

func (e exact) StoreTo(b *cell.Builder) error {
	return Write(b, e.value)
}

type prefixed struct {
	prefix Prefix
	value  Type
}

// WithPrefix attaches a constant prefix to a value that does not declare one
// itself.
func WithPrefix(prefix Prefix, v Type) Type {
	return prefixed{prefix, v}
}

func (p prefixed) Prefix() Prefix {
	return p.prefix
}

func (p prefixed) LoadFrom(parser *cell.Parser) error {
	return Read(parser, p.value)
}

func (p prefixed) StoreTo(b *cell.Builder) error {
	return Write(b, p.value)
}
