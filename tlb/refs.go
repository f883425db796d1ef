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

// pointer is satisfied by *T if *T implements Type.
type pointer[T any] interface {
	*T
	Type
}

type refField struct {
	v **cell.Cell
}

// Ref is a raw reference to a child cell.
func Ref(v **cell.Cell) Type {
	return refField{v}
}

func (f refField) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = p.ReadNextRef()
	return err
}

func (f refField) StoreTo(b *cell.Builder) error {
	return b.WriteRef(*f.v)
}

type inRef struct {
	value Type
}

// InRef stores a value in its own child cell.
func InRef(v Type) Type {
	return inRef{v}
}

func (f inRef) LoadFrom(p *cell.Parser) error {
	child, err := p.ReadNextRef()
	if err != nil {
		return err
	}
	return Read(child.Parser(), f.value)
}

func (f inRef) StoreTo(b *cell.Builder) error {
	child, err := ToCell(f.value)
	if err != nil {
		return err
	}
	return b.WriteRef(child)
}

type cellField struct {
	v **cell.Cell
}

// Cell embeds the remaining bits and references of the parser as a cell. At
// the start of a parser the parsed cell itself is produced.
func Cell(v **cell.Cell) Type {
	return cellField{v}
}

func (f cellField) LoadFrom(p *cell.Parser) (err error) {
	*f.v, err = p.ReadCell()
	return err
}

func (f cellField) StoreTo(b *cell.Builder) error {
	if *f.v == nil {
		return ErrNilValue
	}
	return b.WriteCell(*f.v)
}

// maybeField is a presence bit followed by a value, if present.
type maybeField struct {
	present func() bool
	load    func(p *cell.Parser) error
	store   func(b *cell.Builder) error
	clear   func()
}

func (f maybeField) LoadFrom(p *cell.Parser) error {
	present, err := p.ReadBit()
	if err != nil {
		return err
	}
	if !present {
		f.clear()
		return nil
	}
	return f.load(p)
}

func (f maybeField) StoreTo(b *cell.Builder) error {
	present := f.present()
	if err := b.WriteBit(present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return f.store(b)
}

// Maybe is an optional inline value. A nil pointer is stored as absent.
func Maybe[T any, P pointer[T]](v **T) Type {
	return maybeField{
		present: func() bool { return *v != nil },
		load: func(p *cell.Parser) error {
			value := P(new(T))
			if err := Read(p, value); err != nil {
				return err
			}
			*v = value
			return nil
		},
		store: func(b *cell.Builder) error { return Write(b, P(*v)) },
		clear: func() { *v = nil },
	}
}

// MaybeRef is an optional value stored in a child cell.
func MaybeRef[T any, P pointer[T]](v **T) Type {
	return maybeField{
		present: func() bool { return *v != nil },
		load: func(p *cell.Parser) error {
			value := P(new(T))
			if err := InRef(value).LoadFrom(p); err != nil {
				return err
			}
			*v = value
			return nil
		},
		store: func(b *cell.Builder) error { return InRef(P(*v)).StoreTo(b) },
		clear: func() { *v = nil },
	}
}

// MaybeCell is an optional reference to a raw child cell.
func MaybeCell(v **cell.Cell) Type {
	return maybeField{
		present: func() bool { return *v != nil },
		load:    Ref(v).LoadFrom,
		store:   Ref(v).StoreTo,
		clear:   func() { *v = nil },
	}
}
