// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package block contains schema types of the block layout shared by most
// contracts: amounts of currency and message addresses.
package block

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"github.com/Fantom-foundation/Cellar/tlb"
	"github.com/Fantom-foundation/Cellar/tlb/dict"
)

const ErrNegativeAmount = common.ConstError("negative amount")

const nanoDigits = 9

// Grams is an amount of nanograms, serialized as VarUInteger 16: a 4-bit
// length in bytes followed by the value. The zero value is an amount of 0.
type Grams struct {
	nano *big.Int
}

// Coins is the name newer schemas use for Grams.
type Coins = Grams

// NewGrams creates an amount of nanograms.
func NewGrams(nano *big.Int) Grams {
	return Grams{nano: new(big.Int).Set(nano)}
}

// GramsFromUint64 creates an amount of nanograms.
func GramsFromUint64(nano uint64) Grams {
	return Grams{nano: new(big.Int).SetUint64(nano)}
}

// Nano returns a copy of the amount in nanograms.
func (g Grams) Nano() *big.Int {
	if g.nano == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(g.nano)
}

// Cmp compares two amounts like big.Int.Cmp.
func (g Grams) Cmp(other Grams) int {
	return g.Nano().Cmp(other.Nano())
}

// String formats the amount in whole units with up to nine decimals.
func (g Grams) String() string {
	digits := g.Nano().String()
	if len(digits) <= nanoDigits {
		digits = strings.Repeat("0", nanoDigits+1-len(digits)) + digits
	}
	whole, frac := digits[:len(digits)-nanoDigits], strings.TrimRight(digits[len(digits)-nanoDigits:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func (g *Grams) LoadFrom(p *cell.Parser) error {
	return tlb.VarBigUint(&g.nano, 4, tlb.InBytes).LoadFrom(p)
}

func (g *Grams) StoreTo(b *cell.Builder) error {
	if g.nano != nil && g.nano.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, g.nano)
	}
	return tlb.VarBigUint(&g.nano, 4, tlb.InBytes).StoreTo(b)
}

// CurrencyCollection is an amount of the native currency plus amounts of
// extra currencies keyed by their 32-bit id.
type CurrencyCollection struct {
	Grams Grams
	Other map[uint32]*big.Int
}

func (c *CurrencyCollection) fields() tlb.Type {
	// extra_currencies$_ dict:(HashmapE 32 (VarUInteger 32))
	return tlb.Record(
		&c.Grams,
		dict.Map(&c.Other, 32, dict.UintKeys[uint32](), dict.VarBigUintValues(5, tlb.InBytes)),
	)
}

func (c *CurrencyCollection) LoadFrom(p *cell.Parser) error {
	return c.fields().LoadFrom(p)
}

func (c *CurrencyCollection) StoreTo(b *cell.Builder) error {
	for id, amount := range c.Other {
		if amount == nil || amount.Sign() < 0 {
			return fmt.Errorf("%w: currency %d has amount %v", ErrNegativeAmount, id, amount)
		}
	}
	return c.fields().StoreTo(b)
}
