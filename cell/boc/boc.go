// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package boc

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Cellar/cell"
)

// BOC is a bag of cells, a set of root cells serialized together so that
// shared subtrees are stored only once.
type BOC struct {
	roots []*cell.Cell
}

// New creates a bag of cells with the given roots.
func New(roots ...*cell.Cell) *BOC {
	return &BOC{roots: roots}
}

// FromBytes parses a serialized bag of cells.
func FromBytes(data []byte) (*BOC, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	roots, err := raw.Build()
	if err != nil {
		return nil, err
	}
	return &BOC{roots: roots}, nil
}

// FromHex parses a hex encoded bag of cells. Surrounding white space is
// ignored.
func FromHex(str string) (*BOC, error) {
	data, err := hex.DecodeString(strings.TrimSpace(str))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return FromBytes(data)
}

// FromBase64 parses a base64 encoded bag of cells.
func FromBase64(str string) (*BOC, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(str))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 input: %w", err)
	}
	return FromBytes(data)
}

func (b *BOC) Roots() []*cell.Cell {
	return b.roots
}

// SingleRoot returns the root of a bag of cells containing exactly one root.
func (b *BOC) SingleRoot() (*cell.Cell, error) {
	switch len(b.roots) {
	case 0:
		return nil, ErrNoRoots
	case 1:
		return b.roots[0], nil
	}
	return nil, fmt.Errorf("%w: %d roots", ErrManyRoots, len(b.roots))
}

// ToBytes serializes the bag of cells.
func (b *BOC) ToBytes(config Config) ([]byte, error) {
	raw, err := FromRoots(b.roots...)
	if err != nil {
		return nil, err
	}
	return raw.Encode(config)
}

func (b *BOC) ToHex(config Config) (string, error) {
	data, err := b.ToBytes(config)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

func (b *BOC) ToBase64(config Config) (string, error) {
	data, err := b.ToBytes(config)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
