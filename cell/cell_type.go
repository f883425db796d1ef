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

import "fmt"

// Type identifies the kind of a cell. Exotic types are stored as the first
// data byte of the cell.
type Type uint8

const (
	Ordinary     Type = 0
	PrunedBranch Type = 1
	Library      Type = 2
	MerkleProof  Type = 3
	MerkleUpdate Type = 4
)

// IsExotic reports whether the type is any other than Ordinary.
func (t Type) IsExotic() bool {
	return t != Ordinary
}

func (t Type) String() string {
	switch t {
	case Ordinary:
		return "Ordinary"
	case PrunedBranch:
		return "PrunedBranch"
	case Library:
		return "Library"
	case MerkleProof:
		return "MerkleProof"
	case MerkleUpdate:
		return "MerkleUpdate"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ExoticTypeOf derives the type of an exotic cell from its data.
func ExoticTypeOf(data []byte, bitsLen int) (Type, error) {
	if bitsLen < 8 || len(data) == 0 {
		return 0, fmt.Errorf("%w: exotic cell without type tag", ErrInvalidExotic)
	}
	switch t := Type(data[0]); t {
	case PrunedBranch, Library, MerkleProof, MerkleUpdate:
		return t, nil
	}
	return 0, fmt.Errorf("%w: unknown type tag %d", ErrInvalidExotic, data[0])
}
