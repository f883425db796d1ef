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

import "github.com/Fantom-foundation/Cellar/common"

const (
	// ErrDataOverflow is returned if a write exceeds the cell's bit capacity.
	ErrDataOverflow = common.ConstError("cell data overflow")
	// ErrRefsOverflow is returned if a cell would get more than MaxRefs children.
	ErrRefsOverflow = common.ConstError("cell refs overflow")
	// ErrDataUnderflow is returned if a read requests more bits than left.
	ErrDataUnderflow = common.ConstError("cell data underflow")
	// ErrRefsUnderflow is returned if all references have been consumed.
	ErrRefsUnderflow = common.ConstError("cell refs underflow")
	ErrBadPosition   = common.ConstError("position out of range")
	ErrNumberTooWide = common.ConstError("number does not fit into bit width")
	ErrNotEnoughData = common.ConstError("not enough source data")
	ErrNotEmpty      = common.ConstError("unread data left")
	ErrInvalidExotic = common.ConstError("invalid exotic cell")
	ErrLibraryPrefix = common.ConstError("invalid library cell prefix")
	ErrDepthOverflow = common.ConstError("cell depth overflow")
)
