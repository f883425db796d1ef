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

import "github.com/Fantom-foundation/Cellar/common"

const (
	ErrWrongMagic    = common.ConstError("unknown bag of cells magic")
	ErrMalformed     = common.ConstError("malformed bag of cells")
	ErrChecksum      = common.ConstError("bag of cells checksum mismatch")
	ErrNoRoots       = common.ConstError("bag of cells without roots")
	ErrManyRoots     = common.ConstError("bag of cells with more than one root")
	ErrDuplicateRoot = common.ConstError("bag of cells with duplicate root")
	ErrInvalidConfig = common.ConstError("invalid bag of cells configuration")
)
