// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/minio/sha256-simd"
)

// HashSize is the number of bytes of a representation hash.
const HashSize = 32

// Hash is a SHA-256 digest as used for identifying cells.
type Hash [HashSize]byte

// Sha256 computes the SHA-256 digest of the concatenation of the given chunks.
func Sha256(chunks ...[]byte) Hash {
	hasher := sha256.New()
	for _, chunk := range chunks {
		hasher.Write(chunk)
	}
	var res Hash
	hasher.Sum(res[:0])
	return res
}

// HashFromBytes converts a 32-byte slice into a hash.
func HashFromBytes(data []byte) (Hash, error) {
	var res Hash
	if len(data) != HashSize {
		return res, fmt.Errorf("invalid hash length %d, expected %d", len(data), HashSize)
	}
	copy(res[:], data)
	return res, nil
}

// HashFromHex parses a hex encoded hash, an optional 0x prefix is accepted.
func HashFromHex(str string) (Hash, error) {
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		str = str[2:]
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(data)
}

// Hex returns the lower-case hex encoding of the hash without prefix.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// IsZero returns true if all bytes of the hash are zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare orders hashes lexicographically.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}
