// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// CellTreeKey is a tablespace for serialized cell trees keyed by root hash
	CellTreeKey TableSpace = 'C'
	// RootNameKey is a tablespace mapping names to root hashes
	RootNameKey TableSpace = 'N'
)

// DbKey expects max size of the 64B key plus one byte for the table prefix.
type DbKey [65]byte

// ToDBKey converts the input key to its respective table space key. The
// result has the length of the prefix plus the key.
func ToDBKey(t TableSpace, key []byte) []byte {
	var dbKey DbKey
	dbKey[0] = byte(t)
	if n := copy(dbKey[1:], key); n < len(key) {
		panic(fmt.Sprintf("input key does not fit into dbkey: len(key) > len(DbKey)-1: %d > %d", len(key), len(dbKey)-1))
	}
	return dbKey[:1+len(key)]
}

// TableRange is the key range covering a whole table space.
func TableRange(t TableSpace) *util.Range {
	return util.BytesPrefix([]byte{byte(t)})
}

// LevelDB is an interface missing in original LevelDB design.
// It contains the methods of a LevelDB instance used by the stores.
type LevelDB interface {

	// Get gets the value for the given key. It returns leveldb.ErrNotFound
	// if the DB does not contain the key.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)

	// Has returns true if the DB does contain the given key.
	Has(key []byte, ro *opt.ReadOptions) (bool, error)

	// NewIterator returns an iterator for the latest snapshot of the
	// underlying DB. The iterator must be released after use.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator

	// Put sets the value for the given key, overwriting any previous value.
	Put(key, value []byte, wo *opt.WriteOptions) error

	// Delete deletes the value for the given key.
	Delete(key []byte, wo *opt.WriteOptions) error

	Close() error
}

// OpenMemoryLevelDb opens a LevelDB instance kept entirely in memory.
func OpenMemoryLevelDb(options *opt.Options) (*leveldb.DB, error) {
	return leveldb.Open(storage.NewMemStorage(), options)
}
