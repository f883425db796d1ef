// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cellstore provides an in-memory content-addressed store of cell
// trees. Each tree is kept as a zstd-compressed bag of cells under the hash
// of its root, recently used trees are cached in decoded form.
package cellstore

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Cellar/backend"
	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/cell/boc"
	"github.com/Fantom-foundation/Cellar/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	ErrNotFound  = common.ConstError("cell tree not found")
	ErrCorrupted = common.ConstError("stored cell tree is corrupted")
	ErrClosed    = common.ConstError("store is closed")
)

// Config defines the layout of stored trees.
type Config struct {
	// CacheSize is the number of decoded trees kept in memory.
	CacheSize int
	// Format is the serialization of stored trees.
	Format boc.Config
	// Compress enables zstd compression of serialized trees.
	Compress bool
}

// DefaultConfig stores compressed trees with checksums.
var DefaultConfig = Config{
	CacheSize: 1024,
	Format:    boc.CRC32CConfig,
	Compress:  true,
}

// Store is a content-addressed store of cell trees. It is safe for
// concurrent use.
type Store struct {
	db      backend.LevelDB
	cache   *lru.Cache[common.Hash, *cell.Cell]
	config  Config
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open creates an empty in-memory store.
func Open(config Config) (*Store, error) {
	cache, err := lru.New[common.Hash, *cell.Cell](config.CacheSize)
	if err != nil {
		return nil, err
	}
	db, err := backend.OpenMemoryLevelDb(nil)
	if err != nil {
		return nil, err
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Join(err, encoder.Close(), db.Close())
	}
	return &Store{
		db:      db,
		cache:   cache,
		config:  config,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func treeKey(hash common.Hash) []byte {
	return backend.ToDBKey(backend.CellTreeKey, hash[:])
}

func nameKey(name string) []byte {
	return backend.ToDBKey(backend.RootNameKey, []byte(name))
}

// Put stores the tree rooted at the given cell and returns the root hash.
// Storing the same tree twice is a no-op.
func (s *Store) Put(root *cell.Cell) (common.Hash, error) {
	hash := root.Hash()
	if s.cache.Contains(hash) {
		return hash, nil
	}
	data, err := boc.New(root).ToBytes(s.config.Format)
	if err != nil {
		return hash, err
	}
	if s.config.Compress {
		data = s.encoder.EncodeAll(data, make([]byte, 0, s.encoder.MaxEncodedSize(len(data))))
	}
	if err := s.db.Put(treeKey(hash), data, nil); err != nil {
		return hash, dbError(err)
	}
	s.cache.Add(hash, root)
	return hash, nil
}

// Get returns the tree with the given root hash.
func (s *Store) Get(hash common.Hash) (*cell.Cell, error) {
	if root, found := s.cache.Get(hash); found {
		return root, nil
	}
	data, err := s.db.Get(treeKey(hash), nil)
	if err != nil {
		return nil, dbError(err)
	}
	if s.config.Compress {
		if data, err = s.decoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
	}
	bag, err := boc.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	root, err := bag.SingleRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if got := root.Hash(); got != hash {
		return nil, fmt.Errorf("%w: root hash %v stored under %v", ErrCorrupted, got, hash)
	}
	s.cache.Add(hash, root)
	return root, nil
}

// Has reports whether a tree with the given root hash is stored.
func (s *Store) Has(hash common.Hash) (bool, error) {
	if s.cache.Contains(hash) {
		return true, nil
	}
	found, err := s.db.Has(treeKey(hash), nil)
	if err != nil {
		return false, dbError(err)
	}
	return found, nil
}

// Delete removes a tree. Deleting a missing tree is not an error.
func (s *Store) Delete(hash common.Hash) error {
	s.cache.Remove(hash)
	return dbError(s.db.Delete(treeKey(hash), nil))
}

// SetRoot associates a name with a root hash.
func (s *Store) SetRoot(name string, hash common.Hash) error {
	if len(name) == 0 || len(name) > len(backend.DbKey{})-1 {
		return fmt.Errorf("invalid root name %q", name)
	}
	return dbError(s.db.Put(nameKey(name), hash[:], nil))
}

// Root returns the tree a name was associated with by SetRoot.
func (s *Store) Root(name string) (*cell.Cell, error) {
	data, err := s.db.Get(nameKey(name), nil)
	if err != nil {
		return nil, dbError(err)
	}
	hash, err := common.HashFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return s.Get(hash)
}

// Hashes returns the root hashes of all stored trees.
func (s *Store) Hashes() ([]common.Hash, error) {
	iter := s.db.NewIterator(backend.TableRange(backend.CellTreeKey), nil)
	defer iter.Release()
	var res []common.Hash
	for iter.Next() {
		hash, err := common.HashFromBytes(iter.Key()[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
		res = append(res, hash)
	}
	return res, dbError(iter.Error())
}

// Close releases the resources of the store.
func (s *Store) Close() error {
	s.cache.Purge()
	s.decoder.Close()
	return errors.Join(s.encoder.Close(), dbError(s.db.Close()))
}

func dbError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return ErrClosed
	}
	return err
}
