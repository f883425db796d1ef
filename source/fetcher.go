// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package source is the boundary to parties serving serialized cell trees,
// like blockchain nodes or indexers. It decodes their responses into cells
// and schema values.
package source

//go:generate mockgen -source fetcher.go -destination fetcher_mocks.go -package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Cellar/backend/cellstore"
	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/cell/boc"
	"github.com/Fantom-foundation/Cellar/common"
	"github.com/Fantom-foundation/Cellar/tlb"
	"github.com/Fantom-foundation/Cellar/tlb/block"
)

const ErrHashMismatch = common.ConstError("root hash mismatch")

// Kind is the part of an account a request is asking for.
type Kind byte

const (
	AccountState Kind = iota
	Code
	Data
)

func (k Kind) String() string {
	switch k {
	case AccountState:
		return "state"
	case Code:
		return "code"
	case Data:
		return "data"
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Request identifies a serialized cell tree held by a remote party.
type Request struct {
	Account *block.AddressStd
	Kind    Kind
	// Hash is the expected root hash. A zero hash accepts any tree.
	Hash common.Hash
}

func (r Request) String() string {
	return fmt.Sprintf("%v of %v", r.Kind, r.Account)
}

// Fetcher retrieves the bag of cells answering a request.
type Fetcher interface {
	// FetchBOC returns the serialized tree for the given request. No retries
	// are expected from the caller.
	FetchBOC(ctx context.Context, req Request) ([]byte, error)
}

// FetchCell retrieves the single root of the tree answering the request.
func FetchCell(ctx context.Context, f Fetcher, req Request) (*cell.Cell, error) {
	data, err := f.FetchBOC(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %v: %w", req, err)
	}
	bag, err := boc.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid response for %v: %w", req, err)
	}
	root, err := bag.SingleRoot()
	if err != nil {
		return nil, fmt.Errorf("invalid response for %v: %w", req, err)
	}
	if !req.Hash.IsZero() && root.Hash() != req.Hash {
		return nil, fmt.Errorf("%w: wanted %v, got %v", ErrHashMismatch, req.Hash, root.Hash())
	}
	return root, nil
}

// Fetch retrieves the tree answering the request and decodes it into v.
func Fetch(ctx context.Context, f Fetcher, req Request, v tlb.Type) error {
	root, err := FetchCell(ctx, f, req)
	if err != nil {
		return err
	}
	if err := tlb.FromCell(root, v); err != nil {
		return fmt.Errorf("failed to decode %v: %w", req, err)
	}
	return nil
}

// FetchCached is FetchCell backed by a store. Requests with a known root hash
// are served from the store if possible; fetched trees are added to it.
func FetchCached(ctx context.Context, f Fetcher, store *cellstore.Store, req Request) (*cell.Cell, error) {
	if !req.Hash.IsZero() {
		root, err := store.Get(req.Hash)
		if err == nil {
			return root, nil
		}
		if !errors.Is(err, cellstore.ErrNotFound) {
			return nil, err
		}
	}
	root, err := FetchCell(ctx, f, req)
	if err != nil {
		return nil, err
	}
	if _, err := store.Put(root); err != nil {
		return nil, err
	}
	return root, nil
}
