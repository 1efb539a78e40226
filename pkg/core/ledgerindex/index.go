// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package ledgerindex is a minimal, read-mostly index of confirmed
// transaction ids, backed by github.com/syndtr/goleveldb, grounded on the
// teacher's pkg/core/chain/database.go (which opens a leveldb.DB with
// corruption recovery and a readOnly flag).
//
// The full consensus/ledger engine lives elsewhere; this index is the
// narrow read/write surface TransactionProcessor needs from it: whether the
// confirmed ledger already contains an id (the duplicate gate), and
// recording or forgetting an id as the block-applied/undone paths drive it.
package ledgerindex

import (
	"encoding/binary"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	lderrors "github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/monetary-system/msnode/pkg/errors"
)

var prefix = []byte("confirmed/")

// Index is the confirmed-transaction-id lookup the mempool's duplicate
// gate consults.
type Index struct {
	storage *leveldb.DB
}

// Open opens (creating and recovering if necessary) the leveldb index at
// path.
func Open(path string) (*Index, error) {
	storage, err := leveldb.OpenFile(path, nil)
	if lderrors.IsCorrupted(err) {
		storage, err = leveldb.RecoverFile(path, nil)
	}
	if _, denied := err.(*os.PathError); denied {
		return nil, errors.StorageFailure(err, "could not open or create ledger index")
	}
	if err != nil {
		return nil, errors.StorageFailure(err, "open ledger index")
	}

	return &Index{storage: storage}, nil
}

// Close releases the underlying database handle.
func (i *Index) Close() error {
	return i.storage.Close()
}

func key(id uint64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], id)
	return k
}

// Contains reports whether id has been confirmed.
func (i *Index) Contains(id uint64) (bool, error) {
	ok, err := i.storage.Has(key(id), nil)
	if err != nil {
		return false, errors.StorageFailure(err, "ledger index lookup")
	}
	return ok, nil
}

// MarkConfirmed records id as confirmed (called from on_block_applied).
func (i *Index) MarkConfirmed(id uint64) error {
	if err := i.storage.Put(key(id), []byte{1}, nil); err != nil {
		return errors.StorageFailure(err, "ledger index write")
	}
	return nil
}

// Unmark forgets id (called from on_block_undone, a fork rollback).
func (i *Index) Unmark(id uint64) error {
	if err := i.storage.Delete(key(id), nil); err != nil {
		return errors.StorageFailure(err, "ledger index delete")
	}
	return nil
}
