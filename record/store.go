// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"bytes"
	"context"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/log"
)

var logger = log.WithContext("pkg", "record")

// Store runs transactions over typed records kept in a kv store.
// Transactions naming overlapping record ids are serialized, disjoint ones run concurrently.
type Store struct {
	db    kv.Store
	locks *keyLocks
}

// New creates a record store on top of db.
func New(db kv.Store) *Store {
	return &Store{
		db:    db,
		locks: newKeyLocks(),
	}
}

// Update runs fn inside a read-write transaction that holds exclusive locks on ids.
// fn may only write records whose id is in ids. The writes are committed atomically
// when fn returns nil, and discarded otherwise.
func (s *Store) Update(ctx context.Context, ids []gem.Bytes32, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids = sortIDs(ids)
	unlock := s.locks.lock(ids)
	defer unlock()

	tx := newTx(s.db, ids, true)
	if err := fn(tx); err != nil {
		tx.abort()
		return err
	}
	if err := tx.commit(s.db.Bulk()); err != nil {
		logger.Error("commit failed", "records", len(ids), "error", err)
		tx.abort()
		return errors.Wrap(err, "commit records")
	}
	return nil
}

// View runs fn inside a read-only transaction over a consistent snapshot.
func (s *Store) View(fn func(tx *Tx) error) error {
	snapshot := s.db.Snapshot()
	defer snapshot.Release()

	return fn(newTx(snapshot, nil, false))
}

// sortIDs returns the distinct ids in ascending order, which is also the lock order.
func sortIDs(ids []gem.Bytes32) []gem.Bytes32 {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b gem.Bytes32) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(sorted)
}
