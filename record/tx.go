// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
)

var (
	// ErrExists is returned when inserting a record that is already stored.
	ErrExists = errors.New("record already exists")
	// ErrNotFound is returned when updating a record that was never inserted.
	ErrNotFound = errors.New("record not found")
	// ErrNotLocked is returned when writing a record the transaction did not lock.
	ErrNotLocked = errors.New("record not locked by transaction")
	// ErrReadOnly is returned when writing inside a View transaction.
	ErrReadOnly = errors.New("read-only transaction")
)

// Tx buffers record writes on top of a kv getter. A nil value marks a deletion.
// Writes become visible to later reads of the same Tx right away and reach
// the store only on commit.
type Tx struct {
	src     kv.Getter
	writes  map[string][]byte
	order   []string // keys in first write order
	locked  map[gem.Bytes32]struct{}
	onAbort []func()
}

func newTx(src kv.Getter, ids []gem.Bytes32, writable bool) *Tx {
	tx := &Tx{src: src}
	if writable {
		tx.locked = make(map[gem.Bytes32]struct{}, len(ids))
		for _, id := range ids {
			tx.locked[id] = struct{}{}
		}
	}
	return tx
}

// Writable reports whether the record id may be written by this transaction.
func (tx *Tx) Writable(id gem.Bytes32) bool {
	_, ok := tx.locked[id]
	return ok
}

// OnAbort registers fn to run if the transaction ends without committing.
// Hooks run in reverse registration order.
func (tx *Tx) OnAbort(fn func()) {
	tx.onAbort = append(tx.onAbort, fn)
}

func (tx *Tx) get(key []byte) ([]byte, bool, error) {
	if val, ok := tx.writes[string(key)]; ok {
		return val, true, nil
	}
	val, err := tx.src.Get(key)
	if err != nil {
		if tx.src.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (tx *Tx) put(id gem.Bytes32, key, val []byte) error {
	if tx.locked == nil {
		return ErrReadOnly
	}
	if !tx.Writable(id) {
		return errors.Wrapf(ErrNotLocked, "record %v", id)
	}
	if tx.writes == nil {
		tx.writes = make(map[string][]byte)
	}
	k := string(key)
	if _, ok := tx.writes[k]; !ok {
		tx.order = append(tx.order, k)
	}
	tx.writes[k] = val
	return nil
}

func (tx *Tx) commit(bulk kv.Bulk) error {
	for _, key := range tx.order {
		var err error
		if val := tx.writes[key]; val == nil {
			err = bulk.Delete([]byte(key))
		} else {
			err = bulk.Put([]byte(key), val)
		}
		if err != nil {
			return err
		}
	}
	if bulk.Len() == 0 {
		return nil
	}
	return bulk.Write()
}

func (tx *Tx) abort() {
	for i := len(tx.onAbort) - 1; i >= 0; i-- {
		tx.onAbort[i]()
	}
	tx.onAbort = nil
}
