// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
)

// Mapping is a typed key/value view of one record family, RLP encoded.
// Every family lives in its own bucket.
type Mapping[V any] struct {
	tx     *Tx
	bucket kv.Bucket
}

func NewMapping[V any](tx *Tx, bucket kv.Bucket) *Mapping[V] {
	return &Mapping[V]{tx: tx, bucket: bucket}
}

// Get loads the record. A missing record decodes as the zero value;
// for pointer types a fresh zero struct is returned rather than nil.
func (m *Mapping[V]) Get(id gem.Bytes32) (V, error) {
	raw, _, err := m.tx.get(m.bucket.Key(id.Bytes()))
	if err != nil {
		return zero[V](), errors.Wrapf(err, "get %s record", string(m.bucket))
	}
	return decode[V](m.bucket, raw)
}

// Exists reports whether the record has been stored.
func (m *Mapping[V]) Exists(id gem.Bytes32) (bool, error) {
	raw, found, err := m.tx.get(m.bucket.Key(id.Bytes()))
	if err != nil {
		return false, errors.Wrapf(err, "get %s record", string(m.bucket))
	}
	return found && len(raw) > 0, nil
}

// Insert stores a new record. It fails with ErrExists if the record is already there.
func (m *Mapping[V]) Insert(id gem.Bytes32, value V) error {
	exists, err := m.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}
	return m.set(id, value)
}

// Update overwrites a stored record. It fails with ErrNotFound if there is none.
func (m *Mapping[V]) Update(id gem.Bytes32, value V) error {
	exists, err := m.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return m.set(id, value)
}

// Upsert stores the record whether or not it exists.
func (m *Mapping[V]) Upsert(id gem.Bytes32, value V) error {
	return m.set(id, value)
}

// Delete removes the record. Deleting a missing record is a no-op.
func (m *Mapping[V]) Delete(id gem.Bytes32) error {
	return m.tx.put(id, m.bucket.Key(id.Bytes()), nil)
}

// zero returns the zero V, or a pointer to a zero struct when V is a pointer type.
func zero[V any]() (value V) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	return value
}

func decode[V any](bucket kv.Bucket, raw []byte) (V, error) {
	value := zero[V]()
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrapf(err, "decode %s record", string(bucket))
	}
	return value, nil
}

func (m *Mapping[V]) set(id gem.Bytes32, value V) error {
	val, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s record", string(m.bucket))
	}
	return m.tx.put(id, m.bucket.Key(id.Bytes()), val)
}
