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

// ErrStop can be returned by an Iterate callback to end the walk early without an error.
var ErrStop = errors.New("stop iteration")

// Iterate walks the committed records of one family in id order and decodes each into V.
// It takes no record locks; the walk reads a consistent view of the store as of its start.
func Iterate[V any](s *Store, bucket kv.Bucket, fn func(id gem.Bytes32, value V) error) error {
	iter := bucket.NewStore(s.db).Iterate(kv.Range{})
	defer iter.Release()

	for iter.Next() {
		key := iter.Key()
		if len(key) != len(gem.Bytes32{}) {
			continue
		}
		value, err := decode[V](bucket, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(gem.BytesToBytes32(key), value); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return errors.Wrapf(iter.Error(), "iterate %s records", string(bucket))
}
