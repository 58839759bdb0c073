// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lock

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/cache"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/reverts"
)

const bucket = kv.Bucket("lock/")

// Cache holds committed locks across transactions.
type Cache = cache.LRU[gem.Bytes32, *Lock]

func NewCache(size int) (*Cache, error) {
	return cache.NewLRU[gem.Bytes32, *Lock](size)
}

type Service struct {
	tx    *record.Tx
	locks *record.Mapping[*Lock]
	cache *Cache
}

// New binds the lock service to tx. cache may be nil.
func New(tx *record.Tx, cache *Cache) *Service {
	return &Service{
		tx:    tx,
		locks: record.NewMapping[*Lock](tx, bucket),
		cache: cache,
	}
}

// Create stores a lock per config. It fails with ErrAlreadyExists if any of
// them exists, including a repeated config in the same batch.
func (s *Service) Create(farm gem.Bytes32, configs ...Config) ([]gem.Bytes32, error) {
	ids := make([]gem.Bytes32, 0, len(configs))
	for _, cfg := range configs {
		id := ID(farm, cfg.Duration, cfg.Cooldown)
		err := s.locks.Insert(id, &Lock{
			Farm:        farm,
			Duration:    cfg.Duration,
			Cooldown:    cfg.Cooldown,
			BonusFactor: cfg.BonusFactor,
		})
		if err != nil {
			if errors.Is(err, record.ErrExists) {
				return nil, reverts.ErrAlreadyExists
			}
			return nil, errors.Wrap(err, "failed to create lock")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Get returns the lock, or an empty one if it does not exist.
// The returned lock is shared and must not be modified.
func (s *Service) Get(id gem.Bytes32) (*Lock, error) {
	// only locks this transaction cannot have written are safe to cache
	if s.cache == nil || s.tx.Writable(id) {
		return s.load(id)
	}
	return s.cache.GetOrLoad(id, func(id gem.Bytes32) (*Lock, bool, error) {
		l, err := s.load(id)
		if err != nil {
			return nil, false, err
		}
		return l, !l.IsEmpty(), nil
	})
}

// GetExisting returns the lock of farm, failing with ErrInvalidLock if there is none.
func (s *Service) GetExisting(farm, id gem.Bytes32) (*Lock, error) {
	l, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if l.IsEmpty() || l.Farm != farm {
		return nil, reverts.ErrInvalidLock
	}
	return l, nil
}

func (s *Service) load(id gem.Bytes32) (*Lock, error) {
	l, err := s.locks.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lock")
	}
	return l, nil
}
