// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking is the entry point of the ledger. Every operation runs in one
// record transaction: either all of its records change or none do.
package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/clock"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/farm"
	"github.com/vechain/gemfarm/staking/farmer"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/receipt"
	"github.com/vechain/gemfarm/staking/whitelist"
)

var logger = log.WithContext("pkg", "staking")

func SetLogger(l log.Logger) {
	logger = l
}

// Custody moves assets between accounts. authority is the account signing the move.
type Custody interface {
	Transfer(asset, from, to, authority gem.Address, amount uint64) error
}

// Resolver resolves the verified creator of an asset.
type Resolver = whitelist.Resolver

// Options holds the optional collaborators of a Staker.
type Options struct {
	Resolver  Resolver    // needed to stake assets whitelisted by creator
	Events    EventSink   // committed operations are appended here if set
	LockCache *lock.Cache // committed locks are cached here if set
}

// Staker runs the ledger operations.
type Staker struct {
	store    *record.Store
	clock    clock.Clock
	custody  Custody
	resolver Resolver
	events   EventSink
	locks    *lock.Cache
}

// New creates a staker over store.
func New(store *record.Store, clk clock.Clock, custody Custody, opts Options) *Staker {
	return &Staker{
		store:    store,
		clock:    clk,
		custody:  custody,
		resolver: opts.Resolver,
		events:   opts.Events,
		locks:    opts.LockCache,
	}
}

func (s *Staker) now() (uint64, error) {
	now, err := s.clock.Now()
	if err != nil {
		return 0, errors.Wrap(err, "read clock")
	}
	return now, nil
}

//
// Getters - no state change
//

// Farm returns the farm, failing with ErrNotFound if it does not exist.
func (s *Staker) Farm(id gem.Bytes32) (f *farm.Farm, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		f, err = farm.New(tx).GetExisting(id)
		return err
	})
	return
}

// IsManager returns whether authority manages the farm.
func (s *Staker) IsManager(farmID gem.Bytes32, authority gem.Address) (ok bool, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		ok, err = farm.New(tx).IsManager(farmID, authority)
		return err
	})
	return
}

// Farmer returns the farmer of owner, failing with ErrNotFound if it was never initialized.
func (s *Staker) Farmer(farmID gem.Bytes32, owner gem.Address) (f *farmer.Farmer, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		_, f, err = farmer.New(tx).GetExisting(farmID, owner)
		return err
	})
	return
}

// Receipt returns the receipt of asset staked by owner. It is empty if the asset was never staked.
func (s *Staker) Receipt(farmID gem.Bytes32, owner, asset gem.Address) (r *receipt.Receipt, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		r, err = receipt.New(tx).Get(receipt.ID(farmer.ID(farmID, owner), asset))
		return err
	})
	return
}

// Receipts returns every receipt of owner in the farm, running or not, in id order.
func (s *Staker) Receipts(farmID gem.Bytes32, owner gem.Address) ([]*receipt.Receipt, error) {
	farmerID := farmer.ID(farmID, owner)

	var receipts []*receipt.Receipt
	if err := receipt.Each(s.store, func(_ gem.Bytes32, r *receipt.Receipt) error {
		if r.Farmer == farmerID {
			receipts = append(receipts, r)
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "list receipts")
	}
	return receipts, nil
}

// TotalStaked returns the number of running receipts in the farm.
func (s *Staker) TotalStaked(farmID gem.Bytes32) (uint64, error) {
	farmers := make(map[gem.Bytes32]struct{})
	if err := farmer.Each(s.store, func(id gem.Bytes32, f *farmer.Farmer) error {
		if f.Farm == farmID {
			farmers[id] = struct{}{}
		}
		return nil
	}); err != nil {
		return 0, errors.Wrap(err, "list farmers")
	}

	var total uint64
	if err := receipt.Each(s.store, func(_ gem.Bytes32, r *receipt.Receipt) error {
		if _, ok := farmers[r.Farmer]; ok && r.IsRunning() {
			total++
		}
		return nil
	}); err != nil {
		return 0, errors.Wrap(err, "list receipts")
	}
	return total, nil
}

// Lock returns the lock, or an empty one if it does not exist.
func (s *Staker) Lock(id gem.Bytes32) (l *lock.Lock, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		l, err = lock.New(tx, s.locks).Get(id)
		return err
	})
	return
}

// Whitelist returns the whitelist entry, or an empty one if it does not exist.
func (s *Staker) Whitelist(id gem.Bytes32) (e *whitelist.Entry, err error) {
	err = s.store.View(func(tx *record.Tx) error {
		e, err = whitelist.New(tx).Get(id)
		return err
	})
	return
}

// PendingRewards returns what owner could claim now, without accruing.
func (s *Staker) PendingRewards(farmID gem.Bytes32, owner gem.Address) (pending uint64, err error) {
	now, err := s.now()
	if err != nil {
		return 0, err
	}
	err = s.store.View(func(tx *record.Tx) error {
		fm, err := farm.New(tx).GetExisting(farmID)
		if err != nil {
			return err
		}
		_, fr, err := farmer.New(tx).GetExisting(farmID, owner)
		if err != nil {
			return err
		}
		pending, err = fr.Pending(&fm.Reward, now)
		return err
	})
	return
}
