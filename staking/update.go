// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"
	"time"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/farm"
	"github.com/vechain/gemfarm/staking/reverts"
)

// update runs fn in a transaction locking ids and returns the time the operation ran at.
// The clock is read under the locks so that operations on one record see increasing times.
func (s *Staker) update(ctx context.Context, op string, ids []gem.Bytes32, fn func(tx *record.Tx, now uint64) error) (uint64, error) {
	start := time.Now()
	defer metricsTrackInflight(op)()

	var now uint64
	err := s.store.Update(ctx, ids, func(tx *record.Tx) (err error) {
		if now, err = s.now(); err != nil {
			return err
		}
		return fn(tx, now)
	})
	metricsHandleOperation(op, start, err)
	if reverts.IsFatal(err) {
		logger.Error("accounting error", "op", op, "error", err)
	}
	return now, err
}

// requireManager returns the farm if manager manages it.
func requireManager(tx *record.Tx, farmID gem.Bytes32, manager gem.Address) (*farm.Farm, error) {
	svc := farm.New(tx)
	f, err := svc.GetExisting(farmID)
	if err != nil {
		return nil, err
	}
	ok, err := svc.IsManager(farmID, manager)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reverts.ErrUnauthorized
	}
	return f, nil
}
