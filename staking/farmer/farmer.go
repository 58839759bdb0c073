// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farmer implements the per-farmer reward accrual.
package farmer

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/reverts"
	"github.com/vechain/gemfarm/staking/reward"
)

// Farmer is the account of an owner in a farm.
// TotalRewardRate is the sum of the rates of the running receipts of the farmer.
// Rewards accrue lazily: AccruedRewards is only brought up to date by UpdateAccrued.
type Farmer struct {
	Farm            gem.Bytes32
	Owner           gem.Address
	AccruedRewards  uint64
	TotalRewardRate uint64
	LastUpdate      uint64
}

// ID derives the farmer id of owner in farm.
func ID(farm gem.Bytes32, owner gem.Address) gem.Bytes32 {
	return gem.DeriveID("farmer", farm.Bytes(), owner.Bytes())
}

// IsEmpty returns whether the farmer was never initialized.
func (f *Farmer) IsEmpty() bool {
	return f.Farm.IsZero()
}

// UpdateAccrued accrues the reward earned since the last update and reserves it in pool.
// If the pool cannot cover it, neither the farmer nor the pool is changed.
func (f *Farmer) UpdateAccrued(pool *reward.Pool, now uint64) error {
	if now <= f.LastUpdate {
		return nil
	}

	increment, overflow := math.SafeMul(f.TotalRewardRate, now-f.LastUpdate)
	if overflow {
		return reverts.ErrArithmetic
	}
	if increment > 0 {
		accrued, overflow := math.SafeAdd(f.AccruedRewards, increment)
		if overflow {
			return reverts.ErrArithmetic
		}
		if err := pool.Reserve(increment); err != nil {
			return err
		}
		f.AccruedRewards = accrued
	}
	f.LastUpdate = now
	return nil
}

// Pending returns what the farmer could claim at now, changing neither the farmer nor pool.
func (f *Farmer) Pending(pool *reward.Pool, now uint64) (uint64, error) {
	cf, cp := *f, *pool
	if err := cf.UpdateAccrued(&cp, now); err != nil {
		return 0, err
	}
	return cf.AccruedRewards, nil
}

// Claim accrues up to now and withdraws everything accrued, releasing it from pool.
func (f *Farmer) Claim(pool *reward.Pool, now uint64) (uint64, error) {
	if err := f.UpdateAccrued(pool, now); err != nil {
		return 0, err
	}
	claimed := f.AccruedRewards
	if err := pool.Release(claimed); err != nil {
		return 0, err
	}
	f.AccruedRewards = 0
	return claimed, nil
}

// IncreaseRate adds delta to the total reward rate.
func (f *Farmer) IncreaseRate(delta uint64) error {
	rate, overflow := math.SafeAdd(f.TotalRewardRate, delta)
	if overflow {
		return reverts.ErrArithmetic
	}
	f.TotalRewardRate = rate
	return nil
}

// DecreaseRate removes delta from the total reward rate.
func (f *Farmer) DecreaseRate(delta uint64) error {
	rate, underflow := math.SafeSub(f.TotalRewardRate, delta)
	if underflow {
		return reverts.ErrArithmetic
	}
	f.TotalRewardRate = rate
	return nil
}

// Vault returns the address holding the assets staked by the farmer.
func Vault(id gem.Bytes32) gem.Address {
	return id.Address()
}
