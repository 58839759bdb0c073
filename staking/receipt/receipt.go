// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipt

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/reverts"
)

// Buff is a multiplier applied to the reward rate of a running receipt.
type Buff struct {
	Asset  gem.Address
	Factor uint64
}

// Receipt is the stake of one asset by one farmer.
// It is reused on every stake of the same asset and never deleted.
//
// EndTs is nil while the stake is running and holds the unstake time while cooling down.
// RewardRate includes an active buff.
type Receipt struct {
	Farmer     gem.Bytes32
	Asset      gem.Address
	Lock       gem.Bytes32
	Whitelist  gem.Bytes32
	StartTs    uint64
	EndTs      *uint64
	Amount     uint64
	RewardRate uint64
	Buff       *Buff
}

// ID derives the receipt id of asset staked by farmer.
func ID(farmer gem.Bytes32, asset gem.Address) gem.Bytes32 {
	return gem.DeriveID("stake_receipt", farmer.Bytes(), asset.Bytes())
}

// IsEmpty returns whether the asset was never staked by the farmer.
func (r *Receipt) IsEmpty() bool {
	return r.Farmer.IsZero()
}

// IsRunning returns whether the asset is currently staked.
func (r *Receipt) IsRunning() bool {
	return !r.IsEmpty() && r.EndTs == nil
}

// IsCoolingDown returns whether the asset was unstaked.
func (r *Receipt) IsCoolingDown() bool {
	return !r.IsEmpty() && r.EndTs != nil
}

// StakeParams describes a new stake.
type StakeParams struct {
	Farmer    gem.Bytes32
	Asset     gem.Address
	LockID    gem.Bytes32
	Lock      *lock.Lock
	Whitelist gem.Bytes32
	Amount    uint64
	BaseRate  uint64 // per staked unit per second
	Now       uint64
}

// Stake starts a stake and returns its reward rate.
// A cooling down receipt can be staked again once the cooldown of the lock it
// is being staked under has passed since it ended.
func (r *Receipt) Stake(p StakeParams) (uint64, error) {
	if p.Amount == 0 {
		return 0, reverts.ErrInvalidAmount
	}

	if !r.IsEmpty() {
		if r.Farmer != p.Farmer || r.Asset != p.Asset {
			return 0, reverts.ErrInvalidAccountData
		}
		if r.IsRunning() {
			return 0, reverts.ErrGemStillStaked
		}
		readyAt, overflow := math.SafeAdd(*r.EndTs, p.Lock.CooldownSeconds())
		if overflow {
			return 0, reverts.ErrArithmetic
		}
		if p.Now < readyAt {
			return 0, reverts.ErrCooldownIsNotOver
		}
	}

	base, overflow := math.SafeMul(p.Amount, p.BaseRate)
	if overflow {
		return 0, reverts.ErrArithmetic
	}
	rate, err := lock.ApplyBonus(base, p.Lock.Bonus())
	if err != nil {
		return 0, err
	}

	*r = Receipt{
		Farmer:     p.Farmer,
		Asset:      p.Asset,
		Lock:       p.LockID,
		Whitelist:  p.Whitelist,
		StartTs:    p.Now,
		Amount:     p.Amount,
		RewardRate: rate,
	}
	return rate, nil
}

// Unstake ends a running stake whose lock duration has passed.
// It returns the reward rate to remove from the farmer and the amount to hand back.
func (r *Receipt) Unstake(l *lock.Lock, now uint64) (rate uint64, amount uint64, err error) {
	if !r.IsRunning() {
		return 0, 0, reverts.ErrGemNotStaked
	}
	if r.Buff != nil {
		return 0, 0, reverts.ErrGemStillBuffed
	}
	unlockAt, overflow := math.SafeAdd(r.StartTs, l.DurationSeconds())
	if overflow {
		return 0, 0, reverts.ErrArithmetic
	}
	if now < unlockAt {
		return 0, 0, reverts.ErrGemStillLocked
	}

	r.EndTs = &now
	return r.RewardRate, r.Amount, nil
}

// ApplyBuff multiplies the reward rate by factor and returns the rate increment.
func (r *Receipt) ApplyBuff(asset gem.Address, factor uint64) (uint64, error) {
	if !r.IsRunning() {
		return 0, reverts.ErrGemNotStaked
	}
	if r.Buff != nil {
		return 0, reverts.ErrGemAlreadyBuffed
	}
	if factor == 0 {
		return 0, reverts.ErrFactorMustBeGtZero
	}
	buffed, overflow := math.SafeMul(r.RewardRate, factor)
	if overflow {
		return 0, reverts.ErrArithmetic
	}

	increment := buffed - r.RewardRate
	r.RewardRate = buffed
	r.Buff = &Buff{Asset: asset, Factor: factor}
	return increment, nil
}

// RemoveBuff restores the rate from before the buff of asset and returns the rate decrement.
// The rate cannot change while buffed, so the division is exact.
func (r *Receipt) RemoveBuff(asset gem.Address) (uint64, error) {
	if !r.IsRunning() {
		return 0, reverts.ErrGemNotStaked
	}
	if r.Buff == nil || r.Buff.Asset != asset {
		return 0, reverts.ErrGemNotBuffed
	}
	if r.RewardRate%r.Buff.Factor != 0 {
		return 0, reverts.ErrArithmetic
	}

	restored := r.RewardRate / r.Buff.Factor
	decrement := r.RewardRate - restored
	r.RewardRate = restored
	r.Buff = nil
	return decrement, nil
}
