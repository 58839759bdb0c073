// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lock

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/reverts"
)

// Lock is a staking tier of a farm: how long a stake is locked, how long an
// unstaked gem cools down before it can be staked again, and the bonus in percent.
// Locks are immutable once created.
type Lock struct {
	Farm        gem.Bytes32
	Duration    uint64 // seconds
	Cooldown    uint64 // seconds
	BonusFactor uint8  // percent added to the base rate
}

// Config describes a lock to create.
type Config struct {
	Duration    uint64
	Cooldown    uint64
	BonusFactor uint8
}

// ID derives the lock id from the farm and the tier timings.
func ID(farm gem.Bytes32, duration, cooldown uint64) gem.Bytes32 {
	return gem.DeriveID("lock", farm.Bytes(), gem.Uint64Bytes(duration), gem.Uint64Bytes(cooldown))
}

// IsEmpty returns whether the entry can be treated as empty.
func (l *Lock) IsEmpty() bool {
	return l.Farm.IsZero()
}

func (l *Lock) DurationSeconds() uint64 { return l.Duration }
func (l *Lock) CooldownSeconds() uint64 { return l.Cooldown }
func (l *Lock) Bonus() uint8            { return l.BonusFactor }

// ApplyBonus returns base raised by factor percent.
// A zero factor leaves the base unchanged.
func ApplyBonus(base uint64, factor uint8) (uint64, error) {
	if factor == 0 {
		return base, nil
	}
	scaled, overflow := math.SafeMul(base, uint64(factor)+100)
	if overflow {
		return 0, reverts.ErrArithmetic
	}
	return scaled / 100, nil
}
