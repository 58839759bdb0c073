// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward implements the reward pool bookkeeping of a farm.
package reward

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/reverts"
)

// Pool tracks the reward of a farm.
// Reserved is what has been promised to farmers and not paid out yet,
// Available is what can still be promised.
type Pool struct {
	Mint      gem.Address
	Reserved  uint64
	Available uint64
}

// Fund adds amount to the available reward.
func (p *Pool) Fund(amount uint64) error {
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	available, overflow := math.SafeAdd(p.Available, amount)
	if overflow {
		return reverts.ErrArithmetic
	}
	p.Available = available
	return nil
}

// CheckReserve runs the admission test of Reserve without changing the pool.
func (p *Pool) CheckReserve(amount uint64) error {
	_, err := p.admit(amount)
	return err
}

// Reserve moves amount from available to reserved.
// The available reward must cover the whole reserved total after the move,
// not only the increment.
func (p *Pool) Reserve(amount uint64) error {
	reserved, err := p.admit(amount)
	if err != nil {
		return err
	}
	p.Reserved = reserved
	p.Available -= amount
	return nil
}

// Release drops amount from the reserved reward once it has been paid out.
func (p *Pool) Release(amount uint64) error {
	reserved, underflow := math.SafeSub(p.Reserved, amount)
	if underflow {
		return reverts.ErrCouldNotReleaseReward
	}
	p.Reserved = reserved
	return nil
}

func (p *Pool) admit(amount uint64) (uint64, error) {
	reserved, overflow := math.SafeAdd(p.Reserved, amount)
	if overflow {
		return 0, reverts.ErrArithmetic
	}
	if p.Available < reserved {
		return 0, reverts.ErrCouldNotReserveReward
	}
	return reserved, nil
}
