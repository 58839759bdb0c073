// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/eventlog"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/farm"
	"github.com/vechain/gemfarm/staking/farmer"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/receipt"
	"github.com/vechain/gemfarm/staking/reverts"
	"github.com/vechain/gemfarm/staking/whitelist"
)

// attempts bounds the retries of an operation whose record set was read before locking.
const attempts = 3

var errStaleRead = errors.New("records changed before they could be locked")

// StakeArgs describes a stake of Amount units of Asset.
type StakeArgs struct {
	Farm      gem.Bytes32
	Owner     gem.Address
	Asset     gem.Address
	Amount    uint64
	Lock      gem.Bytes32
	Whitelist gem.Bytes32
	Proof     []byte // authenticity proof, only read for creator whitelisted assets
}

// UnstakeArgs names the receipt to unstake.
type UnstakeArgs struct {
	Farm  gem.Bytes32
	Owner gem.Address
	Asset gem.Address
}

// PairArgs names the two receipts sharing one unit of BuffAsset.
type PairArgs struct {
	Farm          gem.Bytes32
	Owner         gem.Address
	BuffAsset     gem.Address
	BuffWhitelist gem.Bytes32
	AssetA        gem.Address
	AssetB        gem.Address
}

// InitializeFarmer creates the farmer account of owner in the farm.
func (s *Staker) InitializeFarmer(ctx context.Context, farmID gem.Bytes32, owner gem.Address) (gem.Bytes32, error) {
	logger.Debug("initializing farmer", "farm", farmID, "owner", owner)

	id := farmer.ID(farmID, owner)
	now, err := s.update(ctx, "initialize_farmer", []gem.Bytes32{id}, func(tx *record.Tx, now uint64) error {
		if _, err := farm.New(tx).GetExisting(farmID); err != nil {
			return err
		}
		_, err := farmer.New(tx).Init(farmID, owner, now)
		return err
	})
	if err != nil {
		logger.Info("initialize farmer failed", "farm", farmID, "owner", owner, "error", err)
		return gem.Bytes32{}, err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindInitializeFarmer, Farm: farmID, Actor: owner, Subject: id, Time: now})
	logger.Info("initialized farmer", "farm", farmID, "farmer", id)
	return id, nil
}

// Stake stakes the asset into the farmer vault under the given lock.
func (s *Staker) Stake(ctx context.Context, args StakeArgs) (gem.Bytes32, error) {
	logger.Debug("staking", "farm", args.Farm, "owner", args.Owner, "asset", args.Asset, "amount", args.Amount, "lock", args.Lock)

	farmerID := farmer.ID(args.Farm, args.Owner)
	receiptID := receipt.ID(farmerID, args.Asset)
	ids := []gem.Bytes32{args.Farm, farmerID, receiptID, args.Whitelist}

	now, err := s.update(ctx, "stake", ids, func(tx *record.Tx, now uint64) error {
		farms, farmers, receipts := farm.New(tx), farmer.New(tx), receipt.New(tx)
		locks, entries := lock.New(tx, s.locks), whitelist.New(tx)

		fm, err := farms.GetExisting(args.Farm)
		if err != nil {
			return err
		}
		_, fr, err := farmers.GetExisting(args.Farm, args.Owner)
		if err != nil {
			return err
		}
		l, err := locks.GetExisting(args.Farm, args.Lock)
		if err != nil {
			return err
		}

		entry, err := entries.Get(args.Whitelist)
		if err != nil {
			return err
		}
		identity, err := entry.Identity(args.Asset, args.Proof, s.resolver)
		if err != nil {
			return err
		}
		if err := entry.Validate(args.Whitelist, args.Farm, identity); err != nil {
			return err
		}
		baseRate, err := entry.BaseRate()
		if err != nil {
			return err
		}

		rcpt, err := receipts.Get(receiptID)
		if err != nil {
			return err
		}

		if err := fr.UpdateAccrued(&fm.Reward, now); err != nil {
			return err
		}
		rate, err := rcpt.Stake(receipt.StakeParams{
			Farmer:    farmerID,
			Asset:     args.Asset,
			LockID:    args.Lock,
			Lock:      l,
			Whitelist: args.Whitelist,
			Amount:    args.Amount,
			BaseRate:  baseRate,
			Now:       now,
		})
		if err != nil {
			return err
		}
		if err := fr.IncreaseRate(rate); err != nil {
			return err
		}
		if err := entries.Retain(args.Whitelist, entry); err != nil {
			return err
		}

		if err := receipts.Set(receiptID, rcpt); err != nil {
			return err
		}
		if err := farmers.Set(farmerID, fr); err != nil {
			return err
		}
		if err := farms.Set(args.Farm, fm); err != nil {
			return err
		}
		return s.transfer(tx, args.Asset, args.Owner, farmer.Vault(farmerID), args.Owner, args.Amount)
	})
	if err != nil {
		logger.Info("stake failed", "farm", args.Farm, "owner", args.Owner, "asset", args.Asset, "error", err)
		return gem.Bytes32{}, err
	}

	s.emit(ctx, &eventlog.Event{
		Kind:    eventlog.KindStake,
		Farm:    args.Farm,
		Actor:   args.Owner,
		Subject: receiptID,
		Asset:   args.Asset,
		Amount:  args.Amount,
		Time:    now,
	})
	logger.Info("staked", "farm", args.Farm, "receipt", receiptID)
	return receiptID, nil
}

// Unstake ends the stake of the asset and returns the whole staked amount to the owner.
func (s *Staker) Unstake(ctx context.Context, args UnstakeArgs) (uint64, error) {
	logger.Debug("unstaking", "farm", args.Farm, "owner", args.Owner, "asset", args.Asset)

	farmerID := farmer.ID(args.Farm, args.Owner)
	receiptID := receipt.ID(farmerID, args.Asset)

	var (
		now, amount uint64
		err         error
	)
	for range attempts {
		now, amount, err = s.unstake(ctx, args, farmerID, receiptID)
		if !errors.Is(err, errStaleRead) {
			break
		}
	}
	if err != nil {
		logger.Info("unstake failed", "farm", args.Farm, "owner", args.Owner, "asset", args.Asset, "error", err)
		return 0, err
	}

	s.emit(ctx, &eventlog.Event{
		Kind:    eventlog.KindUnstake,
		Farm:    args.Farm,
		Actor:   args.Owner,
		Subject: receiptID,
		Asset:   args.Asset,
		Amount:  amount,
		Time:    now,
	})
	logger.Info("unstaked", "farm", args.Farm, "receipt", receiptID, "amount", amount)
	return amount, nil
}

// unstake locks the whitelist entry the receipt was staked with, which is only known after reading it.
func (s *Staker) unstake(ctx context.Context, args UnstakeArgs, farmerID, receiptID gem.Bytes32) (now, amount uint64, err error) {
	var entryID gem.Bytes32
	err = s.store.View(func(tx *record.Tx) error {
		rcpt, err := receipt.New(tx).Get(receiptID)
		if err != nil {
			return err
		}
		if !rcpt.IsRunning() {
			return reverts.ErrGemNotStaked
		}
		entryID = rcpt.Whitelist
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	ids := []gem.Bytes32{args.Farm, farmerID, receiptID, entryID}
	now, err = s.update(ctx, "unstake", ids, func(tx *record.Tx, now uint64) error {
		farms, farmers, receipts, entries := farm.New(tx), farmer.New(tx), receipt.New(tx), whitelist.New(tx)

		fm, err := farms.GetExisting(args.Farm)
		if err != nil {
			return err
		}
		_, fr, err := farmers.GetExisting(args.Farm, args.Owner)
		if err != nil {
			return err
		}
		rcpt, err := receipts.Get(receiptID)
		if err != nil {
			return err
		}
		if rcpt.Whitelist != entryID {
			return errStaleRead
		}
		l, err := lock.New(tx, s.locks).Get(rcpt.Lock)
		if err != nil {
			return err
		}

		if err := fr.UpdateAccrued(&fm.Reward, now); err != nil {
			return err
		}
		var rate uint64
		if rate, amount, err = rcpt.Unstake(l, now); err != nil {
			return err
		}
		if err := fr.DecreaseRate(rate); err != nil {
			return err
		}
		entry, err := entries.Get(entryID)
		if err != nil {
			return err
		}
		if err := entries.ReleaseRef(entryID, entry); err != nil {
			return err
		}

		if err := receipts.Set(receiptID, rcpt); err != nil {
			return err
		}
		if err := farmers.Set(farmerID, fr); err != nil {
			return err
		}
		if err := farms.Set(args.Farm, fm); err != nil {
			return err
		}
		vault := farmer.Vault(farmerID)
		return s.transfer(tx, args.Asset, vault, args.Owner, vault, amount)
	})
	return now, amount, err
}

// BuffPair multiplies the rates of two running receipts by the buff factor,
// holding one unit of the buff asset in the farmer vault. It returns the total rate increment.
func (s *Staker) BuffPair(ctx context.Context, args PairArgs) (uint64, error) {
	logger.Debug("buffing pair", "farm", args.Farm, "owner", args.Owner, "buff", args.BuffAsset, "a", args.AssetA, "b", args.AssetB)

	var increment uint64
	now, err := s.pair(ctx, "buff_pair", true, args, func(fr *farmer.Farmer, fm *farm.Farm, entry *whitelist.Entry, ra, rb *receipt.Receipt) error {
		factor, err := entry.BuffFactor()
		if err != nil {
			return err
		}
		incA, err := ra.ApplyBuff(args.BuffAsset, factor)
		if err != nil {
			return err
		}
		incB, err := rb.ApplyBuff(args.BuffAsset, factor)
		if err != nil {
			return err
		}
		var overflow bool
		if increment, overflow = math.SafeAdd(incA, incB); overflow {
			return reverts.ErrArithmetic
		}
		// the pool must afford at least one second of the new rate
		if err := fm.Reward.CheckReserve(increment); err != nil {
			return err
		}
		return fr.IncreaseRate(increment)
	})
	if err != nil {
		logger.Info("buff pair failed", "farm", args.Farm, "owner", args.Owner, "error", err)
		return 0, err
	}

	s.emit(ctx, &eventlog.Event{
		Kind:    eventlog.KindBuff,
		Farm:    args.Farm,
		Actor:   args.Owner,
		Subject: farmer.ID(args.Farm, args.Owner),
		Asset:   args.BuffAsset,
		Amount:  increment,
		Time:    now,
	})
	logger.Info("buffed pair", "farm", args.Farm, "owner", args.Owner, "increment", increment)
	return increment, nil
}

// DebuffPair removes the buff of two receipts and returns the buff asset to the owner.
// It returns the total rate decrement.
func (s *Staker) DebuffPair(ctx context.Context, args PairArgs) (uint64, error) {
	logger.Debug("debuffing pair", "farm", args.Farm, "owner", args.Owner, "buff", args.BuffAsset, "a", args.AssetA, "b", args.AssetB)

	var decrement uint64
	now, err := s.pair(ctx, "debuff_pair", false, args, func(fr *farmer.Farmer, _ *farm.Farm, _ *whitelist.Entry, ra, rb *receipt.Receipt) error {
		decA, err := ra.RemoveBuff(args.BuffAsset)
		if err != nil {
			return err
		}
		decB, err := rb.RemoveBuff(args.BuffAsset)
		if err != nil {
			return err
		}
		var overflow bool
		if decrement, overflow = math.SafeAdd(decA, decB); overflow {
			return reverts.ErrArithmetic
		}
		return fr.DecreaseRate(decrement)
	})
	if err != nil {
		logger.Info("debuff pair failed", "farm", args.Farm, "owner", args.Owner, "error", err)
		return 0, err
	}

	s.emit(ctx, &eventlog.Event{
		Kind:    eventlog.KindDebuff,
		Farm:    args.Farm,
		Actor:   args.Owner,
		Subject: farmer.ID(args.Farm, args.Owner),
		Asset:   args.BuffAsset,
		Amount:  decrement,
		Time:    now,
	})
	logger.Info("debuffed pair", "farm", args.Farm, "owner", args.Owner, "decrement", decrement)
	return decrement, nil
}

// pair loads the records of a pair operation, accrues the farmer, runs apply and stores the result.
// With buff set the entry is retained and the buff asset moves into the farmer vault,
// otherwise the entry is released and the asset goes back to the owner. Both happen once per pair.
func (s *Staker) pair(
	ctx context.Context,
	op string,
	buff bool,
	args PairArgs,
	apply func(fr *farmer.Farmer, fm *farm.Farm, entry *whitelist.Entry, ra, rb *receipt.Receipt) error,
) (uint64, error) {
	if args.AssetA == args.AssetB {
		return 0, reverts.ErrInvalidAccountData
	}

	farmerID := farmer.ID(args.Farm, args.Owner)
	idA, idB := receipt.ID(farmerID, args.AssetA), receipt.ID(farmerID, args.AssetB)
	ids := []gem.Bytes32{args.Farm, farmerID, idA, idB, args.BuffWhitelist}

	return s.update(ctx, op, ids, func(tx *record.Tx, now uint64) error {
		farms, farmers, receipts, entries := farm.New(tx), farmer.New(tx), receipt.New(tx), whitelist.New(tx)

		fm, err := farms.GetExisting(args.Farm)
		if err != nil {
			return err
		}
		_, fr, err := farmers.GetExisting(args.Farm, args.Owner)
		if err != nil {
			return err
		}
		entry, err := entries.Get(args.BuffWhitelist)
		if err != nil {
			return err
		}
		if err := entry.Validate(args.BuffWhitelist, args.Farm, args.BuffAsset); err != nil {
			return err
		}
		ra, err := receipts.Get(idA)
		if err != nil {
			return err
		}
		rb, err := receipts.Get(idB)
		if err != nil {
			return err
		}

		if err := fr.UpdateAccrued(&fm.Reward, now); err != nil {
			return err
		}
		if err := apply(fr, fm, entry, ra, rb); err != nil {
			return err
		}
		if buff {
			err = entries.Retain(args.BuffWhitelist, entry)
		} else {
			err = entries.ReleaseRef(args.BuffWhitelist, entry)
		}
		if err != nil {
			return err
		}

		if err := receipts.Set(idA, ra); err != nil {
			return err
		}
		if err := receipts.Set(idB, rb); err != nil {
			return err
		}
		if err := farmers.Set(farmerID, fr); err != nil {
			return err
		}
		if err := farms.Set(args.Farm, fm); err != nil {
			return err
		}

		vault := farmer.Vault(farmerID)
		if buff {
			return s.transfer(tx, args.BuffAsset, args.Owner, vault, args.Owner, 1)
		}
		return s.transfer(tx, args.BuffAsset, vault, args.Owner, vault, 1)
	})
}

// ClaimRewards pays everything the farmer accrued out of the farm vault.
func (s *Staker) ClaimRewards(ctx context.Context, farmID gem.Bytes32, owner gem.Address) (uint64, error) {
	logger.Debug("claiming rewards", "farm", farmID, "owner", owner)

	farmerID := farmer.ID(farmID, owner)
	var (
		claimed uint64
		mint    gem.Address
	)
	now, err := s.update(ctx, "claim", []gem.Bytes32{farmID, farmerID}, func(tx *record.Tx, now uint64) error {
		farms, farmers := farm.New(tx), farmer.New(tx)

		fm, err := farms.GetExisting(farmID)
		if err != nil {
			return err
		}
		_, fr, err := farmers.GetExisting(farmID, owner)
		if err != nil {
			return err
		}
		if claimed, err = fr.Claim(&fm.Reward, now); err != nil {
			return err
		}

		if err := farmers.Set(farmerID, fr); err != nil {
			return err
		}
		if err := farms.Set(farmID, fm); err != nil {
			return err
		}
		if claimed == 0 {
			return nil
		}
		mint = fm.Reward.Mint
		vault := farm.Vault(farmID)
		return s.transfer(tx, mint, vault, owner, vault, claimed)
	})
	if err != nil {
		logger.Info("claim failed", "farm", farmID, "owner", owner, "error", err)
		return 0, err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindClaim, Farm: farmID, Actor: owner, Subject: farmerID, Asset: mint, Amount: claimed, Time: now})
	logger.Info("claimed rewards", "farm", farmID, "owner", owner, "amount", claimed)
	return claimed, nil
}
