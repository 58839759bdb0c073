// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"

	"github.com/vechain/gemfarm/eventlog"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/farm"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/reverts"
	"github.com/vechain/gemfarm/staking/whitelist"
)

// CreateFarm creates a farm of authority paying rewards in mint.
func (s *Staker) CreateFarm(ctx context.Context, authority, mint gem.Address) (gem.Bytes32, error) {
	logger.Debug("creating farm", "authority", authority, "mint", mint)

	id := farm.ID(authority, mint)
	now, err := s.update(ctx, "create_farm", []gem.Bytes32{id, farm.ManagerID(id, authority)}, func(tx *record.Tx, _ uint64) error {
		_, err := farm.New(tx).Create(authority, mint)
		return err
	})
	if err != nil {
		logger.Info("create farm failed", "authority", authority, "mint", mint, "error", err)
		return gem.Bytes32{}, err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindCreateFarm, Farm: id, Actor: authority, Asset: mint, Time: now})
	logger.Info("created farm", "farm", id)
	return id, nil
}

// AddManager lets manager manage the farm. Only the farm authority may call it.
func (s *Staker) AddManager(ctx context.Context, authority gem.Address, farmID gem.Bytes32, manager gem.Address) error {
	logger.Debug("adding manager", "farm", farmID, "manager", manager)

	managerID := farm.ManagerID(farmID, manager)
	now, err := s.update(ctx, "add_manager", []gem.Bytes32{farmID, managerID}, func(tx *record.Tx, _ uint64) error {
		svc := farm.New(tx)
		f, err := svc.GetExisting(farmID)
		if err != nil {
			return err
		}
		if f.Authority != authority {
			return reverts.ErrUnauthorized
		}
		_, err = svc.AddManager(farmID, manager)
		return err
	})
	if err != nil {
		logger.Info("add manager failed", "farm", farmID, "manager", manager, "error", err)
		return err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindAddManager, Farm: farmID, Actor: authority, Subject: managerID, Time: now})
	logger.Info("added manager", "farm", farmID, "manager", manager)
	return nil
}

// AddToWhitelist whitelists subject in the farm. value is a base rate, or a factor for buffs.
func (s *Staker) AddToWhitelist(
	ctx context.Context,
	manager gem.Address,
	farmID gem.Bytes32,
	subject gem.Address,
	value uint64,
	kind whitelist.Kind,
) (gem.Bytes32, error) {
	logger.Debug("adding to whitelist", "farm", farmID, "subject", subject, "kind", kind, "value", value)

	id := whitelist.ID(farmID, subject)
	now, err := s.update(ctx, "add_to_whitelist", []gem.Bytes32{id}, func(tx *record.Tx, _ uint64) error {
		if _, err := requireManager(tx, farmID, manager); err != nil {
			return err
		}
		_, err := whitelist.New(tx).Add(farmID, subject, value, kind)
		return err
	})
	if err != nil {
		logger.Info("add to whitelist failed", "farm", farmID, "subject", subject, "error", err)
		return gem.Bytes32{}, err
	}

	s.emit(ctx, &eventlog.Event{
		Kind:    eventlog.KindAddToWhitelist,
		Farm:    farmID,
		Actor:   manager,
		Subject: id,
		Asset:   subject,
		Amount:  value,
		Time:    now,
	})
	logger.Info("added to whitelist", "farm", farmID, "entry", id)
	return id, nil
}

// RemoveFromWhitelist removes an entry no receipt relies on.
func (s *Staker) RemoveFromWhitelist(ctx context.Context, manager gem.Address, farmID, entryID gem.Bytes32) error {
	logger.Debug("removing from whitelist", "farm", farmID, "entry", entryID)

	now, err := s.update(ctx, "remove_from_whitelist", []gem.Bytes32{entryID}, func(tx *record.Tx, _ uint64) error {
		if _, err := requireManager(tx, farmID, manager); err != nil {
			return err
		}
		return whitelist.New(tx).Remove(farmID, entryID)
	})
	if err != nil {
		logger.Info("remove from whitelist failed", "farm", farmID, "entry", entryID, "error", err)
		return err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindRemoveFromWhitelist, Farm: farmID, Actor: manager, Subject: entryID, Time: now})
	logger.Info("removed from whitelist", "farm", farmID, "entry", entryID)
	return nil
}

// CreateLocks creates a lock per config. Either all of them are created or none.
func (s *Staker) CreateLocks(ctx context.Context, manager gem.Address, farmID gem.Bytes32, configs []lock.Config) ([]gem.Bytes32, error) {
	logger.Debug("creating locks", "farm", farmID, "count", len(configs))

	if len(configs) == 0 {
		return nil, reverts.ErrInvalidLock
	}
	ids := make([]gem.Bytes32, 0, len(configs))
	for _, cfg := range configs {
		ids = append(ids, lock.ID(farmID, cfg.Duration, cfg.Cooldown))
	}

	now, err := s.update(ctx, "create_locks", ids, func(tx *record.Tx, _ uint64) error {
		if _, err := requireManager(tx, farmID, manager); err != nil {
			return err
		}
		_, err := lock.New(tx, s.locks).Create(farmID, configs...)
		return err
	})
	if err != nil {
		logger.Info("create locks failed", "farm", farmID, "error", err)
		return nil, err
	}

	events := make([]*eventlog.Event, 0, len(ids))
	for i, id := range ids {
		events = append(events, &eventlog.Event{
			Kind:    eventlog.KindCreateLock,
			Farm:    farmID,
			Actor:   manager,
			Subject: id,
			Amount:  configs[i].Duration,
			Time:    now,
		})
	}
	s.emit(ctx, events...)
	logger.Info("created locks", "farm", farmID, "count", len(ids))
	return ids, nil
}

// FundReward moves amount of the reward mint from manager to the farm vault and makes it available.
func (s *Staker) FundReward(ctx context.Context, manager gem.Address, farmID gem.Bytes32, amount uint64) error {
	logger.Debug("funding reward", "farm", farmID, "manager", manager, "amount", amount)

	var mint gem.Address
	now, err := s.update(ctx, "fund_reward", []gem.Bytes32{farmID}, func(tx *record.Tx, _ uint64) error {
		f, err := requireManager(tx, farmID, manager)
		if err != nil {
			return err
		}
		if err := f.Reward.Fund(amount); err != nil {
			return err
		}
		if err := farm.New(tx).Set(farmID, f); err != nil {
			return err
		}
		mint = f.Reward.Mint
		return s.transfer(tx, mint, manager, farm.Vault(farmID), manager, amount)
	})
	if err != nil {
		logger.Info("fund reward failed", "farm", farmID, "amount", amount, "error", err)
		return err
	}

	s.emit(ctx, &eventlog.Event{Kind: eventlog.KindFundReward, Farm: farmID, Actor: manager, Asset: mint, Amount: amount, Time: now})
	logger.Info("funded reward", "farm", farmID, "amount", amount)
	return nil
}
