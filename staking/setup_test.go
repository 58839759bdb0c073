// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/clock"
	"github.com/vechain/gemfarm/eventlog"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/whitelist"
	"github.com/vechain/gemfarm/test/datagen"
)

const genesis = uint64(1_700_000_000)

var errBankDown = errors.New("bank is down")

type balanceKey struct {
	asset, owner gem.Address
}

// bank is an in-memory custody. Only the sending account may authorize a transfer.
type bank struct {
	mu        sync.Mutex
	balances  map[balanceKey]uint64
	transfers int
	down      bool
}

func newBank() *bank {
	return &bank{balances: make(map[balanceKey]uint64)}
}

func (b *bank) Transfer(asset, from, to, authority gem.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return errBankDown
	}
	if authority != from {
		return errors.New("transfer not authorized by sender")
	}
	if b.balances[balanceKey{asset, from}] < amount {
		return errors.New("insufficient balance")
	}
	b.balances[balanceKey{asset, from}] -= amount
	b.balances[balanceKey{asset, to}] += amount
	b.transfers++
	return nil
}

func (b *bank) mint(asset, owner gem.Address, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[balanceKey{asset, owner}] += amount
}

func (b *bank) balance(asset, owner gem.Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[balanceKey{asset, owner}]
}

func (b *bank) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

type resolverFunc func(asset gem.Address, proof []byte) (gem.Address, error)

func (f resolverFunc) ResolveCreator(asset gem.Address, proof []byte) (gem.Address, error) {
	return f(asset, proof)
}

// flakyStore fails the next commits while failCommit is set.
type flakyStore struct {
	kv.Store
	failCommit bool
}

type flakyBulk struct {
	kv.Bulk
	fail bool
}

func (s *flakyStore) Bulk() kv.Bulk {
	return &flakyBulk{Bulk: s.Store.Bulk(), fail: s.failCommit}
}

func (b *flakyBulk) Write() error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.Bulk.Write()
}

type testEnv struct {
	t       *testing.T
	ctx     context.Context
	staker  *Staker
	clock   *clock.Manual
	bank    *bank
	events  *eventlog.EventLog
	db      *flakyStore
	creator gem.Address

	authority gem.Address
	mint      gem.Address
	farm      gem.Bytes32
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events, err := eventlog.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	lockCache, err := lock.NewCache(64)
	require.NoError(t, err)

	env := &testEnv{
		t:         t,
		ctx:       context.Background(),
		clock:     clock.NewManual(genesis),
		bank:      newBank(),
		events:    events,
		db:        &flakyStore{Store: db},
		creator:   datagen.RandAddress(),
		authority: datagen.RandAddress(),
		mint:      datagen.RandAddress(),
	}
	resolver := resolverFunc(func(_ gem.Address, proof []byte) (gem.Address, error) {
		if string(proof) != "verified" {
			return gem.Address{}, errors.New("unverified asset")
		}
		return env.creator, nil
	})
	env.staker = New(record.New(env.db), env.clock, env.bank, Options{
		Resolver:  resolver,
		Events:    events,
		LockCache: lockCache,
	})

	env.farm, err = env.staker.CreateFarm(env.ctx, env.authority, env.mint)
	require.NoError(t, err)
	return env
}

func (e *testEnv) fund(amount uint64) {
	e.bank.mint(e.mint, e.authority, amount)
	require.NoError(e.t, e.staker.FundReward(e.ctx, e.authority, e.farm, amount))
}

func (e *testEnv) createLock(duration, cooldown uint64, bonus uint8) gem.Bytes32 {
	ids, err := e.staker.CreateLocks(e.ctx, e.authority, e.farm, []lock.Config{
		{Duration: duration, Cooldown: cooldown, BonusFactor: bonus},
	})
	require.NoError(e.t, err)
	return ids[0]
}

func (e *testEnv) whitelist(subject gem.Address, value uint64, kind whitelist.Kind) gem.Bytes32 {
	id, err := e.staker.AddToWhitelist(e.ctx, e.authority, e.farm, subject, value, kind)
	require.NoError(e.t, err)
	return id
}

func (e *testEnv) newFarmer() gem.Address {
	owner := datagen.RandAddress()
	_, err := e.staker.InitializeFarmer(e.ctx, e.farm, owner)
	require.NoError(e.t, err)
	return owner
}

// newGem mints amount of a fresh asset to owner and whitelists it by mint at rate.
func (e *testEnv) newGem(owner gem.Address, amount, rate uint64) (gem.Address, gem.Bytes32) {
	asset := datagen.RandAddress()
	e.bank.mint(asset, owner, amount)
	return asset, e.whitelist(asset, rate, whitelist.KindMint)
}

func (e *testEnv) stake(owner, asset gem.Address, amount uint64, lockID, entryID gem.Bytes32) error {
	_, err := e.staker.Stake(e.ctx, StakeArgs{
		Farm:      e.farm,
		Owner:     owner,
		Asset:     asset,
		Amount:    amount,
		Lock:      lockID,
		Whitelist: entryID,
	})
	return err
}
