// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipt

import (
	"context"
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/lock"
	"github.com/vechain/gemfarm/staking/reverts"
	"github.com/vechain/gemfarm/test/datagen"
)

const start = uint64(1_700_000_000)

func stakeParams(l *lock.Lock, amount, rate, now uint64) StakeParams {
	return StakeParams{
		Farmer:    datagen.RandomHash(),
		Asset:     datagen.RandAddress(),
		LockID:    lock.ID(l.Farm, l.Duration, l.Cooldown),
		Lock:      l,
		Whitelist: datagen.RandomHash(),
		Amount:    amount,
		BaseRate:  rate,
		Now:       now,
	}
}

func TestStakeNew(t *testing.T) {
	l := &lock.Lock{Farm: datagen.RandomHash(), Duration: 100, Cooldown: 50, BonusFactor: 50}
	p := stakeParams(l, 2, 10, start)

	r := &Receipt{}
	assert.True(t, r.IsEmpty())

	rate, err := r.Stake(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), rate) // 2*10 with 50% bonus
	assert.True(t, r.IsRunning())
	assert.False(t, r.IsCoolingDown())
	assert.Equal(t, p.Farmer, r.Farmer)
	assert.Equal(t, p.Asset, r.Asset)
	assert.Equal(t, p.LockID, r.Lock)
	assert.Equal(t, p.Whitelist, r.Whitelist)
	assert.Equal(t, start, r.StartTs)
	assert.Equal(t, uint64(2), r.Amount)
	assert.Equal(t, rate, r.RewardRate)

	p.Amount = 0
	_, err = (&Receipt{}).Stake(p)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	p.Amount, p.BaseRate = math.MaxUint64, 2
	_, err = (&Receipt{}).Stake(p)
	assert.ErrorIs(t, err, reverts.ErrArithmetic)
}

func TestLifecycle(t *testing.T) {
	l := &lock.Lock{Farm: datagen.RandomHash(), Duration: 100, Cooldown: 50}
	p := stakeParams(l, 1, 10, start)

	r := &Receipt{}
	_, err := r.Stake(p)
	require.NoError(t, err)

	_, err = r.Stake(p)
	assert.ErrorIs(t, err, reverts.ErrGemStillStaked)

	_, _, err = r.Unstake(l, start+99)
	assert.ErrorIs(t, err, reverts.ErrGemStillLocked)
	assert.True(t, r.IsRunning())

	rate, amount, err := r.Unstake(l, start+100)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rate)
	assert.Equal(t, uint64(1), amount)
	assert.True(t, r.IsCoolingDown())
	assert.Equal(t, start+100, *r.EndTs)

	_, _, err = r.Unstake(l, start+200)
	assert.ErrorIs(t, err, reverts.ErrGemNotStaked)

	// cooldown boundary is inclusive
	p.Now = start + 149
	_, err = r.Stake(p)
	assert.ErrorIs(t, err, reverts.ErrCooldownIsNotOver)
	assert.True(t, r.IsCoolingDown())

	// a longer cooldown on the next lock is honored even if the previous lock had none
	long := &lock.Lock{Farm: l.Farm, Duration: 10, Cooldown: 1000}
	longParams := p
	longParams.Now, longParams.Lock, longParams.LockID = start+900, long, lock.ID(long.Farm, 10, 1000)
	_, err = r.Stake(longParams)
	assert.ErrorIs(t, err, reverts.ErrCooldownIsNotOver)

	// the cooldown of the lock being staked under applies
	bonus := &lock.Lock{Farm: l.Farm, Duration: 10, Cooldown: 0, BonusFactor: 100}
	p.Now, p.Lock, p.LockID, p.Amount = start+100, bonus, lock.ID(bonus.Farm, 10, 0), 3
	rate, err = r.Stake(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), rate)
	assert.True(t, r.IsRunning())
	assert.Nil(t, r.EndTs)
	assert.Equal(t, start+100, r.StartTs)
	assert.Equal(t, p.LockID, r.Lock)

	other := p
	other.Farmer = datagen.RandomHash()
	_, err = r.Stake(other)
	assert.ErrorIs(t, err, reverts.ErrInvalidAccountData)
}

func TestBuff(t *testing.T) {
	l := &lock.Lock{Farm: datagen.RandomHash()}
	buffAsset := datagen.RandAddress()

	r := &Receipt{}
	_, err := r.ApplyBuff(buffAsset, 3)
	assert.ErrorIs(t, err, reverts.ErrGemNotStaked)

	_, err = r.Stake(stakeParams(l, 1, 10, start))
	require.NoError(t, err)

	_, err = r.ApplyBuff(buffAsset, 0)
	assert.ErrorIs(t, err, reverts.ErrFactorMustBeGtZero)

	_, err = r.RemoveBuff(buffAsset)
	assert.ErrorIs(t, err, reverts.ErrGemNotBuffed)

	inc, err := r.ApplyBuff(buffAsset, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), inc)
	assert.Equal(t, uint64(30), r.RewardRate)
	assert.Equal(t, &Buff{Asset: buffAsset, Factor: 3}, r.Buff)

	_, err = r.ApplyBuff(buffAsset, 2)
	assert.ErrorIs(t, err, reverts.ErrGemAlreadyBuffed)

	_, _, err = r.Unstake(l, start)
	assert.ErrorIs(t, err, reverts.ErrGemStillBuffed)

	_, err = r.RemoveBuff(datagen.RandAddress())
	assert.ErrorIs(t, err, reverts.ErrGemNotBuffed)

	dec, err := r.RemoveBuff(buffAsset)
	require.NoError(t, err)
	assert.Equal(t, inc, dec)
	assert.Equal(t, uint64(10), r.RewardRate)
	assert.Nil(t, r.Buff)

	r.RewardRate = math.MaxUint64
	_, err = r.ApplyBuff(buffAsset, 2)
	assert.ErrorIs(t, err, reverts.ErrArithmetic)
	assert.Nil(t, r.Buff)
}

func TestBuffReversible(t *testing.T) {
	f := fuzz.New().NilChance(0)
	l := &lock.Lock{Farm: datagen.RandomHash()}

	for range 500 {
		var rate, factor uint64
		f.Fuzz(&rate)
		f.Fuzz(&factor)
		rate = rate%1_000_000 + 1
		factor = factor%1000 + 1

		r := &Receipt{}
		_, err := r.Stake(stakeParams(l, 1, rate, start))
		require.NoError(t, err)

		inc, err := r.ApplyBuff(gem.Address{1}, factor)
		require.NoError(t, err)
		dec, err := r.RemoveBuff(gem.Address{1})
		require.NoError(t, err)

		assert.Equal(t, inc, dec)
		assert.Equal(t, rate, r.RewardRate)
	}
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := record.New(db)

	l := &lock.Lock{Farm: datagen.RandomHash(), Duration: 10}
	p := stakeParams(l, 4, 5, 0)
	id := ID(p.Farmer, p.Asset)
	assert.NotEqual(t, id, ID(p.Farmer, datagen.RandAddress()))

	require.NoError(t, store.Update(context.Background(), []gem.Bytes32{id}, func(tx *record.Tx) error {
		svc := New(tx)
		r, err := svc.Get(id)
		require.NoError(t, err)
		assert.True(t, r.IsEmpty())

		if _, err := r.Stake(p); err != nil {
			return err
		}
		if _, err := r.ApplyBuff(gem.Address{9}, 2); err != nil {
			return err
		}
		return svc.Set(id, r)
	}))

	// a stake and unstake at time zero must keep their timestamps
	require.NoError(t, store.Update(context.Background(), []gem.Bytes32{id}, func(tx *record.Tx) error {
		svc := New(tx)
		r, err := svc.Get(id)
		require.NoError(t, err)
		assert.Equal(t, &Buff{Asset: gem.Address{9}, Factor: 2}, r.Buff)
		assert.Equal(t, uint64(40), r.RewardRate)

		if _, err := r.RemoveBuff(gem.Address{9}); err != nil {
			return err
		}
		if _, _, err := r.Unstake(l, 10); err != nil {
			return err
		}
		return svc.Set(id, r)
	}))

	require.NoError(t, store.View(func(tx *record.Tx) error {
		r, err := New(tx).Get(id)
		require.NoError(t, err)
		assert.True(t, r.IsCoolingDown())
		assert.Equal(t, uint64(10), *r.EndTs)
		assert.Equal(t, uint64(0), r.StartTs)
		assert.Nil(t, r.Buff)
		assert.Equal(t, uint64(20), r.RewardRate)
		return nil
	}))
}
