// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"sync"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/metrics"
)

var metricLockEntries = metrics.LazyLoadGauge("record_lock_entries")

// keyLocks hands out one mutex per record id, dropped once no holder or waiter is left.
type keyLocks struct {
	mu    sync.Mutex
	locks map[gem.Bytes32]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[gem.Bytes32]*keyLock)}
}

// lock acquires ids in the given order and returns the func releasing them.
// Callers pass sorted ids so that two transactions never wait on each other.
func (k *keyLocks) lock(ids []gem.Bytes32) func() {
	held := make([]*keyLock, 0, len(ids))
	for _, id := range ids {
		l := k.acquire(id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			k.release(ids[i], held[i])
		}
	}
}

func (k *keyLocks) acquire(id gem.Bytes32) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[id]
	if !ok {
		l = &keyLock{}
		k.locks[id] = l
	}
	l.refs++
	k.report()
	return l
}

func (k *keyLocks) release(id gem.Bytes32, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(k.locks, id)
		k.report()
	}
}

// report publishes the number of live entries. Callers hold k.mu.
func (k *keyLocks) report() {
	if !metrics.NoOp() {
		metricLockEntries().Set(int64(len(k.locks)))
	}
}

// size returns the number of live lock entries.
func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
