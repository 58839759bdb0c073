// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the time sources used to drive reward accrual.
// All times are unix seconds.
package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/log"
)

var logger = log.WithContext("pkg", "clock")

// Clock returns the current time. Successive calls never go backwards.
type Clock interface {
	Now() (uint64, error)
}

// System is the wall clock guarded against stepping backwards.
type System struct {
	mu   sync.Mutex
	last uint64
	wall func() time.Time
}

func NewSystem() *System {
	return &System{wall: time.Now}
}

func (s *System) Now() (uint64, error) {
	t := s.wall().Unix()
	if t < 0 {
		return 0, errors.Errorf("wall clock before unix epoch: %d", t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := uint64(t)
	if now < s.last {
		logger.Warn("wall clock went backwards", "last", s.last, "now", now)
		return s.last, nil
	}
	s.last = now
	return now, nil
}

// Manual is a clock moved explicitly, for tests and replays.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now, nil
}

// Advance moves the clock forward by secs.
func (m *Manual) Advance(secs uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += secs
}

// Set moves the clock to t. Setting an earlier time is ignored.
func (m *Manual) Set(t uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}

var queryNTP = func(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// CheckOffset compares the local clock with an NTP server and warns when the
// offset exceeds tolerance. Accrual is computed from local time, so a skewed
// host over- or under-pays rewards.
func CheckOffset(server string, tolerance time.Duration) (time.Duration, error) {
	offset, err := queryNTP(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return 0, errors.Wrap(err, "query ntp")
	}
	if offset > tolerance || offset < -tolerance {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
	}
	return offset, nil
}
