// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"context"

	"github.com/vechain/gemfarm/eventlog"
)

// EventSink records committed operations. *eventlog.EventLog implements it.
type EventSink interface {
	Append(ctx context.Context, events ...*eventlog.Event) error
}

// emit appends the events of an operation after it committed.
// A failure is only logged: the ledger change stands.
func (s *Staker) emit(ctx context.Context, events ...*eventlog.Event) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Append(context.WithoutCancel(ctx), events...); err != nil {
		logger.Warn("failed to append events", "kind", events[0].Kind, "farm", events[0].Farm, "error", err)
		metricEventFailures().Add(int64(len(events)))
	}
}
