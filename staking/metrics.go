// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"time"

	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/staking/reverts"
)

var (
	metricOperations        = metrics.LazyLoadCounterVec("staking_operations_count", []string{"op", "status"})
	metricOperationDuration = metrics.LazyLoadHistogramVec("staking_operation_duration_ms", []string{"op"}, metrics.BucketOperation)
	metricEventFailures     = metrics.LazyLoadCounter("staking_event_failures_count")
	metricCompensations     = metrics.LazyLoadCounterVec("staking_compensations_count", []string{"status"})
	metricInflight          = metrics.LazyLoadGaugeVec("staking_operations_inflight", []string{"op"})
)

func operationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case reverts.IsFatal(err):
		return "fatal"
	case reverts.IsRevertErr(err):
		return "revert"
	default:
		return "error"
	}
}

func metricsHandleOperation(op string, start time.Time, err error) {
	if metrics.NoOp() {
		return
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": operationStatus(err)})
	metricOperationDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
}

// metricsTrackInflight counts op as running until the returned func is called.
func metricsTrackInflight(op string) func() {
	if metrics.NoOp() {
		return func() {}
	}
	labels := map[string]string{"op": op}
	metricInflight().AddWithLabel(1, labels)
	return func() { metricInflight().AddWithLabel(-1, labels) }
}
