// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"strings"

	"github.com/vechain/gemfarm/metrics"
)

var (
	metricAppendedEvents       = metrics.LazyLoadCounterVec("eventlog_appended_events", []string{"kind"})
	metricEventQueryParameters = metrics.LazyLoadCounterVec("eventlog_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("eventlog_query_order", []string{"order"})
	metricLimitBucket          = metrics.LazyLoadHistogram("eventlog_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleAppend(events []*Event) {
	if metrics.NoOp() {
		return
	}
	for _, ev := range events {
		metricAppendedEvents().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
	}
}

func metricsHandleFilter(filter *Filter) {
	if metrics.NoOp() {
		return
	}

	paramsUsed := make([]string, 0, 5)
	if filter.Farm != nil {
		paramsUsed = append(paramsUsed, "farm")
	}
	if filter.Actor != nil {
		paramsUsed = append(paramsUsed, "actor")
	}
	if filter.Subject != nil {
		paramsUsed = append(paramsUsed, "subject")
	}
	if len(filter.Kinds) > 0 {
		paramsUsed = append(paramsUsed, "kinds")
	}
	if filter.Range != nil {
		paramsUsed = append(paramsUsed, "range")
	}
	metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})

	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().Observe(int64(limit))
	}
}
