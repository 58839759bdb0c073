// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/clock"
	"github.com/vechain/gemfarm/config"
	"github.com/vechain/gemfarm/eventlog"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/test/datagen"
)

type nopCustody struct{}

func (nopCustody) Transfer(_, _, _, _ gem.Address, _ uint64) error { return nil }

func TestOpenPersists(t *testing.T) {
	t.Cleanup(func() { log.SetHandler(log.DiscardHandler()) })

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	opts := Options{Clock: clock.NewManual(1000), LogWriter: io.Discard}
	authority, mint := datagen.RandAddress(), datagen.RandAddress()

	l, err := Open(cfg, nopCustody{}, opts)
	require.NoError(t, err)
	farmID, err := l.CreateFarm(context.Background(), authority, mint)
	require.NoError(t, err)
	require.NoError(t, l.FundReward(context.Background(), authority, farmID, 500))
	require.NoError(t, l.Close())

	l, err = Open(cfg, nopCustody{}, opts)
	require.NoError(t, err)
	defer l.Close()

	f, err := l.Farm(farmID)
	require.NoError(t, err)
	assert.Equal(t, authority, f.Authority)
	assert.Equal(t, uint64(500), f.Reward.Available)

	require.NotNil(t, l.Events())
	events, err := l.Events().Filter(context.Background(), &eventlog.Filter{Farm: &farmID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, eventlog.KindFundReward, events[1].Kind)
	assert.Equal(t, uint64(1000), events[1].Time)
}

func TestOpenInMemory(t *testing.T) {
	t.Cleanup(func() { log.SetHandler(log.DiscardHandler()) })

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.EventLog = false
	cfg.Log.Format = "json"

	l, err := Open(cfg, nopCustody{}, Options{LogWriter: &buf})
	require.NoError(t, err)
	defer l.Close()

	assert.Nil(t, l.Events())
	assert.Contains(t, buf.String(), "ledger opened")
	assert.Contains(t, buf.String(), `"dir":"memory"`)

	_, err = l.CreateFarm(context.Background(), datagen.RandAddress(), datagen.RandAddress())
	require.NoError(t, err)
}

func TestOpenWithMetrics(t *testing.T) {
	t.Cleanup(func() { log.SetHandler(log.DiscardHandler()) })

	cfg := config.Default()
	cfg.EventLog = false
	cfg.Metrics = true

	l, err := Open(cfg, nopCustody{}, Options{LogWriter: io.Discard})
	require.NoError(t, err)
	defer l.Close()
	require.False(t, metrics.NoOp())

	_, err = l.CreateFarm(context.Background(), datagen.RandAddress(), datagen.RandAddress())
	require.NoError(t, err)

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	gauges := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetGauge() != nil {
				gauges[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}

	// nothing is left running or locked once the operation returns
	assert.Contains(t, gauges, "gemfarm_staking_operations_inflight")
	assert.Equal(t, float64(0), gauges["gemfarm_staking_operations_inflight"])
	assert.Contains(t, gauges, "gemfarm_record_lock_entries")
	assert.Equal(t, float64(0), gauges["gemfarm_record_lock_entries"])
}

func TestOpenInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Format = "xml"
	_, err := Open(cfg, nopCustody{}, Options{})
	assert.ErrorContains(t, err, "invalid config")
}
