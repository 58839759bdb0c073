// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger wires a staker from a config: record store, event log, metrics and logging.
package ledger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/clock"
	"github.com/vechain/gemfarm/config"
	"github.com/vechain/gemfarm/eventlog"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking"
	"github.com/vechain/gemfarm/staking/lock"
)

var logger = log.WithContext("pkg", "ledger")

const (
	recordsDirName = "records"
	eventsFileName = "events.db"
)

// Options holds the collaborators of a ledger. Clock defaults to the system clock,
// LogWriter to stderr.
type Options struct {
	Clock     clock.Clock
	Resolver  staking.Resolver
	LogWriter io.Writer
}

// Ledger owns the resources behind a staker.
type Ledger struct {
	*staking.Staker

	db     *lvldb.LevelDB
	events *eventlog.EventLog
}

// Open opens the ledger described by cfg.
func Open(cfg config.Config, custody staking.Custody, opts Options) (ledger *Ledger, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := setupLogging(cfg.Log, opts.LogWriter); err != nil {
		return nil, err
	}
	if cfg.Metrics {
		metrics.InitializePrometheusMetrics()
	}
	if cfg.NTP.Server != "" {
		// the offset is only reported
		_, _ = clock.CheckOffset(cfg.NTP.Server, cfg.NTP.Tolerance)
	}

	db, err := openRecords(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	events, err := openEvents(cfg)
	if err != nil {
		return nil, err
	}

	lockCache, err := lock.NewCache(cfg.Store.LockCacheSize)
	if err != nil {
		if events != nil {
			events.Close()
		}
		return nil, errors.Wrap(err, "create lock cache")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	stakerOpts := staking.Options{
		Resolver:  opts.Resolver,
		LockCache: lockCache,
	}
	if events != nil {
		stakerOpts.Events = events
	}

	logger.Info("ledger opened", "dir", displayDir(cfg.DataDir), "eventlog", cfg.EventLog, "metrics", cfg.Metrics)
	return &Ledger{
		Staker: staking.New(record.New(db), clk, custody, stakerOpts),
		db:     db,
		events: events,
	}, nil
}

// Events returns the event log, nil if disabled.
func (l *Ledger) Events() *eventlog.EventLog {
	return l.events
}

// Close releases the event log and the record store.
func (l *Ledger) Close() error {
	var eventsErr error
	if l.events != nil {
		eventsErr = l.events.Close()
	}
	if err := l.db.Close(); err != nil {
		return errors.Wrap(err, "close records")
	}
	if eventsErr != nil {
		return errors.Wrap(eventsErr, "close event log")
	}
	logger.Info("ledger closed")
	return nil
}

func setupLogging(cfg config.LogConfig, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	handler, err := log.NewHandler(w, cfg.Format, level, cfg.Color)
	if err != nil {
		return err
	}
	log.SetHandler(handler)
	return nil
}

func openRecords(cfg config.Config) (*lvldb.LevelDB, error) {
	if cfg.DataDir == "" {
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir %q", cfg.DataDir)
	}
	return lvldb.New(filepath.Join(cfg.DataDir, recordsDirName), lvldb.Options{
		CacheSize:              cfg.Store.CacheSize,
		OpenFilesCacheCapacity: cfg.Store.OpenFiles,
	})
}

func openEvents(cfg config.Config) (*eventlog.EventLog, error) {
	if !cfg.EventLog {
		return nil, nil
	}
	if cfg.DataDir == "" {
		return eventlog.NewMem()
	}
	return eventlog.New(filepath.Join(cfg.DataDir, eventsFileName))
}

func displayDir(dir string) string {
	if dir == "" {
		return "memory"
	}
	return dir
}
