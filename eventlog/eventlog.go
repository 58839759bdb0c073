// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventlog keeps an append-only sqlite audit trail of committed ledger operations.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
)

type EventLog struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open event log at given path.
func New(path string) (eventLog *EventLog, err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventLog == nil {
			db.Close()
		}
	}()
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create event table")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventLog{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create an event log in ram.
func NewMem() (*EventLog, error) {
	return New(":memory:")
}

// Close close the event log.
func (el *EventLog) Close() error {
	el.stmtCache.Clear()
	return el.db.Close()
}

func (el *EventLog) Path() string {
	return el.path
}

// Append stores events atomically and assigns their Seq.
func (el *EventLog) Append(ctx context.Context, events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := el.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}

	tx, err := el.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStmt := tx.StmtContext(ctx, stmt)
	for _, ev := range events {
		res, err := txStmt.ExecContext(ctx,
			string(ev.Kind),
			ev.Farm.Bytes(),
			ev.Actor.Bytes(),
			ev.Subject.Bytes(),
			ev.Asset.Bytes(),
			amountBytes(ev.Amount),
			int64(ev.Time),
		)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert %s event", ev.Kind)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		ev.Seq = uint64(seq)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricsHandleAppend(events)
	return nil
}

// Filter returns the events matching filter. A nil filter returns all events in ascending order.
func (el *EventLog) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return el.query(ctx, "SELECT seq, kind, farm, actor, subject, asset, amount, time FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT seq, kind, farm, actor, subject, asset, amount, time FROM event WHERE 1"
	if filter.Farm != nil {
		args = append(args, filter.Farm.Bytes())
		stmt += " AND farm = ?"
	}
	if filter.Actor != nil {
		args = append(args, filter.Actor.Bytes())
		stmt += " AND actor = ?"
	}
	if filter.Subject != nil {
		args = append(args, filter.Subject.Bytes())
		stmt += " AND subject = ?"
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (?" + strings.Repeat(",?", len(filter.Kinds)-1) + ")"
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}
	if filter.Range != nil {
		args = append(args, clamp(filter.Range.From))
		stmt += " AND time >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, clamp(filter.Range.To))
			stmt += " AND time <= ?"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, clamp(filter.Options.Offset), clamp(filter.Options.Limit))
	}
	return el.query(ctx, stmt, args...)
}

func (el *EventLog) query(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := el.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     int64
			kind    string
			farm    []byte
			actor   []byte
			subject []byte
			asset   []byte
			amount  []byte
			time    int64
		)
		if err := rows.Scan(&seq, &kind, &farm, &actor, &subject, &asset, &amount, &time); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Seq:     uint64(seq),
			Kind:    Kind(kind),
			Farm:    gem.BytesToBytes32(farm),
			Actor:   gem.BytesToAddress(actor),
			Subject: gem.BytesToBytes32(subject),
			Asset:   gem.BytesToAddress(asset),
			Amount:  binary.BigEndian.Uint64(amount),
			Time:    uint64(time),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func amountBytes(amount uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], amount)
	return b[:]
}

func clamp(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
