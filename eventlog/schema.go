// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

// amount is stored as 8 big-endian bytes since sqlite integers are signed.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	farm BLOB(32) NOT NULL,
	actor BLOB(20) NOT NULL,
	subject BLOB(32) NOT NULL,
	asset BLOB(20) NOT NULL,
	amount BLOB(8) NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(farm, time);
CREATE INDEX IF NOT EXISTS event_i1 ON event(actor, time);
CREATE INDEX IF NOT EXISTS event_i2 ON event(subject);
`

const insertEventQuery = "INSERT INTO event(kind, farm, actor, subject, asset, amount, time) VALUES (?, ?, ?, ?, ?, ?, ?)"
