// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for registry events
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	kind TEXT NOT NULL,
	time INTEGER NOT NULL,
	staker BLOB(20) NOT NULL,
	collection INTEGER NOT NULL,
	tokenID BLOB(32) NOT NULL,
	receiptID BLOB(32) NOT NULL,
	rewardID BLOB(32)
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(staker);
CREATE INDEX IF NOT EXISTS event_i1 ON event(collection, tokenID);
CREATE INDEX IF NOT EXISTS event_i2 ON event(time);
`
