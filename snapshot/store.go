// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package snapshot

import (
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	// Your main or test packages require this import so the sql package is properly initialized.
	_ "github.com/mattn/go-sqlite3"
)

const (
	// SQL statement for creating the snapshot history table
	createSQL = `
PRAGMA journal_mode = MEMORY;
CREATE TABLE IF NOT EXISTS snapshot (
	block INTEGER,
	time INTEGER,
	label TEXT,
	key TEXT,
	value TEXT
);
`
	// SQL statement for inserting one value of a snapshot
	insertSQL = `INSERT INTO snapshot (block, time, label, key, value) VALUES (?, ?, ?, ?, ?)`

	historySQL = `SELECT block, time, label, key, value FROM snapshot ORDER BY block, label, key LIMIT ?`
)

// Row is one stored value of a snapshot.
type Row struct {
	Block uint64 `db:"block"`
	Time  uint64 `db:"time"`
	Label string `db:"label"`
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Store is an append-only sqlite history of snapshots.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens or creates the history in the given sqlite file.
func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %v", path)
	}
	if _, err = db.Exec(createSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create snapshot table")
	}
	return NewStore(db), nil
}

// NewStore uses an already initialized database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Add records all values of a snapshot under the given label.
func (s *Store) Add(label string, snap *Snap) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	stmt, err := tx.Preparex(insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "failed to prepare insert statement")
	}
	defer stmt.Close()
	for _, key := range snap.Keys() {
		v, err := snap.Get(key)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(snap.Block(), snap.Time(), label, key, v.Dec()); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to insert %v", key)
		}
	}
	return tx.Commit()
}

// History returns at most limit stored values ordered by block.
func (s *Store) History(limit int) ([]Row, error) {
	var rows []Row
	if err := s.db.Select(&rows, historySQL, limit); err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot history")
	}
	return rows, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
