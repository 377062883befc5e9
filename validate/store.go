/*
 * store.go, part of TADF-Design.
 *
 *
 * Copyright 2026 The TADF-Design Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package validate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store keeps the validation records of every run in a SQLite file, so
// the accuracy of a molecule can be followed across recalculations.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Entry is one stored record.
type Entry struct {
	Run    int64
	At     time.Time
	Name   string
	Status string
	Ref    ExcitedStateEnergy
	Calc   ExcitedStateEnergy
}

// OpenStore opens, or creates, the history database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS records (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		s1_ref REAL,
		t1_ref REAL,
		s1_calc REAL,
		t1_calc REAL,
		PRIMARY KEY (run_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_records_name ON records(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores records as one run made at the given time, and returns
// the run ID.
func (s *Store) Save(ctx context.Context, at time.Time, records []Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs (at) VALUES (?)`, at.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	run, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, name, status, s1_ref, t1_ref, s1_calc, t1_calc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx, run, r.Name, r.Status.String(),
			nullable(r.Ref.S1), nullable(r.Ref.T1), nullable(r.Calc.S1), nullable(r.Calc.T1))
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", r.Name, err)
		}
	}
	return run, tx.Commit()
}

// History returns the stored entries for the molecule name, oldest first.
func (s *Store) History(ctx context.Context, name string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, u.at, r.name, r.status, r.s1_ref, r.t1_ref, r.s1_calc, r.t1_calc
		FROM records r JOIN runs u ON u.id = r.run_id
		WHERE r.name = ?
		ORDER BY r.run_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		var s1r, t1r, s1c, t1c sql.NullFloat64
		if err := rows.Scan(&e.Run, &at, &e.Name, &e.Status, &s1r, &t1r, &s1c, &t1c); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		e.At = time.Unix(0, at)
		e.Ref = ExcitedStateEnergy{S1: energy(s1r), T1: energy(t1r)}
		e.Calc = ExcitedStateEnergy{S1: energy(s1c), T1: energy(t1c)}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(e Energy) sql.NullFloat64 {
	return sql.NullFloat64{Float64: e.Value, Valid: e.Valid}
}

func energy(n sql.NullFloat64) Energy {
	return Energy{Value: n.Float64, Valid: n.Valid}
}
