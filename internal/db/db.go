// Package db records matching runs and their results in SQLite.
//
// The schema is managed with embedded golang-migrate migrations; see
// migrations/. No matching logic lives here.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cps-atlas/strem/internal/match"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the match store at path and
// brings its schema up to date.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Run is one recorded invocation of the matcher.
type Run struct {
	ID      string
	Pattern string
	Channel string
	Mode    string
	Created time.Time
}

// StoredMatch is one recorded match interval.
type StoredMatch struct {
	RunID   string
	Channel string
	Start   int
	End     int
}

// RecordRun inserts a run row and returns its generated id.
func (db *DB) RecordRun(pattern, channel, mode string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO runs (run_id, pattern, channel, mode, created) VALUES (?, ?, ?, ?, ?)",
		id, pattern, channel, mode, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordMatch inserts one match interval for a run.
func (db *DB) RecordMatch(runID string, m match.Match) error {
	_, err := db.Exec(
		"INSERT INTO matches (run_id, channel, start_idx, end_idx) VALUES (?, ?, ?, ?)",
		runID, m.Channel, m.Start, m.End,
	)
	return err
}

// Runs returns every recorded run, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(
		"SELECT run_id, pattern, channel, mode, created FROM runs ORDER BY created DESC, run_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Channel, &r.Mode, &r.Created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Matches returns the recorded matches, optionally filtered by run id
// (empty string selects all), ordered by channel and start index.
func (db *DB) Matches(runID string) ([]StoredMatch, error) {
	query := "SELECT run_id, channel, start_idx, end_idx FROM matches"
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY channel, start_idx"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredMatch
	for rows.Next() {
		var m StoredMatch
		if err := rows.Scan(&m.RunID, &m.Channel, &m.Start, &m.End); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
