// Package history keeps a local record of the last observed status per
// scan. The backend owns the lifecycle, but its transitions are
// monotonic (Pending -> Running -> Completed/Failed), so a fetched
// status that ranks below the recorded one is a stale read and gets
// ignored, and terminal statuses stick.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// Store records observed scan statuses.
type Store interface {
	Close() error
	Observe(scanID int, status model.ScanStatus) (model.ScanStatus, error)
	Last(scanID int) (model.ScanStatus, bool, error)
}

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the history database at path and
// applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS scan_status (
		scan_id INTEGER PRIMARY KEY,
		status INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Observe merges a freshly fetched status with the recorded one and
// returns the effective status. The recorded status only ever moves
// forward; observing a regression returns what was already recorded.
func (s *SQLiteStore) Observe(scanID int, status model.ScanStatus) (model.ScanStatus, error) {
	last, found, err := s.Last(scanID)
	if err != nil {
		return status, err
	}
	// Terminal states stick: Completed and Failed are siblings, not
	// steps of one another, so neither may replace the other.
	if found && (last.IsTerminal() || last >= status) {
		return last, nil
	}

	query := `
	INSERT INTO scan_status (scan_id, status, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(scan_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, scanID, int(status), time.Now()); err != nil {
		return status, fmt.Errorf("record scan status: %w", err)
	}
	return status, nil
}

// Last returns the recorded status for a scan, if any.
func (s *SQLiteStore) Last(scanID int) (model.ScanStatus, bool, error) {
	var status int
	err := s.db.QueryRow(`SELECT status FROM scan_status WHERE scan_id = ?`, scanID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query scan status: %w", err)
	}
	return model.ScanStatus(status), true, nil
}
