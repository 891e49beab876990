// Package audit records onboarding attempts in SQLite so operators
// can inspect which Enrollees reached which phase and why a flow
// stalled.
package audit

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Attempt is one onboarding attempt as recorded in the store.
type Attempt struct {
	// ID is the exchange identifier (UUID) assigned by the engine.
	ID string

	// PeerMAC is the Enrollee's MAC address.
	PeerMAC string

	// Phase is the last observed protocol phase name.
	Phase string

	// Outcome is empty while in flight, then "success" or "failure".
	Outcome string

	// ErrorMessage describes the failure, if any.
	ErrorMessage string

	StartedAt   time.Time
	CompletedAt time.Time
}

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Store provides SQLite persistence for onboarding attempts.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new store with the given database path.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS onboarding_attempts (
		id TEXT PRIMARY KEY,
		peer_mac TEXT NOT NULL,
		phase TEXT NOT NULL,
		outcome TEXT,
		error_message TEXT,
		started_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_peer_mac ON onboarding_attempts(peer_mac);
	CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON onboarding_attempts(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart records the beginning of an onboarding attempt.
func (s *Store) RecordStart(id, peerMAC, phase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO onboarding_attempts (id, peer_mac, phase, started_at)
		VALUES (?, ?, ?, ?)
	`, id, peerMAC, phase, time.Now())

	return err
}

// UpdatePhase records the latest protocol phase of an attempt.
func (s *Store) UpdatePhase(id, phase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE onboarding_attempts SET phase = ? WHERE id = ?
	`, phase, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// Complete marks an attempt finished with the given outcome.
func (s *Store) Complete(id, outcome, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE onboarding_attempts
		SET outcome = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, outcome, errorMessage, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// Get retrieves one attempt by exchange ID.
func (s *Store) Get(id string) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a Attempt
	var outcome, errMsg sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(`
		SELECT id, peer_mac, phase, outcome, error_message, started_at, completed_at
		FROM onboarding_attempts WHERE id = ?
	`, id).Scan(&a.ID, &a.PeerMAC, &a.Phase, &outcome, &errMsg, &a.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	a.Outcome = outcome.String
	a.ErrorMessage = errMsg.String
	if completedAt.Valid {
		a.CompletedAt = completedAt.Time
	}
	return &a, nil
}

// List returns the most recent attempts, newest first.
func (s *Store) List(limit int) ([]*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, peer_mac, phase, outcome, error_message, started_at, completed_at
		FROM onboarding_attempts
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		var a Attempt
		var outcome, errMsg sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(&a.ID, &a.PeerMAC, &a.Phase, &outcome, &errMsg, &a.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		a.Outcome = outcome.String
		a.ErrorMessage = errMsg.String
		if completedAt.Valid {
			a.CompletedAt = completedAt.Time
		}
		attempts = append(attempts, &a)
	}

	return attempts, rows.Err()
}

// Prune deletes completed attempts older than the cutoff. It returns
// the number of rows removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM onboarding_attempts
		WHERE completed_at IS NOT NULL AND completed_at < ?
	`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
