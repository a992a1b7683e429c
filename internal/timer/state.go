package timer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StateDB persists pending rest resumptions so they survive a restart.
type StateDB struct {
	db *sql.DB
}

// PendingRest is one scheduled resumption: deliver a rest-elapsed trigger for
// UserID at FireAt, identified by Token.
type PendingRest struct {
	Token  uuid.UUID
	UserID int
	FireAt time.Time
}

// OpenStateDB opens (or creates) the SQLite state database at dir/timers.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "timers.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_rests (
		token   TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		fire_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Add records a pending resumption.
func (s *StateDB) Add(userID int, token uuid.UUID, fireAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO pending_rests (token, user_id, fire_at) VALUES (?, ?, ?)`,
		token.String(), userID, fireAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Remove deletes a pending resumption once it has fired (or been dropped).
func (s *StateDB) Remove(token uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM pending_rests WHERE token = ?`, token.String())
	return err
}

// List returns all pending resumptions.
func (s *StateDB) List() ([]PendingRest, error) {
	rows, err := s.db.Query(`SELECT token, user_id, fire_at FROM pending_rests`)
	if err != nil {
		return nil, fmt.Errorf("listing pending rests: %w", err)
	}
	defer rows.Close()

	var result []PendingRest
	for rows.Next() {
		var tokenStr, fireAtStr string
		var p PendingRest
		if err := rows.Scan(&tokenStr, &p.UserID, &fireAtStr); err != nil {
			return nil, fmt.Errorf("scanning pending rest: %w", err)
		}
		token, err := uuid.Parse(tokenStr)
		if err != nil {
			return nil, fmt.Errorf("parsing token %q: %w", tokenStr, err)
		}
		fireAt, err := time.Parse(time.RFC3339Nano, fireAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing fire_at %q: %w", fireAtStr, err)
		}
		p.Token = token
		p.FireAt = fireAt
		result = append(result, p)
	}
	return result, rows.Err()
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
