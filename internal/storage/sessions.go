package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OpenSession closes any open session for the user, then creates a new one at
// index 0. The close-then-create pair runs in one transaction, and the unique
// partial index on open sessions backstops it: if a concurrent open commits
// between our close and insert, the insert conflicts and the whole pair is
// retried once against the now-visible row.
func (db *DB) OpenSession(ctx context.Context, userID int, programID uuid.UUID) (uuid.UUID, error) {
	id, err := db.openSessionOnce(ctx, userID, programID)
	if isUniqueViolation(err) {
		id, err = db.openSessionOnce(ctx, userID, programID)
	}
	return id, err
}

func (db *DB) openSessionOnce(ctx context.Context, userID int, programID uuid.UUID) (uuid.UUID, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning session open: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET closed = TRUE WHERE user_id = $1 AND NOT closed`,
		userID); err != nil {
		return uuid.Nil, fmt.Errorf("closing prior sessions: %w", err)
	}

	id := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, program_id, current_index) VALUES ($1, $2, $3, 0)`,
		id, userID, programID); err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing session open: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetOpenSession returns the user's open session, or nil if none.
func (db *DB) GetOpenSession(ctx context.Context, userID int) (*models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, program_id, current_index, started_at, closed
		 FROM sessions
		 WHERE user_id = $1 AND NOT closed`,
		userID)

	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ProgramID, &s.CurrentIndex, &s.StartedAt, &s.Closed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open session: %w", err)
	}
	return &s, nil
}

// AdvanceSession persists the current exercise index for a session.
func (db *DB) AdvanceSession(ctx context.Context, sessionID uuid.UUID, index int) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET current_index = $2 WHERE id = $1`,
		sessionID, index); err != nil {
		return fmt.Errorf("advancing session: %w", err)
	}
	return nil
}

// CloseSession marks a session closed.
func (db *DB) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET closed = TRUE WHERE id = $1`,
		sessionID); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}
