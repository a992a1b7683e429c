package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateProgram inserts a new program row for (user, day) and returns its ID.
// Uniqueness per (user, day) is an application-level invariant: callers check
// FindProgram first, and overwrite deliberately inserts a second row.
func (db *DB) CreateProgram(ctx context.Context, userID int, day string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO programs (id, user_id, day_name) VALUES ($1, $2, $3)`,
		id, userID, day)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting program: %w", err)
	}
	return id, nil
}

// FindProgram returns the active program for (user, day), or nil if none
// exists. The newest row wins: an overwritten older row for the same day has
// had its exercises cleared and is never surfaced again.
func (db *DB) FindProgram(ctx context.Context, userID int, day string) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, day_name, created_at FROM programs
		 WHERE user_id = $1 AND day_name = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		userID, day)

	var p models.Program
	err := row.Scan(&p.ID, &p.UserID, &p.DayName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return &p, nil
}

// GetProgram returns the program with the given ID, or nil if it no longer
// exists (stale button).
func (db *DB) GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, day_name, created_at FROM programs WHERE id = $1`, id)

	var p models.Program
	err := row.Scan(&p.ID, &p.UserID, &p.DayName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return &p, nil
}

// ListPrograms returns all programs for a user ordered by weekday label.
// Cleared-out rows left behind by overwrites are excluded: only the newest
// row per day is returned.
func (db *DB) ListPrograms(ctx context.Context, userID int) ([]models.Program, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (day_name) id, user_id, day_name, created_at
		 FROM programs
		 WHERE user_id = $1
		 ORDER BY day_name, created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.UserID, &p.DayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeleteProgram removes a program and, via cascade, its exercises. Returns
// false if the program did not exist.
func (db *DB) DeleteProgram(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting program: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// OverwriteProgram atomically clears the old program's exercises and inserts
// a brand-new program row for the same (user, day). The old row stays behind
// empty; the new row becomes the active one. Returns the new program, or nil
// if the old program no longer exists.
func (db *DB) OverwriteProgram(ctx context.Context, oldID uuid.UUID) (*models.Program, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning overwrite: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int
	var day string
	err = tx.QueryRow(ctx,
		`SELECT user_id, day_name FROM programs WHERE id = $1`, oldID).Scan(&userID, &day)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying program for overwrite: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE program_id = $1`, oldID); err != nil {
		return nil, fmt.Errorf("clearing exercises: %w", err)
	}

	p := models.Program{ID: uuid.New(), UserID: userID, DayName: day}
	err = tx.QueryRow(ctx,
		`INSERT INTO programs (id, user_id, day_name) VALUES ($1, $2, $3) RETURNING created_at`,
		p.ID, p.UserID, p.DayName).Scan(&p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting replacement program: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing overwrite: %w", err)
	}
	return &p, nil
}
