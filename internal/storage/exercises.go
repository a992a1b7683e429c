package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListExercises returns a program's exercises ordered by position, with id as
// the tiebreak.
func (db *DB) ListExercises(ctx context.Context, programID uuid.UUID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, name, reps, sets, weight, COALESCE(media_ref, ''), position
		 FROM exercises
		 WHERE program_id = $1
		 ORDER BY position, id`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.ProgramID, &e.Name, &e.Reps, &e.Sets, &e.Weight, &e.MediaRef, &e.Position); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// AppendExercise inserts an exercise at the given position and returns its ID.
func (db *DB) AppendExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, program_id, name, reps, sets, weight, media_ref, position)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
		id, e.ProgramID, e.Name, e.Reps, e.Sets, e.Weight, e.MediaRef, e.Position)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return id, nil
}

// UpdateExercise rewrites an exercise's fields in place, keeping its position.
// Returns false if the exercise no longer exists.
func (db *DB) UpdateExercise(ctx context.Context, id uuid.UUID, name string, reps, sets int, weight float64, mediaRef string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises
		 SET name = $2, reps = $3, sets = $4, weight = $5, media_ref = NULLIF($6, '')
		 WHERE id = $1`,
		id, name, reps, sets, weight, mediaRef)
	if err != nil {
		return false, fmt.Errorf("updating exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExercise removes one exercise and re-compacts positions so that the
// remaining ones stay dense (appending at count(existing) must keep working).
// Returns false if the exercise did not exist.
func (db *DB) DeleteExercise(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning exercise delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var programID uuid.UUID
	var position int
	err = tx.QueryRow(ctx,
		`DELETE FROM exercises WHERE id = $1 RETURNING program_id, position`,
		id).Scan(&programID, &position)
	if errors.Is(err, pgx.ErrNoRows) {
		// Stale button, not a storage failure.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting exercise: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE exercises SET position = position - 1
		 WHERE program_id = $1 AND position > $2`,
		programID, position)
	if err != nil {
		return false, fmt.Errorf("compacting positions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing exercise delete: %w", err)
	}
	return true, nil
}

// DeleteLastExercise removes the highest-position exercise of a program.
// Returns false, without error, when the program has no exercises.
func (db *DB) DeleteLastExercise(ctx context.Context, programID uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercises
		 WHERE id = (SELECT id FROM exercises
		             WHERE program_id = $1
		             ORDER BY position DESC, id DESC
		             LIMIT 1)`,
		programID)
	if err != nil {
		return false, fmt.Errorf("deleting last exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExercises removes every exercise of a program.
func (db *DB) DeleteExercises(ctx context.Context, programID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE program_id = $1`, programID); err != nil {
		return fmt.Errorf("clearing exercises: %w", err)
	}
	return nil
}
