package storage

import (
	"context"
	"fmt"

	"github.com/claude/repcoach/internal/models"
)

// GetRestSeconds returns the user's configured rest interval, lazily
// materializing the default row on first read.
func (db *DB) GetRestSeconds(ctx context.Context, userID int) (int, error) {
	var seconds int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO settings (user_id, rest_seconds)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET rest_seconds = settings.rest_seconds
		RETURNING rest_seconds
	`, userID, models.DefaultRestSeconds).Scan(&seconds)
	if err != nil {
		return 0, fmt.Errorf("querying rest seconds: %w", err)
	}
	return seconds, nil
}

// SetRestSeconds stores the user's rest interval.
func (db *DB) SetRestSeconds(ctx context.Context, userID, seconds int) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO settings (user_id, rest_seconds)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET rest_seconds = $2
	`, userID, seconds)
	if err != nil {
		return fmt.Errorf("setting rest seconds: %w", err)
	}
	return nil
}
