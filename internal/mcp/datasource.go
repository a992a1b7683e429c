package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Read-only: the
// conversational flows stay the single writer.
type DataSource interface {
	ListPrograms(ctx context.Context, userID int) ([]models.Program, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListExercises(ctx context.Context, programID uuid.UUID) ([]models.Exercise, error)
	GetOpenSession(ctx context.Context, userID int) (*models.Session, error)
	GetRestSeconds(ctx context.Context, userID int) (int, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
