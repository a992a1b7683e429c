package flow

import (
	"context"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/google/uuid"
)

// Store is the persistence contract the state machines depend on. Every write
// is synchronous and immediately visible to subsequent reads. Lookups return
// nil (or false) for absent rows; a non-nil error always means a storage
// failure fatal to the triggering operation.
type Store interface {
	CreateProgram(ctx context.Context, userID int, day string) (uuid.UUID, error)
	FindProgram(ctx context.Context, userID int, day string) (*models.Program, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListPrograms(ctx context.Context, userID int) ([]models.Program, error)
	DeleteProgram(ctx context.Context, id uuid.UUID) (bool, error)
	OverwriteProgram(ctx context.Context, oldID uuid.UUID) (*models.Program, error)

	ListExercises(ctx context.Context, programID uuid.UUID) ([]models.Exercise, error)
	AppendExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error)
	UpdateExercise(ctx context.Context, id uuid.UUID, name string, reps, sets int, weight float64, mediaRef string) (bool, error)
	DeleteExercise(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteLastExercise(ctx context.Context, programID uuid.UUID) (bool, error)
	DeleteExercises(ctx context.Context, programID uuid.UUID) error

	OpenSession(ctx context.Context, userID int, programID uuid.UUID) (uuid.UUID, error)
	GetOpenSession(ctx context.Context, userID int) (*models.Session, error)
	AdvanceSession(ctx context.Context, sessionID uuid.UUID, index int) error
	CloseSession(ctx context.Context, sessionID uuid.UUID) error

	GetRestSeconds(ctx context.Context, userID int) (int, error)
	SetRestSeconds(ctx context.Context, userID, seconds int) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)
