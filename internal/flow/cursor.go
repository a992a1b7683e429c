package flow

import (
	"sync"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// builderState labels the authoring machine's position.
type builderState int

const (
	builderIdle builderState = iota
	builderSelectingDay
	builderAdding
)

// builderCursor is the transient per-user authoring state. Everything here
// except the running count is reconstructable from the store; a lost count
// only loses the draft-in-progress, never committed exercises.
type builderCursor struct {
	state     builderState
	programID uuid.UUID
	day       string
	count     int
	editingID uuid.UUID // non-nil while the edit sub-flow awaits a replacement line
}

func (b *builderCursor) reset() {
	*b = builderCursor{}
}

// playerCursor is the transient per-user playback state: the loaded exercise
// list and the pointer into it. Reconstructable from the open session row
// plus the program's exercises (see Player resume).
type playerCursor struct {
	sessionID uuid.UUID
	programID uuid.UUID
	exercises []models.Exercise
	index     int
	resting   bool
	restToken uuid.UUID
}

// userCursor bundles one user's machine state. Its mutex serializes all
// trigger handling for that user; users are independent of each other.
// refs counts dispatches currently holding the cursor and is guarded by the
// Engine's mutex, not this one.
type userCursor struct {
	mu      sync.Mutex
	refs    int
	builder builderCursor
	player  *playerCursor
}

func (c *userCursor) idle() bool {
	return c.builder.state == builderIdle && c.player == nil
}
