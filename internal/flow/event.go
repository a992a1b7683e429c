// Package flow implements the conversational core: the program builder and
// session player state machines. It consumes tagged events from a
// presentation adapter and produces abstract effects; it never talks to a
// transport directly.
package flow

import "github.com/google/uuid"

// Event is an inbound trigger from the presentation adapter. Exactly one
// concrete type per trigger; there is no free-form dispatch on payload shape.
type Event interface {
	isEvent()
}

// StartBuilder begins the program-authoring flow.
type StartBuilder struct{}

// SelectDay picks a weekday while the builder is selecting a day.
type SelectDay struct {
	Day string
}

// SubmitExerciseLine carries one free-text line while adding exercises.
// MediaRef is an out-of-band media reference (e.g. an uploaded animation id)
// accompanying the line; a trailing media token inside Text takes precedence.
type SubmitExerciseLine struct {
	Text     string
	MediaRef string
}

// UndoLast removes the most recently added exercise of the program being
// built.
type UndoLast struct{}

// FinishBuilding ends the adding flow and emits the summary.
type FinishBuilding struct{}

// CancelBuilder aborts the authoring flow. Exercises already committed stay.
type CancelBuilder struct{}

// ProgramAction is a choice from the existing-program decision menu.
type ProgramAction string

const (
	ActionView      ProgramAction = "view"
	ActionEdit      ProgramAction = "edit"
	ActionDelete    ProgramAction = "delete"
	ActionOverwrite ProgramAction = "overwrite"
	// ActionAppend re-enters the adding flow on an existing program,
	// appending after its current exercises.
	ActionAppend ProgramAction = "append"
)

// ChooseProgramAction resolves the conflict menu shown when a day already has
// a program.
type ChooseProgramAction struct {
	ProgramID uuid.UUID
	Action    ProgramAction
}

// EditExercise marks one exercise as the editing target; the next valid line
// updates it in place.
type EditExercise struct {
	ExerciseID uuid.UUID
}

// DeleteExercise removes one exercise from its program.
type DeleteExercise struct {
	ExerciseID uuid.UUID
}

// GetPrograms lists the user's programs.
type GetPrograms struct{}

// StartSession begins playback of a program.
type StartSession struct {
	ProgramID uuid.UUID
}

// ExerciseDone advances playback past the current exercise.
type ExerciseDone struct{}

// SessionBack steps playback one exercise backward.
type SessionBack struct{}

// ResumeSession rebuilds the playback cursor from the persisted open session,
// e.g. after a process restart.
type ResumeSession struct{}

// RestElapsed fires when a scheduled rest interval has run out. Token must
// match the one issued when the rest was scheduled; stale tokens are ignored.
type RestElapsed struct {
	Token uuid.UUID
}

// SetRestSeconds changes the user's rest interval. Takes effect from the next
// rest onward.
type SetRestSeconds struct {
	Seconds int
}

func (StartBuilder) isEvent()        {}
func (SelectDay) isEvent()           {}
func (SubmitExerciseLine) isEvent()  {}
func (UndoLast) isEvent()            {}
func (FinishBuilding) isEvent()      {}
func (CancelBuilder) isEvent()       {}
func (ChooseProgramAction) isEvent() {}
func (EditExercise) isEvent()        {}
func (DeleteExercise) isEvent()      {}
func (GetPrograms) isEvent()         {}
func (StartSession) isEvent()        {}
func (ExerciseDone) isEvent()        {}
func (SessionBack) isEvent()         {}
func (ResumeSession) isEvent()       {}
func (RestElapsed) isEvent()         {}
func (SetRestSeconds) isEvent()      {}
