package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Engine owns the per-user cursors and routes events to the builder and
// player machines. All triggers for one user are handled strictly
// sequentially; different users proceed concurrently.
type Engine struct {
	store   Store
	log     *slog.Logger
	builder *Builder
	player  *Player

	mu      sync.Mutex
	cursors map[int]*userCursor
}

// New creates an Engine over the given store.
func New(store Store, log *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		log:     log,
		builder: &Builder{store: store, log: log},
		player:  &Player{store: store, log: log},
		cursors: make(map[int]*userCursor),
	}
}

// Dispatch runs one event through the user's state machine and returns the
// effects to execute. A non-nil error means a storage failure: the state did
// not advance and the effects contain a generic failure notice the adapter
// should still deliver.
func (e *Engine) Dispatch(ctx context.Context, userID int, ev Event) ([]Effect, error) {
	cur := e.acquire(userID)
	defer e.release(userID, cur)
	cur.mu.Lock()
	defer cur.mu.Unlock()

	effects, err := e.route(ctx, userID, cur, ev)
	if err != nil {
		e.log.Error("event failed", "user", userID, "event", fmt.Sprintf("%T", ev), "error", err)
		return []Effect{ErrorNotice{Message: "Something went wrong on our side. Please try that again."}},
			fmt.Errorf("dispatching %T: %w", ev, err)
	}

	return effects, nil
}

func (e *Engine) route(ctx context.Context, userID int, cur *userCursor, ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case StartBuilder:
		return e.builder.Start(cur)
	case SelectDay:
		return e.builder.SelectDay(ctx, userID, cur, ev.Day)
	case SubmitExerciseLine:
		return e.builder.HandleLine(ctx, userID, cur, ev.Text, ev.MediaRef)
	case UndoLast:
		return e.builder.Undo(ctx, cur)
	case FinishBuilding:
		return e.builder.Finish(cur)
	case CancelBuilder:
		return e.builder.Cancel(cur)
	case ChooseProgramAction:
		return e.builder.ProgramAction(ctx, userID, cur, ev.ProgramID, ev.Action)
	case EditExercise:
		return e.builder.EditOne(cur, ev.ExerciseID)
	case DeleteExercise:
		return e.builder.DeleteOne(ctx, cur, ev.ExerciseID)
	case GetPrograms:
		return e.builder.ListPrograms(ctx, userID)
	case StartSession:
		return e.player.Start(ctx, userID, cur, ev.ProgramID)
	case ExerciseDone:
		return e.player.Done(ctx, userID, cur)
	case SessionBack:
		return e.player.Back(ctx, cur)
	case ResumeSession:
		return e.player.Resume(ctx, userID, cur)
	case RestElapsed:
		return e.player.RestElapsed(ctx, userID, cur, ev.Token)
	case SetRestSeconds:
		return e.player.UpdateRestSeconds(ctx, userID, ev.Seconds)
	default:
		return guidance("I didn't understand that."), nil
	}
}

// acquire returns the user's cursor, creating it on first trigger, and pins
// it against release while this dispatch references it.
func (e *Engine) acquire(userID int) *userCursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur, ok := e.cursors[userID]
	if !ok {
		cur = &userCursor{}
		e.cursors[userID] = cur
	}
	cur.refs++
	return cur
}

// release unpins the cursor and drops the map entry once no dispatch holds it
// and both machines are back at their terminal state, so idle users do not
// accumulate. The refcount keeps a cursor another dispatch is already waiting
// on from being orphaned mid-release.
func (e *Engine) release(userID int, cur *userCursor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur.refs--
	if cur.refs == 0 && cur.idle() && e.cursors[userID] == cur {
		delete(e.cursors, userID)
	}
}
