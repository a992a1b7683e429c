package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Player drives playback of a program:
// NotStarted -> Presenting(i) -> Resting(i) -> Presenting(i+1) ... -> Completed.
// The rest wait is a scheduled continuation, never a blocked goroutine.
type Player struct {
	store Store
	log   *slog.Logger
}

// Start opens a session on the chosen program and presents its first
// exercise. A program without exercises is rejected and nothing starts.
func (p *Player) Start(ctx context.Context, userID int, cur *userCursor, programID uuid.UUID) ([]Effect, error) {
	program, err := p.store.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return notFound("That program no longer exists."), nil
	}

	exercises, err := p.store.ListExercises(ctx, programID)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return guidance("This program has no exercises. Add some before starting a workout."), nil
	}

	sessionID, err := p.store.OpenSession(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	cur.player = &playerCursor{
		sessionID: sessionID,
		programID: programID,
		exercises: exercises,
		index:     0,
	}
	p.log.Info("session started", "user", userID, "program", programID, "session", sessionID)

	return p.present(cur.player), nil
}

// Done advances past the current exercise. The new index is persisted before
// anything is acknowledged; completion closes the session and schedules no
// rest.
func (p *Player) Done(ctx context.Context, userID int, cur *userCursor) ([]Effect, error) {
	pc := cur.player
	if pc == nil {
		return guidance("No workout is running. Start one, or resume if you were interrupted."), nil
	}

	next := pc.index + 1
	if err := p.store.AdvanceSession(ctx, pc.sessionID, next); err != nil {
		return nil, err
	}

	if next == len(pc.exercises) {
		if err := p.store.CloseSession(ctx, pc.sessionID); err != nil {
			return nil, err
		}
		p.log.Info("session completed", "user", userID, "session", pc.sessionID)
		cur.player = nil
		return []Effect{RenderScreen{
			Text: "Workout complete. Nicely done — rest up!",
		}}, nil
	}

	// Rest seconds are read fresh on every rest entry so a settings change
	// mid-session applies from the next rest onward.
	restSeconds, err := p.store.GetRestSeconds(ctx, userID)
	if err != nil {
		return nil, err
	}

	pc.index = next
	pc.resting = true
	pc.restToken = uuid.New()

	return []Effect{
		RenderScreen{Text: fmt.Sprintf("Rest for %d seconds.", restSeconds)},
		ScheduleResume{Delay: time.Duration(restSeconds) * time.Second, Token: pc.restToken},
	}, nil
}

// Back steps one exercise backward. At the first exercise it is a reported
// no-op.
func (p *Player) Back(ctx context.Context, cur *userCursor) ([]Effect, error) {
	pc := cur.player
	if pc == nil {
		return guidance("No workout is running."), nil
	}
	if pc.index == 0 {
		return []Effect{RenderScreen{Text: "You are already at the start of the session."}}, nil
	}

	prev := pc.index - 1
	if err := p.store.AdvanceSession(ctx, pc.sessionID, prev); err != nil {
		return nil, err
	}
	pc.index = prev
	// Stepping back invalidates any pending rest for the old position.
	pc.resting = false
	pc.restToken = uuid.Nil

	return p.present(pc), nil
}

// RestElapsed resumes presentation after a rest. Tokens that no longer match
// the cursor are stale (the user moved on or the session ended) and are
// dropped silently. A nil cursor is not stale by itself: a restart wipes the
// in-memory state while the scheduler re-arms its persisted timers, so the
// cursor is rebuilt from the open session first. The scheduler only ever
// fires tokens it issued, which is what vouches for the token on that path.
func (p *Player) RestElapsed(ctx context.Context, userID int, cur *userCursor, token uuid.UUID) ([]Effect, error) {
	pc := cur.player
	if pc == nil {
		rebuilt, err := p.rehydrate(ctx, userID, token)
		if err != nil {
			return nil, err
		}
		if rebuilt == nil {
			p.log.Debug("stale rest token ignored", "user", userID, "token", token)
			return nil, nil
		}
		cur.player = rebuilt
		pc = rebuilt
		p.log.Info("session rehydrated by rest timer", "user", userID, "session", pc.sessionID, "index", pc.index)
	}
	if !pc.resting || pc.restToken != token {
		p.log.Debug("stale rest token ignored", "user", userID, "token", token)
		return nil, nil
	}
	pc.resting = false
	pc.restToken = uuid.Nil

	effects := []Effect{RenderScreen{Text: "Rest is over — ready for the next one?"}}
	return append(effects, p.present(pc)...), nil
}

// rehydrate rebuilds a resting cursor from the persisted open session, or
// returns nil when there is nothing to resume.
func (p *Player) rehydrate(ctx context.Context, userID int, token uuid.UUID) (*playerCursor, error) {
	session, err := p.store.GetOpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	exercises, err := p.store.ListExercises(ctx, session.ProgramID)
	if err != nil {
		return nil, err
	}
	if session.CurrentIndex >= len(exercises) {
		return nil, nil
	}
	return &playerCursor{
		sessionID: session.ID,
		programID: session.ProgramID,
		exercises: exercises,
		index:     session.CurrentIndex,
		resting:   true,
		restToken: token,
	}, nil
}

// Resume rebuilds the playback cursor from the persisted open session, e.g.
// after a crash wiped the in-memory state. With a live cursor it simply
// re-presents the current exercise.
func (p *Player) Resume(ctx context.Context, userID int, cur *userCursor) ([]Effect, error) {
	if cur.player != nil {
		return p.present(cur.player), nil
	}

	session, err := p.store.GetOpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return guidance("There is no workout to resume. Start a new one."), nil
	}

	exercises, err := p.store.ListExercises(ctx, session.ProgramID)
	if err != nil {
		return nil, err
	}

	// An index at or past the end means the session finished (or its
	// program shrank) while we were away; close it out.
	if session.CurrentIndex >= len(exercises) {
		if err := p.store.CloseSession(ctx, session.ID); err != nil {
			return nil, err
		}
		return []Effect{RenderScreen{Text: "That workout was already finished. Start a new one when ready."}}, nil
	}

	cur.player = &playerCursor{
		sessionID: session.ID,
		programID: session.ProgramID,
		exercises: exercises,
		index:     session.CurrentIndex,
	}
	p.log.Info("session resumed", "user", userID, "session", session.ID, "index", session.CurrentIndex)

	return p.present(cur.player), nil
}

// UpdateRestSeconds stores a new rest interval. It affects the next rest, not
// one already running.
func (p *Player) UpdateRestSeconds(ctx context.Context, userID int, seconds int) ([]Effect, error) {
	if seconds <= 0 || seconds > 3600 {
		return guidance("Rest must be between 1 and 3600 seconds."), nil
	}
	if err := p.store.SetRestSeconds(ctx, userID, seconds); err != nil {
		return nil, err
	}
	return []Effect{RenderScreen{Text: fmt.Sprintf("Rest interval set to %d seconds.", seconds)}}, nil
}

// present renders the current exercise with its playback controls.
func (p *Player) present(pc *playerCursor) []Effect {
	ex := pc.exercises[pc.index]
	text := fmt.Sprintf("Exercise %d of %d\n\n%s\nReps: %d\nSets: %d\nWeight: %s\n\nHit \"Done\" when you finish.",
		pc.index+1, len(pc.exercises), ex.Name, ex.Reps, ex.Sets, formatWeight(ex.Weight))

	return []Effect{RenderScreen{
		Text:     text,
		MediaRef: ex.MediaRef,
		Choices: []Choice{
			{Label: "Done", Data: "exercise_done"},
			{Label: "Back", Data: "session_back"},
		},
	}}
}
