package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// Builder drives the program-authoring flow:
// Idle -> SelectingDay -> AddingExercises -> Idle, with a decision menu when
// the chosen day already has a program and a per-exercise edit sub-flow.
type Builder struct {
	store Store
	log   *slog.Logger
}

// finishTokens and undoTokens are the free-text equivalents of the
// FinishBuilding and UndoLast triggers, accepted inside an exercise line.
var finishTokens = map[string]bool{"done": true, "done.": true, "finish": true}

var undoTokens = map[string]bool{"undo": true, "back": true}

// Start enters day selection.
func (b *Builder) Start(cur *userCursor) ([]Effect, error) {
	cur.builder.reset()
	cur.builder.state = builderSelectingDay

	choices := make([]Choice, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		choices = append(choices, Choice{Label: day, Data: "day_" + day})
	}
	return []Effect{RenderScreen{
		Text:    "Pick a weekday for the new program:",
		Choices: choices,
	}}, nil
}

// SelectDay resolves a weekday pick. A day that already has a program yields
// the view/edit/delete/overwrite decision menu and returns the machine to
// Idle; otherwise a fresh program is created and adding begins.
func (b *Builder) SelectDay(ctx context.Context, userID int, cur *userCursor, day string) ([]Effect, error) {
	if cur.builder.state != builderSelectingDay {
		return guidance("Start a new program first, then pick a day."), nil
	}
	if !models.ValidDay(day) {
		return guidance(fmt.Sprintf("%q is not a weekday I know. Pick one of the seven buttons.", day)), nil
	}

	existing, err := b.store.FindProgram(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		cur.builder.reset()
		return []Effect{RenderScreen{
			Text: fmt.Sprintf("There is already a program for %s. What would you like to do?", day),
			Choices: []Choice{
				{Label: "View program", Data: programChoice(ActionView, existing.ID)},
				{Label: "Edit program", Data: programChoice(ActionEdit, existing.ID)},
				{Label: "Delete program", Data: programChoice(ActionDelete, existing.ID)},
				{Label: "Overwrite (start fresh)", Data: programChoice(ActionOverwrite, existing.ID)},
				{Label: "Back", Data: "menu_back"},
			},
		}}, nil
	}

	programID, err := b.store.CreateProgram(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if err := b.store.DeleteExercises(ctx, programID); err != nil {
		return nil, err
	}

	cur.builder = builderCursor{state: builderAdding, programID: programID, day: day}
	b.log.Info("program created", "user", userID, "day", day, "program", programID)

	return []Effect{RenderScreen{
		Text: fmt.Sprintf("New program for %s created.\n\nSend exercises one per line.\n%s\nSend \"done\" when finished or \"undo\" to drop the last one.", day, lineFormatHint),
	}}, nil
}

// HandleLine processes one free-text line while adding: a finish token, an
// undo token, or an exercise specification. mediaRef carries an out-of-band
// media reference (animation upload); a trailing media token in the line
// itself wins over it.
func (b *Builder) HandleLine(ctx context.Context, userID int, cur *userCursor, text, mediaRef string) ([]Effect, error) {
	if cur.builder.state != builderAdding {
		return guidance("No program is being built right now. Start a new program first."), nil
	}

	trimmed := strings.ToLower(strings.TrimSpace(text))
	if finishTokens[trimmed] {
		return b.Finish(cur)
	}
	if undoTokens[trimmed] {
		return b.Undo(ctx, cur)
	}

	if trimmed == "" && mediaRef != "" {
		return guidance("You sent media without a caption. Put the exercise line in the caption, e.g. \"Bench Press 12 3 60\"."), nil
	}

	line, err := ParseExerciseLine(text)
	if err != nil {
		if v, ok := err.(*ValidationError); ok {
			return guidance(v.Message), nil
		}
		return nil, err
	}
	if line.MediaRef == "" {
		line.MediaRef = mediaRef
	}

	// Edit sub-flow: a pending editing target absorbs the line as an
	// in-place update. The machine deliberately stays in the adding state
	// afterwards so several exercises can be edited back to back.
	if cur.builder.editingID != uuid.Nil {
		target := cur.builder.editingID
		cur.builder.editingID = uuid.Nil
		ok, err := b.store.UpdateExercise(ctx, target, line.Name, line.Reps, line.Sets, line.Weight, line.MediaRef)
		if err != nil {
			return nil, err
		}
		if !ok {
			return notFound("That exercise no longer exists."), nil
		}
		return []Effect{RenderScreen{
			Text: fmt.Sprintf("Updated: %s", formatExercise(line.Name, line.Reps, line.Sets, line.Weight)),
		}}, nil
	}

	if cur.builder.programID == uuid.Nil {
		return guidance("No program is open. Start a new program or pick one to edit first."), nil
	}

	position := cur.builder.count
	_, err = b.store.AppendExercise(ctx, models.Exercise{
		ProgramID: cur.builder.programID,
		Name:      line.Name,
		Reps:      line.Reps,
		Sets:      line.Sets,
		Weight:    line.Weight,
		MediaRef:  line.MediaRef,
		Position:  position,
	})
	if err != nil {
		return nil, err
	}
	cur.builder.count = position + 1

	return []Effect{RenderScreen{
		Text: fmt.Sprintf("Added: %s\nSend the next exercise, \"undo\", or \"done\".",
			formatExercise(line.Name, line.Reps, line.Sets, line.Weight)),
	}}, nil
}

// Undo drops the most recently added exercise. On an empty program this is a
// reported no-op, never an error.
func (b *Builder) Undo(ctx context.Context, cur *userCursor) ([]Effect, error) {
	if cur.builder.state != builderAdding || cur.builder.programID == uuid.Nil {
		return guidance("No program is being built right now."), nil
	}
	removed, err := b.store.DeleteLastExercise(ctx, cur.builder.programID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return []Effect{RenderScreen{Text: "There is no exercise to remove."}}, nil
	}
	if cur.builder.count > 0 {
		cur.builder.count--
	}
	return []Effect{RenderScreen{
		Text: "Removed the last exercise. Keep adding, or send \"done\".",
	}}, nil
}

// Finish leaves the adding flow. Exercises are persisted per line, so there
// is nothing left to save; the summary reports the final count.
func (b *Builder) Finish(cur *userCursor) ([]Effect, error) {
	if cur.builder.state != builderAdding {
		return guidance("No program is being built right now."), nil
	}
	day := cur.builder.day
	count := cur.builder.count
	cur.builder.reset()

	label := "exercises"
	if count == 1 {
		label = "exercise"
	}
	if day == "" {
		return []Effect{RenderScreen{Text: fmt.Sprintf("Program saved with %d %s.", count, label)}}, nil
	}
	return []Effect{RenderScreen{Text: fmt.Sprintf("Program for %s saved with %d %s.", day, count, label)}}, nil
}

// Cancel clears all transient authoring state. Already-committed exercises
// are not rolled back.
func (b *Builder) Cancel(cur *userCursor) ([]Effect, error) {
	cur.builder.reset()
	return []Effect{RenderScreen{Text: "Cancelled."}}, nil
}

// ProgramAction routes a decision-menu choice for an existing program.
func (b *Builder) ProgramAction(ctx context.Context, userID int, cur *userCursor, programID uuid.UUID, action ProgramAction) ([]Effect, error) {
	program, err := b.store.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return notFound("That program no longer exists."), nil
	}

	switch action {
	case ActionView:
		summary, err := b.programSummary(ctx, programID)
		if err != nil {
			return nil, err
		}
		return []Effect{RenderScreen{
			Text: fmt.Sprintf("Program for %s:\n\n%s", program.DayName, summary),
			Choices: []Choice{
				{Label: "Edit", Data: programChoice(ActionEdit, programID)},
				{Label: "Overwrite", Data: programChoice(ActionOverwrite, programID)},
				{Label: "Back", Data: "menu_back"},
			},
		}}, nil

	case ActionEdit:
		exercises, err := b.store.ListExercises(ctx, programID)
		if err != nil {
			return nil, err
		}
		choices := make([]Choice, 0, len(exercises)*2+2)
		for _, ex := range exercises {
			choices = append(choices,
				Choice{Label: "Edit: " + ex.Name, Data: "ex_edit_" + ex.ID.String()},
				Choice{Label: "Delete: " + ex.Name, Data: "ex_delete_" + ex.ID.String()},
			)
		}
		choices = append(choices,
			Choice{Label: "Add a new exercise", Data: programChoice(ActionAppend, programID)},
			Choice{Label: "Back", Data: "menu_back"},
		)
		return []Effect{RenderScreen{
			Text:    fmt.Sprintf("Editing the %s program — pick an exercise:", program.DayName),
			Choices: choices,
		}}, nil

	case ActionDelete:
		if _, err := b.store.DeleteProgram(ctx, programID); err != nil {
			return nil, err
		}
		// The delete cascades to the program's sessions, so a workout
		// running on it is gone too; drop its cursor with it.
		if cur.player != nil && cur.player.programID == programID {
			cur.player = nil
		}
		b.log.Info("program deleted", "user", userID, "program", programID)
		return []Effect{RenderScreen{Text: fmt.Sprintf("The %s program is gone.", program.DayName)}}, nil

	case ActionOverwrite:
		replacement, err := b.store.OverwriteProgram(ctx, programID)
		if err != nil {
			return nil, err
		}
		if replacement == nil {
			return notFound("That program no longer exists."), nil
		}
		cur.builder = builderCursor{state: builderAdding, programID: replacement.ID, day: replacement.DayName}
		b.log.Info("program overwritten", "user", userID, "old", programID, "new", replacement.ID)
		return []Effect{RenderScreen{
			Text: fmt.Sprintf("Fresh program for %s ready. Send exercises one per line; \"done\" when finished.", replacement.DayName),
		}}, nil

	case ActionAppend:
		exercises, err := b.store.ListExercises(ctx, programID)
		if err != nil {
			return nil, err
		}
		cur.builder = builderCursor{state: builderAdding, programID: programID, day: program.DayName, count: len(exercises)}
		return []Effect{RenderScreen{
			Text: fmt.Sprintf("Adding to the %s program (%d so far).\n%s", program.DayName, len(exercises), lineFormatHint),
		}}, nil

	default:
		return guidance(fmt.Sprintf("Unknown action %q.", string(action))), nil
	}
}

// EditOne arms the edit sub-flow: the next valid exercise line replaces the
// target in place.
func (b *Builder) EditOne(cur *userCursor, exerciseID uuid.UUID) ([]Effect, error) {
	cur.builder.editingID = exerciseID
	cur.builder.state = builderAdding
	return []Effect{RenderScreen{
		Text: "Send the replacement line for that exercise.\n" + lineFormatHint,
	}}, nil
}

// DeleteOne removes a single exercise picked from the edit menu.
func (b *Builder) DeleteOne(ctx context.Context, cur *userCursor, exerciseID uuid.UUID) ([]Effect, error) {
	ok, err := b.store.DeleteExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notFound("That exercise no longer exists."), nil
	}
	if cur.builder.state == builderAdding && cur.builder.count > 0 {
		cur.builder.count--
	}
	return []Effect{RenderScreen{Text: "Exercise removed."}}, nil
}

// ListPrograms renders the user's programs with view choices.
func (b *Builder) ListPrograms(ctx context.Context, userID int) ([]Effect, error) {
	programs, err := b.store.ListPrograms(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return []Effect{RenderScreen{Text: "You have no programs yet. Start one to get going."}}, nil
	}

	var sb strings.Builder
	sb.WriteString("Your programs:\n")
	choices := make([]Choice, 0, len(programs)+1)
	for _, p := range programs {
		fmt.Fprintf(&sb, "- %s\n", p.DayName)
		choices = append(choices, Choice{Label: p.DayName, Data: programChoice(ActionView, p.ID)})
	}
	choices = append(choices, Choice{Label: "Back", Data: "menu_back"})
	return []Effect{RenderScreen{Text: sb.String(), Choices: choices}}, nil
}

func (b *Builder) programSummary(ctx context.Context, programID uuid.UUID) (string, error) {
	exercises, err := b.store.ListExercises(ctx, programID)
	if err != nil {
		return "", err
	}
	if len(exercises) == 0 {
		return "This program has no exercises yet.", nil
	}
	var sb strings.Builder
	for i, ex := range exercises {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, formatExercise(ex.Name, ex.Reps, ex.Sets, ex.Weight))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func programChoice(action ProgramAction, id uuid.UUID) string {
	return fmt.Sprintf("program_%s_%s", action, id)
}

func formatExercise(name string, reps, sets int, weight float64) string {
	return fmt.Sprintf("%s — %d reps × %d sets — %s", name, reps, sets, formatWeight(weight))
}

func formatWeight(weight float64) string {
	if weight > 0 {
		return fmt.Sprintf("%g kg", weight)
	}
	return "no added weight"
}

// guidance renders corrective instructions without changing state.
func guidance(text string) []Effect {
	return []Effect{RenderScreen{Text: text}}
}

// notFound reports a stale reference and points back to a safe menu.
func notFound(text string) []Effect {
	return []Effect{RenderScreen{
		Text:    text,
		Choices: []Choice{{Label: "Back", Data: "menu_back"}},
	}}
}
