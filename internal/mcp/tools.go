package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repcoach/internal/models"
)

// --- Tool definitions ---

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List the user's saved workout programs, one per weekday. Returns program IDs, day names and exercise counts."),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Retrieve one workout program with its full ordered exercise list (name, reps, sets, weight, media reference)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Program ID (UUID)")),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Get the currently running guided session, if any: its program, position and the exercise the user is on."),
)

var toolGetRestSettings = mcp.NewTool("get_rest_settings",
	mcp.WithDescription("Get the user's rest interval between exercises, in seconds."),
)

// --- Tool handlers ---

type programSummary struct {
	models.Program
	ExerciseCount int `json:"exercise_count"`
}

func (h *handlers) listPrograms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	programs, err := h.ds.ListPrograms(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	summaries := make([]programSummary, 0, len(programs))
	for _, p := range programs {
		exercises, err := h.ds.ListExercises(ctx, p.ID)
		if err != nil {
			h.log.Error("mcp list_programs exercises", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		summaries = append(summaries, programSummary{Program: p, ExerciseCount: len(exercises)})
	}

	result, err := mcp.NewToolResultJSON(summaries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid program ID: " + err.Error()), nil
	}

	program, err := h.ds.GetProgram(ctx, id)
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if program == nil {
		return mcp.NewToolResultError("program not found"), nil
	}

	exercises, err := h.ds.ListExercises(ctx, id)
	if err != nil {
		h.log.Error("mcp get_program exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"program":   program,
		"exercises": exercises,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	session, err := h.ds.GetOpenSession(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if session == nil {
		result, err := mcp.NewToolResultJSON(map[string]any{"active": false})
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}

	program, err := h.ds.GetProgram(ctx, session.ProgramID)
	if err != nil {
		h.log.Error("mcp get_active_session program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	exercises, err := h.ds.ListExercises(ctx, session.ProgramID)
	if err != nil {
		h.log.Error("mcp get_active_session exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	payload := map[string]any{
		"active":  true,
		"session": session,
		"program": program,
		"total":   len(exercises),
	}
	if session.CurrentIndex < len(exercises) {
		payload["current_exercise"] = exercises[session.CurrentIndex]
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRestSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	seconds, err := h.ds.GetRestSeconds(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_rest_settings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]int{"rest_seconds": seconds})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
