package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repcoach/internal/models"
)

type programWithExercises struct {
	models.Program
	Exercises []models.Exercise `json:"exercises"`
}

func (h *handlers) programs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	programs, err := h.ds.ListPrograms(ctx, uid)
	if err != nil {
		return nil, err
	}

	full := make([]programWithExercises, 0, len(programs))
	for _, p := range programs {
		exercises, err := h.ds.ListExercises(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		full = append(full, programWithExercises{Program: p, Exercises: exercises})
	}

	data, err := json.Marshal(full)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
