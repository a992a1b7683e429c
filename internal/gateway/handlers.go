package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/repcoach/internal/flow"
)

// effectPayload is the wire form of one flow effect, tagged by type:
// "screen", "rest_scheduled" or "error".
type effectPayload struct {
	Type        string        `json:"type"`
	Text        string        `json:"text,omitempty"`
	MediaRef    string        `json:"media_ref,omitempty"`
	Choices     []flow.Choice `json:"choices,omitempty"`
	RestSeconds int           `json:"rest_seconds,omitempty"`
	Message     string        `json:"message,omitempty"`
}

func (s *Server) handleBuilderStart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "builder_start", flow.StartBuilder{})
}

func (s *Server) handleBuilderDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day string `json:"day"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.dispatch(w, r, "builder_day", flow.SelectDay{Day: req.Day})
}

func (s *Server) handleBuilderLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		MediaRef string `json:"media_ref"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.dispatch(w, r, "builder_line", flow.SubmitExerciseLine{Text: req.Text, MediaRef: req.MediaRef})
}

func (s *Server) handleBuilderUndo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "builder_undo", flow.UndoLast{})
}

func (s *Server) handleBuilderFinish(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "builder_finish", flow.FinishBuilding{})
}

func (s *Server) handleBuilderCancel(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "builder_cancel", flow.CancelBuilder{})
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "programs_list", flow.GetPrograms{})
}

func (s *Server) handleProgramAction(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	action := flow.ProgramAction(req.Action)
	switch action {
	case flow.ActionView, flow.ActionEdit, flow.ActionDelete, flow.ActionOverwrite, flow.ActionAppend:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action: " + req.Action})
		return
	}
	s.dispatch(w, r, "program_action", flow.ChooseProgramAction{ProgramID: programID, Action: action})
}

func (s *Server) handleExerciseEdit(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.dispatch(w, r, "exercise_edit", flow.EditExercise{ExerciseID: exerciseID})
}

func (s *Server) handleExerciseDelete(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.dispatch(w, r, "exercise_delete", flow.DeleteExercise{ExerciseID: exerciseID})
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID uuid.UUID `json:"program_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.dispatch(w, r, "session_start", flow.StartSession{ProgramID: req.ProgramID})
}

func (s *Server) handleSessionDone(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "session_done", flow.ExerciseDone{})
}

func (s *Server) handleSessionBack(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "session_back", flow.SessionBack{})
}

func (s *Server) handleSessionResume(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, "session_resume", flow.ResumeSession{})
}

func (s *Server) handleGetRest(w http.ResponseWriter, r *http.Request) {
	seconds, err := s.store.GetRestSeconds(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("reading rest settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read settings"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rest_seconds": seconds})
}

func (s *Server) handlePutRest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.dispatch(w, r, "settings_rest", flow.SetRestSeconds{Seconds: req.Seconds})
}

// dispatch runs one event through the engine, executes ScheduleResume effects
// against the timer scheduler and returns the rest as the JSON response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, name string, ev flow.Event) {
	userID := userIDFromContext(r)
	effects, err := s.engine.Dispatch(r.Context(), userID, ev)
	s.metrics.observe(name, err)

	payloads := make([]effectPayload, 0, len(effects))
	for _, eff := range effects {
		switch e := eff.(type) {
		case flow.RenderScreen:
			payloads = append(payloads, effectPayload{
				Type:     "screen",
				Text:     e.Text,
				MediaRef: e.MediaRef,
				Choices:  e.Choices,
			})
		case flow.ScheduleResume:
			if s.rests != nil {
				if schedErr := s.rests.Schedule(userID, e.Token, e.Delay); schedErr != nil {
					s.log.Error("scheduling rest", "user_id", userID, "error", schedErr)
					// Don't claim a timer that never got armed; the
					// user can tap resume to carry on.
					payloads = append(payloads, effectPayload{
						Type:    "error",
						Message: "The rest timer could not be started. Use resume to continue your workout.",
					})
					continue
				}
			}
			payloads = append(payloads, effectPayload{
				Type:        "rest_scheduled",
				RestSeconds: int(e.Delay.Seconds()),
			})
		case flow.ErrorNotice:
			payloads = append(payloads, effectPayload{
				Type:    "error",
				Message: e.Message,
			})
		}
	}

	status := http.StatusOK
	if err != nil {
		s.log.Error("dispatching event", "event", name, "user_id", userID, "error", err)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"effects": payloads})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
