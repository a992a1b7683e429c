package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/repcoach/internal/flow"
)

// Store is the persistence surface the gateway needs: everything the state
// machines use plus login resolution.
type Store interface {
	flow.Store
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// RestScheduler arms a deferred rest-elapsed delivery. Satisfied by
// *timer.Scheduler.
type RestScheduler interface {
	Schedule(userID int, token uuid.UUID, delay time.Duration) error
	Pending() int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	engine  *flow.Engine
	rests   RestScheduler
	log     *slog.Logger
	apiKey  string
	metrics *metrics
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, engine *flow.Engine, rests RestScheduler, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		engine:  engine,
		rests:   rests,
		log:     log,
		apiKey:  apiKey,
		metrics: newMetrics(rests),
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(Identity(s.store, s.log))

		// Program authoring
		r.Post("/builder/start", s.handleBuilderStart)
		r.Post("/builder/day", s.handleBuilderDay)
		r.Post("/builder/line", s.handleBuilderLine)
		r.Post("/builder/undo", s.handleBuilderUndo)
		r.Post("/builder/finish", s.handleBuilderFinish)
		r.Post("/builder/cancel", s.handleBuilderCancel)

		// Program management
		r.Get("/programs", s.handleListPrograms)
		r.Post("/programs/{id}/action", s.handleProgramAction)
		r.Post("/exercises/{id}/edit", s.handleExerciseEdit)
		r.Post("/exercises/{id}/delete", s.handleExerciseDelete)

		// Guided sessions
		r.Post("/sessions/start", s.handleSessionStart)
		r.Post("/sessions/done", s.handleSessionDone)
		r.Post("/sessions/back", s.handleSessionBack)
		r.Post("/sessions/resume", s.handleSessionResume)

		// Settings
		r.Get("/settings/rest", s.handleGetRest)
		r.Put("/settings/rest", s.handlePutRest)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
