package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler receives a rest resumption when its timer fires. Stale tokens are
// the handler's problem: the scheduler delivers whatever it armed.
type Handler func(ctx context.Context, userID int, token uuid.UUID)

// Scheduler arms in-process timers for rest intervals and persists them so a
// restart can re-arm whatever was still pending.
type Scheduler struct {
	state   *StateDB
	clock   Clock
	log     *slog.Logger
	handler Handler

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
	closed bool
}

// NewScheduler opens the state database under stateDir and returns a scheduler
// with no timers armed. Call SetHandler and then Restore before scheduling.
func NewScheduler(stateDir string, clock Clock, log *slog.Logger) (*Scheduler, error) {
	state, err := OpenStateDB(stateDir)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		state:  state,
		clock:  clock,
		log:    log,
		timers: make(map[uuid.UUID]*time.Timer),
	}, nil
}

// SetHandler installs the callback invoked when a timer fires. Must be called
// before Schedule or Restore.
func (s *Scheduler) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Schedule persists a resumption for userID at now+delay and arms a timer for
// it. The token identifies the rest; the handler decides whether it is still
// current when it fires.
func (s *Scheduler) Schedule(userID int, token uuid.UUID, delay time.Duration) error {
	fireAt := s.clock.Now().Add(delay)
	if err := s.state.Add(userID, token, fireAt); err != nil {
		return fmt.Errorf("persisting rest timer: %w", err)
	}
	s.arm(userID, token, delay)
	return nil
}

// Restore reloads persisted resumptions and re-arms them. Timers whose fire
// time already passed fire immediately.
func (s *Scheduler) Restore() error {
	pending, err := s.state.List()
	if err != nil {
		return fmt.Errorf("restoring rest timers: %w", err)
	}
	now := s.clock.Now()
	for _, p := range pending {
		delay := p.FireAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.log.Info("re-arming rest timer",
			"user_id", p.UserID, "token", p.Token, "delay", delay)
		s.arm(p.UserID, p.Token, delay)
	}
	return nil
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) arm(userID int, token uuid.UUID, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timers[token] = time.AfterFunc(delay, func() {
		s.fire(userID, token)
	})
}

func (s *Scheduler) fire(userID int, token uuid.UUID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, token)
	handler := s.handler
	s.mu.Unlock()

	if err := s.state.Remove(token); err != nil {
		s.log.Error("removing fired rest timer", "token", token, "error", err)
	}
	if handler == nil {
		s.log.Warn("rest timer fired with no handler installed", "token", token)
		return
	}
	handler(context.Background(), userID, token)
}

// Close stops all armed timers and closes the state database. Persisted rows
// for stopped timers remain, so a later Restore picks them up again.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	for token, t := range s.timers {
		t.Stop()
		delete(s.timers, token)
	}
	s.mu.Unlock()
	return s.state.Close()
}
