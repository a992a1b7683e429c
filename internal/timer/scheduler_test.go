package timer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeClock returns a fixed instant so restore delays are predictable.
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time {
	return c.now
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStateRoundTrip verifies pending resumptions survive a close and reopen
// of the state database.
func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	state, err := OpenStateDB(dir)
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}

	token := uuid.New()
	fireAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := state.Add(7, token, fireAt); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	state, err = OpenStateDB(dir)
	if err != nil {
		t.Fatalf("reopening state db: %v", err)
	}
	defer state.Close()

	pending, err := state.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	p := pending[0]
	if p.UserID != 7 || p.Token != token || !p.FireAt.Equal(fireAt) {
		t.Errorf("pending = %+v", p)
	}

	if err := state.Remove(token); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	pending, err = state.List()
	if err != nil {
		t.Fatalf("List() after remove error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after remove = %d, want 0", len(pending))
	}
}

// TestScheduleFires verifies an armed timer invokes the handler with its user
// and token, and clears the persisted row.
func TestScheduleFires(t *testing.T) {
	dir := t.TempDir()
	s, err := NewScheduler(dir, RealClock{}, testLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer s.Close()

	fired := make(chan uuid.UUID, 1)
	s.SetHandler(func(ctx context.Context, userID int, token uuid.UUID) {
		if userID != 3 {
			t.Errorf("handler userID = %d, want 3", userID)
		}
		fired <- token
	})

	token := uuid.New()
	if err := s.Schedule(3, token, 10*time.Millisecond); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	select {
	case got := <-fired:
		if got != token {
			t.Errorf("fired token = %s, want %s", got, token)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	pending, err := s.state.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("persisted rows after fire = %d, want 0", len(pending))
	}
}

// TestRestoreReArmsOverdueTimer verifies a persisted resumption whose fire
// time already passed fires promptly after Restore.
func TestRestoreReArmsOverdueTimer(t *testing.T) {
	dir := t.TempDir()

	state, err := OpenStateDB(dir)
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	token := uuid.New()
	if err := state.Add(5, token, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err := NewScheduler(dir, RealClock{}, testLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer s.Close()

	fired := make(chan int, 1)
	s.SetHandler(func(ctx context.Context, userID int, token uuid.UUID) {
		fired <- userID
	})
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	select {
	case userID := <-fired:
		if userID != 5 {
			t.Errorf("fired userID = %d, want 5", userID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("restored timer never fired")
	}
}

// TestRestoreDelay verifies the restore delay is computed against the clock,
// not armed immediately, for timers still in the future.
func TestRestoreDelay(t *testing.T) {
	dir := t.TempDir()

	state, err := OpenStateDB(dir)
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	now := time.Now()
	if err := state.Add(1, uuid.New(), now.Add(time.Hour)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err := NewScheduler(dir, fakeClock{now: now}, testLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer s.Close()

	var mu sync.Mutex
	var firedEarly bool
	s.SetHandler(func(ctx context.Context, userID int, token uuid.UUID) {
		mu.Lock()
		firedEarly = true
		mu.Unlock()
	})
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", s.Pending())
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if firedEarly {
		t.Error("hour-long timer fired within 50ms of restore")
	}
}

// TestCloseStopsTimers verifies Close prevents pending timers from firing but
// keeps their rows for the next restore.
func TestCloseStopsTimers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewScheduler(dir, RealClock{}, testLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	fired := make(chan struct{}, 1)
	s.SetHandler(func(ctx context.Context, userID int, token uuid.UUID) {
		fired <- struct{}{}
	})
	if err := s.Schedule(1, uuid.New(), 20*time.Millisecond); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case <-fired:
		t.Error("timer fired after Close")
	case <-time.After(100 * time.Millisecond):
	}

	state, err := OpenStateDB(dir)
	if err != nil {
		t.Fatalf("reopening state db: %v", err)
	}
	defer state.Close()
	pending, err := state.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("persisted rows after close = %d, want 1", len(pending))
	}
}
