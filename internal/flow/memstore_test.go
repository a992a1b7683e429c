package flow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the state machine tests. It mirrors
// the real store's contract: absent rows come back nil/false, and failures
// can be injected through failNext.
type memStore struct {
	mu        sync.Mutex
	programs  map[uuid.UUID]models.Program
	exercises map[uuid.UUID]models.Exercise
	sessions  map[uuid.UUID]models.Session
	rest      map[int]int
	seq       int
	failNext  error
}

func newMemStore() *memStore {
	return &memStore{
		programs:  make(map[uuid.UUID]models.Program),
		exercises: make(map[uuid.UUID]models.Exercise),
		sessions:  make(map[uuid.UUID]models.Session),
		rest:      make(map[int]int),
	}
}

var _ Store = (*memStore)(nil)

func (m *memStore) fail() error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	return nil
}

func (m *memStore) CreateProgram(_ context.Context, userID int, day string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return uuid.Nil, err
	}
	m.seq++
	p := models.Program{ID: uuid.New(), UserID: userID, DayName: day, CreatedAt: time.Now().Add(time.Duration(m.seq) * time.Millisecond)}
	m.programs[p.ID] = p
	return p.ID, nil
}

func (m *memStore) FindProgram(_ context.Context, userID int, day string) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	var newest *models.Program
	for id := range m.programs {
		p := m.programs[id]
		if p.UserID != userID || p.DayName != day {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			cp := p
			newest = &cp
		}
	}
	return newest, nil
}

func (m *memStore) GetProgram(_ context.Context, id uuid.UUID) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	if p, ok := m.programs[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *memStore) ListPrograms(_ context.Context, userID int) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	newest := make(map[string]models.Program)
	for _, p := range m.programs {
		if p.UserID != userID {
			continue
		}
		if cur, ok := newest[p.DayName]; !ok || p.CreatedAt.After(cur.CreatedAt) {
			newest[p.DayName] = p
		}
	}
	var result []models.Program
	for _, p := range newest {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DayName < result[j].DayName })
	return result, nil
}

func (m *memStore) DeleteProgram(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return false, err
	}
	if _, ok := m.programs[id]; !ok {
		return false, nil
	}
	delete(m.programs, id)
	for exID, ex := range m.exercises {
		if ex.ProgramID == id {
			delete(m.exercises, exID)
		}
	}
	// Sessions cascade with their program, open ones included.
	for sID, s := range m.sessions {
		if s.ProgramID == id {
			delete(m.sessions, sID)
		}
	}
	return true, nil
}

func (m *memStore) OverwriteProgram(_ context.Context, oldID uuid.UUID) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	old, ok := m.programs[oldID]
	if !ok {
		return nil, nil
	}
	for exID, ex := range m.exercises {
		if ex.ProgramID == oldID {
			delete(m.exercises, exID)
		}
	}
	m.seq++
	p := models.Program{ID: uuid.New(), UserID: old.UserID, DayName: old.DayName, CreatedAt: time.Now().Add(time.Duration(m.seq) * time.Millisecond)}
	m.programs[p.ID] = p
	return &p, nil
}

func (m *memStore) ListExercises(_ context.Context, programID uuid.UUID) ([]models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.orderedExercises(programID), nil
}

func (m *memStore) orderedExercises(programID uuid.UUID) []models.Exercise {
	var result []models.Exercise
	for _, ex := range m.exercises {
		if ex.ProgramID == programID {
			result = append(result, ex)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

func (m *memStore) AppendExercise(_ context.Context, e models.Exercise) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return uuid.Nil, err
	}
	e.ID = uuid.New()
	m.exercises[e.ID] = e
	return e.ID, nil
}

func (m *memStore) UpdateExercise(_ context.Context, id uuid.UUID, name string, reps, sets int, weight float64, mediaRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return false, err
	}
	ex, ok := m.exercises[id]
	if !ok {
		return false, nil
	}
	ex.Name, ex.Reps, ex.Sets, ex.Weight, ex.MediaRef = name, reps, sets, weight, mediaRef
	m.exercises[id] = ex
	return true, nil
}

func (m *memStore) DeleteExercise(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return false, err
	}
	ex, ok := m.exercises[id]
	if !ok {
		return false, nil
	}
	delete(m.exercises, id)
	for otherID, other := range m.exercises {
		if other.ProgramID == ex.ProgramID && other.Position > ex.Position {
			other.Position--
			m.exercises[otherID] = other
		}
	}
	return true, nil
}

func (m *memStore) DeleteLastExercise(_ context.Context, programID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return false, err
	}
	ordered := m.orderedExercises(programID)
	if len(ordered) == 0 {
		return false, nil
	}
	delete(m.exercises, ordered[len(ordered)-1].ID)
	return true, nil
}

func (m *memStore) DeleteExercises(_ context.Context, programID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for id, ex := range m.exercises {
		if ex.ProgramID == programID {
			delete(m.exercises, id)
		}
	}
	return nil
}

func (m *memStore) OpenSession(_ context.Context, userID int, programID uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return uuid.Nil, err
	}
	for id, s := range m.sessions {
		if s.UserID == userID && !s.Closed {
			s.Closed = true
			m.sessions[id] = s
		}
	}
	s := models.Session{ID: uuid.New(), UserID: userID, ProgramID: programID, StartedAt: time.Now()}
	m.sessions[s.ID] = s
	return s.ID, nil
}

func (m *memStore) GetOpenSession(_ context.Context, userID int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	for _, s := range m.sessions {
		if s.UserID == userID && !s.Closed {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) AdvanceSession(_ context.Context, sessionID uuid.UUID, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.New("no such session")
	}
	s.CurrentIndex = index
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) CloseSession(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.New("no such session")
	}
	s.Closed = true
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) GetRestSeconds(_ context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return 0, err
	}
	if v, ok := m.rest[userID]; ok {
		return v, nil
	}
	m.rest[userID] = models.DefaultRestSeconds
	return models.DefaultRestSeconds, nil
}

func (m *memStore) SetRestSeconds(_ context.Context, userID, seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.rest[userID] = seconds
	return nil
}

// openSessionCount reports how many sessions are open for a user.
func (m *memStore) openSessionCount(userID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && !s.Closed {
			n++
		}
	}
	return n
}
