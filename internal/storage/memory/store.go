package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/streakly/internal/domain"
	"example.com/streakly/internal/repository"
	"example.com/streakly/internal/storage"
)

// Store keeps everything in process memory. It backs the tests and the
// "memory" storage mode, and implements both repository contracts.
type Store struct {
	mu       sync.Mutex
	tasks    []domain.Task // newest first
	settings map[string]int
	now      func() time.Time
}

func New() *Store {
	return &Store{
		settings: make(map[string]int),
		now:      time.Now,
	}
}

// SetNow pins the clock for tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, ownerID, text string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Task{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: domain.Day(s.now()),
	}
	s.tasks = append([]domain.Task{t}, s.tasks...)
	return t, nil
}

func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = completed
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) SetText(ctx context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Text = text
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) DailyGoal(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if goal, ok := s.settings[ownerID]; ok {
		return goal, nil
	}
	return repository.DefaultDailyGoal, nil
}

func (s *Store) SetDailyGoal(ctx context.Context, ownerID string, goal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[ownerID] = goal
	return nil
}
