package usecase

import (
	"sync"

	"github.com/sirupsen/logrus"

	"example.com/streakly/internal/feedback"
	"example.com/streakly/internal/repository"
)

// Registry hands out one Manager per owner so transient state (feedback
// slots, edit mode, the previous streak) survives across requests.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager

	tasks    repository.TaskRepository
	settings repository.SettingsRepository
	fb       *feedback.Generator
	log      *logrus.Logger
}

func NewRegistry(tasks repository.TaskRepository, settings repository.SettingsRepository, fb *feedback.Generator, log *logrus.Logger) *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
		tasks:    tasks,
		settings: settings,
		fb:       fb,
		log:      log,
	}
}

// For returns the owner's Manager, creating it on first use.
func (r *Registry) For(ownerID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[ownerID]; ok {
		return m
	}
	m := NewManager(ownerID, r.tasks, r.settings, r.fb, r.log)
	r.managers[ownerID] = m
	return m
}

// Drop forgets the owner's Manager, e.g. after sign-out.
func (r *Registry) Drop(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, ownerID)
}
