package repository

import (
	"context"

	"example.com/streakly/internal/domain"
)

// TaskRepository is the row-level contract against the hosted store.
// List returns tasks newest-first by creation. Failures are surfaced to the
// caller and never retried here.
type TaskRepository interface {
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, ownerID, text string) (domain.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	SetText(ctx context.Context, id, text string) error
	Remove(ctx context.Context, id string) error
}
