package repository

import "context"

// DefaultDailyGoal applies when an owner has no settings row yet.
const DefaultDailyGoal = 5

// SettingsRepository persists the per-owner daily goal.
// SetDailyGoal has upsert semantics: create the row if absent, else update.
type SettingsRepository interface {
	DailyGoal(ctx context.Context, ownerID string) (int, error)
	SetDailyGoal(ctx context.Context, ownerID string, goal int) error
}
