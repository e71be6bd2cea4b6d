package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/streakly/internal/domain"
	"example.com/streakly/internal/feedback"
	"example.com/streakly/internal/history"
	"example.com/streakly/internal/repository"
)

const (
	completionMessageTTL = 2 * time.Second
	streakMessageTTL     = 3 * time.Second
)

// Manager orchestrates one owner's tasks: it caches repository contents,
// holds the daily goal, and re-derives history and streak wholesale on every
// mutation. Repository calls go first; a failure leaves every piece of local
// state untouched. The single Manager replaces the two parallel
// implementations the app used to carry, parameterized by the injected
// repositories instead.
type Manager struct {
	mu       sync.Mutex
	ownerID  string
	tasks    repository.TaskRepository
	settings repository.SettingsRepository
	fb       *feedback.Generator
	log      *logrus.Entry
	now      func() time.Time

	loaded  bool
	cache   []domain.Task
	goal    int
	history domain.History
	streak  int

	completionMsg messageSlot
	streakMsg     messageSlot

	editingID string
	editText  string
}

// messageSlot is a transient feedback message with a monotonic token. A
// scheduled clear carries the token it saw; if a newer message has bumped
// the token since, the stale clear leaves the slot alone.
type messageSlot struct {
	msg   string
	token uint64
}

// Snapshot is the visible state handed to the presentation layer.
type Snapshot struct {
	Tasks             []domain.Task  `json:"tasks"`
	DailyGoal         int            `json:"daily_goal"`
	History           domain.History `json:"history"`
	Streak            int            `json:"streak"`
	CompletionMessage string         `json:"completion_message,omitempty"`
	StreakMessage     string         `json:"streak_message,omitempty"`
	EditingID         string         `json:"editing_id,omitempty"`
	EditText          string         `json:"edit_text,omitempty"`
}

func NewManager(ownerID string, tasks repository.TaskRepository, settings repository.SettingsRepository, fb *feedback.Generator, log *logrus.Logger) *Manager {
	return &Manager{
		ownerID:  ownerID,
		tasks:    tasks,
		settings: settings,
		fb:       fb,
		log:      log.WithField("owner_id", ownerID),
		now:      time.Now,
		goal:     repository.DefaultDailyGoal,
		history:  domain.History{},
	}
}

// Load fills the cache and goal from the repositories. Idempotent; every
// operation calls it lazily. A settings failure keeps the default goal and
// is only logged, matching the task list being the state that matters.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLoaded(ctx)
}

func (m *Manager) ensureLoaded(ctx context.Context) error {
	if m.loaded {
		return nil
	}
	items, err := m.tasks.List(ctx, m.ownerID)
	if err != nil {
		m.log.WithError(err).Error("load tasks")
		return err
	}
	goal, err := m.settings.DailyGoal(ctx, m.ownerID)
	if err != nil {
		// Deliberately softer than the task-list failure above: the goal
		// has a safe fallback, so Load degrades to the default rather than
		// failing the whole session over a settings read.
		m.log.WithError(err).Warn("load settings, keeping default goal")
		goal = repository.DefaultDailyGoal
	}
	m.cache = items
	m.goal = goal
	m.loaded = true
	m.derive()
	return nil
}

// AddTask creates a task dated today and prepends it to the cache. Blank
// text is the HTTP boundary's job to reject.
func (m *Manager) AddTask(ctx context.Context, text string) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return domain.Task{}, err
	}
	created, err := m.tasks.Create(ctx, m.ownerID, strings.TrimSpace(text))
	if err != nil {
		m.log.WithError(err).Error("add task")
		return domain.Task{}, err
	}
	m.cache = append([]domain.Task{created}, m.cache...)
	m.derive()
	return created, nil
}

// ToggleTask flips completion. An id absent from the cache is a silent
// no-op. A false→true transition fires the completion message.
func (m *Manager) ToggleTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}
	idx := m.indexOf(id)
	if idx < 0 {
		return nil
	}
	wasCompleted := m.cache[idx].Completed
	if err := m.tasks.SetCompleted(ctx, id, !wasCompleted); err != nil {
		m.log.WithError(err).Error("toggle task")
		return err
	}
	m.cache[idx].Completed = !wasCompleted
	if !wasCompleted {
		m.setMessage(&m.completionMsg, m.fb.Completion(), completionMessageTTL)
	}
	m.derive()
	return nil
}

// DeleteTask removes by id; unknown ids are a no-op. The day's history
// entry disappears with its last task and the streak is recomputed from the
// next most recent day.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}
	idx := m.indexOf(id)
	if idx < 0 {
		return nil
	}
	if err := m.tasks.Remove(ctx, id); err != nil {
		m.log.WithError(err).Error("delete task")
		return err
	}
	m.cache = append(m.cache[:idx], m.cache[idx+1:]...)
	m.derive()
	return nil
}

// StartEditing puts the task into edit mode with its current text as the
// draft. At most one task edits at a time; starting a new edit abandons the
// previous draft without committing it.
func (m *Manager) StartEditing(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}
	m.editingID = id
	m.editText = m.cache[idx].Text
}

func (m *Manager) SetEditText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editingID == "" {
		return
	}
	m.editText = text
}

// SaveEdit commits the draft via the repository and returns to idle. A
// no-op when nothing is being edited.
func (m *Manager) SaveEdit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editingID == "" {
		return nil
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}
	text := strings.TrimSpace(m.editText)
	if err := m.tasks.SetText(ctx, m.editingID, text); err != nil {
		m.log.WithError(err).Error("save edit")
		return err
	}
	if idx := m.indexOf(m.editingID); idx >= 0 {
		m.cache[idx].Text = text
	}
	m.editingID = ""
	m.editText = ""
	return nil
}

func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editingID = ""
	m.editText = ""
}

// SetDailyGoal persists the goal, then re-derives the whole history: the
// new goal applies retroactively to every recorded day, so past days may
// gain or lose their qualifying status.
func (m *Manager) SetDailyGoal(ctx context.Context, goal int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := m.settings.SetDailyGoal(ctx, m.ownerID, goal); err != nil {
		m.log.WithError(err).Error("set daily goal")
		return err
	}
	m.goal = goal
	m.derive()
	return nil
}

// TasksByDay returns the cached tasks belonging to one calendar day.
func (m *Manager) TasksByDay(day string) []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	day = domain.NormalizeDay(day)
	var out []domain.Task
	for _, t := range m.cache {
		if domain.NormalizeDay(t.CreatedAt) == day {
			out = append(out, t)
		}
	}
	return out
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]domain.Task, len(m.cache))
	copy(tasks, m.cache)
	hist := make(domain.History, len(m.history))
	for k, v := range m.history {
		hist[k] = v
	}
	return Snapshot{
		Tasks:             tasks,
		DailyGoal:         m.goal,
		History:           hist,
		Streak:            m.streak,
		CompletionMessage: m.completionMsg.msg,
		StreakMessage:     m.streakMsg.msg,
		EditingID:         m.editingID,
		EditText:          m.editText,
	}
}

// derive recomputes history and streak wholesale from the cache and fires
// the streak message when the streak grew. Runs with the lock held.
func (m *Manager) derive() {
	m.history = history.Build(m.cache, m.goal)
	prev := m.streak
	m.streak = history.Streak(m.history, domain.Day(m.now()))
	if m.streak > prev && m.streak > 0 {
		m.setMessage(&m.streakMsg, m.fb.Streak(m.streak), streakMessageTTL)
	}
}

func (m *Manager) setMessage(slot *messageSlot, msg string, ttl time.Duration) {
	slot.token++
	token := slot.token
	slot.msg = msg
	time.AfterFunc(ttl, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if slot.token == token {
			slot.msg = ""
		}
	})
}

func (m *Manager) indexOf(id string) int {
	for i := range m.cache {
		if m.cache[i].ID == id {
			return i
		}
	}
	return -1
}
