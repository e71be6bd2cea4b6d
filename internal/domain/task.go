package domain

import "time"

const DayFormat = "2006-01-02"

// Task ids are opaque strings end to end: the memory store generates uuids,
// the SQL store returns whatever the backend assigned. Never an ordering key.
type Task struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

// Day formats t as the normalized day-string used to key History.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// NormalizeDay maps s to a day-string. Idempotent: an already-normalized
// value comes back unchanged. RFC3339 timestamps collapse to their calendar
// day; anything unparseable is returned as-is (malformed dates are guarded
// upstream at creation time).
func NormalizeDay(s string) string {
	if _, err := time.Parse(DayFormat, s); err == nil {
		return s
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t)
	}
	return s
}
