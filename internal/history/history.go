package history

import (
	"sort"
	"time"

	"example.com/streakly/internal/domain"
)

// Build groups tasks by normalized calendar day and tallies completions.
// The single goal value is stamped on every record: the goal in effect now
// applies retroactively to the whole history, so changing it re-scores every
// past day. Pure and deterministic; safe to run on every mutation.
func Build(tasks []domain.Task, goal int) domain.History {
	h := make(domain.History, len(tasks))
	for _, t := range tasks {
		day := domain.NormalizeDay(t.CreatedAt)
		rec := h[day]
		rec.Goal = goal
		rec.Total++
		if t.Completed {
			rec.Completed++
		}
		h[day] = rec
	}
	return h
}

// Streak counts consecutive qualifying days walking backward from the most
// recent day present in h. A day qualifies when Completed >= Goal.
//
// Policy: an in-progress today never breaks a prior streak. If the most
// recent day equals today and does not yet qualify it is skipped, neither
// counting nor breaking; any other non-qualifying day terminates the walk.
// today is passed in rather than read from the clock so the function stays
// pure.
func Streak(h domain.History, today string) int {
	days := make([]string, 0, len(h))
	for d := range h {
		days = append(days, d)
	}
	// String order is not calendar order for arbitrary inputs; parse and
	// compare as dates, most recent first.
	sort.Slice(days, func(i, j int) bool {
		return parseDay(days[i]).After(parseDay(days[j]))
	})

	streak := 0
	for _, d := range days {
		rec := h[d]
		if rec.Completed >= rec.Goal {
			streak++
			continue
		}
		if d != today {
			break
		}
	}
	return streak
}

func parseDay(s string) time.Time {
	t, err := time.Parse(domain.DayFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
