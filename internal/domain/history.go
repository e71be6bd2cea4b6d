package domain

// DayRecord is one day's completion tally. Goal is the goal in effect at
// aggregation time, stamped uniformly across the whole history.
type DayRecord struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Goal      int `json:"goal"`
}

// History maps normalized day-strings to that day's record. Days with no
// tasks have no entry. Map order is meaningless; consumers sort by parsed
// calendar date.
type History map[string]DayRecord
