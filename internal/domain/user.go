package domain

// User is the shape the hosted auth provider yields: an opaque id and the
// email it was registered with.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Settings is the single persisted settings row per owner.
type Settings struct {
	OwnerID   string `json:"owner_id"`
	DailyGoal int    `json:"daily_goal"`
}
