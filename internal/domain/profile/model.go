package profile

import "time"

// Profile maps an authenticated user id to the name shown on leaderboards.
type Profile struct {
	UserID    string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
