package domain

import "time"

// User is a stable identity that authors freets, owns feeds, and challenges flags.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
