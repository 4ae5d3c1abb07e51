package entity

import (
	"time"
)

// User is the aggregate root for the user directory.
// Password holds a bcrypt hash; it never leaves the backend.
// Email is the natural key: messages reference users by email, and the
// match is case-sensitive exactly as stored.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
}
