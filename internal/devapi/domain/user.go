package domain

import "time"

type User struct {
	ID             int64
	Username       string
	Email          string
	FirstName      string
	LastName       string
	PasswordHash   string // argon2 encoded
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
