package auth

import "time"

// Account represents a row in the accounts table.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
