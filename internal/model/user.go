// Package model defines domain entities for the application.
package model

import "time"

// User is an end user that owns API keys.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRow is one line of the dashboard listing: a user joined with a key.
// APIKey and ExpiresAt are nil for users that have no key.
type UserRow struct {
	UserID    int64      `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	APIKey    *string    `json:"api_key"`
	ExpiresAt *time.Time `json:"expires_at"`
	Status    KeyStatus  `json:"status"`
}
