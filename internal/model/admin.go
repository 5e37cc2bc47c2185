package model

import "time"

// Admin is an operator allowed to sign in to the panel.
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the server-side record behind a session cookie.
// ID is a public reference safe to log; the cookie token is never stored here.
type Session struct {
	ID        string    `json:"id"`
	AdminID   int64     `json:"admin_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session lifetime has elapsed at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
