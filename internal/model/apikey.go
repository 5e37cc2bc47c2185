package model

import "time"

// KeyStatus is the derived state of an API key.
type KeyStatus string

// Key status values. Status is never stored; it is computed on read.
const (
	StatusActive  KeyStatus = "Active"
	StatusExpired KeyStatus = "Expired"
)

// KeyValidityMonths is how many calendar months a new key stays active.
const KeyValidityMonths = 1

// APIKey represents an API key issued to a user.
type APIKey struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	KeyValue  string    `json:"-"` // Never serialize
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusAt classifies a key by comparing now with its expiry.
// A key is active up to and including its expiry instant.
// A nil expiry (no key) is reported as expired.
func StatusAt(now time.Time, expiresAt *time.Time) KeyStatus {
	if expiresAt == nil || now.After(*expiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// ExpiryFrom returns the expiry of a key issued at issuedAt.
func ExpiryFrom(issuedAt time.Time) time.Time {
	t := issuedAt.UTC()
	for i := 0; i < KeyValidityMonths; i++ {
		t = AddMonthClamped(t)
	}
	return t
}

// AddMonthClamped adds one calendar month to t, keeping the clock time.
// When the day does not exist in the target month it is clamped to the
// month's last day, so Jan 31 becomes Feb 28 (or 29) instead of Mar 3.
func AddMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	targetYear, targetMonth, _ := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location()).Date()
	if last := daysIn(targetYear, targetMonth, t.Location()); day > last {
		day = last
	}

	return time.Date(targetYear, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
