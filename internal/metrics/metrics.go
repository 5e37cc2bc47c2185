// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login attempt outcomes.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Key generation kinds.
const (
	KeyPreview = "preview"
	KeyIssued  = "issued"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// HTTP metrics
	ObserveRequest(route string, status int, duration time.Duration)

	// Admin account metrics
	IncLoginAttempt(result string)
	IncAdminRegistered()
	IncSessionDenied()

	// User/key metrics
	IncKeyGenerated(kind string)
	IncUserCreated()
	IncUserDeleted()
}
