package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Requests          uint64
	LoginSuccess      uint64
	LoginFailure      uint64
	LoginRateLimited  uint64
	AdminsRegistered  uint64
	SessionsDenied    uint64
	KeysPreviewed     uint64
	KeysIssued        uint64
	UsersCreated      uint64
	UsersDeleted      uint64
	RequestDurationNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requests          atomic.Uint64
	loginSuccess      atomic.Uint64
	loginFailure      atomic.Uint64
	loginRateLimited  atomic.Uint64
	adminsRegistered  atomic.Uint64
	sessionsDenied    atomic.Uint64
	keysPreviewed     atomic.Uint64
	keysIssued        atomic.Uint64
	usersCreated      atomic.Uint64
	usersDeleted      atomic.Uint64
	requestDurationNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Requests:          m.requests.Load(),
		LoginSuccess:      m.loginSuccess.Load(),
		LoginFailure:      m.loginFailure.Load(),
		LoginRateLimited:  m.loginRateLimited.Load(),
		AdminsRegistered:  m.adminsRegistered.Load(),
		SessionsDenied:    m.sessionsDenied.Load(),
		KeysPreviewed:     m.keysPreviewed.Load(),
		KeysIssued:        m.keysIssued.Load(),
		UsersCreated:      m.usersCreated.Load(),
		UsersDeleted:      m.usersDeleted.Load(),
		RequestDurationNs: m.requestDurationNs.Load(),
	}
}

// ObserveRequest counts a request and accumulates its duration.
func (m *InMemoryRecorder) ObserveRequest(route string, status int, duration time.Duration) {
	m.requests.Add(1)
	m.requestDurationNs.Add(duration.Nanoseconds())
}

// IncLoginAttempt counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLoginAttempt(result string) {
	switch result {
	case LoginSuccess:
		m.loginSuccess.Add(1)
	case LoginRateLimited:
		m.loginRateLimited.Add(1)
	default:
		m.loginFailure.Add(1)
	}
}

// IncAdminRegistered counts a new admin account.
func (m *InMemoryRecorder) IncAdminRegistered() {
	m.adminsRegistered.Add(1)
}

// IncSessionDenied counts a request turned away by the session gate.
func (m *InMemoryRecorder) IncSessionDenied() {
	m.sessionsDenied.Add(1)
}

// IncKeyGenerated counts a generated key by kind.
func (m *InMemoryRecorder) IncKeyGenerated(kind string) {
	if kind == KeyPreview {
		m.keysPreviewed.Add(1)
		return
	}
	m.keysIssued.Add(1)
}

// IncUserCreated counts a user saved with its key.
func (m *InMemoryRecorder) IncUserCreated() {
	m.usersCreated.Add(1)
}

// IncUserDeleted counts a deleted user.
func (m *InMemoryRecorder) IncUserDeleted() {
	m.usersDeleted.Add(1)
}
