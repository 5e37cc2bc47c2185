package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveRequest(route string, status int, duration time.Duration) {}
func (n *NoopRecorder) IncLoginAttempt(result string)                                 {}
func (n *NoopRecorder) IncAdminRegistered()                                           {}
func (n *NoopRecorder) IncSessionDenied()                                             {}
func (n *NoopRecorder) IncKeyGenerated(kind string)                                   {}
func (n *NoopRecorder) IncUserCreated()                                               {}
func (n *NoopRecorder) IncUserDeleted()                                               {}
