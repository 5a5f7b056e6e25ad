package app

import "github.com/alexanderramin/tempo/internal/domain"

// TimerStatus describes the active session. Active is nil when no session
// is being tracked.
type TimerStatus struct {
	Active       *domain.ActiveSession
	ProjectTitle string
	Running      bool
	// Seconds elapsed, including time before any pause.
	Seconds int64
}
