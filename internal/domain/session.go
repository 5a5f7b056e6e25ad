package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSession = errors.New("invalid session")

// Session is a committed work interval.
type Session struct {
	ID        string
	UserID    string
	ProjectID string
	StartTime *time.Time
	EndTime   *time.Time
	// Duration in seconds. Equals EndTime-StartTime for timer sessions;
	// set independently for manual entries.
	Duration int64
	IsManual bool
	IsBilled bool
	// Date is the calendar bucket used for grouping.
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) Validate() error {
	if s.ProjectID == "" {
		return fmt.Errorf("%w: project is required", ErrInvalidSession)
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: duration must be >= 0 (got %d)", ErrInvalidSession, s.Duration)
	}
	if s.StartTime != nil && s.EndTime != nil && s.EndTime.Before(*s.StartTime) {
		return fmt.Errorf("%w: end time precedes start time", ErrInvalidSession)
	}
	return nil
}

// DateKey returns the YYYY-MM-DD bucket key of the session date in loc.
func (s *Session) DateKey(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return s.Date.In(loc).Format(DateLayout)
}

// ActiveSession is the in-progress, not yet committed session. It lives only
// between start and finish and is persisted locally across restarts.
type ActiveSession struct {
	ProjectID string
	StartTime time.Time
	Duration  int64
	IsManual  bool
	IsBilled  bool
}

// NewActiveSession starts tracking a project at now with default flags.
func NewActiveSession(projectID string, now time.Time) *ActiveSession {
	return &ActiveSession{ProjectID: projectID, StartTime: now}
}

// Commit converts the active session into a Session ending at end.
func (a *ActiveSession) Commit(userID string, duration int64, end time.Time) *Session {
	start := a.StartTime
	return &Session{
		UserID:    userID,
		ProjectID: a.ProjectID,
		StartTime: &start,
		EndTime:   &end,
		Duration:  duration,
		IsManual:  a.IsManual,
		IsBilled:  a.IsBilled,
		Date:      end,
	}
}

// DateLayout is the calendar-date key format used throughout reports.
const DateLayout = "2006-01-02"
