package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

var testUserCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func WithUserName(name string) UserOption {
	return func(u *domain.User) {
		u.Name = name
	}
}

func NewTestUser(opts ...UserOption) *domain.User {
	now := time.Now().UTC()
	n := testUserCounter.Add(1)
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("User %d", n),
		Email:     fmt.Sprintf("user%d@example.com", n),
		Provider:  domain.ProviderPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Project options
type ProjectOption func(*domain.Project)

func WithHourlyRate(amount int64) ProjectOption {
	return func(p *domain.Project) {
		p.BillingType = domain.BillingHourly
		p.BillingAmount = amount
	}
}

// WithFixedFee makes the project fixed-price. A zero estimate leaves
// EstimatedDuration unset.
func WithFixedFee(amount, estimatedSeconds int64) ProjectOption {
	return func(p *domain.Project) {
		p.BillingType = domain.BillingFixed
		p.BillingAmount = amount
		if estimatedSeconds > 0 {
			p.EstimatedDuration = &estimatedSeconds
		}
	}
}

func WithInactive() ProjectOption {
	return func(p *domain.Project) {
		p.Active = false
	}
}

func WithTags(tags ...string) ProjectOption {
	return func(p *domain.Project) {
		p.Tags = tags
	}
}

func WithDescription(d string) ProjectOption {
	return func(p *domain.Project) {
		p.Description = d
	}
}

func NewTestProject(userID, title string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         title,
		BillingType:   domain.BillingHourly,
		BillingAmount: 10000,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session options
type SessionOption func(*domain.Session)

func WithBilled(b bool) SessionOption {
	return func(s *domain.Session) {
		s.IsBilled = b
	}
}

func WithManual() SessionOption {
	return func(s *domain.Session) {
		s.IsManual = true
		s.StartTime = nil
		s.EndTime = nil
	}
}

// WithDate moves the session (and its start/end) to the given date.
func WithDate(d time.Time) SessionOption {
	return func(s *domain.Session) {
		s.Date = d
		if s.EndTime != nil {
			end := d
			start := d.Add(-time.Duration(s.Duration) * time.Second)
			s.StartTime = &start
			s.EndTime = &end
		}
	}
}

func NewTestSession(userID, projectID string, durationSec int64, opts ...SessionOption) *domain.Session {
	now := time.Now().UTC()
	start := now.Add(-time.Duration(durationSec) * time.Second)
	s := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProjectID: projectID,
		StartTime: &start,
		EndTime:   &now,
		Duration:  durationSec,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Day returns midday UTC on the given date, a safe bucket regardless of the
// test machine's zone offset.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
