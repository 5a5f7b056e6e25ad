package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidProject = errors.New("invalid project")

type Project struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Tags        []string
	BillingType BillingType
	// BillingAmount is in currency minor units: the hourly rate for hourly
	// projects, the total fee for fixed ones.
	BillingAmount int64
	// EstimatedDuration in seconds, used to prorate fixed-price billing.
	EstimatedDuration *int64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the billing invariants and required fields.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProject)
	}
	if !ValidBillingTypes[string(p.BillingType)] {
		return fmt.Errorf("%w: billing type %q must be hourly or fixed", ErrInvalidProject, p.BillingType)
	}
	if p.BillingAmount < 0 {
		return fmt.Errorf("%w: billing amount must be >= 0 (got %d)", ErrInvalidProject, p.BillingAmount)
	}
	if p.EstimatedDuration != nil && *p.EstimatedDuration < 0 {
		return fmt.Errorf("%w: estimated duration must be >= 0", ErrInvalidProject)
	}
	return nil
}

// EstimatedSeconds returns the estimate, or 0 when unset.
func (p *Project) EstimatedSeconds() int64 {
	return Int64FromPtrWithDefault(0, p.EstimatedDuration)
}

// DisplayID returns the first 8 characters of the ID.
func (p *Project) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
