package domain

import "fmt"

type BillingType string

const (
	BillingHourly BillingType = "hourly"
	BillingFixed  BillingType = "fixed"
)

// ValidBillingTypes is the canonical set of accepted billing type strings.
var ValidBillingTypes = map[string]bool{
	"hourly": true, "fixed": true,
}

// ParseBillingType accepts "hourly" or "fixed".
func ParseBillingType(s string) (BillingType, error) {
	if !ValidBillingTypes[s] {
		return "", fmt.Errorf("billing type %q must be one of hourly, fixed", s)
	}
	return BillingType(s), nil
}

type BilledFilter string

const (
	BilledAll      BilledFilter = "all"
	BilledOnly     BilledFilter = "billed"
	BilledUnbilled BilledFilter = "unbilled"
)

// ParseBilledFilter accepts "all", "billed" or "unbilled". Empty means all.
func ParseBilledFilter(s string) (BilledFilter, error) {
	switch BilledFilter(s) {
	case "", BilledAll:
		return BilledAll, nil
	case BilledOnly, BilledUnbilled:
		return BilledFilter(s), nil
	}
	return "", fmt.Errorf("billed filter %q must be one of all, billed, unbilled", s)
}

// Matches reports whether a session with the given billed flag passes the filter.
func (f BilledFilter) Matches(isBilled bool) bool {
	switch f {
	case BilledOnly:
		return isBilled
	case BilledUnbilled:
		return !isBilled
	default:
		return true
	}
}

type AuthProvider string

const (
	ProviderPassword AuthProvider = "password"
	ProviderGoogle   AuthProvider = "google"
)
