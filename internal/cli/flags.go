package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/pflag"
)

// billingTypeValue is a pflag.Value accepting hourly or fixed.
type billingTypeValue struct {
	v *domain.BillingType
}

var _ pflag.Value = billingTypeValue{}

func newBillingTypeValue(p *domain.BillingType, def domain.BillingType) billingTypeValue {
	*p = def
	return billingTypeValue{v: p}
}

func (b billingTypeValue) String() string {
	if b.v == nil {
		return ""
	}
	return string(*b.v)
}

func (b billingTypeValue) Set(s string) error {
	bt, err := domain.ParseBillingType(strings.ToLower(s))
	if err != nil {
		return err
	}
	*b.v = bt
	return nil
}

func (billingTypeValue) Type() string { return "hourly|fixed" }

// billedFilterValue is a pflag.Value accepting all, billed or unbilled.
type billedFilterValue struct {
	v *domain.BilledFilter
}

var _ pflag.Value = billedFilterValue{}

func newBilledFilterValue(p *domain.BilledFilter) billedFilterValue {
	*p = domain.BilledAll
	return billedFilterValue{v: p}
}

func (b billedFilterValue) String() string {
	if b.v == nil {
		return ""
	}
	return string(*b.v)
}

func (b billedFilterValue) Set(s string) error {
	f, err := domain.ParseBilledFilter(strings.ToLower(s))
	if err != nil {
		return err
	}
	*b.v = f
	return nil
}

func (billedFilterValue) Type() string { return "all|billed|unbilled" }

// moneyValue parses a decimal amount like "150", "150.5" or "1.234,56"
// into minor units.
type moneyValue struct {
	v   *int64
	set bool
}

func (m *moneyValue) String() string {
	if m.v == nil {
		return "0"
	}
	return fmt.Sprintf("%d.%02d", *m.v/100, *m.v%100)
}

func (m *moneyValue) Set(s string) error {
	cents, err := parseMoney(s)
	if err != nil {
		return err
	}
	*m.v = cents
	m.set = true
	return nil
}

func (*moneyValue) Type() string { return "amount" }

func parseMoney(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	// A comma after the last dot is the pt-BR decimal separator.
	if i := strings.LastIndex(s, ","); i >= 0 && i > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(f * 100)), nil
}

// parseSeconds accepts a Go duration ("1h30m", "45m") or plain minutes.
func parseSeconds(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
		}
		return n * 60, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use minutes or a value like 1h30m", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return int64(d / time.Second), nil
}

// parseDate reads YYYY-MM-DD at noon in loc, keeping the date stable across
// time zone shifts.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t.Add(12 * time.Hour), nil
}
