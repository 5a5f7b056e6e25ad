package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Supported display locales.
const (
	LocalePtBR = "pt-BR"
	LocaleEn   = "en"
)

var monthsShortPtBR = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Currency renders an amount in centavos as Brazilian reais, e.g.
// "R$ 1.234,56" in pt-BR or "R$ 1,234.56" in en. Fractional centavos are
// rounded half away from zero.
func Currency(cents float64, locale string) string {
	total := int64(math.Round(cents))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	thousands, decimal := ".", ","
	if locale == LocaleEn {
		thousands, decimal = ",", "."
	}
	whole := groupDigits(total/100, thousands)
	return fmt.Sprintf("%sR$ %s%s%02d", sign, whole, decimal, total%100)
}

func groupDigits(n int64, sep string) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// LongDate renders "15 de out de 2026" in pt-BR or "Oct 15, 2026" in en.
// The zero time renders empty.
func LongDate(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	if locale == LocaleEn {
		return t.Format("Jan 2, 2006")
	}
	return fmt.Sprintf("%02d de %s de %d", t.Day(), monthsShortPtBR[t.Month()-1], t.Year())
}

// DateKey renders a YYYY-MM-DD bucket key as a long date. Keys that do not
// parse are returned unchanged.
func DateKey(key, locale string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return key
	}
	return LongDate(t, locale)
}

// MonthKey renders a YYYY-MM key as "out/2026" or "Oct 2026".
func MonthKey(key, locale string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	if locale == LocaleEn {
		return t.Format("Jan 2006")
	}
	return fmt.Sprintf("%s/%d", monthsShortPtBR[t.Month()-1], t.Year())
}

// Clock renders seconds as HH:MM:SS. Hours grow past two digits as needed.
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// Duration renders seconds compactly: "2h 05m", "45m", "30s".
func Duration(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
