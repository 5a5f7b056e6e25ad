package formatter

import (
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate shortens s to at most width terminal cells, ending in "…" when
// cut. Wide runes (CJK, emoji) count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// ActivePill marks a project as active or inactive.
func ActivePill(active bool, locale string) string {
	if active {
		return StyleGreen.Render("● " + text(locale, "Ativo", "Active"))
	}
	return StyleDim.Render("○ " + text(locale, "Inativo", "Inactive"))
}

// BilledPill marks a session as billed or pending.
func BilledPill(billed bool, locale string) string {
	if billed {
		return StyleGreen.Render("✔ " + text(locale, "Faturado", "Billed"))
	}
	return StyleYellow.Render("○ " + text(locale, "Pendente", "Pending"))
}

// BillingLabel describes a project's billing terms, e.g. "R$ 150,00/h" or
// "R$ 5.000,00 fixo".
func BillingLabel(p *domain.Project, locale string) string {
	amount := Currency(float64(p.BillingAmount), locale)
	if p.BillingType == domain.BillingFixed {
		return amount + " " + text(locale, "fixo", "fixed")
	}
	return amount + "/h"
}

// TagList joins tags as "#a #b", or a dim dash when empty.
func TagList(tags []string) string {
	if len(tags) == 0 {
		return Dim("--")
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return StylePurple.Render(strings.Join(out, " "))
}

// text picks the pt-BR or en variant of a label.
func text(locale, ptBR, en string) string {
	if locale == LocaleEn {
		return en
	}
	return ptBR
}
