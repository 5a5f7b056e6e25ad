package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// titleWidth bounds title columns so long names do not break the layout.
const titleWidth = 32

// FormatProjectList renders the project list inside a bordered box.
func FormatProjectList(projects []*domain.Project, locale string) string {
	headers := []string{"ID", text(locale, "PROJETO", "PROJECT"), text(locale, "COBRANÇA", "BILLING"), "STATUS", "TAGS"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(Truncate(p.Title, titleWidth)),
			BillingLabel(p, locale),
			ActivePill(p.Active, locale),
			TagList(p.Tags),
		})
	}
	return RenderBox(text(locale, "Projetos", "Projects"), RenderTable(headers, rows))
}

// ProjectDetail is everything shown by project show.
type ProjectDetail struct {
	Project       *domain.Project
	TrackedSecs   int64
	SessionCount  int
	EarnedAmount  float64
	PendingAmount float64
}

// FormatProjectDetail renders one project's card.
func FormatProjectDetail(d ProjectDetail, locale string) string {
	p := d.Project
	var b strings.Builder

	b.WriteString(StyleBold.Render(p.Title) + "\n")
	if p.Description != "" {
		b.WriteString(Dim(p.Description) + "\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-10s", label)), value)
	}
	field("ID", Dim(p.ID))
	field("STATUS", ActivePill(p.Active, locale))
	field(text(locale, "COBRANÇA", "BILLING"), BillingLabel(p, locale))
	if p.BillingType == domain.BillingFixed {
		est := p.EstimatedSeconds()
		if est > 0 {
			field(text(locale, "ESTIMATIVA", "ESTIMATE"), Duration(est))
			field(text(locale, "CONSUMO", "USED"), RenderBudget(d.TrackedSecs, est, 20))
		} else {
			field(text(locale, "ESTIMATIVA", "ESTIMATE"), StyleYellow.Render(text(locale, "sem estimativa, valor 0", "none, amount is 0")))
		}
	}
	field("TAGS", TagList(p.Tags))
	field(text(locale, "SESSÕES", "SESSIONS"), fmt.Sprintf("%d", d.SessionCount))
	field(text(locale, "TEMPO", "TRACKED"), Duration(d.TrackedSecs))
	field(text(locale, "FATURADO", "BILLED"), StyleGreen.Render(Currency(d.EarnedAmount, locale)))
	field(text(locale, "PENDENTE", "PENDING"), StyleYellow.Render(Currency(d.PendingAmount, locale)))
	field(text(locale, "CRIADO", "CREATED"), LongDate(p.CreatedAt, locale))

	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}
