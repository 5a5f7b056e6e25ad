package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/report"
)

// FormatReport renders month-to-date statistics, the per-day breakdown and
// the per-month summary.
func FormatReport(r report.Report, locale string) string {
	var b strings.Builder

	b.WriteString(formatMonthStats(r.Month, locale))
	b.WriteString("\n")

	if len(r.Days) == 0 {
		b.WriteString(Dim(text(locale, "Nenhuma sessão no período.", "No sessions in range.")) + "\n")
		return b.String()
	}

	for _, day := range r.Days {
		title := fmt.Sprintf("%s  %s  %s",
			StyleHeader.Render(DateKey(day.Date, locale)),
			Dim(Duration(day.TotalSeconds)),
			StyleGreen.Render(Currency(day.TotalAmount, locale)))
		headers := []string{text(locale, "PROJETO", "PROJECT"), text(locale, "DURAÇÃO", "DURATION"), text(locale, "VALOR", "AMOUNT"), "STATUS"}
		rows := make([][]string, 0, len(day.Sessions))
		for _, rs := range day.Sessions {
			t := rs.ProjectTitle
			if t == "" {
				t = Dim("--")
			}
			rows = append(rows, []string{
				Truncate(t, titleWidth),
				Duration(rs.Duration),
				Currency(report.SessionAmount(rs), locale),
				BilledPill(rs.IsBilled, locale),
			})
		}
		b.WriteString(title + "\n" + RenderTable(headers, rows) + "\n")
	}

	months := report.SortedMonths(r.Monthly)
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		t := r.Monthly[m]
		rows = append(rows, []string{MonthKey(m, locale), Duration(t.TotalTime), Currency(t.TotalEarnings, locale)})
	}
	rows = append(rows, []string{Bold("TOTAL"), Bold(Duration(r.TotalSeconds)), Bold(Currency(r.TotalAmount, locale))})
	headers := []string{text(locale, "MÊS", "MONTH"), text(locale, "TEMPO", "TIME"), text(locale, "GANHOS", "EARNINGS")}
	b.WriteString(RenderBox(text(locale, "Resumo mensal", "Monthly summary"), RenderTable(headers, rows)))
	b.WriteString("\n")
	return b.String()
}

func formatMonthStats(m report.MonthStats, locale string) string {
	line := func(label, value string) string {
		return fmt.Sprintf("%s  %s", StyleDim.Render(fmt.Sprintf("%-12s", label)), value)
	}
	content := strings.Join([]string{
		line(text(locale, "Tempo", "Time"), Duration(m.TotalSeconds)),
		line(text(locale, "Estimado", "Estimated"), Currency(m.Estimated, locale)),
		line(text(locale, "Faturado", "Billed"), StyleGreen.Render(Currency(m.Billed, locale))),
		line(text(locale, "Pendente", "Pending"), StyleYellow.Render(Currency(m.Pending, locale))),
	}, "\n")
	return RenderBox(text(locale, "Este mês", "This month"), content)
}
