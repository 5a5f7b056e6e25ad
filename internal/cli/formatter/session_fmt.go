package formatter

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// FormatSessionList renders sessions newest first with their project titles.
// titles maps project id to title; sessions of deleted projects show a dash.
func FormatSessionList(sessions []*domain.Session, titles map[string]string, loc *time.Location, locale string) string {
	headers := []string{"ID", text(locale, "DATA", "DATE"), text(locale, "PROJETO", "PROJECT"), text(locale, "DURAÇÃO", "DURATION"), text(locale, "ORIGEM", "SOURCE"), "STATUS"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		title := titles[s.ProjectID]
		if title == "" {
			title = Dim("--")
		} else {
			title = Truncate(title, titleWidth)
		}
		source := Dim("timer")
		if s.IsManual {
			source = StyleBlue.Render(text(locale, "manual", "manual"))
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			LongDate(s.Date.In(loc), locale),
			title,
			Duration(s.Duration),
			source,
			BilledPill(s.IsBilled, locale),
		})
	}
	return RenderBox(text(locale, "Sessões", "Sessions"), RenderTable(headers, rows))
}

// FormatSessionDetail renders one session.
func FormatSessionDetail(s *domain.Session, projectTitle string, loc *time.Location, locale string) string {
	headers := []string{text(locale, "CAMPO", "FIELD"), text(locale, "VALOR", "VALUE")}
	rows := [][]string{
		{"ID", s.ID},
		{text(locale, "PROJETO", "PROJECT"), projectTitle},
		{text(locale, "DATA", "DATE"), LongDate(s.Date.In(loc), locale)},
		{text(locale, "DURAÇÃO", "DURATION"), Clock(s.Duration)},
		{"STATUS", BilledPill(s.IsBilled, locale)},
	}
	if s.StartTime != nil {
		rows = append(rows, []string{text(locale, "INÍCIO", "START"), s.StartTime.In(loc).Format("15:04:05")})
	}
	if s.EndTime != nil {
		rows = append(rows, []string{text(locale, "FIM", "END"), s.EndTime.In(loc).Format("15:04:05")})
	}
	return RenderBox(text(locale, "Sessão", "Session"), RenderTable(headers, rows))
}
