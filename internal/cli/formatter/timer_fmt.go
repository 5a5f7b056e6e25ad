package formatter

import "fmt"

// FormatTimer renders the clock line of the active session, e.g.
// "● 01:02:03  Website  (em andamento)".
func FormatTimer(title string, seconds int64, running bool, locale string) string {
	if title == "" {
		title = Dim("--")
	}
	state := StyleYellow.Render("‖ " + text(locale, "pausado", "paused"))
	if running {
		state = StyleGreen.Render("● " + text(locale, "em andamento", "running"))
	}
	return fmt.Sprintf("%s  %s  %s", StyleClock.Render(Clock(seconds)), Bold(title), state)
}

// NoTimer is shown when nothing is being tracked.
func NoTimer(locale string) string {
	return Dim(text(locale, "Nenhuma sessão ativa.", "No active session."))
}
