package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// tempoHuhTheme returns a huh theme matching the formatter palette.
func tempoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorAccent).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorAccent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorAccent).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorAccent)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorAccent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// signInForm collects e-mail and password.
func signInForm(email, password *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("E-mail").
				Value(email).
				Validate(func(s string) error {
					_, err := auth.NormalizeEmail(s)
					if err != nil {
						return fmt.Errorf("invalid e-mail")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password),
		),
	).WithTheme(tempoHuhTheme()).WithShowHelp(false)
}

// projectForm collects the fields of a new project. Amount and estimate are
// strings so they can be parsed like their flag counterparts.
func projectForm(title, description, billing, amount, estimate *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(description),
			huh.NewSelect[string]().
				Title("Billing").
				Options(
					huh.NewOption("Hourly rate", "hourly"),
					huh.NewOption("Fixed fee", "fixed"),
				).
				Value(billing),
			huh.NewInput().
				Title("Amount (R$)").
				Placeholder("150,00").
				Value(amount).
				Validate(func(s string) error {
					_, err := parseMoney(s)
					return err
				}),
			huh.NewInput().
				Title("Estimate (fixed fee only, e.g. 40h)").
				Value(estimate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := parseSeconds(s)
					return err
				}),
		),
	).WithTheme(tempoHuhTheme()).WithShowHelp(false)
}

// readSecret reads a password with the App's no-echo reader, or a plain
// line from the command input when none is configured.
func readSecret(app *App, cmd *cobra.Command, prompt string) (string, error) {
	if app.ReadPassword != nil && app.interactive() {
		return app.ReadPassword(prompt)
	}
	line, err := app.lines(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(strings.TrimSuffix(prompt, ": ")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// lines returns a reader over in that is shared by successive prompts, so
// buffered input is not lost between them.
func (a *App) lines(in io.Reader) *bufio.Reader {
	if a.in == nil || a.inSrc != in {
		a.inSrc = in
		a.in = bufio.NewReader(in)
	}
	return a.in
}

// TerminalPassword returns a ReadPassword that prompts on w and reads stdin
// without echo.
func TerminalPassword(w io.Writer) func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
}
