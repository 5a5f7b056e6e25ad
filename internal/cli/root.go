package cli

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Auth     service.AuthService
	Projects service.ProjectService
	Sessions service.SessionService
	Timer    service.TimerService
	Reports  app.ReportUseCase

	// Hub and DBPath drive the watch commands; an empty DBPath disables
	// cross-process change detection.
	Hub    *live.Hub
	DBPath string

	Locale   string
	Location *time.Location

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
	// ReadPassword reads a secret without echo. Nil falls back to reading a
	// line from the command's input.
	ReadPassword func(prompt string) (string, error)

	inSrc io.Reader
	in    *bufio.Reader
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Time tracking and invoicing for freelancers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAuthCmd(app),
		newProjectCmd(app),
		newTimerCmd(app),
		newSessionCmd(app),
		newReportCmd(app),
	)

	return root
}

// Execute runs the root command and prints a failure as "Error: <message>",
// localized for auth errors. It returns the process exit code.
func Execute(ctx context.Context, app *App, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		io.WriteString(stderr, "Error: "+ErrorMessage(err, app.Locale)+"\n")
		return 1
	}
	return 0
}
