package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/report"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage recorded sessions",
	}

	cmd.AddCommand(
		newSessionAddCmd(app),
		newSessionListCmd(app),
		newSessionShowCmd(app),
		newSessionEditCmd(app),
		newSessionBillCmd(app, "bill", true),
		newSessionBillCmd(app, "unbill", false),
		newSessionRemoveCmd(app),
		newSessionWatchCmd(app),
	)

	return cmd
}

// resolveSession accepts a full session id or a unique prefix.
func resolveSession(ctx context.Context, app *App, input string) (*domain.Session, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if s, err := app.Sessions.GetByID(ctx, input); err != nil || s != nil {
		return s, err
	}

	all, err := app.Sessions.List(ctx, "", report.Filter{Billed: domain.BilledAll})
	if err != nil {
		return nil, err
	}
	var match *domain.Session
	for _, s := range all {
		if !strings.HasPrefix(s.ID, input) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("session %q is ambiguous", input)
		}
		match = s
	}
	if match == nil {
		return nil, fmt.Errorf("session not found: %q", input)
	}
	return match, nil
}

// projectTitles maps every project id, inactive included, to its title.
func projectTitles(ctx context.Context, app *App) (map[string]string, error) {
	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(projects))
	for _, p := range projects {
		titles[p.ID] = p.Title
	}
	return titles, nil
}

func newSessionAddCmd(app *App) *cobra.Command {
	var (
		project  string
		duration string
		date     string
		billed   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			secs, err := parseSeconds(duration)
			if err != nil {
				return err
			}

			s := &domain.Session{
				ProjectID: projectID,
				Duration:  secs,
				IsManual:  true,
				IsBilled:  billed,
			}
			if date != "" {
				if s.Date, err = parseDate(date, app.location()); err != nil {
					return err
				}
			}
			if err := app.Sessions.Create(ctx, s); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded session %s: %s on %s\n",
				formatter.TruncID(s.ID), formatter.Duration(s.Duration), formatter.LongDate(s.Date.In(app.location()), app.Locale))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project title or id")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration in minutes or as 1h30m")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&billed, "billed", false, "Mark as already billed")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

type sessionFilterFlags struct {
	project string
	from    string
	to      string
	billed  domain.BilledFilter
}

func (f *sessionFilterFlags) register(cmd *cobra.Command) {
	f.billed = domain.BilledAll
	cmd.Flags().StringVar(&f.project, "project", "", "Only sessions of this project")
	cmd.Flags().StringVar(&f.from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().Var(newBilledFilterValue(&f.billed), "billed", "Billing status filter")
}

func (f *sessionFilterFlags) resolve(ctx context.Context, app *App) (string, report.Filter, error) {
	loc := app.location()
	r, err := report.ParseDateRange(f.from, f.to, loc)
	if err != nil {
		return "", report.Filter{}, err
	}
	projectID := ""
	if f.project != "" {
		if projectID, err = resolveProjectID(ctx, app, f.project); err != nil {
			return "", report.Filter{}, err
		}
	}
	return projectID, report.Filter{Range: r, Billed: f.billed, Location: loc}, nil
}

func newSessionListCmd(app *App) *cobra.Command {
	var f sessionFilterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, filter, err := f.resolve(ctx, app)
			if err != nil {
				return err
			}
			sessions, err := app.Sessions.List(ctx, projectID, filter)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}
			titles, err := projectTitles(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessionList(sessions, titles, app.location(), app.Locale))
			return nil
		},
	}
	f.register(cmd)

	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := resolveSession(ctx, app, args[0])
			if err != nil {
				return err
			}
			titles, err := projectTitles(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessionDetail(s, titles[s.ProjectID], app.location(), app.Locale))
			return nil
		},
	}
}

func newSessionEditCmd(app *App) *cobra.Command {
	var (
		project  string
		duration string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a session's project, duration or date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := resolveSession(ctx, app, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("project") {
				if s.ProjectID, err = resolveProjectID(ctx, app, project); err != nil {
					return err
				}
			}
			if flags.Changed("duration") {
				if s.Duration, err = parseSeconds(duration); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if s.Date, err = parseDate(date, app.location()); err != nil {
					return err
				}
			}
			if err := app.Sessions.Update(ctx, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated session %s\n", formatter.TruncID(s.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Move to this project")
	cmd.Flags().StringVar(&duration, "duration", "", "New duration in minutes or as 1h30m")
	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD)")

	return cmd
}

func newSessionBillCmd(app *App, use string, billed bool) *cobra.Command {
	short := "Mark sessions as billed"
	if !billed {
		short = "Mark sessions as not billed"
	}
	return &cobra.Command{
		Use:   use + " ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, arg := range args {
				s, err := resolveSession(ctx, app, arg)
				if err != nil {
					return err
				}
				if err := app.Sessions.SetBilled(ctx, s.ID, billed); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.TruncID(s.ID), formatter.BilledPill(billed, app.Locale))
			}
			return nil
		},
	}
}

func newSessionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := resolveSession(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Sessions.Delete(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", formatter.TruncID(s.ID))
			return nil
		},
	}
}

func newSessionWatchCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the session list whenever it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := app.Auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			projectID := ""
			if project != "" {
				if projectID, err = resolveProjectID(ctx, app, project); err != nil {
					return err
				}
			}
			if app.Hub != nil && app.DBPath != "" {
				if err := live.WatchFile(ctx, app.Hub, app.DBPath, live.SessionsTopic(u.ID)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			err = app.Sessions.Listen(ctx, projectID, func(snap live.Snapshot[*domain.Session]) {
				if snap.Err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render(ErrorMessage(snap.Err, app.Locale)))
					return
				}
				titles, err := projectTitles(ctx, app)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render(ErrorMessage(err, app.Locale)))
					return
				}
				fmt.Fprintln(out, formatter.FormatSessionList(snap.Items, titles, app.location(), app.Locale))
			})
			if err != nil {
				return err
			}
			defer app.Sessions.StopListening()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Only sessions of this project")

	return cmd
}
