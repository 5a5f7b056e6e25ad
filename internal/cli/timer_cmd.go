package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTimerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Track time on a project",
	}

	cmd.AddCommand(
		newTimerStartCmd(app),
		newTimerTransitionCmd(app, "pause", "Pause the running timer", app.Timer.Pause),
		newTimerTransitionCmd(app, "resume", "Resume a paused timer", app.Timer.Resume),
		newTimerStatusCmd(app),
		newTimerFinishCmd(app),
		newTimerResetCmd(app),
		newTimerWatchCmd(app),
	)

	return cmd
}

func printTimer(cmd *cobra.Command, a *App, st *app.TimerStatus) {
	if st == nil || st.Active == nil {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.NoTimer(a.Locale))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimer(st.ProjectTitle, st.Seconds, st.Running, a.Locale))
}

func newTimerStartCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start PROJECT",
		Short: "Start tracking a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, a, args[0])
			if err != nil {
				return err
			}
			st, err := a.Timer.Start(ctx, id)
			if err != nil {
				return err
			}
			printTimer(cmd, a, st)
			return nil
		},
	}
}

func newTimerTransitionCmd(a *App, use, short string, fn func(ctx context.Context) (*app.TimerStatus, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := fn(cmd.Context())
			if err != nil {
				return err
			}
			printTimer(cmd, a, st)
			return nil
		},
	}
}

func newTimerStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.Timer.Status(cmd.Context())
			if err != nil {
				return err
			}
			printTimer(cmd, a, st)
			return nil
		},
	}
}

func newTimerFinishCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Stop the timer and record the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.Timer.Finish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded session %s: %s\n", formatter.TruncID(sess.ID), formatter.Clock(sess.Duration))
			return nil
		},
	}
}

func newTimerResetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the active session without recording it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Timer.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Timer discarded.")
			return nil
		},
	}
}

func newTimerWatchCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live clock with pause, finish and discard keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return fmt.Errorf("timer watch needs an interactive terminal")
			}
			ctx := cmd.Context()
			ticks, cancel := tickChannel(a.Timer)
			defer cancel()

			m := newTimerModel(ctx, a.Timer, ticks, a.Locale)
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}
