package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/report"
	"github.com/spf13/cobra"
)

// resolveProjectID accepts a full id, a unique id prefix or a unique
// case-insensitive title.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("project is required")
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.EqualFold(p.Title, input) {
			matches = append(matches, p.ID)
		}
	}
	if len(matches) == 0 {
		for _, p := range projects {
			if strings.HasPrefix(p.ID, input) {
				matches = append(matches, p.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectSetActiveCmd(app, "activate", true),
		newProjectSetActiveCmd(app, "deactivate", false),
		newProjectRemoveCmd(app),
	)

	return cmd
}

// projectFlags are shared by add and update.
type projectFlags struct {
	title       string
	description string
	tags        []string
	billing     domain.BillingType
	amount      int64
	estimate    string
}

func (f *projectFlags) register(cmd *cobra.Command, billingDefault domain.BillingType) *moneyValue {
	amount := &moneyValue{v: &f.amount}
	cmd.Flags().StringVar(&f.title, "title", "", "Project title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().Var(newBillingTypeValue(&f.billing, billingDefault), "billing", "Billing type")
	cmd.Flags().Var(amount, "amount", "Hourly rate or total fee, e.g. 150 or 1.234,56")
	cmd.Flags().StringVar(&f.estimate, "estimate", "", "Estimated effort for fixed fees, e.g. 40h")
	return amount
}

func (f *projectFlags) estimateSeconds() (*int64, error) {
	if strings.TrimSpace(f.estimate) == "" {
		return nil, nil
	}
	secs, err := parseSeconds(f.estimate)
	if err != nil {
		return nil, err
	}
	return &secs, nil
}

func newProjectAddCmd(app *App) *cobra.Command {
	var f projectFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.title == "" {
				if !app.interactive() {
					return fmt.Errorf("--title is required")
				}
				if err := askProject(&f); err != nil {
					return err
				}
			}
			est, err := f.estimateSeconds()
			if err != nil {
				return err
			}

			p := &domain.Project{
				Title:             strings.TrimSpace(f.title),
				Description:       f.description,
				Tags:              f.tags,
				BillingType:       f.billing,
				BillingAmount:     f.amount,
				EstimatedDuration: est,
			}
			if err := app.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s (%s) %s\n", formatter.Bold(p.Title), formatter.TruncID(p.ID), formatter.BillingLabel(p, app.Locale))
			if p.BillingType == domain.BillingFixed && est == nil {
				fmt.Fprintln(out, formatter.StyleYellow.Render("No estimate set: fixed-fee sessions will be valued at zero."))
			}
			return nil
		},
	}
	f.register(cmd, domain.BillingHourly)

	return cmd
}

// askProject fills f from the interactive form.
func askProject(f *projectFlags) error {
	billing := string(f.billing)
	amount := ""
	if err := projectForm(&f.title, &f.description, &billing, &amount, &f.estimate).Run(); err != nil {
		return err
	}
	bt, err := domain.ParseBillingType(billing)
	if err != nil {
		return err
	}
	f.billing = bt
	if strings.TrimSpace(amount) != "" {
		if f.amount, err = parseMoney(amount); err != nil {
			return err
		}
	}
	return nil
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects, app.Locale))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive projects")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project not found: %q", args[0])
			}
			sessions, err := app.Sessions.List(ctx, id, report.Filter{Location: app.location()})
			if err != nil {
				return err
			}

			d := formatter.ProjectDetail{Project: p, SessionCount: len(sessions)}
			for _, s := range sessions {
				d.TrackedSecs += max(s.Duration, 0)
				amt := report.ComputeSessionAmount(s, p)
				if s.IsBilled {
					d.EarnedAmount += amt
				} else {
					d.PendingAmount += amt
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(d, app.Locale))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var f projectFlags
	var amount *moneyValue

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Change a project's details or billing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project not found: %q", args[0])
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = strings.TrimSpace(f.title)
			}
			if flags.Changed("description") {
				p.Description = f.description
			}
			if flags.Changed("tags") {
				p.Tags = f.tags
			}
			if flags.Changed("billing") {
				p.BillingType = f.billing
			}
			if amount.set {
				p.BillingAmount = f.amount
			}
			if flags.Changed("estimate") {
				if p.EstimatedDuration, err = f.estimateSeconds(); err != nil {
					return err
				}
			}

			if err := app.Projects.Update(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", formatter.Bold(p.Title))
			return nil
		},
	}
	amount = f.register(cmd, domain.BillingHourly)

	return cmd
}

func newProjectSetActiveCmd(app *App, use string, active bool) *cobra.Command {
	short := "Mark a project as active"
	if !active {
		short = "Hide a project from lists and the timer"
	}
	return &cobra.Command{
		Use:   use + " PROJECT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.SetActive(ctx, id, active); err != nil {
				return err
			}
			state := "active"
			if !active {
				state = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s is now %s\n", formatter.TruncID(id), state)
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, id, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete even when sessions were recorded")

	return cmd
}
