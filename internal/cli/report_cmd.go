package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newReportCmd(a *App) *cobra.Command {
	var (
		f      sessionFilterFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize tracked time and earnings by day and month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := app.NewReportRequest()
			req.From = f.from
			req.To = f.to
			req.Billed = f.billed
			if f.project != "" {
				id, err := resolveProjectID(ctx, a, f.project)
				if err != nil {
					return err
				}
				req.ProjectID = id
			}

			resp, err := a.Reports.Report(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := sonic.ConfigStd.MarshalIndent(resp, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReport(resp.Report, a.Locale))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

