package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recent dispatches for the configured site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Demo.ReportLimit
			}
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			dispatches, err := client.RecentDispatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, dispatches)
			}
			if len(dispatches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent dispatches")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(dispatchTableHeaders, dispatchRows(dispatches), dispatchTableAligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum dispatches to list (defaults to demo.report_limit)")
	return cmd
}
