package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shiftwalk/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled demonstration runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No journaled runs")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						string(run.Status),
						strconv.Itoa(run.Site),
						run.Badge,
						run.StartedAt.Local().Format(timestampDisplayLayout),
						runDuration(run),
						strconv.Itoa(run.Steps),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "Status", "Site", "Badge", "Started", "Duration", "Steps"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one journaled run with its steps",
		Long: "Shows a single run and every step recorded for it. The run id may be\n" +
			"abbreviated to any unique prefix, such as the eight characters printed\n" +
			"by `shiftwalk history`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				run, err := store.RunByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				steps, err := store.StepsForRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, struct {
						Run   *journal.Run   `json:"run"`
						Steps []journal.Step `json:"steps"`
					}{run, steps})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", run.Status)
				fmt.Fprintf(out, "Server:   %s\n", run.Host)
				fmt.Fprintf(out, "Site:     %d\n", run.Site)
				fmt.Fprintf(out, "Badge:    %s\n", run.Badge)
				fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(timestampDisplayLayout))
				if run.FinishedAt != nil {
					fmt.Fprintf(out, "Finished: %s (%s)\n",
						run.FinishedAt.Local().Format(timestampDisplayLayout), runDuration(*run))
				}
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}

				if len(steps) == 0 {
					fmt.Fprintln(out, "No journaled steps")
					return nil
				}
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(steps))
				for _, step := range steps {
					status := "-"
					if step.HTTPStatus > 0 {
						status = strconv.Itoa(step.HTTPStatus)
					}
					rows = append(rows, []string{
						strconv.Itoa(step.Seq),
						stepLabel(step.Name),
						step.Method,
						step.Resource,
						status,
						string(step.Outcome),
						formatDuration(step.Duration),
						step.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Step", "Method", "Resource", "HTTP", "Outcome", "Duration", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize journaled runs by outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, stats)
				}
				total := 0
				for _, count := range stats {
					total += count
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Journaled runs: %d\n", total)
				for _, status := range []journal.Status{journal.StatusSucceeded, journal.StatusFailed, journal.StatusRunning} {
					if count := stats[status]; count > 0 {
						fmt.Fprintf(out, "  %-10s %d\n", string(status)+":", count)
					}
				}
				return nil
			})
		},
	}
}
