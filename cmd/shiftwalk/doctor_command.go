package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shiftwalk/internal/journal"
	"shiftwalk/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, directories, and API reachability",
		Long: "Runs every readiness check and reports the results. The command exits\n" +
			"nonzero when any check fails, so it can gate scripted demonstrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			health := collectJournalHealth(cmd, ctx)

			if ctx.jsonMode() {
				if err := writeJSON(cmd, struct {
					Checks  []preflight.Result      `json:"checks"`
					Journal *journal.DatabaseHealth `json:"journal,omitempty"`
				}{results, health}); err != nil {
					return err
				}
				return failedCheckError(results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if health != nil {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Journal database: %s\n", health.DBPath)
				fmt.Fprintf(out, "  exists: %s  readable: %s  runs table: %s  integrity: %s\n",
					yesNo(health.DatabaseExists), yesNo(health.DatabaseReadable),
					yesNo(health.TableExists), yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "  recorded runs: %d\n", health.TotalRuns)
				if health.Error != "" {
					fmt.Fprintf(out, "  error: %s\n", health.Error)
				}
			}

			return failedCheckError(results)
		},
	}
}

func collectJournalHealth(cmd *cobra.Command, ctx *commandContext) *journal.DatabaseHealth {
	cfg, err := ctx.ensureConfig()
	if err != nil || !cfg.Journal.Enabled {
		return nil
	}
	store, err := ctx.openJournal()
	if err != nil {
		return &journal.DatabaseHealth{DBPath: cfg.JournalDBPath(), Error: err.Error()}
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	health, err := store.CheckHealth(cmd.Context())
	if err != nil && health.Error == "" {
		health.Error = err.Error()
	}
	return &health
}

func failedCheckError(results []preflight.Result) error {
	failed := 0
	for _, result := range results {
		if !result.Passed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
