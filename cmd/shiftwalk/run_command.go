package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shiftwalk/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the scripted demonstration shift",
		Long: "Walks the full demonstration sequence against the configured Dispatch\n" +
			"server: discovery, clock in, cycle count, dispatch open and close, pitch\n" +
			"details, recent-dispatch report, clock out. Stops at the first failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Operator.Badge) == "" {
				return errors.New("operator badge is not configured; set operator.badge or pass --badge")
			}
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner, err := workflow.New(cfg, client, store, logger)
			if err != nil {
				return err
			}

			summary, runErr := runner.Run(cmd.Context())
			if summary != nil {
				if renderErr := renderRunSummary(cmd, ctx, summary); renderErr != nil {
					return renderErr
				}
			}
			return runErr
		},
	}
}

type runStepView struct {
	Seq      int    `json:"seq"`
	Name     string `json:"name"`
	Method   string `json:"method"`
	Resource string `json:"resource"`
	Status   int    `json:"status"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail"`
	Duration string `json:"duration"`
}

type runSummaryView struct {
	RunID    string        `json:"run_id"`
	Site     int           `json:"site"`
	Badge    string        `json:"badge"`
	Outcome  string        `json:"outcome"`
	Duration string        `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Steps    []runStepView `json:"steps"`
}

func renderRunSummary(cmd *cobra.Command, ctx *commandContext, summary *workflow.Summary) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, summaryView(summary))
	}

	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(summary.Steps))
	for _, step := range summary.Steps {
		outcome := "ok"
		detail := step.Detail
		if step.Err != nil {
			outcome = "failed"
			detail = step.Err.Error()
		}
		status := "-"
		if step.Status > 0 {
			status = strconv.Itoa(step.Status)
		}
		rows = append(rows, []string{
			strconv.Itoa(step.Seq),
			stepLabel(step.Name),
			step.Method,
			status,
			outcome,
			detail,
			formatDuration(step.Duration),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Step", "Method", "HTTP", "Result", "Detail", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
	))

	if len(summary.Report) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recent dispatches:")
		fmt.Fprintln(out, renderTable(dispatchTableHeaders, dispatchRows(summary.Report), dispatchTableAligns))
	}

	fmt.Fprintln(out)
	if summary.Succeeded() {
		fmt.Fprintf(out, "Run %s succeeded in %s (%d steps)\n",
			shortID(summary.RunID), formatDuration(summary.Duration()), len(summary.Steps))
	} else {
		fmt.Fprintf(out, "Run %s failed after %s: %v\n",
			shortID(summary.RunID), formatDuration(summary.Duration()), summary.Err)
	}
	return nil
}

func summaryView(summary *workflow.Summary) runSummaryView {
	view := runSummaryView{
		RunID:    summary.RunID,
		Site:     summary.Site,
		Badge:    summary.Badge,
		Outcome:  "succeeded",
		Duration: formatDuration(summary.Duration()),
		Steps:    make([]runStepView, 0, len(summary.Steps)),
	}
	if !summary.Succeeded() {
		view.Outcome = "failed"
		view.Error = summary.Err.Error()
	}
	for _, step := range summary.Steps {
		sv := runStepView{
			Seq:      step.Seq,
			Name:     step.Name,
			Method:   step.Method,
			Resource: step.Resource,
			Status:   step.Status,
			Outcome:  "ok",
			Detail:   step.Detail,
			Duration: formatDuration(step.Duration),
		}
		if step.Err != nil {
			sv.Outcome = "failed"
			sv.Detail = step.Err.Error()
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}
