package main

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/journal"
)

const timestampDisplayLayout = "2006-01-02 15:04:05"

// stepLabel turns a step identifier like "clock_in" into "Clock In" for
// table display.
func stepLabel(name string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}

// shortID abbreviates a run UUID for table display. Journal lookups accept
// the abbreviated form as a prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Millisecond).String()
}

func runDuration(run journal.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return formatDuration(run.FinishedAt.Sub(run.StartedAt))
}

func dispatchRows(dispatches []dispatch.Dispatch) [][]string {
	rows := make([][]string, 0, len(dispatches))
	for _, d := range dispatches {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.Code,
			d.Machine,
			d.Type,
			d.State,
			d.Created,
			d.Closed,
		})
	}
	return rows
}

var dispatchTableHeaders = []string{"ID", "Code", "Machine", "Type", "State", "Created", "Closed"}

var dispatchTableAligns = []columnAlignment{
	alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft,
}
