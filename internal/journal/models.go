package journal

import "time"

// Status represents the recorded outcome of a run or a step.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is the journal record of one demonstration run against a Dispatch
// host.
type Run struct {
	ID         string
	Host       string
	Site       int
	Badge      string
	Status     Status
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Steps      int
}

// Step is the journal record of one workflow step within a run. HTTPStatus
// is 200 for completed calls, the reported code for status failures, and 0
// when no HTTP response was involved.
type Step struct {
	ID         int64
	RunID      string
	Seq        int
	Name       string
	Method     string
	Resource   string
	HTTPStatus int
	Outcome    Status
	Detail     string
	Duration   time.Duration
	StartedAt  time.Time
}

// DatabaseHealth reports diagnostic information about the journal database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalRuns        int
	Error            string
}
