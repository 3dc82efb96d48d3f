package workflow

import (
	"time"

	"shiftwalk/internal/dispatch"
)

// StepResult captures one executed step for rendering and journaling.
type StepResult struct {
	Seq      int
	Name     string
	Method   string
	Resource string
	// Status is the HTTP status the step observed: 200 for any completed
	// exchange, the reported code for status failures, 0 when no response
	// arrived.
	Status    int
	Detail    string
	Err       error
	Duration  time.Duration
	StartedAt time.Time
}

// Summary reports one demonstration run, including every step that
// executed. On a halted run the failing step is the last entry.
type Summary struct {
	RunID    string
	Site     int
	Badge    string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	// Report holds the recent-dispatch listing pulled near the end of a
	// successful run.
	Report []dispatch.Dispatch
	Err    error
}

// Succeeded reports whether every step completed.
func (s *Summary) Succeeded() bool { return s != nil && s.Err == nil }

// Duration is the wall-clock span of the run.
func (s *Summary) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.Finished.Sub(s.Started)
}
