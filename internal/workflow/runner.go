package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shiftwalk/internal/config"
	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/journal"
	"shiftwalk/internal/logging"
)

// Runner executes the scripted demonstration against one Dispatch host.
type Runner struct {
	cfg     *config.Config
	client  *dispatch.Client
	journal *journal.Store
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source used for wire timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Runner. The journal store may be nil when journaling is
// disabled; every journal write then becomes a no-op.
func New(cfg *config.Config, client *dispatch.Client, store *journal.Store, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("workflow requires config")
	}
	if client == nil {
		return nil, errors.New("workflow requires a dispatch client")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:     cfg,
		client:  client,
		journal: store,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run walks the full demonstration sequence under a file lock that keeps
// two runs from interleaving clock state. The returned summary carries
// every step that executed, including a failing one; the error is returned
// as well so callers can render the partial summary and still exit nonzero.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	lockPath := r.cfg.RunLockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another shiftwalk run is already in progress")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	host, _ := os.Hostname()
	started := r.now()

	runCtx := logging.WithRunID(ctx, runID)
	log := logging.WithContext(runCtx, r.logger)
	log.Info("run started",
		logging.Int(logging.FieldSite, r.cfg.Server.Site),
		logging.String("badge", r.cfg.Operator.Badge),
		logging.String("server", r.cfg.Server.Host))

	if err := r.journal.BeginRun(runCtx, journal.Run{
		ID:    runID,
		Host:  host,
		Site:  r.cfg.Server.Site,
		Badge: r.cfg.Operator.Badge,
	}); err != nil {
		return nil, fmt.Errorf("journal run start: %w", err)
	}

	summary := &Summary{
		RunID:   runID,
		Site:    r.cfg.Server.Site,
		Badge:   r.cfg.Operator.Badge,
		Started: started,
	}

	st := &runState{}
	for i, s := range r.steps() {
		result := r.runStep(runCtx, i+1, s, st)
		summary.Steps = append(summary.Steps, result)
		r.recordStep(runCtx, runID, result)
		if result.Err != nil {
			summary.Err = fmt.Errorf("%s: %w", s.name, result.Err)
			summary.Finished = r.now()
			r.finishRun(runCtx, runID, journal.StatusFailed, summary.Err.Error())
			log.Error("run failed",
				logging.String(logging.FieldStep, s.name),
				logging.Duration("run_duration", summary.Finished.Sub(started)),
				logging.Error(result.Err))
			return summary, summary.Err
		}
	}

	summary.Report = st.report
	summary.Finished = r.now()
	r.finishRun(runCtx, runID, journal.StatusSucceeded, "")
	r.pruneJournal(runCtx)
	log.Info("run complete",
		logging.Int("steps", len(summary.Steps)),
		logging.Duration("run_duration", summary.Finished.Sub(started)))
	return summary, nil
}

func (r *Runner) runStep(ctx context.Context, seq int, s step, st *runState) StepResult {
	stepCtx := logging.WithStep(ctx, s.name)
	log := logging.WithContext(stepCtx, r.logger)
	log.Info("step started",
		logging.String("method", s.method),
		logging.String(logging.FieldResource, s.resource))

	startedAt := time.Now()
	detail, err := s.run(stepCtx, st)
	elapsed := time.Since(startedAt)

	result := StepResult{
		Seq:       seq,
		Name:      s.name,
		Method:    s.method,
		Resource:  s.resource,
		Status:    httpStatus(err),
		Detail:    detail,
		Err:       err,
		Duration:  elapsed,
		StartedAt: startedAt,
	}
	if err != nil {
		log.Error("step failed",
			logging.Duration("step_duration", elapsed),
			logging.Error(err))
		return result
	}
	log.Info("step complete",
		logging.String("detail", detail),
		logging.Duration("step_duration", elapsed))
	return result
}

func (r *Runner) recordStep(ctx context.Context, runID string, result StepResult) {
	outcome := journal.StatusSucceeded
	detail := result.Detail
	if result.Err != nil {
		outcome = journal.StatusFailed
		detail = result.Err.Error()
	}
	err := r.journal.RecordStep(ctx, journal.Step{
		RunID:      runID,
		Seq:        result.Seq,
		Name:       result.Name,
		Method:     result.Method,
		Resource:   result.Resource,
		HTTPStatus: result.Status,
		Outcome:    outcome,
		Detail:     detail,
		Duration:   result.Duration,
		StartedAt:  result.StartedAt,
	})
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("journal step write failed", logging.Error(err))
	}
}

func (r *Runner) finishRun(ctx context.Context, runID string, status journal.Status, errMsg string) {
	if err := r.journal.FinishRun(ctx, runID, status, errMsg); err != nil {
		logging.WithContext(ctx, r.logger).Warn("journal run finish failed", logging.Error(err))
	}
}

func (r *Runner) pruneJournal(ctx context.Context) {
	if r.cfg.Journal.KeepRuns <= 0 {
		return
	}
	deleted, err := r.journal.Prune(ctx, r.cfg.Journal.KeepRuns)
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("journal prune failed", logging.Error(err))
		return
	}
	if deleted > 0 {
		logging.WithContext(ctx, r.logger).Debug("journal pruned", logging.Int("deleted_runs", deleted))
	}
}

// httpStatus maps a step error onto the status recorded in the journal.
// Envelope-level failures ride on a 200 response; transport and local
// validation failures never saw one.
func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var statusErr *dispatch.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	var apiErr *dispatch.APIError
	var emptyErr *dispatch.EmptyBodyError
	var malformedErr *dispatch.MalformedError
	if errors.As(err, &apiErr) || errors.As(err, &emptyErr) || errors.As(err, &malformedErr) {
		return http.StatusOK
	}
	return 0
}
