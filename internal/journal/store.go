package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shiftwalk/internal/config"
)

// Store manages run journal persistence backed by SQLite. A nil *Store is a
// valid disabled journal: write operations succeed as no-ops and read
// operations report the journal as disabled.
type Store struct {
	db   *sql.DB
	path string
}

// ErrNotFound indicates no run matched the requested id.
var ErrNotFound = errors.New("run not found")

// ErrDisabled indicates the journal is not enabled.
var ErrDisabled = errors.New("journal disabled")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the journal database under the configured
// journal directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database path, or empty for a disabled journal.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// BeginRun records the start of a run. The run's status is set to running
// and its start time to now.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	started := time.Now().UTC()
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, host, site, badge, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Host, run.Site, nullableString(run.Badge), string(StatusRunning), started.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordStep appends one step record to a run.
func (s *Store) RecordStep(ctx context.Context, step Step) error {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(step.RunID) == "" {
		return errors.New("step run id required")
	}
	started := step.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO run_steps (run_id, seq, name, method, resource, http_status, outcome, detail, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		step.RunID, step.Seq, step.Name, nullableString(step.Method), nullableString(step.Resource),
		step.HTTPStatus, string(step.Outcome), nullableString(step.Detail),
		step.Duration.Milliseconds(), started.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}

// FinishRun stamps a run's final status, error detail, and finish time.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, errMsg string) error {
	if s == nil {
		return nil
	}
	finished := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(status), nullableString(errMsg), finished.Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrNotFound, runID)
	}
	return nil
}

const runColumns = `id, host, site, badge, status, error_message, started_at, finished_at,
	(SELECT COUNT(1) FROM run_steps WHERE run_steps.run_id = runs.id) AS steps`

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RunByID fetches a run by full id or unique id prefix.
func (s *Store) RunByID(ctx context.Context, id string) (*Run, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id required")
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? || '%' LIMIT 3`, id, id)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) == 1:
		return &matches[0], nil
	}
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i], nil
		}
	}
	return nil, fmt.Errorf("run id %q is ambiguous", id)
}

// StepsForRun returns a run's steps in execution order.
func (s *Store) StepsForRun(ctx context.Context, runID string) ([]Step, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, seq, name, method, resource, http_status, outcome, detail, duration_ms, started_at
		 FROM run_steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("steps for run: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			method     sql.NullString
			resource   sql.NullString
			httpStatus sql.NullInt64
			detail     sql.NullString
			durationMS sql.NullInt64
			startedRaw string
			outcome    string
		)
		if err := rows.Scan(&step.ID, &step.RunID, &step.Seq, &step.Name, &method, &resource,
			&httpStatus, &outcome, &detail, &durationMS, &startedRaw); err != nil {
			return nil, err
		}
		step.Method = method.String
		step.Resource = resource.String
		step.HTTPStatus = int(httpStatus.Int64)
		step.Outcome = Status(outcome)
		step.Detail = detail.String
		step.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		if started, err := parseTimeString(startedRaw); err == nil {
			step.StartedAt = started
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Prune deletes the oldest runs beyond keep, steps included, and reports
// how many runs were removed. Steps are deleted explicitly rather than
// relying on cascade, since the foreign_keys pragma is per-connection.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if s == nil {
		return 0, nil
	}
	if keep < 0 {
		keep = 0
	}
	if _, err := s.execWithRetry(ctx,
		`DELETE FROM run_steps WHERE run_id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`,
		keep,
	); err != nil {
		return 0, fmt.Errorf("prune steps: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

// CheckHealth returns diagnostic information about the journal database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	if s == nil {
		return DatabaseHealth{}, ErrDisabled
	}
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("journal database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat journal database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("journal database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("journal database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping journal database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'runs'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM runs")
		if err := row.Scan(&health.TotalRuns); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count runs: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		host        string
		site        int
		badge       sql.NullString
		statusStr   string
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
		steps       int
	)
	if err := scanner.Scan(&id, &host, &site, &badge, &statusStr, &errMessage, &startedRaw, &finishedRaw, &steps); err != nil {
		return nil, err
	}

	run := &Run{
		ID:     id,
		Host:   host,
		Site:   site,
		Badge:  badge.String,
		Status: Status(statusStr),
		Error:  errMessage.String,
		Steps:  steps,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
