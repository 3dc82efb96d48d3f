package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"shiftwalk/internal/config"
	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/journal"
	"shiftwalk/internal/logging"
	"shiftwalk/internal/testsupport"
)

// scriptedServer plays the Dispatch side of a full demonstration run and
// records every request it sees.
type scriptedServer struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls []string
	forms map[string]url.Values
	fail  map[string]string
}

func newScriptedServer(t *testing.T) *scriptedServer {
	t.Helper()
	s := &scriptedServer{
		forms: make(map[string]url.Values),
		fail:  make(map[string]string),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *scriptedServer) handle(w http.ResponseWriter, r *http.Request) {
	form := r.URL.Query()
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
	}

	s.mu.Lock()
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)
	s.forms[r.URL.Path] = form
	msg, failed := s.fail[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failed {
		fmt.Fprintf(w, `{"success": false, "error": %q}`, msg)
		return
	}
	fmt.Fprint(w, payloadFor(r.URL.Path, form))
}

func payloadFor(path string, form url.Values) string {
	switch path {
	case "/api/1.0/sites/":
		return `{"success": true, "data": [
			{"id": 1, "code": "DET", "description": "Detroit Assembly", "timezone": "America/Detroit"},
			{"id": 2, "code": "KC", "description": "Kansas City Stamping", "timezone": "America/Chicago"}]}`
	case "/api/1.0/areas/":
		return `{"success": true, "data": [{"id": 10, "site": 2, "code": "BODY", "description": "Body Shop"}]}`
	case "/api/1.0/lines/":
		return `{"success": true, "data": [{"id": 20, "area": 10, "code": "L1", "description": "Line 1"}]}`
	case "/api/1.0/machines/":
		return `{"success": true, "data": [
			{"id": 30, "line": 20, "code": "PRESS-1", "description": "Press 1"},
			{"id": 31, "line": 20, "code": "WELD-2", "description": "Welder 2"}]}`
	case "/api/1.0/dispatchtypes/":
		return `{"success": true, "data": [
			{"id": 40, "code": "FAULT", "description": "Machine fault"},
			{"id": 41, "code": "CLEAN", "description": "Scheduled cleaning"}]}`
	case "/api/1.0/clockin/", "/api/1.0/clockout/":
		return fmt.Sprintf(`{"success": true, "data": {"id": 77, "badge": %q, "time": %q}}`,
			form.Get("badge"), form.Get("time"))
	case "/api/1.0/cyclecounts/":
		return fmt.Sprintf(`{"success": true, "data": {"id": 78, "machine": %q, "count": %s}}`,
			form.Get("machine"), form.Get("count"))
	case "/api/1.0/dispatches/":
		return fmt.Sprintf(`{"success": true, "data": {"id": 90, "code": "D-90", "machine": %q, "dispatchtype": %q, "description": %q, "state": "open", "created": %q, "closed": ""}}`,
			form.Get("machine"), form.Get("dispatchtype"), form.Get("description"), form.Get("time"))
	case "/api/1.0/dispatches/90/":
		return fmt.Sprintf(`{"success": true, "data": {"id": 90, "code": "D-90", "machine": "WELD-2", "dispatchtype": "FAULT", "description": "", "state": "closed", "created": "", "closed": %q}}`,
			form.Get("time"))
	case "/api/1.0/pitchdetails/":
		return fmt.Sprintf(`{"success": true, "data": {"id": 95, "machine": %q, "pitch_start": %q, "quantity": %s, "scrap": %s}}`,
			form.Get("machine"), form.Get("pitch_start"), form.Get("quantity"), form.Get("scrap"))
	case "/api/1.0/recentdispatches/":
		return `{"success": true, "data": [
			{"id": 90, "code": "D-90", "machine": "WELD-2", "dispatchtype": "FAULT", "description": "jam", "state": "closed", "created": "2026-08-25 13:47:30", "closed": "2026-08-25 13:47:30"},
			{"id": 89, "code": "D-89", "machine": "PRESS-1", "dispatchtype": "CLEAN", "description": "wipe down", "state": "closed", "created": "2026-08-24 21:00:00", "closed": "2026-08-24 21:30:00"}]}`
	}
	return `{"success": false, "error": "unknown endpoint"}`
}

func (s *scriptedServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *scriptedServer) form(path string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forms[path]
}

// fixedClock pins wire timestamps: 18:47:30 UTC is 13:47:30 in
// America/Chicago during DST.
func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 18, 47, 30, 0, time.UTC)
}

func newScriptedRunner(t *testing.T, s *scriptedServer, mutate func(*config.Config)) (*Runner, *config.Config, *journal.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithServerHost(s.srv.URL))
	cfg.Server.Site = 2
	cfg.Demo.MachineCode = "WELD-2"
	if mutate != nil {
		mutate(cfg)
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store = testsupport.MustOpenJournal(t, cfg)
	}
	client, err := dispatch.New(s.srv.URL, cfg.Server.APIKey, cfg.Server.Site)
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	runner, err := New(cfg, client, store, logging.NewNop(), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	return runner, cfg, store
}

func TestRunWalksFullSequence(t *testing.T) {
	s := newScriptedServer(t)
	runner, _, store := newScriptedRunner(t, s, nil)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Succeeded() {
		t.Fatal("expected a successful summary")
	}
	if len(summary.Steps) != 12 {
		t.Fatalf("expected 12 steps, got %d", len(summary.Steps))
	}
	for _, st := range summary.Steps {
		if st.Err != nil {
			t.Errorf("step %s failed: %v", st.Name, st.Err)
		}
		if st.Status != http.StatusOK {
			t.Errorf("step %s recorded status %d, want 200", st.Name, st.Status)
		}
	}
	if len(summary.Report) != 2 {
		t.Fatalf("expected 2 dispatches in the report, got %d", len(summary.Report))
	}

	wantCalls := []string{
		"GET /api/1.0/sites/",
		"GET /api/1.0/areas/",
		"GET /api/1.0/lines/",
		"GET /api/1.0/machines/",
		"GET /api/1.0/dispatchtypes/",
		"POST /api/1.0/clockin/",
		"POST /api/1.0/cyclecounts/",
		"POST /api/1.0/dispatches/",
		"POST /api/1.0/dispatches/90/",
		"POST /api/1.0/pitchdetails/",
		"GET /api/1.0/recentdispatches/",
		"POST /api/1.0/clockout/",
	}
	calls := s.recorded()
	if len(calls) != len(wantCalls) {
		t.Fatalf("expected %d calls, got %d: %v", len(wantCalls), len(calls), calls)
	}
	for i, want := range wantCalls {
		if calls[i] != want {
			t.Errorf("call %d = %q, want %q", i, calls[i], want)
		}
	}

	if got := s.form("/api/1.0/areas/").Get("site"); got != "2" {
		t.Errorf("areas site = %q, want 2", got)
	}
	clockIn := s.form("/api/1.0/clockin/")
	if got := clockIn.Get("badge"); got != "B-1042" {
		t.Errorf("clockin badge = %q", got)
	}
	if got := clockIn.Get("time"); got != "2026-08-25 13:47:30" {
		t.Errorf("clockin time = %q, want site-local seconds", got)
	}
	cycle := s.form("/api/1.0/cyclecounts/")
	if got := cycle.Get("machine"); got != "WELD-2" {
		t.Errorf("cyclecounts machine = %q, want WELD-2", got)
	}
	if got := cycle.Get("count"); got != "25" {
		t.Errorf("cyclecounts count = %q, want 25", got)
	}
	open := s.form("/api/1.0/dispatches/")
	if got := open.Get("dispatchtype"); got != "FAULT" {
		t.Errorf("dispatch type = %q, want FAULT", got)
	}
	pitch := s.form("/api/1.0/pitchdetails/")
	if got := pitch.Get("pitch_start"); got != "2026-08-25 13:30" {
		t.Errorf("pitch_start = %q, want half-hour window start", got)
	}
	if got := pitch.Get("quantity"); got != "40" {
		t.Errorf("pitch quantity = %q, want 40", got)
	}

	run, err := store.RunByID(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("RunByID: %v", err)
	}
	if run.Status != journal.StatusSucceeded {
		t.Errorf("journaled status = %s, want succeeded", run.Status)
	}
	if run.Steps != 12 {
		t.Errorf("journaled step count = %d, want 12", run.Steps)
	}
	steps, err := store.StepsForRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("StepsForRun: %v", err)
	}
	if steps[0].Name != "discover_sites" || steps[len(steps)-1].Name != "clock_out" {
		t.Errorf("unexpected step ordering: first %s last %s", steps[0].Name, steps[len(steps)-1].Name)
	}
	for _, st := range steps {
		if st.Outcome != journal.StatusSucceeded {
			t.Errorf("step %s journaled as %s", st.Name, st.Outcome)
		}
	}
}

func TestRunHaltsOnFirstFailure(t *testing.T) {
	s := newScriptedServer(t)
	s.fail["/api/1.0/cyclecounts/"] = "machine offline"
	runner, _, store := newScriptedRunner(t, s, nil)

	summary, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected run failure")
	}
	if !strings.Contains(err.Error(), "cycle_count") || !strings.Contains(err.Error(), "machine offline") {
		t.Fatalf("error %q does not name the failing step and cause", err)
	}
	if summary.Succeeded() {
		t.Fatal("summary should not report success")
	}
	if len(summary.Steps) != 7 {
		t.Fatalf("expected 7 executed steps, got %d", len(summary.Steps))
	}
	last := summary.Steps[len(summary.Steps)-1]
	if last.Name != "cycle_count" || last.Err == nil {
		t.Fatalf("last step = %s err %v, want failed cycle_count", last.Name, last.Err)
	}
	if last.Status != http.StatusOK {
		t.Fatalf("envelope rejection should record status 200, got %d", last.Status)
	}

	for _, call := range s.recorded() {
		if strings.Contains(call, "clockout") {
			t.Fatal("clock_out must not run after a failure")
		}
	}
	if got := len(s.recorded()); got != 7 {
		t.Fatalf("expected 7 API calls, got %d", got)
	}

	run, err := store.RunByID(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("RunByID: %v", err)
	}
	if run.Status != journal.StatusFailed {
		t.Errorf("journaled status = %s, want failed", run.Status)
	}
	if !strings.Contains(run.Error, "machine offline") {
		t.Errorf("journaled error %q missing cause", run.Error)
	}
}

func TestRunSelectsFirstMachineWhenUnconfigured(t *testing.T) {
	s := newScriptedServer(t)
	runner, _, _ := newScriptedRunner(t, s, func(cfg *config.Config) {
		cfg.Demo.MachineCode = ""
	})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.form("/api/1.0/cyclecounts/").Get("machine"); got != "PRESS-1" {
		t.Fatalf("machine = %q, want first discovered PRESS-1", got)
	}
}

func TestRunFailsForUnknownMachineCode(t *testing.T) {
	s := newScriptedServer(t)
	runner, _, _ := newScriptedRunner(t, s, func(cfg *config.Config) {
		cfg.Demo.MachineCode = "NOPE"
	})

	summary, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "NOPE") {
		t.Fatalf("expected unknown-machine failure, got %v", err)
	}
	if len(summary.Steps) != 4 {
		t.Fatalf("expected halt at step 4, got %d steps", len(summary.Steps))
	}
	if got := len(s.recorded()); got != 4 {
		t.Fatalf("expected 4 API calls, got %d", got)
	}
}

func TestRunFailsWhenSiteNotVisible(t *testing.T) {
	s := newScriptedServer(t)
	runner, _, _ := newScriptedRunner(t, s, func(cfg *config.Config) {
		cfg.Server.Site = 9
	})

	summary, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "site 9") {
		t.Fatalf("expected missing-site failure, got %v", err)
	}
	if len(summary.Steps) != 1 {
		t.Fatalf("expected halt at step 1, got %d steps", len(summary.Steps))
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	s := newScriptedServer(t)
	runner, cfg, _ := newScriptedRunner(t, s, nil)

	if err := os.MkdirAll(filepath.Dir(cfg.RunLockPath()), 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(cfg.RunLockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	summary, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("expected lock refusal, got %v", err)
	}
	if summary != nil {
		t.Fatal("expected nil summary when the lock is held")
	}
	if got := len(s.recorded()); got != 0 {
		t.Fatalf("no API calls expected, got %d", got)
	}
}

func TestRunWithJournalDisabled(t *testing.T) {
	s := newScriptedServer(t)
	runner, cfg, _ := newScriptedRunner(t, s, func(cfg *config.Config) {
		cfg.Journal.Enabled = false
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Succeeded() {
		t.Fatal("expected success without a journal")
	}
	if _, err := os.Stat(cfg.JournalDBPath()); !os.IsNotExist(err) {
		t.Fatalf("journal database should not exist, stat err=%v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, http.StatusOK},
		{"status error", &dispatch.StatusError{Code: 404}, 404},
		{"wrapped status error", fmt.Errorf("sites: %w", &dispatch.StatusError{Code: 500}), 500},
		{"api error", &dispatch.APIError{Message: "nope"}, http.StatusOK},
		{"empty body", &dispatch.EmptyBodyError{}, http.StatusOK},
		{"malformed", &dispatch.MalformedError{Err: errors.New("bad json")}, http.StatusOK},
		{"transport", &dispatch.TransportError{Err: errors.New("refused")}, 0},
		{"local validation", errors.New("machine code must not be empty"), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := httpStatus(tc.err); got != tc.want {
				t.Fatalf("httpStatus = %d, want %d", got, tc.want)
			}
		})
	}
}
