package main

import (
	"bytes"
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
)

// fakeDispatch serves the slice of the Dispatch API the CLI exercises and
// records every call for assertions.
type fakeDispatch struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls []string
	forms map[string]url.Values
	fail  map[string]string
}

func newFakeDispatch(t *testing.T) *fakeDispatch {
	t.Helper()
	f := &fakeDispatch{
		forms: make(map[string]url.Values),
		fail:  make(map[string]string),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// failWith makes the named resource answer success=false with message.
func (f *fakeDispatch) failWith(resource, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[resource] = message
}

func (f *fakeDispatch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeDispatch) form(resource string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[resource]
}

func (f *fakeDispatch) handle(w http.ResponseWriter, r *http.Request) {
	var form url.Values
	switch r.Method {
	case http.MethodGet:
		form = r.URL.Query()
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
	}

	resource := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/api/1.0/")

	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+resource)
	f.forms[resource] = form
	failMsg := f.fail[resource]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failMsg != "" {
		fmt.Fprintf(w, `{"success": false, "error": %q}`, failMsg)
		return
	}
	fmt.Fprintf(w, `{"success": true, "data": %s}`, f.payload(resource, form))
}

func (f *fakeDispatch) payload(resource string, form url.Values) string {
	switch resource {
	case "sites":
		return `[
			{"id": 1, "code": "DET", "description": "Detroit Plant", "timezone": "America/Detroit"},
			{"id": 2, "code": "KC", "description": "Kansas City Plant", "timezone": "America/Chicago"}
		]`
	case "areas":
		return `[{"id": 10, "site": 1, "code": "BODY", "description": "Body Shop"}]`
	case "lines":
		return `[{"id": 20, "area": 10, "code": "L1", "description": "Line One"}]`
	case "machines":
		return `[
			{"id": 30, "line": 20, "code": "PRESS-1", "description": "Stamping Press"},
			{"id": 31, "line": 20, "code": "WELD-2", "description": "Spot Welder"}
		]`
	case "dispatchtypes":
		return `[
			{"id": 40, "code": "FAULT", "description": "Machine Fault"},
			{"id": 41, "code": "CLEAN", "description": "Cleaning Request"}
		]`
	case "clockin", "clockout":
		return fmt.Sprintf(`{"id": 70, "badge": %q, "time": %q}`, form.Get("badge"), form.Get("time"))
	case "cyclecounts":
		return fmt.Sprintf(`{"id": 80, "machine": %q, "count": %s}`, form.Get("machine"), form.Get("count"))
	case "dispatches":
		return fmt.Sprintf(`{"id": 90, "code": "D-90", "machine": %q, "dispatchtype": %q, "description": %q, "state": "open", "created": %q, "closed": ""}`,
			form.Get("machine"), form.Get("dispatchtype"), form.Get("description"), form.Get("time"))
	case "dispatches/90":
		return fmt.Sprintf(`{"id": 90, "code": "D-90", "machine": "PRESS-1", "dispatchtype": "FAULT", "description": "demo", "state": %q, "created": "2026-08-25 13:40:00", "closed": %q}`,
			form.Get("state"), form.Get("time"))
	case "pitchdetails":
		return fmt.Sprintf(`{"id": 95, "machine": %q, "pitch_start": %q, "quantity": %s, "scrap": %s}`,
			form.Get("machine"), form.Get("pitch_start"), form.Get("quantity"), form.Get("scrap"))
	case "recentdispatches":
		return `[
			{"id": 90, "code": "D-90", "machine": "PRESS-1", "dispatchtype": "FAULT", "description": "Demonstration dispatch", "state": "closed", "created": "2026-08-25 13:40:00", "closed": "2026-08-25 13:47:30"},
			{"id": 89, "code": "D-89", "machine": "WELD-2", "dispatchtype": "CLEAN", "description": "Shift cleaning", "state": "open", "created": "2026-08-25 11:02:00", "closed": ""}
		]`
	}
	return "null"
}

// cliTestEnv points runCLI at a config file inside a temp directory.
type cliTestEnv struct {
	configPath string
	journalDir string
}

// setupCLITestEnv writes a complete config file wired to serverURL. Pass an
// empty serverURL to exercise the no-host error paths. Logging is pinned to
// the error level so workflow logs stay out of test output.
func setupCLITestEnv(t *testing.T, serverURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		journalDir: filepath.Join(base, "journal"),
	}
	content := fmt.Sprintf(`[server]
host = %q
api_key = "test-key"
site = 1

[operator]
badge = "B-1042"

[journal]
enabled = true
dir = %q

[logging]
format = "console"
level = "error"
`, serverURL, env.journalDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected output not to contain %q, got:\n%s", substr, output)
	}
}
