package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDoctorAllChecksPass(t *testing.T) {
	f := newFakeDispatch(t)
	env := setupCLITestEnv(t, f.srv.URL)

	stdout, _, err := runCLI(t, env, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, stdout, "[OK]")
	requireContains(t, stdout, "Configuration")
	requireContains(t, stdout, "Journal directory")
	requireContains(t, stdout, "Site timezone")
	requireContains(t, stdout, "Dispatch API")
	requireContains(t, stdout, "reachable, 2 sites listed")
	requireContains(t, stdout, "Journal database:")
	requireContains(t, stdout, "recorded runs: 0")
	requireNotContains(t, stdout, "[ERROR]")
}

func TestDoctorFailsWithoutHost(t *testing.T) {
	env := setupCLITestEnv(t, "")

	stdout, _, err := runCLI(t, env, "doctor")
	if err == nil || !strings.Contains(err.Error(), "checks failed") {
		t.Fatalf("expected check failures, got %v", err)
	}
	requireContains(t, stdout, "[ERROR]")
	requireContains(t, stdout, "server.host is not configured")
}

func TestDoctorReportsUnreachableServer(t *testing.T) {
	f := newFakeDispatch(t)
	env := setupCLITestEnv(t, f.srv.URL)
	f.srv.Close()

	stdout, _, err := runCLI(t, env, "doctor")
	if err == nil || !strings.Contains(err.Error(), "checks failed") {
		t.Fatalf("expected check failures, got %v", err)
	}
	requireContains(t, stdout, "unreachable")
}

func TestDoctorJSON(t *testing.T) {
	f := newFakeDispatch(t)
	env := setupCLITestEnv(t, f.srv.URL)

	stdout, _, err := runCLI(t, env, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor --json: %v", err)
	}
	var report struct {
		Checks []struct {
			Name   string
			Passed bool
		} `json:"checks"`
		Journal struct {
			TotalRuns int
		} `json:"journal"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("parse json output: %v\n%s", err, stdout)
	}
	if len(report.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(report.Checks))
	}
	for _, check := range report.Checks {
		if !check.Passed {
			t.Fatalf("expected all checks to pass, %s failed", check.Name)
		}
	}
	if report.Journal.TotalRuns != 0 {
		t.Fatalf("expected 0 recorded runs, got %d", report.Journal.TotalRuns)
	}
}
