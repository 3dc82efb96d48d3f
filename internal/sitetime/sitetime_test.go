package sitetime_test

import (
	"testing"
	"time"

	"shiftwalk/internal/sitetime"
)

func TestResolvePrefersFirstCandidate(t *testing.T) {
	f, err := sitetime.Resolve("America/Chicago", "UTC")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if f.Zone() != "America/Chicago" {
		t.Fatalf("Zone() = %q, want America/Chicago", f.Zone())
	}
}

func TestResolveSkipsEmptyCandidates(t *testing.T) {
	f, err := sitetime.Resolve("", "   ", "UTC")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if f.Zone() != "UTC" {
		t.Fatalf("Zone() = %q, want UTC", f.Zone())
	}
}

func TestResolveRejectsInvalidZone(t *testing.T) {
	if _, err := sitetime.Resolve("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestResolveDefaultsToHostLocal(t *testing.T) {
	f, err := sitetime.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if f.Zone() != time.Local.String() {
		t.Fatalf("Zone() = %q, want host local %q", f.Zone(), time.Local.String())
	}
}

func TestWireFormats(t *testing.T) {
	f, err := sitetime.Resolve("UTC")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	instant := time.Date(2026, time.August, 25, 13, 4, 5, 0, time.UTC)

	if got := f.Minute(instant); got != "2026-08-25 13:04" {
		t.Fatalf("Minute() = %q", got)
	}
	if got := f.Second(instant); got != "2026-08-25 13:04:05" {
		t.Fatalf("Second() = %q", got)
	}
}

func TestFormatsConvertToSiteZone(t *testing.T) {
	f, err := sitetime.Resolve("America/New_York")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	// 13:04 UTC is 09:04 Eastern during daylight saving.
	instant := time.Date(2026, time.August, 25, 13, 4, 5, 0, time.UTC)

	if got := f.Minute(instant); got != "2026-08-25 09:04" {
		t.Fatalf("Minute() = %q", got)
	}
}

func TestPitchStartTruncates(t *testing.T) {
	f, err := sitetime.Resolve("UTC")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	cases := []struct {
		name   string
		in     time.Time
		window time.Duration
		want   string
	}{
		{"first half hour", time.Date(2026, time.August, 25, 6, 17, 45, 0, time.UTC), 30 * time.Minute, "2026-08-25 06:00"},
		{"second half hour", time.Date(2026, time.August, 25, 6, 47, 0, 0, time.UTC), 30 * time.Minute, "2026-08-25 06:30"},
		{"quarter window", time.Date(2026, time.August, 25, 6, 17, 0, 0, time.UTC), 15 * time.Minute, "2026-08-25 06:15"},
		{"zero window uses default", time.Date(2026, time.August, 25, 6, 17, 0, 0, time.UTC), 0, "2026-08-25 06:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.PitchStart(tc.in, tc.window); got != tc.want {
				t.Fatalf("PitchStart() = %q, want %q", got, tc.want)
			}
		})
	}
}
