// Package sitetime renders timestamps in a site's local time zone using the
// two wire formats the Dispatch API accepts. The remote API never sees UTC;
// every timestamp parameter is expressed in the target site's zone, and a
// mismatched format is a caller error the server will reject.
package sitetime

import (
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutMinute is the minute-precision wire format.
	LayoutMinute = "2006-01-02 15:04"
	// LayoutSecond is the seconds-precision wire format.
	LayoutSecond = "2006-01-02 15:04:05"

	// DefaultPitchWindow is the bucket size used for pitch production
	// records when the site does not dictate one.
	DefaultPitchWindow = 30 * time.Minute
)

// Formatter renders timestamps in a fixed site zone.
type Formatter struct {
	loc *time.Location
}

// Resolve picks the first non-empty zone name from candidates and loads it.
// Callers pass the zone discovered on the site record first and any
// configured fallback second; with no candidates at all, the host's local
// zone is used. An invalid zone name is an error, not a silent fallback.
func Resolve(candidates ...string) (*Formatter, error) {
	for _, name := range candidates {
		if name = strings.TrimSpace(name); name != "" {
			loc, err := time.LoadLocation(name)
			if err != nil {
				return nil, fmt.Errorf("load site timezone %q: %w", name, err)
			}
			return &Formatter{loc: loc}, nil
		}
	}
	return &Formatter{loc: time.Local}, nil
}

// Minute renders t in the site zone at minute precision.
func (f *Formatter) Minute(t time.Time) string {
	return t.In(f.location()).Format(LayoutMinute)
}

// Second renders t in the site zone at second precision.
func (f *Formatter) Second(t time.Time) string {
	return t.In(f.location()).Format(LayoutSecond)
}

// PitchStart truncates t to the start of its pitch window, measured from
// site-local midnight, and renders it at minute precision.
func (f *Formatter) PitchStart(t time.Time, window time.Duration) string {
	if window <= 0 {
		window = DefaultPitchWindow
	}
	local := t.In(f.location())
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	elapsed := local.Sub(dayStart)
	return dayStart.Add(elapsed - elapsed%window).Format(LayoutMinute)
}

// Zone reports the name of the zone in use.
func (f *Formatter) Zone() string {
	return f.location().String()
}

func (f *Formatter) location() *time.Location {
	if f == nil || f.loc == nil {
		return time.Local
	}
	return f.loc
}
