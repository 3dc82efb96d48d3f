package workflow

import (
	"context"
	"fmt"
	"strings"

	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/sitetime"
)

// runState threads data extracted from each response into later steps.
type runState struct {
	clock        *sitetime.Formatter
	site         dispatch.Site
	area         dispatch.Area
	line         dispatch.Line
	machine      dispatch.Machine
	dispatchType dispatch.DispatchType
	dispatchID   int64
	report       []dispatch.Dispatch
}

type step struct {
	name     string
	method   string
	resource string
	run      func(ctx context.Context, st *runState) (string, error)
}

// steps returns the demonstration sequence. Order matters: each step feeds
// identifiers extracted from the previous response.
func (r *Runner) steps() []step {
	return []step{
		{"discover_sites", "GET", "sites", r.discoverSites},
		{"discover_areas", "GET", "areas", r.discoverAreas},
		{"discover_lines", "GET", "lines", r.discoverLines},
		{"discover_machines", "GET", "machines", r.discoverMachines},
		{"discover_dispatch_types", "GET", "dispatchtypes", r.discoverDispatchTypes},
		{"clock_in", "POST", "clockin", r.clockIn},
		{"cycle_count", "POST", "cyclecounts", r.cycleCount},
		{"open_dispatch", "POST", "dispatches", r.openDispatch},
		{"close_dispatch", "POST", "dispatches", r.closeDispatch},
		{"pitch_details", "POST", "pitchdetails", r.pitchDetails},
		{"recent_dispatches", "GET", "recentdispatches", r.recentDispatches},
		{"clock_out", "POST", "clockout", r.clockOut},
	}
}

func (r *Runner) discoverSites(ctx context.Context, st *runState) (string, error) {
	sites, err := r.client.Sites(ctx)
	if err != nil {
		return "", err
	}
	want := int64(r.cfg.Server.Site)
	for _, s := range sites {
		if s.ID == want {
			st.site = s
			break
		}
	}
	if st.site.ID == 0 {
		return "", fmt.Errorf("site %d is not visible to this API key (%d sites returned)", want, len(sites))
	}
	clock, err := sitetime.Resolve(st.site.Timezone, r.cfg.Demo.SiteTimezone)
	if err != nil {
		return "", err
	}
	st.clock = clock
	return fmt.Sprintf("%d sites, selected %s (%s)", len(sites), st.site.Code, clock.Zone()), nil
}

func (r *Runner) discoverAreas(ctx context.Context, st *runState) (string, error) {
	areas, err := r.client.Areas(ctx)
	if err != nil {
		return "", err
	}
	if len(areas) == 0 {
		return "", fmt.Errorf("site %s has no areas", st.site.Code)
	}
	st.area = areas[0]
	return fmt.Sprintf("%d areas, selected %s", len(areas), st.area.Code), nil
}

func (r *Runner) discoverLines(ctx context.Context, st *runState) (string, error) {
	lines, err := r.client.Lines(ctx, st.area.ID)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("area %s has no lines", st.area.Code)
	}
	st.line = lines[0]
	return fmt.Sprintf("%d lines, selected %s", len(lines), st.line.Code), nil
}

func (r *Runner) discoverMachines(ctx context.Context, st *runState) (string, error) {
	machines, err := r.client.Machines(ctx, st.line.ID)
	if err != nil {
		return "", err
	}
	if len(machines) == 0 {
		return "", fmt.Errorf("line %s has no machines", st.line.Code)
	}
	selected, err := pickMachine(machines, r.cfg.Demo.MachineCode)
	if err != nil {
		return "", err
	}
	st.machine = selected
	return fmt.Sprintf("%d machines, selected %s", len(machines), st.machine.Code), nil
}

func (r *Runner) discoverDispatchTypes(ctx context.Context, st *runState) (string, error) {
	types, err := r.client.DispatchTypes(ctx)
	if err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "", fmt.Errorf("site %s has no dispatch types", st.site.Code)
	}
	selected, err := pickDispatchType(types, r.cfg.Demo.DispatchType)
	if err != nil {
		return "", err
	}
	st.dispatchType = selected
	return fmt.Sprintf("%d dispatch types, selected %s", len(types), st.dispatchType.Code), nil
}

func (r *Runner) clockIn(ctx context.Context, st *runState) (string, error) {
	ev, err := r.client.ClockIn(ctx, r.cfg.Operator.Badge, st.clock.Second(r.now()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("badge %s clocked in at %s", ev.Badge, ev.Time), nil
}

func (r *Runner) cycleCount(ctx context.Context, st *runState) (string, error) {
	cc, err := r.client.SetCycleCount(ctx, st.machine.Code, r.cfg.Demo.CycleCount, st.clock.Second(r.now()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("machine %s count %d", cc.Machine, cc.Count), nil
}

func (r *Runner) openDispatch(ctx context.Context, st *runState) (string, error) {
	d, err := r.client.OpenDispatch(ctx, dispatch.DispatchRequest{
		Machine:     st.machine.Code,
		Type:        st.dispatchType.Code,
		Description: r.cfg.Demo.DispatchDescription,
		Timestamp:   st.clock.Second(r.now()),
	})
	if err != nil {
		return "", err
	}
	st.dispatchID = d.ID
	return fmt.Sprintf("dispatch %d (%s) opened against %s", d.ID, d.Code, d.Machine), nil
}

func (r *Runner) closeDispatch(ctx context.Context, st *runState) (string, error) {
	d, err := r.client.CloseDispatch(ctx, st.dispatchID, st.clock.Second(r.now()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dispatch %d closed", d.ID), nil
}

func (r *Runner) pitchDetails(ctx context.Context, st *runState) (string, error) {
	rec, err := r.client.RecordPitchDetails(ctx, dispatch.PitchDetails{
		Machine:    st.machine.Code,
		PitchStart: st.clock.PitchStart(r.now(), 0),
		Quantity:   r.cfg.Demo.PitchQuantity,
		Scrap:      r.cfg.Demo.PitchScrap,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("window %s quantity %d scrap %d", rec.PitchStart, rec.Quantity, rec.Scrap), nil
}

func (r *Runner) recentDispatches(ctx context.Context, st *runState) (string, error) {
	report, err := r.client.RecentDispatches(ctx, r.cfg.Demo.ReportLimit)
	if err != nil {
		return "", err
	}
	st.report = report
	return fmt.Sprintf("%d recent dispatches", len(report)), nil
}

func (r *Runner) clockOut(ctx context.Context, st *runState) (string, error) {
	ev, err := r.client.ClockOut(ctx, r.cfg.Operator.Badge, st.clock.Second(r.now()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("badge %s clocked out at %s", ev.Badge, ev.Time), nil
}

func pickMachine(machines []dispatch.Machine, code string) (dispatch.Machine, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return machines[0], nil
	}
	for _, m := range machines {
		if strings.EqualFold(m.Code, code) {
			return m, nil
		}
	}
	return dispatch.Machine{}, fmt.Errorf("configured machine %q not found on line", code)
}

func pickDispatchType(types []dispatch.DispatchType, code string) (dispatch.DispatchType, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return types[0], nil
	}
	for _, t := range types {
		if strings.EqualFold(t.Code, code) {
			return t, nil
		}
	}
	return dispatch.DispatchType{}, fmt.Errorf("configured dispatch type %q not found", code)
}
