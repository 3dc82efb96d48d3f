package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SetCycleCount records a machine's current cycle count.
func (c *Client) SetCycleCount(ctx context.Context, machineCode string, count int, timestamp string) (*CycleCount, error) {
	machineCode = strings.TrimSpace(machineCode)
	if machineCode == "" {
		return nil, errors.New("machine code must not be empty")
	}
	if count < 0 {
		return nil, fmt.Errorf("cycle count must not be negative, got %d", count)
	}
	params := Params{
		intParam("site", c.site),
		param("machine", machineCode),
		intParam("count", count),
		param("time", timestamp),
	}
	env, err := c.PostForm(ctx, resourcePath("cyclecounts"), params)
	if err != nil {
		return nil, err
	}
	var cc CycleCount
	if err := env.DecodeData(&cc); err != nil {
		return nil, fmt.Errorf("cycle count: %w", err)
	}
	return &cc, nil
}

// PitchDetails describes production actuals for one pitch window.
type PitchDetails struct {
	Machine    string // machine code
	PitchStart string // site-local minute-precision window start
	Quantity   int
	Scrap      int
}

// RecordPitchDetails records quantity and scrap against the pitch window
// starting at details.PitchStart.
func (c *Client) RecordPitchDetails(ctx context.Context, details PitchDetails) (*PitchRecord, error) {
	if strings.TrimSpace(details.Machine) == "" {
		return nil, errors.New("pitch machine required")
	}
	if details.Quantity < 0 {
		return nil, fmt.Errorf("pitch quantity must not be negative, got %d", details.Quantity)
	}
	if details.Scrap < 0 {
		return nil, fmt.Errorf("pitch scrap must not be negative, got %d", details.Scrap)
	}
	params := Params{
		intParam("site", c.site),
		param("machine", details.Machine),
		param("pitch_start", details.PitchStart),
		intParam("quantity", details.Quantity),
		intParam("scrap", details.Scrap),
	}
	env, err := c.PostForm(ctx, resourcePath("pitchdetails"), params)
	if err != nil {
		return nil, err
	}
	var record PitchRecord
	if err := env.DecodeData(&record); err != nil {
		return nil, fmt.Errorf("pitch details: %w", err)
	}
	return &record, nil
}
