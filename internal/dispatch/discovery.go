package dispatch

import (
	"context"
	"fmt"
)

// Sites lists every site visible to the API key. This is the only call that
// carries no site parameter.
func (c *Client) Sites(ctx context.Context) ([]Site, error) {
	env, err := c.Get(ctx, resourcePath("sites"), nil)
	if err != nil {
		return nil, err
	}
	var sites []Site
	if err := env.DecodeData(&sites); err != nil {
		return nil, fmt.Errorf("sites: %w", err)
	}
	return sites, nil
}

// Areas lists the areas belonging to the client's site.
func (c *Client) Areas(ctx context.Context) ([]Area, error) {
	env, err := c.Get(ctx, resourcePath("areas"), Params{intParam("site", c.site)})
	if err != nil {
		return nil, err
	}
	var areas []Area
	if err := env.DecodeData(&areas); err != nil {
		return nil, fmt.Errorf("areas: %w", err)
	}
	return areas, nil
}

// Lines lists the production lines within an area.
func (c *Client) Lines(ctx context.Context, areaID int64) ([]Line, error) {
	if areaID <= 0 {
		return nil, fmt.Errorf("area id must be positive, got %d", areaID)
	}
	params := Params{
		intParam("site", c.site),
		int64Param("area", areaID),
	}
	env, err := c.Get(ctx, resourcePath("lines"), params)
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := env.DecodeData(&lines); err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	return lines, nil
}

// Machines lists the machines on a production line.
func (c *Client) Machines(ctx context.Context, lineID int64) ([]Machine, error) {
	if lineID <= 0 {
		return nil, fmt.Errorf("line id must be positive, got %d", lineID)
	}
	params := Params{
		intParam("site", c.site),
		int64Param("line", lineID),
	}
	env, err := c.Get(ctx, resourcePath("machines"), params)
	if err != nil {
		return nil, err
	}
	var machines []Machine
	if err := env.DecodeData(&machines); err != nil {
		return nil, fmt.Errorf("machines: %w", err)
	}
	return machines, nil
}

// DispatchTypes lists the dispatch classifications configured for the site.
func (c *Client) DispatchTypes(ctx context.Context) ([]DispatchType, error) {
	env, err := c.Get(ctx, resourcePath("dispatchtypes"), Params{intParam("site", c.site)})
	if err != nil {
		return nil, err
	}
	var types []DispatchType
	if err := env.DecodeData(&types); err != nil {
		return nil, fmt.Errorf("dispatchtypes: %w", err)
	}
	return types, nil
}
