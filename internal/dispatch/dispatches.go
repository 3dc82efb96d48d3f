package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DispatchRequest describes a dispatch to open against a machine.
type DispatchRequest struct {
	Machine     string // machine code
	Type        string // dispatch type code
	Description string
	Timestamp   string // site-local second-precision creation time
}

// OpenDispatch creates a dispatch and returns the stored record with its
// server-assigned id.
func (c *Client) OpenDispatch(ctx context.Context, req DispatchRequest) (*Dispatch, error) {
	if strings.TrimSpace(req.Machine) == "" {
		return nil, errors.New("dispatch machine required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return nil, errors.New("dispatch type required")
	}
	params := Params{
		intParam("site", c.site),
		param("machine", req.Machine),
		param("dispatchtype", req.Type),
		param("description", req.Description),
		param("time", req.Timestamp),
	}
	env, err := c.PostForm(ctx, resourcePath("dispatches"), params)
	if err != nil {
		return nil, err
	}
	var d Dispatch
	if err := env.DecodeData(&d); err != nil {
		return nil, fmt.Errorf("open dispatch: %w", err)
	}
	return &d, nil
}

// CloseDispatch transitions an open dispatch to the closed state.
func (c *Client) CloseDispatch(ctx context.Context, id int64, timestamp string) (*Dispatch, error) {
	if id <= 0 {
		return nil, fmt.Errorf("dispatch id must be positive, got %d", id)
	}
	params := Params{
		intParam("site", c.site),
		param("state", "closed"),
		param("time", timestamp),
	}
	env, err := c.PostForm(ctx, resourcePath("dispatches", id), params)
	if err != nil {
		return nil, err
	}
	var d Dispatch
	if err := env.DecodeData(&d); err != nil {
		return nil, fmt.Errorf("close dispatch: %w", err)
	}
	return &d, nil
}

// RecentDispatches returns the site's most recent dispatches, newest first,
// bounded by limit.
func (c *Client) RecentDispatches(ctx context.Context, limit int) ([]Dispatch, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	params := Params{
		intParam("site", c.site),
		intParam("limit", limit),
	}
	env, err := c.Get(ctx, resourcePath("recentdispatches"), params)
	if err != nil {
		return nil, err
	}
	var dispatches []Dispatch
	if err := env.DecodeData(&dispatches); err != nil {
		return nil, fmt.Errorf("recent dispatches: %w", err)
	}
	return dispatches, nil
}
